package xcrawler

import (
	"fmt"
	"net/url"
)

const (
	pathSearchAll      = "/tweets/search/all"
	pathSearchRecent   = "/tweets/search/recent"
	pathUserByUsername = "/users/by/username/%s"
	pathUserTweets     = "/users/%s/tweets"
)

// QueryKind is the caller's intent.
type QueryKind int

const (
	// QuerySearch is a keyword or account search.
	QuerySearch QueryKind = iota
	// QueryTimeline lists one account's posts.
	QueryTimeline
)

func (k QueryKind) String() string {
	switch k {
	case QuerySearch:
		return "search"
	case QueryTimeline:
		return "timeline"
	}
	return fmt.Sprintf("QueryKind(%d)", int(k))
}

// Endpoint is a listing endpoint chosen by SelectEndpoint.
type Endpoint struct {
	// Name labels the endpoint in logs, metrics and reset tracking.
	Name string
	// Path is the path template; timeline paths embed the user id.
	Path string
	// ByUserID is true when Path needs a resolved user id rather than a query.
	ByUserID bool
	// CursorParam is the request parameter carrying the pagination cursor.
	CursorParam string
}

var (
	EndpointSearchAll = Endpoint{Name: "search_all", Path: pathSearchAll, CursorParam: "next_token"}
	// EndpointSearchRecent only reaches back about seven days; the server enforces the window.
	EndpointSearchRecent = Endpoint{Name: "search_recent", Path: pathSearchRecent, CursorParam: "next_token"}
	EndpointUserTweets   = Endpoint{Name: "user_tweets", Path: pathUserTweets, ByUserID: true, CursorParam: "pagination_token"}
)

// SelectEndpoint maps plan tier and intent to an endpoint. It does no I/O.
//
//	intent    full-history           recent-only
//	search    search/all             search/recent
//	timeline  search/all (from:)     users/:id/tweets
func SelectEndpoint(useSearchAll bool, kind QueryKind) Endpoint {
	switch {
	case useSearchAll:
		return EndpointSearchAll
	case kind == QueryTimeline:
		return EndpointUserTweets
	default:
		return EndpointSearchRecent
	}
}

// URLPath returns the request path for e; userID is used by timeline endpoints.
func (e Endpoint) URLPath(userID string) string {
	if e.ByUserID {
		return fmt.Sprintf(e.Path, url.PathEscape(userID))
	}
	return e.Path
}

// UserByUsernamePath returns the lookup path for a username.
func UserByUsernamePath(username string) string {
	return fmt.Sprintf(pathUserByUsername, url.PathEscape(username))
}

// Field selections requested from the API.
const (
	tweetFields = "id,text,created_at,public_metrics,author_id"
	userFields  = "id,name,username,verified,public_metrics,created_at"
	// userLookupFields additionally asks for the description, as the lookup is used for disambiguation.
	userLookupFields = "id,name,username,verified,description,public_metrics,created_at"
)

// clampMaxResults keeps max_results within the API's [10, 100] bounds.
func clampMaxResults(n int) int {
	return max(10, min(n, 100))
}
