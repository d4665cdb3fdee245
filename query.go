package xcrawler

import (
	"net/url"
	"strings"
)

// QueryOptions narrows a listing.
type QueryOptions struct {
	ExcludeRetweets bool
	ExcludeReplies  bool
}

// AccountQuery matches posts authored by username (leading @ is dropped).
func AccountQuery(username string) string {
	return "from:" + strings.TrimPrefix(strings.TrimSpace(username), "@")
}

// KeywordQuery returns a trimmed keyword query.
func KeywordQuery(keyword string) string {
	return strings.TrimSpace(keyword)
}

// Apply appends the search operators for the options to q.
func (o QueryOptions) Apply(q string) string {
	if o.ExcludeRetweets {
		q += " -is:retweet"
	}
	if o.ExcludeReplies {
		q += " -is:reply"
	}
	return q
}

// applyTimeline sets the timeline endpoint's exclude parameter.
func (o QueryOptions) applyTimeline(params url.Values) {
	var ex []string
	if o.ExcludeRetweets {
		ex = append(ex, "retweets")
	}
	if o.ExcludeReplies {
		ex = append(ex, "replies")
	}
	if len(ex) > 0 {
		params.Set("exclude", strings.Join(ex, ","))
	}
}
