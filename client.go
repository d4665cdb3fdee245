package xcrawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"
)

// ClientConfig holds everything needed to build a Client.
type ClientConfig struct {
	// Settings is copied; later changes to the caller's value have no effect.
	Settings Settings

	// Doer executes HTTP requests. Default: a go-stealth browser client.
	Doer Doer

	// Limiter spaces requests. Pass the same limiter to several clients to share one budget.
	// Default: a new limiter from Settings.RequestsPerMinute.
	Limiter *RateLimiter

	// MetricsHook is called on each HTTP attempt for external metrics collection.
	// endpoint is the endpoint name, success and rateLimited indicate the outcome.
	MetricsHook func(endpoint string, success, rateLimited bool)
}

// Client is the API access layer.
type Client struct {
	settings  Settings
	transport *Transport
}

// NewClient creates a fully-wired client.
func NewClient(cfg ClientConfig) (*Client, error) {
	s := cfg.Settings
	s.defaults()
	if err := s.Validate(); err != nil {
		return nil, &APIError{Kind: KindConfig, Detail: err.Error(), Err: err}
	}

	doer := cfg.Doer
	if doer == nil {
		d, err := NewStealthDoer(s.Proxy, s.RequestTimeout)
		if err != nil {
			return nil, err
		}
		doer = d
	}
	if s.BearerToken == "" {
		slog.Warn("no bearer token configured, requests will fail with 401")
	}

	t := NewTransport(s, doer, cfg.Limiter)
	t.metricsHook = cfg.MetricsHook
	return &Client{settings: s, transport: t}, nil
}

// Settings returns the client's settings snapshot.
func (c *Client) Settings() Settings {
	return c.settings
}

// EndpointAvailableAt reports the server-announced reset time of a rate-limited
// endpoint, or the zero time.
func (c *Client) EndpointAvailableAt(endpoint string) time.Time {
	return c.transport.EndpointAvailableAt(endpoint)
}

// GetUserByUsername looks an account up by username. An unknown username is
// not an error: it returns nil, nil.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*Account, error) {
	params := url.Values{"user.fields": {userLookupFields}}
	resp, err := c.transport.Get(ctx, "user_by_username", UserByUsernamePath(username), params)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("user by username %q: %w", username, err)
	}
	acc, err := parseUserLookup(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindDecode, Endpoint: "user_by_username", Err: err}
	}
	return acc, nil
}

// PageRequest describes a listing.
type PageRequest struct {
	Kind QueryKind

	// Query is the search text for QuerySearch.
	Query string

	// Username is the account for QueryTimeline. UserID may be given to skip the
	// username lookup on the recent-only tier.
	Username string
	UserID   string

	Options QueryOptions
	Window  Window

	// MaxResults per page, clamped to [10, 100]. Zero means 100.
	MaxResults int

	// ExpandAuthors requests includes.users for author details.
	ExpandAuthors bool
}

// ErrUnknownUser is returned when a timeline is requested for a username that does not exist.
var ErrUnknownUser = errors.New("unknown user")

// listCall is a prepared listing: endpoint, path and the parameters of the first page.
type listCall struct {
	endpoint Endpoint
	path     string
	params   url.Values
}

// prepare selects the endpoint and builds the request parameters.
// On the recent-only tier a timeline needs the user id, which may cost one lookup.
func (c *Client) prepare(ctx context.Context, req PageRequest) (listCall, error) {
	ep := SelectEndpoint(c.settings.UseSearchAll, req.Kind)

	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = 100
	}
	params := url.Values{
		"max_results":  {strconv.Itoa(clampMaxResults(maxResults))},
		"tweet.fields": {tweetFields},
	}
	if req.ExpandAuthors {
		params.Set("expansions", "author_id")
		params.Set("user.fields", userFields)
	}
	req.Window.apply(params)

	call := listCall{endpoint: ep, params: params}
	switch {
	case !ep.ByUserID:
		q := req.Query
		if req.Kind == QueryTimeline {
			q = AccountQuery(req.Username)
		}
		if q == "" {
			return listCall{}, fmt.Errorf("%s: empty query", ep.Name)
		}
		params.Set("query", req.Options.Apply(q))
		call.path = ep.URLPath("")

	default:
		userID := req.UserID
		if userID == "" {
			acc, err := c.GetUserByUsername(ctx, req.Username)
			if err != nil {
				return listCall{}, err
			}
			if acc == nil {
				return listCall{}, fmt.Errorf("timeline for %q: %w", req.Username, ErrUnknownUser)
			}
			userID = acc.ID
		}
		req.Options.applyTimeline(params)
		call.path = ep.URLPath(userID)
	}
	return call, nil
}

// fetch retrieves one page of a prepared listing.
func (c *Client) fetch(ctx context.Context, call listCall, cursor string) (Page, error) {
	params := call.params
	if cursor != "" {
		params = cloneValues(call.params)
		params.Set(call.endpoint.CursorParam, cursor)
	}
	resp, err := c.transport.Get(ctx, call.endpoint.Name, call.path, params)
	if err != nil {
		return Page{}, err
	}
	page, err := parseListPage(resp.Body)
	if err != nil {
		return Page{}, &APIError{Kind: KindDecode, Endpoint: call.endpoint.Name, Err: err}
	}
	page.FetchedAt = resp.At
	slog.Debug("page fetched",
		slog.String("endpoint", call.endpoint.Name),
		slog.Int("items", len(page.Posts)),
		slog.Bool("has_next", page.NextCursor != ""))
	return page, nil
}

// FetchPage retrieves a single page starting at cursor (empty for the first page).
func (c *Client) FetchPage(ctx context.Context, req PageRequest, cursor string) (Page, error) {
	call, err := c.prepare(ctx, req)
	if err != nil {
		return Page{}, err
	}
	return c.fetch(ctx, call, cursor)
}

// SearchAccounts surfaces accounts authoring posts that match query, deduplicated
// by id in first-seen order. limit caps the result (0 = no cap).
func (c *Client) SearchAccounts(ctx context.Context, query string, limit int) ([]Account, error) {
	page, err := c.FetchPage(ctx, PageRequest{
		Kind:          QuerySearch,
		Query:         query,
		MaxResults:    50,
		ExpandAuthors: true,
	}, "")
	if err != nil {
		return nil, fmt.Errorf("search accounts %q: %w", query, err)
	}
	return uniqueAuthors(page.Authors, limit), nil
}

// CountPosts returns the approximate number of posts matching query in window,
// taken from the first page's result_count.
func (c *Client) CountPosts(ctx context.Context, query string, window Window) (int, error) {
	page, err := c.FetchPage(ctx, PageRequest{Kind: QuerySearch, Query: query, Window: window}, "")
	if err != nil {
		return 0, fmt.Errorf("count posts %q: %w", query, err)
	}
	return page.ResultCount, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
