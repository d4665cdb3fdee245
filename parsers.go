package xcrawler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// apiUser is the v2 user object.
type apiUser struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Verified      bool   `json:"verified"`
	PublicMetrics struct {
		FollowersCount int `json:"followers_count"`
	} `json:"public_metrics"`
}

// apiTweet is the v2 tweet object.
type apiTweet struct {
	ID            string      `json:"id"`
	AuthorID      string      `json:"author_id"`
	Text          string      `json:"text"`
	CreatedAt     string      `json:"created_at"`
	PublicMetrics PostMetrics `json:"public_metrics"`
}

type apiProblem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

// listResponse is the shape shared by search and timeline responses.
type listResponse struct {
	Data     []apiTweet `json:"data"`
	Includes struct {
		Users []apiUser `json:"users"`
	} `json:"includes"`
	Meta struct {
		NextToken   string `json:"next_token"`
		ResultCount int    `json:"result_count"`
	} `json:"meta"`
	Errors []apiProblem `json:"errors"`
}

// parseUserLookup parses a users/by/username response. A missing user
// (data absent, errors present) returns nil without error.
func parseUserLookup(body []byte) (*Account, error) {
	var raw struct {
		Data   *apiUser     `json:"data"`
		Errors []apiProblem `json:"errors"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal user lookup: %w", err)
	}
	if raw.Data == nil || raw.Data.ID == "" {
		if len(raw.Errors) > 0 {
			slog.Debug("user lookup returned no data", slog.String("detail", raw.Errors[0].Detail))
		}
		return nil, nil
	}
	acc := toAccount(*raw.Data)
	return &acc, nil
}

// parseListPage parses a search or timeline response into a Page.
func parseListPage(body []byte) (Page, error) {
	var raw listResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Page{}, fmt.Errorf("unmarshal list page: %w", err)
	}
	if len(raw.Data) == 0 && len(raw.Errors) > 0 && raw.Meta.ResultCount == 0 {
		slog.Debug("list page carried errors", slog.String("title", raw.Errors[0].Title), slog.String("detail", raw.Errors[0].Detail))
	}

	page := Page{
		Posts:       make([]Post, 0, len(raw.Data)),
		Authors:     make([]Account, 0, len(raw.Includes.Users)),
		NextCursor:  raw.Meta.NextToken,
		ResultCount: raw.Meta.ResultCount,
	}
	for _, t := range raw.Data {
		page.Posts = append(page.Posts, toPost(t))
	}
	for _, u := range raw.Includes.Users {
		page.Authors = append(page.Authors, toAccount(u))
	}
	return page, nil
}

func toAccount(u apiUser) Account {
	return Account{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.Name,
		Verified:       u.Verified,
		FollowersCount: u.PublicMetrics.FollowersCount,
	}
}

func toPost(t apiTweet) Post {
	var createdAt time.Time
	if t.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
			createdAt = ts
		}
	}
	return Post{
		ID:        t.ID,
		AuthorID:  t.AuthorID,
		Text:      t.Text,
		CreatedAt: createdAt,
		Metrics:   t.PublicMetrics,
	}
}

// uniqueAuthors returns authors deduplicated by id in first-seen order, capped at limit (0 = no cap).
func uniqueAuthors(users []Account, limit int) []Account {
	seen := make(map[string]bool, len(users))
	var out []Account
	for _, u := range users {
		if u.ID == "" || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
