package xcrawler

import "time"

// Account is an X account profile as returned by the API.
type Account struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"name"`
	Verified       bool   `json:"verified"`
	FollowersCount int    `json:"followers_count"`
}

// PostMetrics are the public engagement counters of a post.
type PostMetrics struct {
	Likes    int `json:"like_count"`
	Retweets int `json:"retweet_count"`
	Replies  int `json:"reply_count"`
	Quotes   int `json:"quote_count"`
}

// Post is a single post.
type Post struct {
	ID        string      `json:"id"`
	AuthorID  string      `json:"author_id"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"created_at"`
	Metrics   PostMetrics `json:"public_metrics"`
}

// Page is one API response of a paginated listing.
type Page struct {
	Posts []Post
	// Authors holds the expanded author accounts in response order.
	Authors []Account
	// NextCursor is empty on the terminal page.
	NextCursor  string
	ResultCount int
	// FetchedAt is when the page arrived.
	FetchedAt time.Time
}

// AuthorByID returns the expanded author of a post, if present.
func (p Page) AuthorByID(id string) (Account, bool) {
	for _, a := range p.Authors {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// AccountInfo is the resolved, persisted mapping from an organization to its account.
// Optional fields are nil when unknown.
type AccountInfo struct {
	CompanyNormalized string
	TwitterID         *string
	Username          *string
	Name              *string
	Verified          *bool
}

// NewAccountInfo builds the record for a resolved account. acc may be nil.
func NewAccountInfo(companyNormalized string, acc *Account) AccountInfo {
	info := AccountInfo{CompanyNormalized: companyNormalized}
	if acc == nil {
		return info
	}
	id, username, name, verified := acc.ID, acc.Username, acc.DisplayName, acc.Verified
	info.TwitterID = &id
	info.Username = &username
	info.Name = &name
	info.Verified = &verified
	return info
}

// ScoredPost is a post with its sentiment, ready for export.
type ScoredPost struct {
	Company   string
	Post      Post
	Username  string
	Sentiment float64
}
