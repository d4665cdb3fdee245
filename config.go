package xcrawler

import (
	"errors"
	"fmt"
	"time"
)

// DefaultBaseURL is the X API v2 root.
const DefaultBaseURL = "https://api.x.com/2"

// Settings is the configuration snapshot shared by every component of a session.
// Components copy it at construction; changing settings means building a new Client.
type Settings struct {
	// BearerToken authenticates every request. May be empty until FetchAppToken fills it.
	BearerToken string

	// UseSearchAll selects the full-history search endpoint (requires the full-archive plan tier).
	UseSearchAll bool

	// MaxRetries is the number of retries after the first attempt for 429 and 5xx responses.
	MaxRetries int

	// BaseDelay and MaxDelay bound the exponential backoff between retries.
	// A zero BaseDelay retries without waiting.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// RequestsPerMinute sets the minimum spacing between requests.
	RequestsPerMinute int

	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// RequestTimeout bounds a single HTTP attempt.
	RequestTimeout time.Duration

	// NetworkRetries and NetworkRetryDelay govern retries of transport-level failures
	// (connection reset, timeout, TLS) which never produced an HTTP status.
	// Zero NetworkRetries fails on the first transport error.
	NetworkRetries    int
	NetworkRetryDelay time.Duration

	// Proxy is an optional proxy URL for the default stealth client.
	Proxy string

	// ConsumerKey and ConsumerSecret allow fetching an app-only bearer token.
	ConsumerKey    string
	ConsumerSecret string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	s := Settings{
		UseSearchAll:   true,
		MaxRetries:     5,
		BaseDelay:      1500 * time.Millisecond,
		NetworkRetries: 2,
	}
	s.defaults()
	return s
}

// defaults fills in zero-value fields with sensible defaults.
// MaxRetries, UseSearchAll, BaseDelay and NetworkRetries are left alone since
// their zero values are valid settings; DefaultSettings and LoadSettings supply them.
func (s *Settings) defaults() {
	if s.MaxDelay == 0 {
		s.MaxDelay = 60 * time.Second
	}
	if s.RequestsPerMinute == 0 {
		s.RequestsPerMinute = 30
	}
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = 30 * time.Second
	}
	if s.NetworkRetryDelay == 0 {
		s.NetworkRetryDelay = 2 * time.Second
	}
}

// Validate checks the invariants of a settings snapshot.
func (s Settings) Validate() error {
	var errs []error
	if s.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max retries must be >= 0, got %d", s.MaxRetries))
	}
	if s.BaseDelay < 0 || s.MaxDelay < 0 {
		errs = append(errs, errors.New("backoff delays must be >= 0"))
	}
	if s.BaseDelay > s.MaxDelay {
		errs = append(errs, fmt.Errorf("base delay %s exceeds max delay %s", s.BaseDelay, s.MaxDelay))
	}
	if s.RequestsPerMinute < 1 {
		errs = append(errs, fmt.Errorf("requests per minute must be >= 1, got %d", s.RequestsPerMinute))
	}
	if s.NetworkRetries < 0 {
		errs = append(errs, fmt.Errorf("network retries must be >= 0, got %d", s.NetworkRetries))
	}
	return errors.Join(errs...)
}

