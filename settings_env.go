package xcrawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
	"golang.org/x/oauth2/clientcredentials"
)

// envSettings mirrors Settings with the environment variable names of the CLI.
type envSettings struct {
	BearerToken       string  `env:"TWITTER_BEARER_TOKEN"`
	UseSearchAll      bool    `env:"USE_SEARCH_ALL" default:"true"`
	MaxRetries        int     `env:"RATE_LIMIT_MAX_RETRIES" default:"5"`
	BaseDelaySeconds  float64 `env:"RATE_LIMIT_BASE_DELAY_SECONDS" default:"1.5"`
	MaxDelaySeconds   float64 `env:"RATE_LIMIT_MAX_DELAY_SECONDS" default:"60"`
	RequestsPerMinute int     `env:"REQUESTS_PER_MINUTE" default:"30"`
	NetworkRetries    int     `env:"NETWORK_RETRIES" default:"2"`
	BaseURL           string  `env:"TWITTER_API_BASE_URL"`
	Proxy             string  `env:"TWITTER_PROXY"`
	ConsumerKey       string  `env:"TWITTER_CONSUMER_KEY"`
	ConsumerSecret    string  `env:"TWITTER_CONSUMER_SECRET"`
}

// LoadSettings builds Settings from a .env file (if present) and the process environment.
// It is the only place the library reads the environment.
func LoadSettings() (Settings, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	var e envSettings
	if err := env.Load(&e, nil); err != nil {
		return Settings{}, fmt.Errorf("load environment: %w", err)
	}

	s := Settings{
		BearerToken:       e.BearerToken,
		UseSearchAll:      e.UseSearchAll,
		MaxRetries:        e.MaxRetries,
		BaseDelay:         seconds(e.BaseDelaySeconds),
		MaxDelay:          seconds(e.MaxDelaySeconds),
		RequestsPerMinute: e.RequestsPerMinute,
		NetworkRetries:    e.NetworkRetries,
		BaseURL:           e.BaseURL,
		Proxy:             e.Proxy,
		ConsumerKey:       e.ConsumerKey,
		ConsumerSecret:    e.ConsumerSecret,
	}
	s.defaults()
	if err := s.Validate(); err != nil {
		return Settings{}, &APIError{Kind: KindConfig, Detail: err.Error(), Err: err}
	}
	return s, nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// appTokenURL is the OAuth2 client-credentials endpoint for app-only bearer tokens.
const appTokenURL = "https://api.x.com/oauth2/token"

// FetchAppToken returns a copy of s with BearerToken filled from the consumer key/secret
// via the client-credentials grant. Settings that already carry a token are returned as-is.
func FetchAppToken(ctx context.Context, s Settings) (Settings, error) {
	if s.BearerToken != "" {
		return s, nil
	}
	if s.ConsumerKey == "" || s.ConsumerSecret == "" {
		return s, &APIError{Kind: KindConfig, Detail: "no bearer token and no consumer key/secret configured"}
	}
	cc := clientcredentials.Config{
		ClientID:     s.ConsumerKey,
		ClientSecret: s.ConsumerSecret,
		TokenURL:     appTokenURL,
	}
	tok, err := cc.Token(ctx)
	if err != nil {
		return s, &APIError{Kind: KindAuth, Detail: "client credentials exchange failed", Err: err}
	}
	s.BearerToken = tok.AccessToken
	slog.Info("app-only bearer token acquired")
	return s, nil
}
