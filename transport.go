package xcrawler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// Response is one successful API response.
type Response struct {
	Body   []byte
	Header map[string]string
	Status int
	// At is when the response arrived; callers use it for quota accounting.
	At time.Time
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &APIError{Kind: KindDecode, Status: r.Status, Detail: truncateBytes(r.Body, 200), Err: err}
	}
	return nil
}

// Transport issues rate-limited GET requests with bounded retries.
type Transport struct {
	settings    Settings
	doer        Doer
	limiter     *RateLimiter
	endpoints   *ratelimit.Limiter
	metricsHook func(endpoint string, success, rateLimited bool)
}

// NewTransport wires a transport. limiter may be shared across transports.
func NewTransport(s Settings, doer Doer, limiter *RateLimiter) *Transport {
	s.defaults()
	if limiter == nil {
		limiter = NewRateLimiter(s.RequestsPerMinute)
	}
	return &Transport{
		settings:  s,
		doer:      doer,
		limiter:   limiter,
		endpoints: ratelimit.NewLimiter(ratelimit.DefaultConfig),
	}
}

// backoff returns min(base * 2^attempt, max) for the zero-based failed attempt.
func (t *Transport) backoff(attempt int) time.Duration {
	return stealth.BackoffConfig{
		InitialWait: t.settings.BaseDelay,
		MaxWait:     t.settings.MaxDelay,
		Multiplier:  2.0,
	}.Duration(attempt)
}

// Get performs GET {BaseURL}{path}?{params}. endpoint labels the call in logs,
// metrics and per-endpoint reset tracking.
func (t *Transport) Get(ctx context.Context, endpoint, path string, params url.Values) (*Response, error) {
	fullURL := t.settings.BaseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}
	headers := apiHeaders(t.settings.BearerToken)

	attempts := t.settings.MaxRetries + 1
	networkFailures := 0
	var lastStatus int
	var lastBody []byte
	var lastHdrs map[string]string

	for attempt := 0; attempt < attempts; {
		if err := t.limiter.AwaitTurn(ctx); err != nil {
			return nil, err
		}

		body, respHdrs, status, err := t.doer.Do(ctx, "GET", fullURL, headers)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			networkFailures++
			if networkFailures > t.settings.NetworkRetries {
				t.recordAPICall(endpoint, false, false)
				return nil, &APIError{Kind: KindNetwork, Endpoint: endpoint, Detail: fmt.Sprintf("gave up after %d network failures", networkFailures), Err: err}
			}
			slog.Warn("network error, retrying",
				slog.String("endpoint", endpoint),
				slog.Int("failures", networkFailures),
				slog.Any("error", err))
			if err := sleepCtx(ctx, t.settings.NetworkRetryDelay); err != nil {
				return nil, err
			}
			continue
		}

		switch classifyStatus(status) {
		case attemptOK:
			t.recordAPICall(endpoint, true, false)
			return &Response{Body: body, Header: respHdrs, Status: status, At: time.Now()}, nil

		case attemptPermanent:
			t.recordAPICall(endpoint, false, false)
			return nil, &APIError{Kind: statusKind[status], Status: status, Endpoint: endpoint, Detail: truncateBytes(body, 200)}

		case attemptUnexpected:
			t.recordAPICall(endpoint, false, false)
			return nil, &APIError{Kind: KindHTTP, Status: status, Endpoint: endpoint, Detail: truncateBytes(body, 200)}

		case attemptRateLimited:
			t.recordAPICall(endpoint, false, true)
			if reset := parseRateLimitReset(respHdrs["x-rate-limit-reset"]); !reset.IsZero() {
				t.endpoints.MarkRateLimited(endpoint, reset)
			}

		case attemptServerError:
			t.recordAPICall(endpoint, false, false)
		}

		lastStatus, lastBody, lastHdrs = status, body, respHdrs
		attempt++
		if attempt >= attempts {
			break
		}

		delay := t.backoff(attempt - 1)
		slog.Warn("retryable status, backing off",
			slog.String("endpoint", endpoint),
			slog.Int("status", status),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", delay))
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
	}

	if lastStatus == 429 {
		return nil, &APIError{
			Kind:      KindRateLimit,
			Status:    429,
			Endpoint:  endpoint,
			Detail:    fmt.Sprintf("gave up after %d attempts", attempts),
			Remaining: lastHdrs["x-rate-limit-remaining"],
			Reset:     parseRateLimitReset(lastHdrs["x-rate-limit-reset"]),
			Err:       ErrRateLimitExceeded,
		}
	}
	return nil, &APIError{Kind: KindServer, Status: lastStatus, Endpoint: endpoint, Detail: truncateBytes(lastBody, 200)}
}

// EndpointAvailableAt returns the last server-reported reset for endpoint, or
// the zero time when the endpoint has not been rate limited.
func (t *Transport) EndpointAvailableAt(endpoint string) time.Time {
	if !t.endpoints.IsRateLimited(endpoint) {
		return time.Time{}
	}
	return t.endpoints.AvailableAt(endpoint)
}

// recordAPICall calls the metrics hook if configured.
func (t *Transport) recordAPICall(endpoint string, success, rateLimited bool) {
	if t.metricsHook != nil {
		t.metricsHook(endpoint, success, rateLimited)
	}
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
