package xcrawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Doer executes one HTTP request and returns the body, lower-cased response
// headers and status. A non-nil error means no HTTP response was obtained.
type Doer interface {
	Do(ctx context.Context, method, url string, headers map[string]string) ([]byte, map[string]string, int, error)
}

// stealthDoer runs requests through a go-stealth browser client.
type stealthDoer struct {
	client  *stealth.BrowserClient
	timeout time.Duration
}

// NewStealthDoer builds the default Doer. proxy may be empty.
func NewStealthDoer(proxy string, timeout time.Duration) (Doer, error) {
	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(apiHeaderOrder),
	}
	if proxy != "" {
		opts = append(opts, stealth.WithProxy(proxy))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}
	return &stealthDoer{client: bc, timeout: timeout}, nil
}

type doResult struct {
	body    []byte
	headers map[string]string
	status  int
	err     error
}

// Do bounds the browser client call by the timeout and ctx. The client itself
// takes no context, so an abandoned call finishes in the background.
func (d *stealthDoer) Do(ctx context.Context, method, url string, headers map[string]string) ([]byte, map[string]string, int, error) {
	ch := make(chan doResult, 1)
	go func() {
		body, hdrs, status, err := d.client.DoWithHeaderOrder(method, url, headers, nil, apiHeaderOrder)
		ch <- doResult{body: body, headers: hdrs, status: status, err: err}
	}()

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.body, r.headers, r.status, r.err
	case <-timer.C:
		return nil, nil, 0, fmt.Errorf("request timeout after %s", d.timeout)
	case <-ctx.Done():
		return nil, nil, 0, ctx.Err()
	}
}

// httpDoer adapts a net/http client.
type httpDoer struct {
	client *http.Client
}

// NewHTTPDoer wraps an *http.Client as a Doer. A nil client gets a 30s timeout.
func NewHTTPDoer(client *http.Client) Doer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &httpDoer{client: client}
}

func (d *httpDoer) Do(ctx context.Context, method, url string, headers map[string]string) ([]byte, map[string]string, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, nil, 0, err
	}
	for k, v := range headers {
		// net/http negotiates compression itself.
		if k == "accept-encoding" {
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("read body: %w", err)
	}

	hdrs := make(map[string]string, len(resp.Header))
	for k, vs := range resp.Header {
		hdrs[strings.ToLower(k)] = strings.Join(vs, ", ")
	}
	return body, hdrs, resp.StatusCode, nil
}
