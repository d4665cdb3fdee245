package xcrawler

import (
	"context"
	"sync"
	"time"
)

type stubResp struct {
	status int
	body   string
	hdrs   map[string]string
	err    error
}

// stubDoer replays a script of responses; the last one repeats.
type stubDoer struct {
	mu      sync.Mutex
	script  []stubResp
	calls   int
	urls    []string
	headers []map[string]string
}

func (d *stubDoer) Do(_ context.Context, _, url string, headers map[string]string) ([]byte, map[string]string, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := min(d.calls, len(d.script)-1)
	d.calls++
	d.urls = append(d.urls, url)
	d.headers = append(d.headers, headers)
	r := d.script[i]
	if r.err != nil {
		return nil, nil, 0, r.err
	}
	return []byte(r.body), r.hdrs, r.status, nil
}

func (d *stubDoer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// fastSettings keeps retries and spacing in the millisecond range.
func fastSettings() Settings {
	return Settings{
		BearerToken:       "tok",
		UseSearchAll:      true,
		MaxRetries:        5,
		BaseDelay:         time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		RequestsPerMinute: 600000,
		BaseURL:           "https://api.test/2",
		RequestTimeout:    time.Second,
		NetworkRetries:    1,
		NetworkRetryDelay: time.Millisecond,
	}
}

func repeat(r stubResp, n int) []stubResp {
	out := make([]stubResp, n)
	for i := range out {
		out[i] = r
	}
	return out
}
