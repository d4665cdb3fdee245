package xcrawler

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrorKind classifies failures of the access layer.
type ErrorKind int

const (
	KindHTTP          ErrorKind = iota // unexpected non-2xx status
	KindAuth                           // 401, bad or missing token
	KindForbidden                      // 403, plan tier or permission
	KindNotFound                       // 404
	KindNotAcceptable                  // 406
	KindGone                           // 410
	KindRateLimit                      // 429 after all retries
	KindServer                         // 5xx after all retries
	KindNetwork                        // no HTTP response
	KindConfig                         // invalid settings
	KindDecode                         // response body did not parse
)

var kindNames = map[ErrorKind]string{
	KindHTTP:          "http",
	KindAuth:          "auth",
	KindForbidden:     "forbidden",
	KindNotFound:      "not_found",
	KindNotAcceptable: "not_acceptable",
	KindGone:          "gone",
	KindRateLimit:     "rate_limit",
	KindServer:        "server",
	KindNetwork:       "network",
	KindConfig:        "config",
	KindDecode:        "decode",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

var (
	// ErrRateLimitExceeded is wrapped by every KindRateLimit error.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrCursorRepeated reports a server cursor that was already consumed in this run.
	ErrCursorRepeated = errors.New("pagination cursor repeated")
)

// APIError is returned by every failed access-layer call.
type APIError struct {
	Kind     ErrorKind
	Status   int
	Endpoint string
	Detail   string

	// Remaining and Reset come from x-rate-limit-* headers when the server sent them.
	Remaining string
	Reset     time.Time

	Err error
}

func (e *APIError) Error() string {
	msg := e.Kind.String()
	if e.Endpoint != "" {
		msg = e.Endpoint + ": " + msg
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Kind == KindRateLimit {
		if e.Remaining != "" {
			msg += " remaining=" + e.Remaining
		}
		if !e.Reset.IsZero() {
			msg += " reset=" + e.Reset.UTC().Format(time.RFC3339)
		}
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil && e.Kind != KindRateLimit {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

// statusKind maps statuses that are never retried.
var statusKind = map[int]ErrorKind{
	401: KindAuth,
	403: KindForbidden,
	404: KindNotFound,
	406: KindNotAcceptable,
	410: KindGone,
}

// attemptClass is the decision taken after one HTTP attempt.
type attemptClass int

const (
	attemptOK attemptClass = iota
	attemptPermanent
	attemptRateLimited
	attemptServerError
	attemptUnexpected
)

// classifyStatus decides how the retry loop treats a response status.
func classifyStatus(status int) attemptClass {
	if _, ok := statusKind[status]; ok {
		return attemptPermanent
	}
	switch {
	case status == 429:
		return attemptRateLimited
	case status >= 500 && status <= 599:
		return attemptServerError
	case status >= 200 && status <= 299:
		return attemptOK
	default:
		return attemptUnexpected
	}
}

// IsFatal reports whether err should abort a whole batch (auth or configuration).
func IsFatal(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == KindAuth || apiErr.Kind == KindConfig
}

// IsRateLimited reports whether err is rate-limit exhaustion.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

// IsNotFound reports a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// parseRateLimitReset parses the x-rate-limit-reset unix timestamp header.
// The zero time means the header was missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0)
	}
	return time.Time{}
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
