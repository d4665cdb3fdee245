// Package batch runs resolution, count and content jobs over many organizations
// with per-item fault isolation.
package batch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	xcrawler "github.com/anatolykoptev/go-xcrawler"
	"github.com/anatolykoptev/go-xcrawler/internal/logging"
	"github.com/anatolykoptev/go-xcrawler/metrics"
	"github.com/anatolykoptev/go-xcrawler/quota"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultMaxPause bounds the wait after rate-limit exhaustion.
const DefaultMaxPause = 15 * time.Minute

// ErrMonthlyCapReached aborts a content job once the monthly post allowance is used.
var ErrMonthlyCapReached = errors.New("monthly post cap reached")

// Resolver resolves one organization name.
type Resolver interface {
	ResolveInfo(ctx context.Context, name string) (xcrawler.AccountInfo, error)
}

// Source lists and counts posts.
type Source interface {
	Stream(ctx context.Context, req xcrawler.PageRequest) iter.Seq2[xcrawler.Post, error]
	CountPosts(ctx context.Context, query string, window xcrawler.Window) (int, error)
}

// Runner executes batch jobs. Zero-valued optional fields are skipped.
type Runner struct {
	Source   Source
	Resolver Resolver

	// Usernames maps normalized company names to known usernames. Companies
	// missing here fall back to xcrawler.CandidateUsername.
	Usernames map[string]string

	// Monthly, when set, caps the posts a content job may pull per month.
	Monthly    *quota.MonthlyStore
	MonthlyCap int

	Metrics *metrics.Collector
	Logger  *slog.Logger
	Clock   clockwork.Clock

	// MaxPause bounds the wait before retrying a rate-limited item. Default: DefaultMaxPause.
	MaxPause time.Duration
}

// Result is the outcome of one input item.
type Result[T any] struct {
	Input string
	Value T
	Err   error
}

// Report holds one result per input, in input order.
type Report[T any] struct {
	RunID     string
	Results   []Result[T]
	Succeeded int
	Failed    int
}

// Values returns the values of all items, including partial values of failed ones.
func (r Report[T]) Values() []T {
	out := make([]T, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Value
	}
	return out
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) clock() clockwork.Clock {
	if r.Clock != nil {
		return r.Clock
	}
	return clockwork.NewRealClock()
}

func (r *Runner) maxPause() time.Duration {
	if r.MaxPause > 0 {
		return r.MaxPause
	}
	return DefaultMaxPause
}

func (r *Runner) count(job, result string) {
	if r.Metrics != nil {
		r.Metrics.BatchItem(job, result)
	}
}

// run applies do to every input. Item errors are recorded and skipped.
// Auth and configuration failures abort, as does a rate limit that persists
// after one pause and retry. The aborted item and everything after it stay
// in the report with the abort error. kept, if set, sees each value that ends
// up in the report, once per item; values of a retried first attempt are not shown.
func run[T any](ctx context.Context, r *Runner, job string, inputs []string, do func(ctx context.Context, i int) (T, error), kept func(T)) (Report[T], error) {
	rep := Report[T]{RunID: uuid.NewString(), Results: make([]Result[T], len(inputs))}
	log := logging.WithRun(r.logger(), rep.RunID).With(slog.String("job", job))
	log.Info("batch started", slog.Int("items", len(inputs)))

	abort := func(from int, err error) (Report[T], error) {
		for j := from; j < len(inputs); j++ {
			if rep.Results[j].Err == nil {
				rep.Results[j].Input = inputs[j]
				rep.Results[j].Err = err
			}
		}
		rep.Failed += len(inputs) - from
		r.count(job, "aborted")
		log.Error("batch aborted", slog.Int("at", from), slog.Any("error", err))
		return rep, err
	}

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return abort(i, err)
		}

		v, err := do(ctx, i)
		if err != nil && xcrawler.IsRateLimited(err) {
			pause := r.pauseFor(err)
			log.Warn("rate limit exhausted, pausing",
				slog.String("input", in), slog.Duration("pause", pause))
			if serr := r.sleep(ctx, pause); serr != nil {
				return abort(i, serr)
			}
			v, err = do(ctx, i)
		}
		rep.Results[i] = Result[T]{Input: in, Value: v, Err: err}
		if kept != nil {
			kept(v)
		}

		switch {
		case err == nil:
			rep.Succeeded++
			r.count(job, "ok")
		case xcrawler.IsFatal(err), xcrawler.IsRateLimited(err), errors.Is(err, ErrMonthlyCapReached),
			errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return abort(i, err)
		default:
			rep.Failed++
			r.count(job, "skipped")
			log.Warn("item skipped", slog.String("input", in), slog.Any("error", err))
		}
	}

	log.Info("batch finished", slog.Int("succeeded", rep.Succeeded), slog.Int("failed", rep.Failed))
	return rep, nil
}

// pauseFor waits until the server-reported reset when known, else MaxPause.
func (r *Runner) pauseFor(err error) time.Duration {
	limit := r.maxPause()
	var apiErr *xcrawler.APIError
	if errors.As(err, &apiErr) && !apiErr.Reset.IsZero() {
		d := apiErr.Reset.Sub(r.clock().Now())
		return min(max(d, 0), limit)
	}
	return limit
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-r.clock().After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ResolveAll resolves every name. Unresolved names yield records with only
// CompanyNormalized set and count as successes.
func (r *Runner) ResolveAll(ctx context.Context, names []string) (Report[xcrawler.AccountInfo], error) {
	if r.Resolver == nil {
		return Report[xcrawler.AccountInfo]{}, errors.New("batch: no resolver configured")
	}
	return run(ctx, r, "accounts", names, func(ctx context.Context, i int) (xcrawler.AccountInfo, error) {
		return r.Resolver.ResolveInfo(ctx, names[i])
	}, nil)
}

// username returns the account queried for a company.
func (r *Runner) username(company string) (string, error) {
	norm := xcrawler.NormalizeName(company)
	if u, ok := r.Usernames[norm]; ok && u != "" {
		return u, nil
	}
	if u := xcrawler.CandidateUsername(norm); u != "" {
		return u, nil
	}
	return "", fmt.Errorf("no username for %q", norm)
}

func companies[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}
