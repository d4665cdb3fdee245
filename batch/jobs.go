package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	xcrawler "github.com/anatolykoptev/go-xcrawler"
	"github.com/anatolykoptev/go-xcrawler/quota"
	"github.com/anatolykoptev/go-xcrawler/sentiment"
	"github.com/anatolykoptev/go-xcrawler/store"
)

// DefaultCountSpan is the ± day span of CountAll's wide window.
const DefaultCountSpan = 180

// Counts is the CountAll result of one company.
type Counts struct {
	Company     string
	Date        time.Time
	CountDay    int
	CountWindow int
}

// Row converts c to its export form.
func (c Counts) Row() store.CountRow {
	return store.CountRow{Company: c.Company, Date: c.Date, CountDay: c.CountDay, CountWindow: c.CountWindow}
}

// CountAll counts each company's original posts (replies excluded) on its
// date and within ±span days of it. Zero span means DefaultCountSpan.
func (r *Runner) CountAll(ctx context.Context, items []store.DatedCompany, span int) (Report[Counts], error) {
	if span <= 0 {
		span = DefaultCountSpan
	}
	names := companies(items, func(d store.DatedCompany) string { return d.Company })
	return run(ctx, r, "counts", names, func(ctx context.Context, i int) (Counts, error) {
		it := items[i]
		c := Counts{Company: xcrawler.NormalizeName(it.Company), Date: it.Date}
		u, err := r.username(it.Company)
		if err != nil {
			return c, err
		}
		q := xcrawler.QueryOptions{ExcludeReplies: true}.Apply(xcrawler.AccountQuery(u))

		if c.CountDay, err = r.Source.CountPosts(ctx, q, xcrawler.DayOf(it.Date)); err != nil {
			return c, err
		}
		if c.CountWindow, err = r.Source.CountPosts(ctx, q, xcrawler.Around(it.Date, span)); err != nil {
			return c, err
		}
		return c, nil
	}, nil)
}

// FetchContents pulls every post of each company within ±days of its date and
// scores its sentiment. A stream that fails midway keeps the posts already
// received in the item's value.
func (r *Runner) FetchContents(ctx context.Context, items []store.DatedCompany, days int) (Report[[]xcrawler.ScoredPost], error) {
	names := companies(items, func(d store.DatedCompany) string { return d.Company })
	return run(ctx, r, "contents", names, func(ctx context.Context, i int) ([]xcrawler.ScoredPost, error) {
		it := items[i]
		if err := r.checkMonthly(); err != nil {
			return nil, err
		}
		u, err := r.username(it.Company)
		if err != nil {
			return nil, err
		}

		company := xcrawler.NormalizeName(it.Company)
		var out []xcrawler.ScoredPost
		req := xcrawler.PageRequest{
			Kind:     xcrawler.QueryTimeline,
			Username: u,
			Window:   xcrawler.Around(it.Date, days),
		}
		for p, err := range r.Source.Stream(ctx, req) {
			if err != nil {
				return out, fmt.Errorf("contents for %s: %w", company, err)
			}
			out = append(out, xcrawler.ScoredPost{
				Company:   company,
				Post:      p,
				Username:  u,
				Sentiment: sentiment.Score(p.Text),
			})
		}
		return out, nil
	}, func(kept []xcrawler.ScoredPost) { r.addMonthly(len(kept)) })
}

func (r *Runner) checkMonthly() error {
	if r.Monthly == nil {
		return nil
	}
	month := quota.MonthKey(r.clock().Now())
	over, err := r.Monthly.Exceeds(month, r.MonthlyCap)
	if err != nil {
		return err
	}
	if over {
		return fmt.Errorf("%s: %w", month, ErrMonthlyCapReached)
	}
	return nil
}

func (r *Runner) addMonthly(n int) {
	if r.Metrics != nil {
		r.Metrics.PostsFetched.Add(float64(n))
	}
	if r.Monthly == nil || n == 0 {
		return
	}
	if _, err := r.Monthly.Add(quota.MonthKey(r.clock().Now()), n); err != nil {
		r.logger().Warn("monthly quota update failed", slog.Any("error", err))
	}
}
