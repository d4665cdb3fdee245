package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	xcrawler "github.com/anatolykoptev/go-xcrawler"
	"github.com/anatolykoptev/go-xcrawler/batch"
	"github.com/anatolykoptev/go-xcrawler/internal/logging"
	"github.com/anatolykoptev/go-xcrawler/metrics"
	"github.com/anatolykoptev/go-xcrawler/quota"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command.
type options struct {
	logLevel       string
	logFormat      string
	recentOnly     bool
	nonInteractive bool
	metricsAddr    string
	quotaDB        string
	monthlyCap     int
	windowLimit    int
}

// app is the component graph of one command invocation.
type app struct {
	opts     *options
	client   *xcrawler.Client
	resolver *xcrawler.Resolver
	metrics  *metrics.Collector
	window   *quota.Window
	monthly  *quota.MonthlyStore
	server   *http.Server
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "xcrawl",
		Short:         "Crawl X posts and accounts for a list of organizations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(opts.logLevel, opts.logFormat)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	pf.BoolVar(&opts.recentOnly, "recent-only", false, "use the recent-search tier instead of full-archive search")
	pf.BoolVar(&opts.nonInteractive, "non-interactive", false, "never prompt; keep the top-ranked account")
	pf.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	pf.StringVar(&opts.quotaDB, "quota-db", "", "LevelDB directory tracking monthly post consumption")
	pf.IntVar(&opts.monthlyCap, "monthly-cap", 0, "stop content jobs once this many posts were fetched this month (0 = no cap)")
	pf.IntVar(&opts.windowLimit, "window-limit", 300, "requests allowed per 15-minute window, used for reporting")

	root.AddCommand(
		newPrepCmd(),
		newAccountsCmd(opts),
		newTweetsCmd(opts),
		newCountsCmd(opts),
		newBatchCmd(opts),
	)
	return root
}

// newApp loads settings and wires the client, resolver and quota trackers.
func newApp(ctx context.Context, opts *options) (*app, error) {
	s, err := xcrawler.LoadSettings()
	if err != nil {
		return nil, err
	}
	if opts.recentOnly {
		s.UseSearchAll = false
	}
	if s.BearerToken == "" && s.ConsumerKey != "" {
		if s, err = xcrawler.FetchAppToken(ctx, s); err != nil {
			return nil, err
		}
	}

	reg := prometheus.NewRegistry()
	a := &app{
		opts:    opts,
		metrics: metrics.New(reg),
		window:  quota.NewWindow(nil, quota.DefaultSpan),
	}
	record := a.metrics.Hook()
	hook := func(endpoint string, success, rateLimited bool) {
		a.window.Record()
		record(endpoint, success, rateLimited)
	}

	a.client, err = xcrawler.NewClient(xcrawler.ClientConfig{Settings: s, MetricsHook: hook})
	if err != nil {
		return nil, err
	}

	var disambiguate xcrawler.Disambiguator = xcrawler.DefaultDisambiguator
	if !opts.nonInteractive {
		disambiguate = promptDisambiguator(os.Stdin, os.Stdout)
	}
	a.resolver = xcrawler.NewResolver(a.client, xcrawler.ResolverConfig{Disambiguate: disambiguate})

	if opts.quotaDB != "" {
		if a.monthly, err = quota.OpenMonthly(opts.quotaDB); err != nil {
			return nil, err
		}
	}
	if opts.metricsAddr != "" {
		a.serveMetrics(reg)
	}
	return a, nil
}

func (a *app) serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	a.server = &http.Server{Addr: a.opts.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("serving metrics", slog.String("addr", a.opts.metricsAddr))
}

// runner builds a batch runner over the app's components.
func (a *app) runner(usernames map[string]string) *batch.Runner {
	return &batch.Runner{
		Source:     a.client,
		Resolver:   a.resolver,
		Usernames:  usernames,
		Monthly:    a.monthly,
		MonthlyCap: a.opts.monthlyCap,
		Metrics:    a.metrics,
	}
}

// Close logs quota usage and releases resources.
func (a *app) Close() {
	slog.Info("request window usage",
		slog.Int("used", a.window.Count()),
		slog.Int("remaining", a.window.Remaining(a.opts.windowLimit)))
	if a.monthly != nil {
		if err := a.monthly.Close(); err != nil {
			slog.Warn("close quota db", slog.Any("error", err))
		}
	}
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.server.Shutdown(ctx)
	}
}

// withApp runs fn with a freshly wired app.
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, opts)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Close()
	return fn(ctx, a)
}
