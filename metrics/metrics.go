package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values of api_requests_total.
const (
	OutcomeSuccess     = "success"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Collector holds the crawler's Prometheus metrics.
type Collector struct {
	// APIRequests counts HTTP attempts by endpoint and outcome.
	APIRequests *prometheus.CounterVec

	// BatchItems counts batch items by job and result (ok, skipped, aborted).
	BatchItems *prometheus.CounterVec

	// PostsFetched counts posts received from listing endpoints.
	PostsFetched prometheus.Counter
}

// New registers the collector's metrics on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		APIRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xcrawl_api_requests_total",
				Help: "HTTP attempts against the X API by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		BatchItems: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xcrawl_batch_items_total",
				Help: "Batch items processed by job and result",
			},
			[]string{"job", "result"},
		),
		PostsFetched: f.NewCounter(
			prometheus.CounterOpts{
				Name: "xcrawl_posts_fetched_total",
				Help: "Posts received from search and timeline endpoints",
			},
		),
	}
}

// Hook adapts the collector to xcrawler.ClientConfig.MetricsHook.
func (c *Collector) Hook() func(endpoint string, success, rateLimited bool) {
	return func(endpoint string, success, rateLimited bool) {
		outcome := OutcomeError
		switch {
		case success:
			outcome = OutcomeSuccess
		case rateLimited:
			outcome = OutcomeRateLimited
		}
		c.APIRequests.WithLabelValues(endpoint, outcome).Inc()
	}
}

// BatchItem records one processed batch item.
func (c *Collector) BatchItem(job, result string) {
	c.BatchItems.WithLabelValues(job, result).Inc()
}
