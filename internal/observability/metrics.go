// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Chart lifecycle metrics
	ChartsMounted  prometheus.Gauge
	MountsTotal    *prometheus.CounterVec
	ChartErrors    *prometheus.CounterVec
	FramesRendered prometheus.Counter

	// Backfill metrics
	BackfillDuration *prometheus.HistogramVec
	BackfillPoints   prometheus.Histogram

	// Transport metrics
	TicksReceived        *prometheus.CounterVec
	TicksDropped         *prometheus.CounterVec
	TransportTransitions *prometheus.CounterVec
	PollsTotal           *prometheus.CounterVec
	AnimationsStarted    prometheus.Counter

	// Market data API metrics
	APICallLatency *prometheus.HistogramVec
	APICallErrors  *prometheus.CounterVec

	// Resolver metrics
	ResolverLookups *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_price_chart"
	}

	return &Metrics{
		ChartsMounted: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "mounted",
			Help:      "Number of currently mounted charts",
		}),
		MountsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "mounts_total",
			Help:      "Total number of chart mount cycles by outcome",
		}, []string{"outcome"}),
		ChartErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "errors_total",
			Help:      "Total number of user-visible chart errors by kind",
		}, []string{"kind"}),
		FramesRendered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "animation_frames_total",
			Help:      "Total number of animation frames written to charts",
		}),

		BackfillDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backfill",
			Name:      "duration_seconds",
			Help:      "Historical backfill duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		BackfillPoints: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backfill",
			Name:      "points",
			Help:      "Number of points produced by a successful backfill",
			Buckets:   []float64{0, 10, 25, 50, 75, 100, 250, 500},
		}),

		TicksReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "ticks_received_total",
			Help:      "Total number of valid ticks delivered by source",
		}, []string{"source"}),
		TicksDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "ticks_dropped_total",
			Help:      "Total number of dropped ticks by reason",
		}, []string{"reason"}),
		TransportTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "transitions_total",
			Help:      "Total number of transport state transitions",
		}, []string{"from", "to"}),
		PollsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "polls_total",
			Help:      "Total number of fallback polls by status",
		}, []string{"status"}),
		AnimationsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "animations_started_total",
			Help:      "Total number of value interpolations started",
		}),

		APICallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "call_latency_seconds",
			Help:      "Market data API call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		APICallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "call_errors_total",
			Help:      "Total number of failed market data API calls",
		}, []string{"endpoint"}),

		ResolverLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "lookups_total",
			Help:      "Total number of token pool lookups by where they were answered",
		}, []string{"layer"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordMount records the outcome of a mount cycle.
func RecordMount(outcome string) {
	DefaultMetrics.MountsTotal.WithLabelValues(outcome).Inc()
}

// ChartMounted adjusts the mounted charts gauge.
func ChartMounted(delta float64) {
	DefaultMetrics.ChartsMounted.Add(delta)
}

// RecordChartError records a user-visible chart error.
func RecordChartError(kind string) {
	DefaultMetrics.ChartErrors.WithLabelValues(kind).Inc()
}

// RecordFrame increments the animation frames counter.
func RecordFrame() {
	DefaultMetrics.FramesRendered.Inc()
}

// RecordAnimation increments the animations started counter.
func RecordAnimation() {
	DefaultMetrics.AnimationsStarted.Inc()
}

// RecordBackfill records a backfill run.
func RecordBackfill(status string, seconds float64, points int) {
	DefaultMetrics.BackfillDuration.WithLabelValues(status).Observe(seconds)
	if status == "success" {
		DefaultMetrics.BackfillPoints.Observe(float64(points))
	}
}

// RecordTick records a delivered tick.
func RecordTick(source string) {
	DefaultMetrics.TicksReceived.WithLabelValues(source).Inc()
}

// RecordTickDropped records a dropped tick.
func RecordTickDropped(reason string) {
	DefaultMetrics.TicksDropped.WithLabelValues(reason).Inc()
}

// RecordTransition records a transport state change.
func RecordTransition(from, to string) {
	DefaultMetrics.TransportTransitions.WithLabelValues(from, to).Inc()
}

// RecordPoll records a fallback poll.
func RecordPoll(status string) {
	DefaultMetrics.PollsTotal.WithLabelValues(status).Inc()
}

// RecordAPICall records market data API call metrics.
func RecordAPICall(endpoint string, seconds float64, err error) {
	DefaultMetrics.APICallLatency.WithLabelValues(endpoint).Observe(seconds)
	if err != nil {
		DefaultMetrics.APICallErrors.WithLabelValues(endpoint).Inc()
	}
}

// RecordResolverLookup records which layer answered a pool lookup.
func RecordResolverLookup(layer string) {
	DefaultMetrics.ResolverLookups.WithLabelValues(layer).Inc()
}
