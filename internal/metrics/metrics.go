// Package metrics provides Prometheus instrumentation for the Buzzy events
// application. It exposes counters for submissions and moderation verdicts,
// histograms for check latency, and gauges for live notifier subscribers.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SubmissionsTotal counts submissions through the API, labeled by kind
	// ("event", "feedback", "report", "rsvp") and outcome ("accepted",
	// "rejected", "rate_limited", "suspended").
	SubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "buzzy_submissions_total",
		Help: "Total number of submissions processed",
	}, []string{"kind", "outcome"})

	// ModerationChecksTotal counts moderation checks, labeled by verdict:
	// "clean", "flagged", or "spam".
	ModerationChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "buzzy_moderation_checks_total",
		Help: "Total number of moderation checks performed",
	}, []string{"verdict"})

	// ModerationCheckLatency records moderation check latency in seconds.
	ModerationCheckLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "buzzy_moderation_check_latency_seconds",
		Help:    "Moderation check latency in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
	})

	// NotifierSubscribers tracks the current number of connected notifier clients.
	NotifierSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "buzzy_notifier_subscribers",
		Help: "Current number of connected notifier WebSocket clients",
	})

	// EventsCleanedTotal counts events removed by the expiry janitor.
	EventsCleanedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "buzzy_events_cleaned_total",
		Help: "Total number of expired events removed",
	})

	// EventsHiddenTotal counts events auto-hidden after report escalation.
	EventsHiddenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "buzzy_events_hidden_total",
		Help: "Total number of events hidden after abuse reports",
	})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		ModerationChecksTotal,
		ModerationCheckLatency,
		NotifierSubscribers,
		EventsCleanedTotal,
		EventsHiddenTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
