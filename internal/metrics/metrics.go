// Package metrics provides Prometheus instrumentation for the moderation
// engine: decision counters by action, detector firings, report intake,
// and evaluation latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Decisions counts moderation verdicts, labeled by the enforcement
	// action: "allow", "warn", "filter", "block".
	Decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tangle_moderation_decisions_total",
		Help: "Total moderation decisions by enforcement action",
	}, []string{"action"})

	// DetectorFirings counts confirmed violations per detector.
	DetectorFirings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tangle_moderation_detector_firings_total",
		Help: "Total confirmed violations by detector",
	}, []string{"detector"})

	// MissedPenalties counts reputation-ledger writes that failed after a
	// violation was confirmed. Each one is a penalty the user never took.
	MissedPenalties = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tangle_moderation_missed_penalties_total",
		Help: "Total reputation penalties lost to ledger write failures",
	})

	// ReportsTotal counts report intake, labeled by category and the
	// status the report ended intake with ("pending" or "resolved").
	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tangle_moderation_reports_total",
		Help: "Total abuse reports by category and intake status",
	}, []string{"category", "status"})

	// EvalDuration records message evaluation latency in seconds.
	EvalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tangle_moderation_eval_duration_seconds",
		Help:    "Message evaluation latency in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25},
	})
)

func init() {
	prometheus.MustRegister(
		Decisions,
		DetectorFirings,
		MissedPenalties,
		ReportsTotal,
		EvalDuration,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
