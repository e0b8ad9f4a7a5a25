package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Voting Metrics
var (
	// VotesTotal tracks committed like/dislike casts by target type and ledger outcome
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_votes_total",
			Help: "Committed votes by target type and outcome (added/removed/updated)",
		},
		[]string{"target_type", "action"},
	)

	// ReactionsTotal tracks committed emoji reaction toggles
	ReactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_reactions_total",
			Help: "Committed emoji reaction toggles by emoji and result (set/cleared)",
		},
		[]string{"emoji", "result"},
	)

	// RecomputeDuration tracks how long a single counter recompute takes, in seconds
	RecomputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_counter_recompute_duration_seconds",
			Help:    "Aggregate counter recompute duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25},
		},
		[]string{"target_type"},
	)

	// ReconciledTargets counts targets rewritten by the reconcile command
	ReconciledTargets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_reconciled_targets_total",
			Help: "Targets whose counters were recomputed by reconciliation",
		},
		[]string{"target_type"},
	)
)

// HTTP Metrics
var (
	// HTTPErrorsTotal tracks HTTP errors by error type
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type", "code"},
	)

	// HTTPRequestDuration tracks request latency by route and status
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Cache Metrics
var (
	// CacheLookups tracks read cache hits and misses
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_cache_lookups_total",
			Help: "Subject read cache lookups by result (hit/miss)",
		},
		[]string{"result"},
	)
)
