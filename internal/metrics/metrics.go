package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FlowsStarted counts bridge flows opened per source chain
	FlowsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_flows_started_total",
			Help: "Total number of bridge flows started",
		},
		[]string{"from_chain"},
	)

	// FlowsCompleted counts flows that reached a terminal step
	FlowsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_flows_completed_total",
			Help: "Total number of bridge flows reaching a terminal step",
		},
		[]string{"from_chain", "outcome"},
	)

	// SubmissionsTotal counts transfer submissions per strategy and result
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_submissions_total",
			Help: "Total number of bridge transfer submissions",
		},
		[]string{"strategy", "status"},
	)

	// SubmissionDuration tracks submission latency including receipt wait
	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_submission_duration_seconds",
			Help:    "Transfer submission duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	// ClaimsTotal counts destination-chain claim submissions
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_claims_total",
			Help: "Total number of claim submissions",
		},
		[]string{"to_chain", "status"},
	)

	// StatusPolls counts indexer status fetches
	StatusPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_status_polls_total",
			Help: "Total number of bridge status polls",
		},
		[]string{"result"},
	)

	// ProofFetches counts merkle proof fetches
	ProofFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_proof_fetches_total",
			Help: "Total number of merkle proof fetches",
		},
		[]string{"status"},
	)

	// ActiveFlows tracks flows currently held by the manager
	ActiveFlows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridge_active_flows",
			Help: "Number of bridge flows currently in progress",
		},
	)

	// ErrorsTotal counts normalized errors by component and kind
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "kind"},
	)
)
