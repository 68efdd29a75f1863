package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmitAttempts tracks wallet submission attempts by outcome
	SubmitAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settler_submit_attempts_total",
			Help: "Total number of submission attempts",
		},
		[]string{"outcome"},
	)

	// SubmitRetries tracks backoff waits between submission attempts
	SubmitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settler_submit_retries_total",
			Help: "Total number of rate-limited submission retries",
		},
	)

	// Settlements tracks completion requests by result
	Settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settler_settlements_total",
			Help: "Total number of settlement completion requests",
		},
		[]string{"result"},
	)

	// SettlementDuration tracks end-to-end completion handling time
	SettlementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "settler_settlement_duration_seconds",
			Help:    "Completion request handling time in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// VerifyPolls tracks payment verification status lookups
	VerifyPolls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settler_verify_polls_total",
			Help: "Total number of payment status polls",
		},
	)

	// QuoteRequests tracks price lookups by source
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settler_quote_requests_total",
			Help: "Total number of price quote lookups",
		},
		[]string{"source"},
	)

	// LedgerSize tracks the number of settlement records kept
	LedgerSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "settler_ledger_size",
			Help: "Number of settlement records in the ledger",
		},
	)

	// DBConnectionPoolUsage tracks database pool saturation
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "settler_db_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
