package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsCreated   *prometheus.CounterVec
	TransactionsSettled   *prometheus.CounterVec
	TransactionsFailed    *prometheus.CounterVec
	SettlementDuration    prometheus.Histogram
	TransactionAmount     prometheus.Histogram
	PartialSettlements    prometheus.Counter
	SettlementAnomalies   prometheus.Counter
	MovementsReconciled   prometheus.Counter
	AuthorizationAttempts *prometheus.CounterVec

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// Collaborator metrics
	CollaboratorCalls    *prometheus.CounterVec
	CollaboratorDuration *prometheus.HistogramVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all Prometheus metrics on reg
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Transaction metrics
		TransactionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobank_transactions_created_total",
				Help: "Total number of transactions created by type and initial state",
			},
			[]string{"type", "state"},
		),
		TransactionsSettled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobank_transactions_settled_total",
				Help: "Total number of transactions settled by type",
			},
			[]string{"type"},
		),
		TransactionsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobank_transactions_failed_total",
				Help: "Total number of transactions marked failed by reason",
			},
			[]string{"reason"},
		),
		SettlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gobank_settlement_duration_seconds",
			Help:    "Duration of settlement operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransactionAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gobank_transaction_amount",
			Help:    "Transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		PartialSettlements: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobank_partial_settlements_total",
			Help: "Settlements whose balances moved but whose movements were not recorded",
		}),
		SettlementAnomalies: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobank_settlement_inconsistencies_total",
			Help: "Settlements that debited the origin but could not credit the destination",
		}),
		MovementsReconciled: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobank_movements_reconciled_total",
			Help: "Partial settlements whose movements were recorded by reconciliation",
		}),
		AuthorizationAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobank_authorization_attempts_total",
				Help: "Authorization attempts by outcome",
			},
			[]string{"outcome"},
		),

		// Account metrics
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobank_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobank_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		// Collaborator metrics
		CollaboratorCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobank_collaborator_calls_total",
				Help: "Calls to collaborator services by topic and result",
			},
			[]string{"topic", "result"},
		),
		CollaboratorDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobank_collaborator_duration_seconds",
				Help:    "Collaborator call duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobank_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobank_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobank_rate_limit_hits_total",
				Help: "Total rate limit hits by limiter",
			},
			[]string{"limiter"},
		),
	}
}
