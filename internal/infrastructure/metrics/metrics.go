package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Movement metrics
	MovementsCompleted *prometheus.CounterVec
	MovementsFailed    *prometheus.CounterVec
	MovementDuration   *prometheus.HistogramVec
	MovementAmount     prometheus.Histogram

	// Transfer saga metrics
	TransfersCompensated prometheus.Counter
	TransfersCancelled   prometheus.Counter
	ScheduledExecuted    prometheus.Counter

	// Settlement gateway metrics
	SettlementCalls    *prometheus.CounterVec
	SettlementDuration prometheus.Histogram

	// Reconciliation metrics
	ReconciliationRuns    prometheus.Counter
	ReconciliationDrift   prometheus.Gauge
	AccountsReconciled    prometheus.Counter
	DiscrepanciesDetected prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics against the given
// registerer. Tests pass a fresh registry; main passes the default one.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Movement metrics
		MovementsCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corebank_movements_completed_total",
				Help: "Total completed money movements by type",
			},
			[]string{"type"},
		),
		MovementsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corebank_movements_failed_total",
				Help: "Total failed money movements by type and error code",
			},
			[]string{"type", "code"},
		),
		MovementDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corebank_movement_duration_seconds",
				Help:    "Duration of money movement operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		MovementAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "corebank_movement_amount",
			Help:    "Movement amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		// Transfer saga metrics
		TransfersCompensated: factory.NewCounter(prometheus.CounterOpts{
			Name: "corebank_transfers_compensated_total",
			Help: "Total failed transfers reversed by compensation",
		}),
		TransfersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "corebank_transfers_cancelled_total",
			Help: "Total transfers cancelled before execution",
		}),
		ScheduledExecuted: factory.NewCounter(prometheus.CounterOpts{
			Name: "corebank_scheduled_transfers_executed_total",
			Help: "Total scheduled transfers executed by the end-of-day run",
		}),

		// Settlement gateway metrics
		SettlementCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corebank_settlement_calls_total",
				Help: "Total settlement gateway calls by outcome",
			},
			[]string{"outcome"},
		),
		SettlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "corebank_settlement_duration_seconds",
			Help:    "Settlement gateway call duration",
			Buckets: prometheus.DefBuckets,
		}),

		// Reconciliation metrics
		ReconciliationRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "corebank_reconciliation_runs_total",
			Help: "Total reconciliation passes",
		}),
		ReconciliationDrift: factory.NewGauge(prometheus.GaugeOpts{
			Name: "corebank_reconciliation_discrepancies",
			Help: "Discrepancies found by the last reconciliation pass",
		}),
		AccountsReconciled: factory.NewCounter(prometheus.CounterOpts{
			Name: "corebank_accounts_reconciled_total",
			Help: "Total accounts verified by reconciliation",
		}),
		DiscrepanciesDetected: factory.NewCounter(prometheus.CounterOpts{
			Name: "corebank_discrepancies_detected_total",
			Help: "Total balance discrepancies detected",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corebank_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corebank_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Audit metrics
		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corebank_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
