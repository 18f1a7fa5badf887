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
	// Monitor metrics
	NotificationsSeen      prometheus.Counter
	NotificationsDiscarded *prometheus.CounterVec
	ActivityEmitted        prometheus.Counter
	EventBufferSize        prometheus.Gauge

	// Decision metrics
	IntentsReconstructed prometheus.Counter
	IntentsSkipped       *prometheus.CounterVec
	TradesAccepted       prometheus.Counter
	TradesRejected       prometheus.Counter

	// Execution metrics
	SwapAttempts      *prometheus.CounterVec
	SwapsExecuted     *prometheus.CounterVec
	SlippageUsed      prometheus.Histogram
	FollowerFailures  *prometheus.CounterVec
	TradesReplicated  prometheus.Counter
	ExecutionDuration prometheus.Histogram

	// Latency metrics
	RPCCallLatency   *prometheus.HistogramVec
	WSMessageLatency prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastActivitySeen  prometheus.Gauge
	LastTradeExecuted prometheus.Gauge
	BotActive         prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "copy_trader"
	}

	return &Metrics{
		// Monitor metrics
		NotificationsSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "notifications_seen_total",
			Help:      "Total number of log notifications received",
		}),
		NotificationsDiscarded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "notifications_discarded_total",
			Help:      "Total number of log notifications discarded by reason",
		}, []string{"reason"}),
		ActivityEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "activity_emitted_total",
			Help:      "Total number of monitored-wallet activities emitted",
		}),
		EventBufferSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "event_buffer_size",
			Help:      "Current number of activities waiting in the event buffer",
		}),

		// Decision metrics
		IntentsReconstructed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "intents_reconstructed_total",
			Help:      "Total number of trade intents reconstructed from transactions",
		}),
		IntentsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "intents_skipped_total",
			Help:      "Total number of activities that produced no trade intent by reason",
		}, []string{"reason"}),
		TradesAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "trades_accepted_total",
			Help:      "Total number of trades that passed the profitability check",
		}),
		TradesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "trades_rejected_total",
			Help:      "Total number of trades rejected by the profitability check",
		}),

		// Execution metrics
		SwapAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "swap_attempts_total",
			Help:      "Total number of swap attempts by outcome",
		}, []string{"outcome"}),
		SwapsExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "swaps_executed_total",
			Help:      "Total number of completed swaps by status",
		}, []string{"status"}),
		SlippageUsed: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "slippage_used_percent",
			Help:      "Slippage at which successful swaps landed, in percent",
			Buckets:   []float64{0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5},
		}),
		FollowerFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "replicator",
			Name:      "follower_failures_total",
			Help:      "Total number of failed replications by follower",
		}, []string{"follower"}),
		TradesReplicated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "replicator",
			Name:      "trades_replicated_total",
			Help:      "Total number of trades replicated across all followers",
		}),
		ExecutionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "execution_duration_seconds",
			Help:      "Wall time from trade intent to final swap outcome",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		WSMessageLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_message_latency_seconds",
			Help:      "WebSocket message processing latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastActivitySeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_activity_seen_timestamp",
			Help:      "Unix timestamp of the last monitored-wallet activity",
		}),
		LastTradeExecuted: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_trade_executed_timestamp",
			Help:      "Unix timestamp of the last executed trade",
		}),
		BotActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "bot_active",
			Help:      "1 when copy trading is enabled, 0 when paused",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSwapAttempt records one swap attempt by outcome.
func RecordSwapAttempt(outcome string) {
	DefaultMetrics.SwapAttempts.WithLabelValues(outcome).Inc()
}

// RecordSwapExecuted records a completed swap and, on success, the
// slippage it landed at.
func RecordSwapExecuted(status string, slippagePct float64) {
	DefaultMetrics.SwapsExecuted.WithLabelValues(status).Inc()
	if status == "confirmed" {
		DefaultMetrics.SlippageUsed.Observe(slippagePct)
	}
}

// RecordFollowerFailure records a failed replication for one follower.
func RecordFollowerFailure(follower string) {
	DefaultMetrics.FollowerFailures.WithLabelValues(follower).Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
