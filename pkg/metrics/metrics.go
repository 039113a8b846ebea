package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// CyclesTotal counts completed watch cycles.
	CyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "balance_watcher_cycles_total",
		Help: "Number of completed watch cycles.",
	})

	// WalletEvaluationsTotal counts individual wallet evaluations.
	WalletEvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "balance_watcher_wallet_evaluations_total",
		Help: "Number of wallet evaluations performed.",
	})

	// SnapshotNetworkErrorsTotal counts network-level snapshot errors by network identifier.
	SnapshotNetworkErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "balance_watcher_snapshot_network_errors_total",
		Help: "Number of network-level snapshot errors.",
	}, []string{"network"})

	// ConfirmationsTotal counts confirmation re-samples triggered by threshold crossings.
	ConfirmationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "balance_watcher_confirmations_total",
		Help: "Number of confirmation re-samples performed.",
	})

	// ConfirmationsSuppressedTotal counts changes dropped because the confirmation fell below threshold.
	ConfirmationsSuppressedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "balance_watcher_confirmations_suppressed_total",
		Help: "Number of changes suppressed after the confirmation re-sample.",
	})

	// NotificationsSentTotal counts aggregated messages successfully delivered.
	NotificationsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "balance_watcher_notifications_sent_total",
		Help: "Number of aggregated notifications delivered.",
	})

	// NotificationsFailedTotal counts delivery failures.
	NotificationsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "balance_watcher_notifications_failed_total",
		Help: "Number of notification delivery failures.",
	})

	// LastCycleDurationSeconds records the wall-clock duration of the last cycle.
	LastCycleDurationSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "balance_watcher_last_cycle_duration_seconds",
		Help: "Duration of the most recent watch cycle in seconds.",
	})
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once from main.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		CyclesTotal,
		WalletEvaluationsTotal,
		SnapshotNetworkErrorsTotal,
		ConfirmationsTotal,
		ConfirmationsSuppressedTotal,
		NotificationsSentTotal,
		NotificationsFailedTotal,
		LastCycleDurationSeconds,
	)
}
