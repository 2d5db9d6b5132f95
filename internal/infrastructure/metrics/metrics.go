// Package metrics defines the custom Prometheus metrics of the taskpilot API.
// Metric names, labels and help strings live here and nowhere else.
//
// All metrics register with the default registry on package init through
// promauto; HTTP request metrics are added separately by the echoprometheus
// middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskpilot"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - action: "login" or "register"
//   - result: "success", "invalid_credentials", "duplicate", "invalid", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login and registration attempts, by outcome.",
	},
	[]string{"action", "result"},
)

// AccessDeniedTotal counts requests rejected by the access guard.
// Label:
//   - resource: "project", "task" or "admin" (non-admin on an admin route)
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of resource accesses denied by ownership checks.",
	},
	[]string{"resource"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCompletedTotal counts tasks entering the done status.
// Label:
//   - via: "update" or "progress"
var TasksCompletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_completed_total",
		Help:      "Total number of tasks that transitioned into done.",
	},
	[]string{"via"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts outbound automation notifications.
// Label:
//   - result: "sent", "failed", "dropped" (queue full) or "duplicate" (dedup hit)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of task-completed notifications, by outcome.",
	},
	[]string{"result"},
)

// NotificationQueueDepth is the number of notifications waiting for a worker.
var NotificationQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in the dispatcher queue.",
	},
)

// NotificationDuration measures a single delivery attempt to the automation engine.
// Label:
//   - result: "sent" or "failed"
var NotificationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a single outbound notification attempt.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Service adapter ───────────────────────────────────────────────────────────

// ServiceRecorder reports core service events to the counters above.
type ServiceRecorder struct{}

func (ServiceRecorder) AccessDenied(resource string) {
	AccessDeniedTotal.WithLabelValues(resource).Inc()
}

func (ServiceRecorder) TaskCompleted(via string) {
	TasksCompletedTotal.WithLabelValues(via).Inc()
}
