// Package metrics defines and registers all custom Prometheus metrics for the
// portfolio API. It is the single source of truth for metric names, labels,
// and help strings. Metrics are registered with the default registry on
// package init through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portfolio"

// ── Account metrics ───────────────────────────────────────────────────────────

// UsersRegisteredTotal counts successful registrations.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of user accounts registered.",
	},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// CascadeDeleteFailuresTotal counts owned record kinds that could not be
// removed during an account delete.
// Label:
//   - kind: "projects", "educations" or "certificates"
var CascadeDeleteFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_delete_failures_total",
		Help:      "Total number of owned record kinds left behind by a failed cascade delete step.",
	},
	[]string{"kind"},
)

// ── Profile image metrics ─────────────────────────────────────────────────────

// ProfileImagesTotal counts profile image uploads.
// Label:
//   - result: "stored", "rejected", "busy" or "error"
var ProfileImagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_images_total",
		Help:      "Total number of profile image uploads, labelled by outcome.",
	},
	[]string{"result"},
)

// ResizeQueueDepth tracks the number of resize jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ResizeQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "resize_queue_depth",
		Help:      "Current number of resize jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ResizeDuration measures how long a single resize job takes once a worker
// picks it up.
// Label:
//   - result: "ok" or "error"
var ResizeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resize_duration_seconds",
		Help:      "Duration of image resize jobs from dequeue to encoded output.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
