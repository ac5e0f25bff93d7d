package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// ReactionToggles counts committed toggles by transition: added, removed, switched.
	ReactionToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reaction_toggles_total",
			Help: "Committed reaction toggles by transition",
		},
		[]string{"transition"},
	)

	ReactionConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reaction_conflicts_total",
			Help: "Reaction transactions that hit a storage conflict and were retried",
		},
	)

	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Media uploads by category and result",
		},
		[]string{"category", "result"},
	)

	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Authentication events: login, login_failed, remember_restore, remember_rejected, logout, csrf_rejected",
		},
		[]string{"event"},
	)
)
