// Package metrics holds the Prometheus collectors of the moderation backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moderation_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ModerationActions counts applied content transitions and deletions.
	ModerationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Content moderation actions applied, by content kind and action",
		},
		[]string{"kind", "action"},
	)

	ReportsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_reports_recorded_total",
			Help: "Reports recorded against content items",
		},
		[]string{"kind"},
	)

	DirectoryMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_directory_mutations_total",
			Help: "City and school mutations, by entity and action",
		},
		[]string{"entity", "action"},
	)

	UserRoleChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_user_role_changes_total",
			Help: "User role assignments, by target role",
		},
		[]string{"role"},
	)

	AccessDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_access_denied_total",
			Help: "Operations refused to an authenticated moderator",
		},
		[]string{"role", "resource"},
	)

	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_logins_total",
			Help: "Moderator login attempts, by outcome",
		},
		[]string{"outcome"},
	)
)
