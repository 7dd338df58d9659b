// Package metrics provides Prometheus metrics for the backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPResponseTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_time_seconds",
		Help:    "Histogram of response times",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// Ledger metrics.
	UsersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "referral",
		Subsystem: "ledger",
		Name:      "users_created_total",
		Help:      "Total number of user records created on first contact.",
	})
	ReferralsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "referral",
		Subsystem: "ledger",
		Name:      "referrals_recorded_total",
		Help:      "Total number of referral edges written.",
	})

	// Bot metrics.
	BotUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "referral",
		Subsystem: "bot",
		Name:      "updates_total",
		Help:      "Bot commands handled, by command and outcome.",
	}, []string{"command", "outcome"})
	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "referral",
		Subsystem: "bot",
		Name:      "notification_failures_total",
		Help:      "Referrer notifications that could not be delivered.",
	})

	// Membership prober metrics.
	MembershipAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "referral",
		Subsystem: "membership",
		Name:      "attempts_total",
		Help:      "getChatMember attempts, by result.",
	}, []string{"result"}) // "ok" or "error"

	// Connection registry metrics.
	ConnectionsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "referral",
		Subsystem: "connections",
		Name:      "registered_total",
		Help:      "Total number of frontend connections registered.",
	})
	LiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "referral",
		Subsystem: "connections",
		Name:      "live_clients",
		Help:      "Websocket clients subscribed to the live stats feed.",
	})
)
