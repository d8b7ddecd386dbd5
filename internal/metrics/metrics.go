// Package metrics exposes the relay's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signaling",
		Name:      "active_connections",
		Help:      "Live WebSocket connections.",
	})

	AuthenticatedUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signaling",
		Name:      "authenticated_users",
		Help:      "Distinct users with at least one authenticated connection.",
	})

	ActiveCalls = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signaling",
		Name:      "active_calls",
		Help:      "Call sessions currently in the table.",
	})

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signaling",
		Name:      "events_total",
		Help:      "Inbound events processed, by event type.",
	}, []string{"event"})

	DroppedDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "signaling",
		Name:      "dropped_deliveries_total",
		Help:      "Outbound frames dropped because the target was offline or its send buffer was full.",
	})

	MalformedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "signaling",
		Name:      "malformed_events_total",
		Help:      "Inbound events discarded due to malformed payloads.",
	})

	RateLimitedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "signaling",
		Name:      "rate_limited_events_total",
		Help:      "Inbound events discarded by the per-connection rate limiter.",
	})
)
