package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// View HTTP metrics (local pages served to the browser)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "View request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of view requests",
		},
		[]string{"method", "route", "status"},
	)

	// Gateway metrics (outbound backend calls)
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Backend call latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "outcome"},
	)

	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of backend calls by outcome",
		},
		[]string{"method", "outcome"},
	)

	SessionTeardownsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_session_teardowns_total",
			Help: "Sessions torn down after an unauthenticated response",
		},
	)

	// Navigation guard metrics
	NavigationDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigation_decisions_total",
			Help: "Guard decisions by outcome",
		},
		[]string{"outcome"},
	)

	// Live event metrics
	EventConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "event_connections_active",
			Help: "Number of open pages subscribed to live events",
		},
	)

	EventMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_messages_sent_total",
			Help: "Total number of live events pushed to pages",
		},
		[]string{"type"},
	)
)
