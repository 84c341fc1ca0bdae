// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ChatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rizzard_chat_requests_total",
			Help: "Chat proxy requests by outcome.",
		},
		[]string{"outcome"},
	)

	ChatFragments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rizzard_chat_fragments_total",
			Help: "Text fragments relayed by the chat proxy.",
		},
	)

	WidgetConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rizzard_widget_connections",
			Help: "Open widget websocket connections.",
		},
	)

	WidgetExchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rizzard_widget_exchanges_total",
			Help: "Widget exchanges by outcome.",
		},
		[]string{"outcome"},
	)

	SkippedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rizzard_widget_skipped_events_total",
			Help: "Malformed stream events ignored by widget sessions.",
		},
	)
)

// Outcome labels
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeSetup    = "setup_error"
	OutcomeUpstream = "stream_error"
	OutcomeCanceled = "canceled"
)

func init() {
	prometheus.MustRegister(
		ChatRequests,
		ChatFragments,
		WidgetConnections,
		WidgetExchanges,
		SkippedEvents,
	)
}
