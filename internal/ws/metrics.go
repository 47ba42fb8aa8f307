package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "travelbuddies_chat_active_connections",
		Help: "Number of currently registered trip chat connections.",
	})

	broadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelbuddies_chat_broadcasts_total",
		Help: "Total number of chat payloads broadcast to trip rooms.",
	})

	deliveryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelbuddies_chat_delivery_failures_total",
		Help: "Total number of per-connection broadcast delivery failures.",
	})
)
