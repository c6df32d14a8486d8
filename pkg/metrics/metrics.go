package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderdesk_orders_accepted_total",
		Help: "Total number of orders written to the order document.",
	})

	OrderFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdesk_order_failures_total",
		Help: "Total number of rejected or failed order submissions by reason.",
	},
		[]string{"reason"},
	)

	StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orderdesk_store_duration_seconds",
		Help:    "Latency of document store calls.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"op", "outcome"},
	)

	EventPublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderdesk_event_publish_failures_total",
		Help: "Total number of order.accepted events that could not be published.",
	})
)
