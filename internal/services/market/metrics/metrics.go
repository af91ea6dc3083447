// Package metrics declares Prometheus collectors for the market service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// OrdersCreatedTotal counts orders created, labeled by risk action.
	OrdersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_orders_created_total",
			Help: "Total number of orders created, by risk gate action",
		},
		[]string{"action"},
	)

	// PaymentEventsTotal counts inbound payment events, by event type.
	PaymentEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_payment_events_total",
			Help: "Total number of payment events received, by type",
		},
		[]string{"type"},
	)

	// FulfillmentsTotal counts fulfillment artifacts produced, by delivery type.
	FulfillmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_fulfillments_total",
			Help: "Total number of fulfillment artifacts produced, by delivery type",
		},
		[]string{"type"},
	)

	// HTTPRequestsTotal counts HTTP requests, by handler, method, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status"},
	)

	// HTTPRequestDuration observes HTTP request latency, by handler and method.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)
)

// Register registers all market collectors with the default registry.
func Register() {
	prometheus.MustRegister(OrdersCreatedTotal)
	prometheus.MustRegister(PaymentEventsTotal)
	prometheus.MustRegister(FulfillmentsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}
