package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the storefront API
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// WebhookEvents counts inbound provider events by type and outcome
	// (rejected, malformed, ignored, processed, unprocessable, failed).
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_events_total", Help: "Inbound payment webhook events by type and outcome."},
		[]string{"type", "outcome"},
	)
	// OrdersMaterialized counts materialization attempts; duplicate means a
	// redelivered event found its order already stored.
	OrdersMaterialized = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_materialized_total", Help: "Order materializations by outcome."},
		[]string{"outcome"},
	)
	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "order_status_transitions_total", Help: "Order status transitions by edge and result."},
		[]string{"from", "to", "result"},
	)
	CheckoutSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "checkout_sessions_total", Help: "Checkout session creations by delivery method and result."},
		[]string{"delivery_method", "result"},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors to Registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(WebhookEvents)
		Registry.MustRegister(OrdersMaterialized)
		Registry.MustRegister(StatusTransitions)
		Registry.MustRegister(CheckoutSessions)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
