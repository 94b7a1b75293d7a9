package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// NewRegistry returns a registry preloaded with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler exposes reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

type HTTP struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer, service string) *HTTP {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route", "method"})

	reg.MustRegister(requests, latency)
	return &HTTP{Requests: requests, Latency: latency}
}

// Workflow counts order-placement outcomes. A nil *Workflow is valid and records nothing.
type Workflow struct {
	checkouts            *prometheus.CounterVec
	stockConflicts       prometheus.Counter
	notificationFailures *prometheus.CounterVec
	queueMessages        *prometheus.CounterVec
}

func NewWorkflow(reg prometheus.Registerer) *Workflow {
	w := &Workflow{
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		stockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_conflicts_total",
			Help:      "Optimistic-concurrency conflicts on product stock writes.",
		}),
		notificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Queue sends that failed and were dropped.",
		}, []string{"queue"}),
		queueMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_messages_processed_total",
			Help:      "Queue messages handled by the worker.",
		}, []string{"queue", "result"}),
	}
	reg.MustRegister(w.checkouts, w.stockConflicts, w.notificationFailures, w.queueMessages)
	return w
}

func (w *Workflow) CheckoutOutcome(outcome string) {
	if w == nil {
		return
	}
	w.checkouts.WithLabelValues(outcome).Inc()
}

func (w *Workflow) StockConflict() {
	if w == nil {
		return
	}
	w.stockConflicts.Inc()
}

func (w *Workflow) NotificationFailed(queue string) {
	if w == nil {
		return
	}
	w.notificationFailures.WithLabelValues(queue).Inc()
}

func (w *Workflow) QueueMessage(queue string, ok bool) {
	if w == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	w.queueMessages.WithLabelValues(queue, result).Inc()
}
