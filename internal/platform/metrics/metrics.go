// Package metrics exposes Prometheus instrumentation for HTTP traffic and
// committed domain events.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events/contracts"
)

// Metrics owns the collectors of one registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	domainEvents    *prometheus.CounterVec
	revenue         *prometheus.CounterVec
}

// New registers the collectors, plus Go and process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gymunity",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymunity",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		domainEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymunity",
			Name:      "domain_events_total",
			Help:      "Committed domain events by type.",
		}, []string{"type"}),
		revenue: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymunity",
			Name:      "payments_completed_minor_units_total",
			Help:      "Sum of completed payments in minor currency units.",
		}, []string{"currency"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware observes every request, labelled by chi route pattern so path
// parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}

// SubscribeDomainEvents counts every committed event of types.
func (m *Metrics) SubscribeDomainEvents(sub events.Subscriber, types ...events.EventType) error {
	for _, t := range types {
		if err := sub.Subscribe(t, events.HandlerFunc(m.observeEvent)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeEvent(_ context.Context, event events.Event) error {
	m.domainEvents.WithLabelValues(event.EventType().String()).Inc()
	if e, ok := event.(contracts.PaymentCompletedEvent); ok {
		m.revenue.WithLabelValues(e.Currency).Add(float64(e.AmountCents))
	}
	return nil
}
