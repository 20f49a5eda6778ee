package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/meur/dattebayo/internal/loader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and list loading collectors.
//
//   - dattebayo_http_request_duration_seconds{method,path,status}: histogram
//   - dattebayo_http_requests_inflight: gauge
//   - dattebayo_http_request_errors_total{method,path,status}: counter (4xx/5xx)
//   - dattebayo_loader_pages_total{collection,outcome}: counter
//   - dattebayo_loader_items_total{collection,result}: counter
type Metrics struct {
	gatherer prometheus.Gatherer

	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec
	pages       *prometheus.CounterVec
	items       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg, which also
// backs the /metrics endpoint.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dattebayo",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dattebayo",
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dattebayo",
			Name:      "http_request_errors_total",
			Help:      "Requests that ended with a 4xx or 5xx status.",
		}, []string{"method", "path", "status"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dattebayo",
			Subsystem: "loader",
			Name:      "pages_total",
			Help:      "Pages applied by list loaders.",
		}, []string{"collection", "outcome"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dattebayo",
			Subsystem: "loader",
			Name:      "items_total",
			Help:      "Items received by list loaders, added or dropped.",
		}, []string{"collection", "result"}),
	}
	reg.MustRegister(m.reqDuration, m.reqInflight, m.reqErrors, m.pages, m.items)
	return m
}

// Middleware records duration and status per route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		m.reqInflight.Inc()
		defer m.reqInflight.Dec()

		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		status := strconv.Itoa(code)
		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		m.reqDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		if code >= 400 {
			m.reqErrors.WithLabelValues(r.Method, path, status).Inc()
		}
	})
}

// ObserveLoad counts one applied loader fetch.
func (m *Metrics) ObserveLoad(collection string, r loader.Result) {
	outcome := "ok"
	switch {
	case r.Err != nil:
		outcome = "error"
	case r.Added == 0 && r.Dropped == 0:
		outcome = "empty"
	}
	m.pages.WithLabelValues(collection, outcome).Inc()
	m.items.WithLabelValues(collection, "added").Add(float64(r.Added))
	m.items.WithLabelValues(collection, "dropped").Add(float64(r.Dropped))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
