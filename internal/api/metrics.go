package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ilkoid/pixelbros-assets/pkg/portfolio"
)

// Metrics — метрики API на собственном реестре.
//
// Методы nil *Metrics ничего не делают.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	reloads  *prometheus.CounterVec
	projects prometheus.Gauge
	items    prometheus.Gauge
}

// NewMetrics регистрирует метрики в новом реестре.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_index_reloads_total",
			Help: "Index rebuilds from the manifest by result.",
		}, []string{"result"}),
		projects: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_index_projects",
			Help: "Projects in the current index.",
		}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_index_media_items",
			Help: "Media items in the current index.",
		}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.reloads, m.projects, m.items)
	return m
}

// Handler — /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware считает запросы по шаблону маршрута chi.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(started).Seconds())
	})
}

func (m *Metrics) reloaded(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
}

func (m *Metrics) indexSize(idx *portfolio.Index) {
	if m == nil {
		return
	}
	items := 0
	for _, p := range idx.Projects {
		for _, g := range p.Groups {
			items += len(g.Items)
		}
	}
	m.projects.Set(float64(len(idx.Projects)))
	m.items.Set(float64(items))
}
