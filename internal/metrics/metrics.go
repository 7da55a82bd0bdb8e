// Package metrics exposes Prometheus collectors for the archive service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "almanac"

// Metrics holds the archive's collectors, all registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	SearchResults *prometheus.HistogramVec

	SlugCacheRefreshes prometheus.Counter
	SlugCacheSize      prometheus.Gauge

	IndexEvents *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"route", "method"}),
		SearchResults: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}, []string{"scope"}),
		SlugCacheRefreshes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slug_cache_refreshes_total",
			Help:      "Successful author slug cache loads",
		}),
		SlugCacheSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slug_cache_size",
			Help:      "Author slugs held by the cache after the last load",
		}),
		IndexEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_events_total",
			Help:      "Watcher-driven index changes by kind",
		}, []string{"kind"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveSearch records the size of one search response.
func (m *Metrics) ObserveSearch(scope string, results int) {
	m.SearchResults.WithLabelValues(scope).Observe(float64(results))
}

// SlugCacheRefreshed is a search.WithRefreshHook callback.
func (m *Metrics) SlugCacheRefreshed(count int) {
	m.SlugCacheRefreshes.Inc()
	m.SlugCacheSize.Set(float64(count))
}

// IndexChanged is an index.EventCallback-compatible counter.
func (m *Metrics) IndexChanged(kind, _ string) {
	m.IndexEvents.WithLabelValues(kind).Inc()
}

// Middleware records request count and latency under the matched chi
// route pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
