// Package metrics exposes Prometheus instrumentation for catalog sync.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nestview"

// Collector groups the application's metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	registry *prometheus.Registry

	events        *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	fetchFailures prometheus.Counter
	fetches       prometheus.Counter
	cacheFailures *prometheus.CounterVec
	catalogSize   prometheus.Gauge
	version       prometheus.Gauge
}

// New creates a Collector on a private registry that also carries the Go and
// process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	c := &Collector{
		registry: reg,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_events_total",
			Help:      "Push events received, by event name and outcome.",
		}, []string{"event", "outcome"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_records_total",
			Help:      "Malformed listing records dropped, by source.",
		}, []string{"source"}),
		fetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_fetches_total",
			Help:      "Remote catalog fetches attempted.",
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_fetch_failures_total",
			Help:      "Remote catalog fetches that failed.",
		}),
		cacheFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_failures_total",
			Help:      "Local cache operations that failed, by operation.",
		}, []string{"op"}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_listings",
			Help:      "Listings currently held by the property store.",
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_version",
			Help:      "Monotonic version of the catalog snapshot.",
		}),
	}
	reg.MustRegister(c.events, c.dropped, c.fetches, c.fetchFailures, c.cacheFailures, c.catalogSize, c.version)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// EventReceived counts a push event. Outcome is one of applied, dropped or
// ignored.
func (c *Collector) EventReceived(event, outcome string) {
	if c == nil {
		return
	}
	c.events.WithLabelValues(event, outcome).Inc()
}

// RecordsDropped counts malformed records.
func (c *Collector) RecordsDropped(source string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.dropped.WithLabelValues(source).Add(float64(n))
}

// FetchAttempted counts a remote fetch and, when err is non-nil, its failure.
func (c *Collector) FetchAttempted(err error) {
	if c == nil {
		return
	}
	c.fetches.Inc()
	if err != nil {
		c.fetchFailures.Inc()
	}
}

// CacheFailed counts a failed cache operation.
func (c *Collector) CacheFailed(op string) {
	if c == nil {
		return
	}
	c.cacheFailures.WithLabelValues(op).Inc()
}

// CatalogChanged records the size and version of the latest snapshot.
func (c *Collector) CatalogChanged(size int, version uint64) {
	if c == nil {
		return
	}
	c.catalogSize.Set(float64(size))
	c.version.Set(float64(version))
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Router serves GET /metrics and a GET /healthz liveness probe.
func (c *Collector) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", c.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// Serve exposes Router on addr until ctx is cancelled. An empty addr
// disables the listener.
func (c *Collector) Serve(ctx context.Context, addr string, logger *slog.Logger) {
	if c == nil || addr == "" {
		return
	}
	srv := &http.Server{Addr: addr, Handler: c.Router(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics listener stopped", "addr", addr, "error", err)
		}
	}()
}
