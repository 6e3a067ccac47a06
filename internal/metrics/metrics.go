// Package metrics defines the Prometheus collectors for the server and exposes
// an HTTP handler for scraping.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bastiangx/ngramserve/pkg/model"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the process.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	IngestTotal     *prometheus.CounterVec
	UniqueNGrams    prometheus.Gauge
	TotalNGrams     prometheus.Gauge
	TotalTokens     prometheus.Gauge
	HeadCapacity    prometheus.Gauge
	HeadLoad        prometheus.Gauge
}

// New creates all collectors on a private registry, so several instances
// can coexist in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ngram_requests_total",
				Help: "Total IPC requests by operation and status.",
			},
			[]string{"op", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ngram_request_duration_seconds",
				Help:    "IPC request latency in seconds.",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10, 60},
			},
			[]string{"op"},
		),
		IngestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ngram_ingest_total",
				Help: "Train and grow runs by kind and result.",
			},
			[]string{"kind", "result"},
		),
		UniqueNGrams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ngram_unique",
			Help: "Distinct n-grams held by the model.",
		}),
		TotalNGrams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ngram_total",
			Help: "N-gram occurrences held by the model.",
		}),
		TotalTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ngram_tokens",
			Help: "Token count used as the single-word frequency denominator.",
		}),
		HeadCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ngram_headword_table_capacity",
			Help: "Slots in the headword table.",
		}),
		HeadLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ngram_headword_table_load",
			Help: "Live headwords divided by headword table capacity.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.IngestTotal,
		m.UniqueNGrams,
		m.TotalNGrams,
		m.TotalTokens,
		m.HeadCapacity,
		m.HeadLoad,
	)
	return m
}

// ObserveRequest records one handled request.
func (m *Metrics) ObserveRequest(op, status string, took time.Duration) {
	m.RequestsTotal.WithLabelValues(op, status).Inc()
	m.RequestDuration.WithLabelValues(op).Observe(took.Seconds())
}

// ObserveIngest records the outcome of a train or grow run.
func (m *Metrics) ObserveIngest(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.IngestTotal.WithLabelValues(kind, result).Inc()
}

// SetModel copies the model's counters into the gauges.
func (m *Metrics) SetModel(s model.Stats) {
	m.UniqueNGrams.Set(float64(s.UniqueNGrams))
	m.TotalNGrams.Set(float64(s.TotalNGrams))
	m.TotalTokens.Set(float64(s.TotalTokens))
	m.HeadCapacity.Set(float64(s.Capacity))
	m.HeadLoad.Set(s.Load)
}

// Gatherer exposes the registry for tests and custom handlers.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

// Handler returns the Prometheus scrape HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
