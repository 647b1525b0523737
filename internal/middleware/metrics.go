// Package middleware holds HTTP middleware shared by the API server.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	requests   *prometheus.HistogramVec
	Operations *prometheus.CounterVec
	Activities prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paypals_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paypals_ledger_operations_total",
			Help: "Ledger operations by name and outcome.",
		}, []string{"op", "outcome"}),
		Activities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "paypals_activities",
			Help: "Live activities in the open group.",
		}),
	}
	reg.MustRegister(m.requests, m.Operations, m.Activities)
	return m
}

// Instrument records request latency labelled by the matched chi route pattern.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec, ok := w.(*statusRecorder)
		if !ok {
			rec = &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	})
}
