package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the assignment engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	allocationRuns     prometheus.Counter
	allocationDuration prometheus.Histogram
	committedTotal     prometheus.Counter
	unfilledTotal      *prometheus.CounterVec
	gateDecisions      *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	allocationRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allocation_runs_total",
		Help: "Total allocation runs executed",
	})

	allocationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "allocation_run_duration_seconds",
		Help:    "Duration of allocation runs",
		Buckets: prometheus.DefBuckets,
	})

	committedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "substitutions_committed_total",
		Help: "Total substitution assignments committed to the ledger",
	})

	unfilledTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vacancies_unfilled_total",
		Help: "Total vacancies left unfilled, by reason",
	}, []string{"reason"})

	gateDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leave_gate_decisions_total",
		Help: "Leave capacity gate outcomes, by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, allocationRuns, allocationDuration, committedTotal, unfilledTotal, gateDecisions, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		allocationRuns:     allocationRuns,
		allocationDuration: allocationDuration,
		committedTotal:     committedTotal,
		unfilledTotal:      unfilledTotal,
		gateDecisions:      gateDecisions,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveAllocationRun records one run's outcome.
func (m *MetricsService) ObserveAllocationRun(committed int, duration time.Duration) {
	if m == nil {
		return
	}
	m.allocationRuns.Inc()
	m.allocationDuration.Observe(duration.Seconds())
	m.committedTotal.Add(float64(committed))
}

// RecordUnfilled counts an unfilled vacancy outcome.
func (m *MetricsService) RecordUnfilled(reason string) {
	if m == nil {
		return
	}
	m.unfilledTotal.WithLabelValues(reason).Inc()
}

// RecordGateDecision counts a capacity gate outcome. Result is "APPROVED",
// a GateReason, or "REJECTED" for explicit rejections.
func (m *MetricsService) RecordGateDecision(result string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(result).Inc()
}
