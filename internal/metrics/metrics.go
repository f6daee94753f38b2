// Package metrics provides Prometheus metrics collection for the service.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global metrics - used by the application
	// Using atomic.Pointer for lock-free initialization checks on hot path metrics.
	requestsTotal    atomic.Pointer[prometheus.CounterVec]
	requestDuration  atomic.Pointer[prometheus.HistogramVec]
	validationsTotal atomic.Pointer[prometheus.CounterVec]
	keysCreatedTotal atomic.Pointer[prometheus.Counter]
	boostsStarted    atomic.Pointer[prometheus.Counter]
	boostsStopped    atomic.Pointer[prometheus.Counter]
	pollTicksTotal   atomic.Pointer[prometheus.Counter]
	pollFailures     atomic.Pointer[prometheus.CounterVec]
	activeBoosts     atomic.Pointer[prometheus.Gauge]
)

// Init initializes all Prometheus metrics and registers them with the provided registry.
// This should be called once at application startup.
func Init(reg prometheus.Registerer) error {
	requestsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boostgate",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestsTotalVec); err != nil {
		return fmt.Errorf("failed to register requestsTotal: %w", err)
	}

	requestDurationVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "boostgate",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestDurationVec); err != nil {
		return fmt.Errorf("failed to register requestDuration: %w", err)
	}

	validationsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boostgate",
			Subsystem: "keys",
			Name:      "validations_total",
			Help:      "Total number of access key validation attempts",
		},
		[]string{"result"},
	)
	if err := reg.Register(validationsTotalVec); err != nil {
		return fmt.Errorf("failed to register validationsTotal: %w", err)
	}

	keysCreatedCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "boostgate",
			Subsystem: "keys",
			Name:      "created_total",
			Help:      "Total number of access keys created",
		},
	)
	if err := reg.Register(keysCreatedCounter); err != nil {
		return fmt.Errorf("failed to register keysCreated: %w", err)
	}

	boostsStartedCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "boostgate",
			Subsystem: "boosts",
			Name:      "started_total",
			Help:      "Total number of boost sessions started",
		},
	)
	if err := reg.Register(boostsStartedCounter); err != nil {
		return fmt.Errorf("failed to register boostsStarted: %w", err)
	}

	boostsStoppedCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "boostgate",
			Subsystem: "boosts",
			Name:      "stopped_total",
			Help:      "Total number of boost sessions stopped",
		},
	)
	if err := reg.Register(boostsStoppedCounter); err != nil {
		return fmt.Errorf("failed to register boostsStopped: %w", err)
	}

	pollTicksCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "boostgate",
			Subsystem: "boosts",
			Name:      "poll_ticks_total",
			Help:      "Total number of stats poll attempts",
		},
	)
	if err := reg.Register(pollTicksCounter); err != nil {
		return fmt.Errorf("failed to register pollTicks: %w", err)
	}

	pollFailuresVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boostgate",
			Subsystem: "boosts",
			Name:      "poll_failures_total",
			Help:      "Total number of failed stats polls",
		},
		[]string{"reason"},
	)
	if err := reg.Register(pollFailuresVec); err != nil {
		return fmt.Errorf("failed to register pollFailures: %w", err)
	}

	activeBoostsGauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "boostgate",
			Subsystem: "boosts",
			Name:      "active",
			Help:      "Number of boost sessions currently running",
		},
	)
	if err := reg.Register(activeBoostsGauge); err != nil {
		return fmt.Errorf("failed to register activeBoosts: %w", err)
	}

	// Store metrics in atomics for lock-free access in record functions
	requestsTotal.Store(requestsTotalVec)
	requestDuration.Store(requestDurationVec)
	validationsTotal.Store(validationsTotalVec)
	keysCreatedTotal.Store(&keysCreatedCounter)
	boostsStarted.Store(&boostsStartedCounter)
	boostsStopped.Store(&boostsStoppedCounter)
	pollTicksTotal.Store(&pollTicksCounter)
	pollFailures.Store(pollFailuresVec)
	activeBoosts.Store(&activeBoostsGauge)

	return nil
}

// RecordRequest increments the requests counter for the given method, path, and status code.
// The path should be normalized (e.g., "/api/boost/:id/status" instead of a raw session ID).
func RecordRequest(method, path, statusCode string) {
	if counter := requestsTotal.Load(); counter != nil {
		counter.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordRequestDuration records the latency for a request.
// Duration should be in seconds.
func RecordRequestDuration(method, path, statusCode string, durationSeconds float64) {
	if histogram := requestDuration.Load(); histogram != nil {
		histogram.WithLabelValues(method, path, statusCode).Observe(durationSeconds)
	}
}

// RecordValidation increments the validation counter for the given result.
// Common results: "ok", "empty", "invalid", "expired", "error"
func RecordValidation(result string) {
	if counter := validationsTotal.Load(); counter != nil {
		counter.WithLabelValues(result).Inc()
	}
}

// RecordKeyCreated increments the keys created counter.
func RecordKeyCreated() {
	if counter := keysCreatedTotal.Load(); counter != nil {
		(*counter).Inc()
	}
}

// RecordBoostStarted increments the boosts started counter and the active gauge.
func RecordBoostStarted() {
	if counter := boostsStarted.Load(); counter != nil {
		(*counter).Inc()
	}
	if gauge := activeBoosts.Load(); gauge != nil {
		(*gauge).Inc()
	}
}

// RecordBoostStopped increments the boosts stopped counter and drops the active gauge.
func RecordBoostStopped() {
	if counter := boostsStopped.Load(); counter != nil {
		(*counter).Inc()
	}
	if gauge := activeBoosts.Load(); gauge != nil {
		(*gauge).Dec()
	}
}

// RecordPollTick increments the poll attempts counter.
func RecordPollTick() {
	if counter := pollTicksTotal.Load(); counter != nil {
		(*counter).Inc()
	}
}

// RecordPollFailure increments the poll failures counter for the given reason.
// Common reasons: "request", "engine"
func RecordPollFailure(reason string) {
	if counter := pollFailures.Load(); counter != nil {
		counter.WithLabelValues(reason).Inc()
	}
}

// Handler returns an HTTP handler for Prometheus metrics in text format.
// This handler should be registered at /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// GetMetricsText returns the Prometheus text-format output from a registry.
// This is useful for testing and debugging.
func GetMetricsText(reg prometheus.Gatherer) (string, error) {
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	// Use httptest to capture the handler output
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	body, err := io.ReadAll(w.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read metrics output: %w", err)
	}

	return string(body), nil
}
