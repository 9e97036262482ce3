// Package metrics exposes Prometheus counters for dispatched operations.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clawshell",
			Subsystem: "dispatch",
			Name:      "operations_total",
			Help:      "Dispatched operations by outcome.",
		},
		[]string{"operation", "success"},
	)
	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clawshell",
			Subsystem: "dispatch",
			Name:      "operation_duration_seconds",
			Help:      "Wall time of dispatched operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"operation"},
	)
	spawnFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clawshell",
			Subsystem: "dispatch",
			Name:      "spawn_failures_total",
			Help:      "Processes that could not be spawned, by program.",
		},
		[]string{"program"},
	)
	gatewayRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clawshell",
			Subsystem: "gateway",
			Name:      "running",
			Help:      "1 while a detached gateway process is running.",
		},
	)
)

// Register adds the collectors to the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(operations, operationDuration, spawnFailures, gatewayRunning)
	})
}

// RecordOperation counts one completed operation.
func RecordOperation(operation string, success bool, duration time.Duration) {
	Register()
	operations.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSpawnFailure counts a program that could not be started.
func RecordSpawnFailure(program string) {
	Register()
	spawnFailures.WithLabelValues(program).Inc()
}

// SetGatewayRunning reports whether a detached gateway is alive.
func SetGatewayRunning(running bool) {
	Register()
	if running {
		gatewayRunning.Set(1)
	} else {
		gatewayRunning.Set(0)
	}
}
