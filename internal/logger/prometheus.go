package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// mainComponent labels statements made through the global logger.
const mainComponent = "main"

var (
	metricsOnce   sync.Once              //nolint:gochecknoglobals
	statements    *prometheus.CounterVec //nolint:gochecknoglobals
	writeFailures prometheus.Counter     //nolint:gochecknoglobals
)

// registerMetrics creates the logging collectors once per process. The
// service label is fixed by the first call.
func registerMetrics(service string) {
	metricsOnce.Do(func() {
		labels := prometheus.Labels{"service": service}

		statements = promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "settingskit_log_statements_total",
			Help:        "Number of log statements, by level and component.",
			ConstLabels: labels,
		}, []string{"level", "component"})

		writeFailures = promauto.NewCounter(prometheus.CounterOpts{
			Name:        "settingskit_log_write_failures_total",
			Help:        "Number of log events no writer accepted.",
			ConstLabels: labels,
		})
	})
}

// componentHook counts every leveled statement under its component.
type componentHook string

// Run implements zerolog.Hook.
func (h componentHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel || statements == nil {
		return
	}

	statements.WithLabelValues(level.String(), string(h)).Inc()
}

// writeFailed is installed as zerolog.ErrorHandler.
func writeFailed(err error) {
	if writeFailures != nil {
		writeFailures.Inc()
	}

	_, _ = fmt.Fprintf(os.Stderr, "settingskit: log event dropped: %v\n", err)
}
