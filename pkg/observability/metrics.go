package observability

import (
	"context"
	"fmt"

	"github.com/aretw0/trestle/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects run metrics in its own Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	phases     *prometheus.CounterVec
	commands   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	iterations *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		phases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trestle_phases_total",
				Help: "Total number of phases started",
			},
			[]string{"phase"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trestle_commands_total",
				Help: "Total number of command attempts by outcome",
			},
			[]string{"command", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trestle_command_duration_seconds",
				Help:    "Duration of command actions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		iterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trestle_cycle_iterations_total",
				Help: "Total number of loop iterations started",
			},
			[]string{"cycle"},
		),
	}
	m.registry.MustRegister(m.phases, m.commands, m.duration, m.iterations)
	return m
}

// Registry exposes the underlying registry, e.g. for promhttp or further collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseStart: func(_ context.Context, e *domain.PhaseEvent) {
			m.phases.WithLabelValues(e.Phase).Inc()
		},
		OnCommandFinish: func(_ context.Context, e *domain.CommandEvent) {
			m.commands.WithLabelValues(e.Command, string(e.Status)).Inc()
			m.duration.WithLabelValues(e.Command).Observe(e.Duration.Seconds())
		},
		OnCommandSkip: func(_ context.Context, e *domain.CommandEvent) {
			m.commands.WithLabelValues(e.Command, string(domain.StatusSkipped)).Inc()
		},
		OnCycleIteration: func(_ context.Context, e *domain.CycleEvent) {
			if e.State == domain.CycleRunning {
				m.iterations.WithLabelValues(e.Cycle).Inc()
			}
		},
	}
}

// WriteToTextfile writes the current metrics in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
