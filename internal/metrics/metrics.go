// Package metrics records task pool activity.
//
// The scheduler reports through the Recorder interface so that the pool can
// run without any collector attached. The Prometheus implementation keeps
// its collectors on a private registry, which lets several pools (or several
// tests) coexist in one process without duplicate registration panics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives task pool events.
type Recorder interface {
	ObserveTransition(from, to string)
	SetPoolSize(n int)
	ObserveSpawn(name string)
	ObserveRemoval(reason string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveTransition(string, string) {}
func (Nop) SetPoolSize(int)                  {}
func (Nop) ObserveSpawn(string)              {}
func (Nop) ObserveRemoval(string)            {}

// Prometheus is a Recorder backed by Prometheus collectors.
type Prometheus struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	spawns      *prometheus.CounterVec
	removals    *prometheus.CounterVec
	poolSize    prometheus.Gauge
}

// NewPrometheus builds the collectors and registers them, together with the
// Go runtime collector, on a fresh registry.
func NewPrometheus() *Prometheus {
	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cyclegrid",
			Subsystem: "pool",
			Name:      "task_transitions_total",
			Help:      "Task status changes, by previous and new status.",
		},
		[]string{"from", "to"},
	)
	spawns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cyclegrid",
			Subsystem: "pool",
			Name:      "task_spawns_total",
			Help:      "Task instances added to the pool, by task name.",
		},
		[]string{"task"},
	)
	removals := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cyclegrid",
			Subsystem: "pool",
			Name:      "task_removals_total",
			Help:      "Task instances removed from the pool, by reason.",
		},
		[]string{"reason"},
	)
	poolSize := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cyclegrid",
			Subsystem: "pool",
			Name:      "tasks",
			Help:      "Number of task instances currently in the pool.",
		},
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(transitions, spawns, removals, poolSize, collectors.NewGoCollector())

	return &Prometheus{
		registry:    reg,
		transitions: transitions,
		spawns:      spawns,
		removals:    removals,
		poolSize:    poolSize,
	}
}

func (p *Prometheus) ObserveTransition(from, to string) {
	p.transitions.WithLabelValues(from, to).Inc()
}

func (p *Prometheus) SetPoolSize(n int) { p.poolSize.Set(float64(n)) }

func (p *Prometheus) ObserveSpawn(name string) { p.spawns.WithLabelValues(name).Inc() }

func (p *Prometheus) ObserveRemoval(reason string) { p.removals.WithLabelValues(reason).Inc() }

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
