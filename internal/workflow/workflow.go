// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/cyclegrid/internal/config"
	"github.com/specialistvlad/cyclegrid/internal/ctxlog"
	"github.com/specialistvlad/cyclegrid/internal/cycling"
	"github.com/specialistvlad/cyclegrid/internal/cycling/loader"
	"github.com/specialistvlad/cyclegrid/internal/dag"
	"github.com/specialistvlad/cyclegrid/internal/graph"
	"github.com/specialistvlad/cyclegrid/internal/param"
	"github.com/specialistvlad/cyclegrid/internal/taskdef"
	"github.com/specialistvlad/cyclegrid/internal/taskstate"
)

// Section is one parsed graph section.
type Section struct {
	Recurrence string
	Sequence   cycling.Sequence
	Triggers   map[string]map[string]graph.Entry
	Polling    map[string]graph.PollingTask
}

// Workflow is a validated, ready-to-schedule workflow.
type Workflow struct {
	sys       cycling.System
	initial   cycling.Point
	final     cycling.Point
	runahead  cycling.Interval
	holdAfter cycling.Point

	params   *param.Params
	families map[string][]string
	sections []*Section
	defs     map[string]*taskdef.Definition
	names    []string
}

// Build validates the model and creates every task definition.
func Build(ctx context.Context, m *config.Model) (*Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	if m == nil || m.Scheduling == nil {
		return nil, configErrorf("scheduling", "missing scheduling section")
	}
	s := m.Scheduling

	w := &Workflow{defs: map[string]*taskdef.Definition{}}
	if err := w.setCycling(s); err != nil {
		return nil, err
	}
	logger.Debug("Cycling configured.",
		"mode", string(w.sys.Mode()),
		"initial", w.initial.String(),
		"final", pointString(w.final),
	)

	params, err := buildParams(m.Parameters, m.ParameterTemplates)
	if err != nil {
		return nil, err
	}
	w.params = params

	rt, err := buildRuntime(m, params)
	if err != nil {
		return nil, err
	}
	w.families = rt.families()

	if len(s.Graphs) == 0 {
		return nil, configErrorf("scheduling", "no graph defined")
	}
	for _, gs := range s.Graphs {
		if err := w.addSection(gs); err != nil {
			return nil, err
		}
	}

	for _, name := range rt.tasks() {
		if _, ok := w.defs[name]; !ok {
			logger.Warn("Task defined but not used in the graph.", "task", name)
		}
	}
	for name, def := range w.defs {
		def.Namespaces = rt.lineage(name)
		if t := rt.task(name); t != nil {
			def.Sequential = t.Sequential
			for label, msg := range t.Outputs {
				if taskstate.IsStandardOutput(label) {
					return nil, configErrorf("runtime "+name, "output %q shadows a standard output", label)
				}
				def.Outputs[label] = msg
			}
			def.ExternalTriggers = append(def.ExternalTriggers, t.ExternalTriggers...)
		}
		w.names = append(w.names, name)
	}
	sort.Strings(w.names)

	if err := w.checkTriggers(); err != nil {
		return nil, err
	}
	if err := w.checkCycles(); err != nil {
		return nil, err
	}
	logger.Debug("Workflow built.", "tasks", len(w.names), "sections", len(w.sections))
	return w, nil
}

func pointString(p cycling.Point) string {
	if p == nil {
		return ""
	}
	return p.String()
}

func (w *Workflow) setCycling(s *config.Scheduling) error {
	sys, err := loader.New(s.CyclingMode)
	if err != nil {
		return &ConfigError{Section: "scheduling", Err: err}
	}
	w.sys = sys

	initial := s.InitialCyclePoint
	if initial == "" {
		if sys.Mode() != cycling.ModeInteger {
			return configErrorf("scheduling", "initial_cycle_point is required in %s mode", sys.Mode())
		}
		initial = "1"
	}
	if w.initial, err = sys.ParsePoint(initial); err != nil {
		return &ConfigError{Section: "scheduling", Err: fmt.Errorf("initial_cycle_point: %w", err)}
	}

	if s.FinalCyclePoint != "" {
		if w.final, err = sys.RelativePoint(s.FinalCyclePoint, w.initial); err != nil {
			return &ConfigError{Section: "scheduling", Err: fmt.Errorf("final_cycle_point: %w", err)}
		}
		if cycling.Before(w.final, w.initial) {
			return configErrorf("scheduling", "final cycle point %s is before initial cycle point %s", w.final, w.initial)
		}
	}

	if s.RunaheadLimit != "" {
		if w.runahead, err = sys.ParseInterval(s.RunaheadLimit); err != nil {
			return &ConfigError{Section: "scheduling", Err: fmt.Errorf("runahead_limit: %w", err)}
		}
	}
	if s.HoldAfterPoint != "" {
		if w.holdAfter, err = sys.ParsePoint(s.HoldAfterPoint); err != nil {
			return &ConfigError{Section: "scheduling", Err: fmt.Errorf("hold_after_point: %w", err)}
		}
	}
	return nil
}

func (w *Workflow) addSection(gs *config.GraphSection) error {
	seq, err := w.sys.NewSequence(gs.Recurrence, w.initial, w.final)
	if err != nil {
		return &ConfigError{Section: gs.Recurrence, Err: err}
	}
	p := graph.NewParser(w.families, w.params)
	if err := p.Parse(gs.Dependencies); err != nil {
		return &ConfigError{Section: gs.Recurrence, Err: err}
	}

	for _, name := range p.Tasks() {
		def := w.definition(name)
		entries := p.Triggers[name]
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			e := entries[k]
			if e.Expr == nil {
				def.AddSequence(seq)
				continue
			}
			def.AddDependency(taskdef.NewDependency(e.Expr, e.Suicide), seq)
		}
	}
	for name, labels := range p.XTriggers {
		def := w.definition(name)
		for _, l := range labels {
			def.AddXTrigger(l)
		}
	}
	w.sections = append(w.sections, &Section{
		Recurrence: gs.Recurrence,
		Sequence:   seq,
		Triggers:   p.Triggers,
		Polling:    p.PollingTasks,
	})
	return nil
}

func (w *Workflow) definition(name string) *taskdef.Definition {
	def, ok := w.defs[name]
	if !ok {
		def = taskdef.New(name, w.sys, w.initial, w.final)
		w.defs[name] = def
	}
	return def
}

// checkTriggers rejects triggers on tasks that never run and on custom
// outputs the upstream task does not declare.
func (w *Workflow) checkTriggers() error {
	for _, name := range w.names {
		for _, sd := range w.defs[name].Dependencies {
			for _, dep := range sd.Dependencies {
				for _, t := range dep.Triggers {
					up, ok := w.defs[t.Task]
					if !ok || len(up.Sequences) == 0 {
						return configErrorf(sd.Sequence.String(), "task %q triggers off %q, which is not on any graph sequence", name, t.Task)
					}
					if !taskstate.IsStandardOutput(t.Output) {
						if _, ok := up.Outputs[t.Output]; !ok {
							return configErrorf(sd.Sequence.String(), "task %q triggers off undefined output %q of %q", name, t.Output, t.Task)
						}
					}
				}
			}
		}
	}
	return nil
}

// checkCycles rejects dependency loops between instances at the same point.
func (w *Workflow) checkCycles() error {
	if err := w.DependencyGraph().DetectCycles(); err != nil {
		return &ConfigError{Section: "graph", Err: err}
	}
	return nil
}

// System returns the cycling system.
func (w *Workflow) System() cycling.System { return w.sys }

// InitialPoint returns the initial cycle point.
func (w *Workflow) InitialPoint() cycling.Point { return w.initial }

// FinalPoint returns the final cycle point, or nil.
func (w *Workflow) FinalPoint() cycling.Point { return w.final }

// Runahead returns the runahead limit, or nil for the default.
func (w *Workflow) Runahead() cycling.Interval { return w.runahead }

// HoldAfterPoint returns the point after which new tasks spawn held, or nil.
func (w *Workflow) HoldAfterPoint() cycling.Point { return w.holdAfter }

// Families returns the family member map.
func (w *Workflow) Families() map[string][]string { return w.families }

// Sections returns the graph sections in configuration order.
func (w *Workflow) Sections() []*Section { return w.sections }

// TaskNames lists every task in the graph, sorted.
func (w *Workflow) TaskNames() []string { return append([]string(nil), w.names...) }

// Definition returns the definition of a task.
func (w *Workflow) Definition(name string) (*taskdef.Definition, bool) {
	def, ok := w.defs[name]
	return def, ok
}

// Definitions returns every definition in name order.
func (w *Workflow) Definitions() []*taskdef.Definition {
	out := make([]*taskdef.Definition, 0, len(w.names))
	for _, name := range w.names {
		out = append(out, w.defs[name])
	}
	return out
}

// Points lists up to limit cycle points of a task, earliest first.
func (w *Workflow) Points(name string, limit int) ([]cycling.Point, error) {
	def, ok := w.defs[name]
	if !ok {
		return nil, fmt.Errorf("task %q is not in the graph", name)
	}
	var out []cycling.Point
	for p := def.FirstPoint(nil); p != nil && len(out) < limit; p = def.NextPoint(p) {
		out = append(out, p)
	}
	return out, nil
}

// DependencyGraph returns the same-point dependency graph of all tasks.
func (w *Workflow) DependencyGraph() *dag.Graph {
	g := dag.New()
	for _, name := range w.names {
		g.AddNode(name)
		for _, sd := range w.defs[name].Dependencies {
			for _, dep := range sd.Dependencies {
				for _, t := range dep.Triggers {
					if t.Offset == "" && !dep.Suicide {
						g.Connect(t.Task, name)
					}
				}
			}
		}
	}
	return g
}
