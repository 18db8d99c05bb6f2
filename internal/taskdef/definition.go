// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package taskdef

import (
	"fmt"
	"log/slog"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
	"github.com/specialistvlad/cyclegrid/internal/prerequisite"
	"github.com/specialistvlad/cyclegrid/internal/taskstate"
)

// SeqDeps groups the dependencies a task has on one sequence.
type SeqDeps struct {
	Sequence     cycling.Sequence
	Dependencies []Dependency
}

// Definition is the static description of one task.
type Definition struct {
	Name   string
	System cycling.System

	Sequences    []cycling.Sequence
	Dependencies []SeqDeps
	Sequential   bool

	// StartPoint is where the task starts; it defaults to InitialPoint.
	StartPoint   cycling.Point
	InitialPoint cycling.Point
	FinalPoint   cycling.Point

	// Outputs maps custom output labels to job messages.
	Outputs          map[string]string
	ExternalTriggers []string
	XTrigLabels      []string

	// Namespaces lists the task followed by its ancestors, nearest first.
	Namespaces []string
}

// New returns an empty definition bounded by the workflow points.
func New(name string, sys cycling.System, initial, final cycling.Point) *Definition {
	return &Definition{
		Name:         name,
		System:       sys,
		StartPoint:   initial,
		InitialPoint: initial,
		FinalPoint:   final,
		Outputs:      map[string]string{},
		Namespaces:   []string{name},
	}
}

// AddSequence registers a sequence the task runs on. Sequences are matched
// by their expression, so adding one twice is harmless.
func (d *Definition) AddSequence(seq cycling.Sequence) {
	for _, s := range d.Sequences {
		if s.String() == seq.String() {
			return
		}
	}
	d.Sequences = append(d.Sequences, seq)
}

// AddDependency attaches dep to the task on seq.
func (d *Definition) AddDependency(dep Dependency, seq cycling.Sequence) {
	d.AddSequence(seq)
	for i := range d.Dependencies {
		if d.Dependencies[i].Sequence.String() == seq.String() {
			d.Dependencies[i].Dependencies = append(d.Dependencies[i].Dependencies, dep)
			return
		}
	}
	d.Dependencies = append(d.Dependencies, SeqDeps{Sequence: seq, Dependencies: []Dependency{dep}})
}

// AddXTrigger registers an xtrigger label once.
func (d *Definition) AddXTrigger(label string) {
	for _, l := range d.XTrigLabels {
		if l == label {
			return
		}
	}
	d.XTrigLabels = append(d.XTrigLabels, label)
}

// IsValidPoint reports whether any sequence of the task produces p.
func (d *Definition) IsValidPoint(p cycling.Point) bool {
	for _, s := range d.Sequences {
		if s.IsValid(p) {
			return true
		}
	}
	return false
}

// FirstPoint returns the earliest valid point at or after p, or at or after
// the start point when p is nil.
func (d *Definition) FirstPoint(p cycling.Point) cycling.Point {
	if p == nil || cycling.Before(p, d.StartPoint) {
		p = d.StartPoint
	}
	var out []cycling.Point
	for _, s := range d.Sequences {
		out = append(out, s.FirstPoint(p))
	}
	return cycling.Min(out...)
}

// NextPoint returns the earliest valid point after p across all sequences.
func (d *Definition) NextPoint(p cycling.Point) cycling.Point {
	var out []cycling.Point
	for _, s := range d.Sequences {
		if s.IsValid(p) {
			out = append(out, s.NextPoint(p))
		} else {
			out = append(out, s.FirstPoint(p))
		}
	}
	return cycling.Min(out...)
}

// NearestPrevPoint returns the latest valid point before p across all
// sequences.
func (d *Definition) NearestPrevPoint(p cycling.Point) cycling.Point {
	var out []cycling.Point
	for _, s := range d.Sequences {
		out = append(out, s.NearestPrevPoint(p))
	}
	return cycling.Max(out...)
}

// Prerequisites builds the ordinary and suicide prerequisites of the
// instance at point.
func (d *Definition) Prerequisites(point cycling.Point) (prereqs, suicides []*prerequisite.Prerequisite, err error) {
	for _, sd := range d.Dependencies {
		if !sd.Sequence.IsValid(point) {
			continue
		}
		for _, dep := range sd.Dependencies {
			p, err := dep.Prerequisite(point, d)
			if err != nil {
				return nil, nil, fmt.Errorf("task %s at %s: %w", d.Name, point, err)
			}
			if dep.Suicide {
				suicides = append(suicides, p)
			} else {
				prereqs = append(prereqs, p)
			}
		}
	}
	if d.Sequential {
		if p := d.sequentialPrerequisite(point); p != nil {
			prereqs = append(prereqs, p)
		}
	}
	return prereqs, suicides, nil
}

// sequentialPrerequisite requires the previous instance to have succeeded.
func (d *Definition) sequentialPrerequisite(point cycling.Point) *prerequisite.Prerequisite {
	prev := d.NearestPrevPoint(point)
	if prev == nil {
		return nil
	}
	p := prerequisite.New(point)
	p.Add(d.Name, prev, taskstate.OutputSucceeded, cycling.Before(prev, d.StartPoint))
	return p
}

// NewState creates the state of the instance at point.
func (d *Definition) NewState(point cycling.Point, status taskstate.Status, logger *slog.Logger) (*taskstate.TaskState, error) {
	prereqs, suicides, err := d.Prerequisites(point)
	if err != nil {
		return nil, err
	}
	return taskstate.New(d.Name, point, status,
		taskstate.WithPrerequisites(prereqs...),
		taskstate.WithSuicidePrerequisites(suicides...),
		taskstate.WithOutputs(d.Outputs),
		taskstate.WithExternalTriggers(d.ExternalTriggers...),
		taskstate.WithXTriggers(d.XTrigLabels...),
		taskstate.WithLogger(logger),
	), nil
}
