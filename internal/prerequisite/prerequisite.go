// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package prerequisite tracks the conditions a task instance waits on.
//
// A Prerequisite holds one trigger expression from the graph, resolved to
// concrete (task, point, output) keys for a given cycle point. It answers a
// single question, "is this satisfied yet?", and caches the answer until a
// condition changes.
package prerequisite

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
	"github.com/specialistvlad/cyclegrid/internal/trigger"
)

// Key identifies an output of one task instance.
type Key struct {
	Task   string
	Point  string
	Output string
}

func (k Key) String() string { return fmt.Sprintf("%s/%s %s", k.Point, k.Task, k.Output) }

// State is the satisfaction state of one condition.
type State int

const (
	Unsatisfied State = iota
	// SatisfiedNaturally means the upstream output was reported complete.
	SatisfiedNaturally
	// ForceSatisfied means the condition was satisfied by an operator.
	ForceSatisfied
	// PreInitial means the upstream instance lies before the workflow start
	// and will never exist, so the condition is ignored.
	PreInitial
)

func (s State) String() string {
	switch s {
	case SatisfiedNaturally:
		return "satisfied naturally"
	case ForceSatisfied:
		return "force satisfied"
	case PreInitial:
		return "satisfied (before initial cycle point)"
	}
	return "unsatisfied"
}

func (s State) satisfied() bool { return s != Unsatisfied }

// Prerequisite is the set of conditions of one trigger expression.
type Prerequisite struct {
	point  cycling.Point
	order  []Key
	states map[Key]State
	points map[Key]cycling.Point

	expr     trigger.Expr
	leafKeys map[trigger.Condition]Key

	cached    bool
	satisfied bool
}

// New returns an empty prerequisite for the instance at point.
func New(point cycling.Point) *Prerequisite {
	return &Prerequisite{
		point:  point,
		states: map[Key]State{},
		points: map[Key]cycling.Point{},
	}
}

// Point returns the cycle point of the owning task instance.
func (p *Prerequisite) Point() cycling.Point { return p.point }

// Add registers a condition on the output of the instance at target. A
// pre-initial condition is recorded but never waited on.
func (p *Prerequisite) Add(task string, target cycling.Point, output string, preInitial bool) Key {
	k := Key{Task: task, Point: target.String(), Output: output}
	if _, ok := p.states[k]; !ok {
		p.order = append(p.order, k)
	}
	state := Unsatisfied
	if preInitial {
		state = PreInitial
	}
	p.states[k] = state
	p.points[k] = target
	p.cached = false
	return k
}

// SetCondition attaches a boolean expression over the conditions. leafKeys
// maps each expression leaf to the key added for it. Without a condition all
// keys must be satisfied.
func (p *Prerequisite) SetCondition(expr trigger.Expr, leafKeys map[trigger.Condition]Key) {
	p.expr = expr
	p.leafKeys = leafKeys
	p.cached = false
}

// Keys lists the conditions in the order they were added.
func (p *Prerequisite) Keys() []Key { return append([]Key(nil), p.order...) }

// StateOf returns the state of one condition.
func (p *Prerequisite) StateOf(k Key) (State, bool) {
	s, ok := p.states[k]
	return s, ok
}

// IsSatisfied evaluates the prerequisite, using the cached result when no
// condition changed since the last call.
func (p *Prerequisite) IsSatisfied() bool {
	if !p.cached {
		p.satisfied = p.evaluate()
		p.cached = true
	}
	return p.satisfied
}

func (p *Prerequisite) evaluate() bool {
	if p.expr == nil {
		for _, s := range p.states {
			if !s.satisfied() {
				return false
			}
		}
		return true
	}
	pruned := p.expr.Prune(func(c trigger.Condition) bool {
		return p.states[p.leafKeys[c]] == PreInitial
	})
	if pruned == nil {
		return true
	}
	return pruned.Eval(func(c trigger.Condition) bool {
		k, ok := p.leafKeys[c]
		return ok && p.states[k].satisfied()
	})
}

// SatisfyMe marks every unsatisfied condition found in outputs as satisfied
// and returns the keys that changed.
func (p *Prerequisite) SatisfyMe(outputs map[Key]struct{}) []Key {
	var changed []Key
	for _, k := range p.order {
		if p.states[k] != Unsatisfied {
			continue
		}
		if _, ok := outputs[k]; ok {
			p.states[k] = SatisfiedNaturally
			changed = append(changed, k)
		}
	}
	if len(changed) > 0 {
		p.cached = false
	}
	return changed
}

// SetSatisfied force-satisfies every outstanding condition.
func (p *Prerequisite) SetSatisfied() {
	for _, k := range p.order {
		if p.states[k] == Unsatisfied {
			p.states[k] = ForceSatisfied
		}
	}
	p.cached = false
}

// SetNotSatisfied resets every condition except pre-initial ones.
func (p *Prerequisite) SetNotSatisfied() {
	for _, k := range p.order {
		if p.states[k] != PreInitial {
			p.states[k] = Unsatisfied
		}
	}
	p.cached = false
}

// Resolved lists the satisfied (non pre-initial) conditions.
func (p *Prerequisite) Resolved() []Key {
	var out []Key
	for _, k := range p.order {
		if s := p.states[k]; s == SatisfiedNaturally || s == ForceSatisfied {
			out = append(out, k)
		}
	}
	return out
}

// TargetPoints returns the distinct upstream points, earliest first.
func (p *Prerequisite) TargetPoints() []cycling.Point {
	seen := map[string]bool{}
	var out []cycling.Point
	for _, k := range p.order {
		if !seen[k.Point] {
			seen[k.Point] = true
			out = append(out, p.points[k])
		}
	}
	cycling.SortPoints(out)
	return out
}

// Condition is one row of Dump.
type Condition struct {
	Key   Key
	State State
}

// Dump lists every condition with its state, sorted by key text.
func (p *Prerequisite) Dump() []Condition {
	out := make([]Condition, 0, len(p.order))
	for _, k := range p.order {
		out = append(out, Condition{Key: k, State: p.states[k]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out
}
