// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package taskdef

import (
	"github.com/specialistvlad/cyclegrid/internal/cycling"
	"github.com/specialistvlad/cyclegrid/internal/prerequisite"
	"github.com/specialistvlad/cyclegrid/internal/trigger"
)

// Dependency is one trigger expression of a task on one sequence.
// Conditions and Triggers are parallel: Triggers[i] resolves Conditions[i].
type Dependency struct {
	Expr       trigger.Expr
	Conditions []trigger.Condition
	Triggers   []TaskTrigger
	Suicide    bool
}

// NewDependency builds a Dependency from a parsed trigger expression.
func NewDependency(expr trigger.Expr, suicide bool) Dependency {
	d := Dependency{Expr: expr, Suicide: suicide}
	if expr == nil {
		return d
	}
	seen := map[trigger.Condition]bool{}
	for _, c := range expr.Conditions() {
		if seen[c] {
			continue
		}
		seen[c] = true
		d.Conditions = append(d.Conditions, c)
		d.Triggers = append(d.Triggers, TriggerFor(c))
	}
	return d
}

// Prerequisite resolves the dependency for the instance of def at point.
// A condition on an instance before the start point is pre-initial, unless
// the instance itself precedes the start point.
func (d Dependency) Prerequisite(point cycling.Point, def *Definition) (*prerequisite.Prerequisite, error) {
	p := prerequisite.New(point)
	leafKeys := make(map[trigger.Condition]prerequisite.Key, len(d.Triggers))
	for i, t := range d.Triggers {
		target, err := t.Point(point, def.System, def.InitialPoint, def.FinalPoint)
		if err != nil {
			return nil, err
		}
		preInitial := cycling.Before(target, def.StartPoint) && !cycling.Before(point, def.StartPoint)
		leafKeys[d.Conditions[i]] = p.Add(t.Task, target, t.Output, preInitial)
	}
	if d.Expr != nil {
		p.SetCondition(d.Expr, leafKeys)
	}
	return p, nil
}
