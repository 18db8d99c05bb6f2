// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package taskdef

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
	"github.com/specialistvlad/cyclegrid/internal/trigger"
)

// TaskTrigger is one upstream output a dependency refers to.
//
// Offset is empty for the same cycle point, a signed interval such as "-P1"
// for a relative point, "^" or "$" (optionally followed by an interval) for
// the initial or final point, or an absolute point.
type TaskTrigger struct {
	Task   string
	Offset string
	Output string
}

// TriggerFor converts a graph condition into a TaskTrigger.
func TriggerFor(c trigger.Condition) TaskTrigger {
	return TaskTrigger{Task: c.Task, Offset: c.Offset, Output: c.Output()}
}

func (t TaskTrigger) String() string {
	if t.Offset == "" {
		return t.Task + ":" + t.Output
	}
	return fmt.Sprintf("%s[%s]:%s", t.Task, t.Offset, t.Output)
}

// IsAbsolute reports whether the target point does not depend on the
// instance point.
func (t TaskTrigger) IsAbsolute() bool {
	if t.Offset == "" {
		return false
	}
	return !strings.HasPrefix(t.Offset, "+") && !strings.HasPrefix(t.Offset, "-")
}

// Point resolves the upstream cycle point for the instance at point.
func (t TaskTrigger) Point(point cycling.Point, sys cycling.System, initial, final cycling.Point) (cycling.Point, error) {
	off := strings.TrimSpace(t.Offset)
	switch {
	case off == "":
		return point, nil
	case strings.HasPrefix(off, "^"):
		return anchored(sys, off[1:], initial, "initial", t)
	case strings.HasPrefix(off, "$"):
		return anchored(sys, off[1:], final, "final", t)
	}
	target, err := sys.RelativePoint(off, point)
	if err != nil {
		return nil, fmt.Errorf("trigger %s: %w", t, err)
	}
	return target, nil
}

func anchored(sys cycling.System, rest string, anchor cycling.Point, name string, t TaskTrigger) (cycling.Point, error) {
	if anchor == nil {
		return nil, fmt.Errorf("trigger %s: no %s cycle point", t, name)
	}
	if rest == "" {
		return anchor, nil
	}
	target, err := sys.RelativePoint(rest, anchor)
	if err != nil {
		return nil, fmt.Errorf("trigger %s: %w", t, err)
	}
	return target, nil
}
