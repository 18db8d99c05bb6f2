// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package taskstate

import "fmt"

// Status is the lifecycle status of a task instance.
type Status string

const (
	Runahead       Status = "runahead"
	Waiting        Status = "waiting"
	Held           Status = "held"
	Queued         Status = "queued"
	Expired        Status = "expired"
	Ready          Status = "ready"
	SubmitFailed   Status = "submit-failed"
	SubmitRetrying Status = "submit-retrying"
	Submitted      Status = "submitted"
	Retrying       Status = "retrying"
	Running        Status = "running"
	Failed         Status = "failed"
	Succeeded      Status = "succeeded"
)

// ordered defines the status order. Position, not spelling, drives
// StatusLeq and StatusGeq.
var ordered = []Status{
	Runahead,
	Waiting,
	Held,
	Queued,
	Expired,
	Ready,
	SubmitFailed,
	SubmitRetrying,
	Submitted,
	Retrying,
	Running,
	Failed,
	Succeeded,
}

var index = func() map[Status]int {
	m := make(map[Status]int, len(ordered))
	for i, s := range ordered {
		m[s] = i
	}
	return m
}()

// Ordered returns every status in lifecycle order.
func Ordered() []Status { return append([]Status(nil), ordered...) }

// Index returns the position of s in the lifecycle order, or -1.
func (s Status) Index() int {
	if i, ok := index[s]; ok {
		return i
	}
	return -1
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool { return s.Index() >= 0 }

// ParseStatus validates a status name.
func ParseStatus(name string) (Status, error) {
	s := Status(name)
	if !s.Valid() {
		return "", fmt.Errorf("unknown task status %q", name)
	}
	return s, nil
}

// StatusLeq reports whether a comes no later than b in lifecycle order.
func StatusLeq(a, b Status) bool { return a.Index() <= b.Index() }

// StatusGeq reports whether a comes no earlier than b in lifecycle order.
func StatusGeq(a, b Status) bool { return a.Index() >= b.Index() }

type statusSet map[Status]struct{}

func newSet(ss ...Status) statusSet {
	m := make(statusSet, len(ss))
	for _, s := range ss {
		m[s] = struct{}{}
	}
	return m
}

func (m statusSet) has(s Status) bool {
	_, ok := m[s]
	return ok
}

var (
	activeSet    = newSet(Submitted, Running)
	finalSet     = newSet(Expired, Succeeded, Failed, SubmitFailed)
	toBeHeldSet  = newSet(Waiting, Queued, SubmitRetrying, Retrying)
	canResetTo   = newSet(Expired, Waiting, Ready, Submitted, SubmitFailed, Running, Succeeded, Failed)
	startedSet   = newSet(Running, Succeeded, Failed)
)

// IsActive reports whether a job is in flight for the status.
func IsActive(s Status) bool { return activeSet.has(s) }

// IsFinal reports whether the status ends the instance's lifecycle.
func IsFinal(s Status) bool { return finalSet.has(s) }

// CanBeHeld reports whether a task in status s moves straight to held.
func CanBeHeld(s Status) bool { return toBeHeldSet.has(s) }

// CanResetTo reports whether s is an allowed target of a manual reset.
func CanResetTo(s Status) bool { return canResetTo.has(s) }

// HasStarted reports whether a job in status s has begun executing.
func HasStarted(s Status) bool { return startedSet.has(s) }

// ResetTargets lists the allowed manual reset targets in lifecycle order.
func ResetTargets() []Status {
	var out []Status
	for _, s := range ordered {
		if canResetTo.has(s) {
			out = append(out, s)
		}
	}
	return out
}
