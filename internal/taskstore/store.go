// Package taskstore defines the interface for persisting the runtime state
// of task instances while a workflow runs.
//
// # Why Task Store Exists
//
// The task pool keeps live TaskState objects in memory, but every status
// change is also written out as a flat row. The row is what survives the
// pool: a restarted scheduler, a reporting command, or a test can read it
// back without touching pool internals.
//
// The store isolates **recorded history** (rows keyed by cycle, name and
// submit number) from the **live pool** (prerequisites, outputs, triggers)
// managed by the scheduler. The pool owns the truth while it runs; the store
// owns what was said about it.
//
// # Lifecycle and Usage
//
// The task store is:
//  1. **Created** once per scheduler run
//  2. **Written** by the pool after every state transition and hold change
//  3. **Queried** by callers that need the recorded state of tasks
//
// A row is replaced, not appended, when the same (cycle, name, submit_num)
// key is written again.
package taskstore

import (
	"context"
	"time"
)

// Row is the persisted state of one submission of one task instance.
type Row struct {
	Cycle     string
	Name      string
	SubmitNum int
	Status    string
	// HoldSwap is the status remembered while a task is held, or the
	// pending-hold marker. Empty when neither applies.
	HoldSwap string
	Updated  time.Time
}

// Key uniquely identifies a Row.
type Key struct {
	Cycle     string
	Name      string
	SubmitNum int
}

// Key returns the row's identity.
func (r Row) Key() Key {
	return Key{Cycle: r.Cycle, Name: r.Name, SubmitNum: r.SubmitNum}
}

// Filter selects rows. Zero-value fields match anything.
type Filter struct {
	Cycle    string
	Name     string
	Statuses []string
}

// Match reports whether r passes the filter.
func (f Filter) Match(r Row) bool {
	if f.Cycle != "" && f.Cycle != r.Cycle {
		return false
	}
	if f.Name != "" && f.Name != r.Name {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if s == r.Status {
			return true
		}
	}
	return false
}

// Store persists task state rows.
type Store interface {
	// PutTaskState inserts or replaces the row with the same Key.
	PutTaskState(ctx context.Context, row Row) error

	// SelectTaskStates returns the rows matching the filter, in the order
	// their keys were first written.
	SelectTaskStates(ctx context.Context, filter Filter) ([]Row, error)
}
