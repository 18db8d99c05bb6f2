// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package taskstate

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
	"github.com/specialistvlad/cyclegrid/internal/prerequisite"
	"github.com/specialistvlad/cyclegrid/internal/taskid"
)

// PointPlaceholder is replaced by the instance's cycle point in external
// trigger messages.
const PointPlaceholder = "$CYLC_TASK_CYCLE_POINT"

// Snapshot is the externally visible pair of status and held marker.
type Snapshot struct {
	Status   Status
	HoldSwap Status
}

func (s Snapshot) String() string {
	if s.HoldSwap == "" {
		return string(s.Status)
	}
	return fmt.Sprintf("%s (%s)", s.Status, s.HoldSwap)
}

// TaskState is the state of one task instance.
type TaskState struct {
	id     taskid.ID
	point  cycling.Point
	status Status

	// pendingHold is set when a hold was requested while a job was active.
	pendingHold bool
	// remembered is the status a held task returns to on release.
	remembered Status

	prerequisites []*prerequisite.Prerequisite
	suicides      []*prerequisite.Prerequisite

	satCached, satValue bool
	suiCached, suiValue bool

	outputs *Outputs

	extOrder    []string
	extTriggers map[string]bool
	xtriggers   map[string]bool

	// KillFailed records a failed attempt to kill the job.
	KillFailed bool

	logger *slog.Logger
}

// Option configures a TaskState.
type Option func(*TaskState)

// WithPrerequisites attaches ordinary prerequisites.
func WithPrerequisites(ps ...*prerequisite.Prerequisite) Option {
	return func(s *TaskState) { s.prerequisites = append(s.prerequisites, ps...) }
}

// WithSuicidePrerequisites attaches prerequisites that remove the instance
// when satisfied.
func WithSuicidePrerequisites(ps ...*prerequisite.Prerequisite) Option {
	return func(s *TaskState) { s.suicides = append(s.suicides, ps...) }
}

// WithOutputs registers custom outputs as label to message.
func WithOutputs(custom map[string]string) Option {
	return func(s *TaskState) { s.outputs = NewOutputs(custom) }
}

// WithExternalTriggers registers external trigger messages. The point
// placeholder is substituted.
func WithExternalTriggers(msgs ...string) Option {
	return func(s *TaskState) {
		for _, m := range msgs {
			m = strings.ReplaceAll(m, PointPlaceholder, s.point.String())
			if _, ok := s.extTriggers[m]; !ok {
				s.extOrder = append(s.extOrder, m)
			}
			s.extTriggers[m] = false
		}
	}
}

// WithXTriggers registers xtrigger labels.
func WithXTriggers(labels ...string) Option {
	return func(s *TaskState) {
		for _, l := range labels {
			s.xtriggers[l] = false
		}
	}
}

// WithLogger sets the logger used for status changes.
func WithLogger(l *slog.Logger) Option {
	return func(s *TaskState) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates the state of task name at point with an initial status.
func New(name string, point cycling.Point, status Status, opts ...Option) *TaskState {
	s := &TaskState{
		id:          taskid.New(name, point.String()),
		point:       point,
		status:      status,
		outputs:     NewOutputs(nil),
		extTriggers: map[string]bool{},
		xtriggers:   map[string]bool{},
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the instance identifier.
func (s *TaskState) ID() taskid.ID { return s.id }

// Point returns the instance cycle point.
func (s *TaskState) Point() cycling.Point { return s.point }

// Status returns the current status.
func (s *TaskState) Status() Status { return s.status }

// PendingHold reports whether a hold is deferred until the active job ends.
func (s *TaskState) PendingHold() bool { return s.pendingHold }

// Remembered returns the status a held task returns to, if any.
func (s *TaskState) Remembered() Status { return s.remembered }

// HoldSwap returns the single-field view of the held marker: "held" while a
// hold is pending, the remembered status while held, or "".
func (s *TaskState) HoldSwap() Status {
	if s.pendingHold {
		return Held
	}
	return s.remembered
}

// Snapshot returns the current status and held marker.
func (s *TaskState) Snapshot() Snapshot {
	return Snapshot{Status: s.status, HoldSwap: s.HoldSwap()}
}

// Outputs returns the instance outputs.
func (s *TaskState) Outputs() *Outputs { return s.outputs }

// Prerequisites returns the ordinary prerequisites.
func (s *TaskState) Prerequisites() []*prerequisite.Prerequisite { return s.prerequisites }

// SuicidePrerequisites returns the suicide prerequisites.
func (s *TaskState) SuicidePrerequisites() []*prerequisite.Prerequisite { return s.suicides }

// IsGreaterThan reports whether the current status is later than status.
func (s *TaskState) IsGreaterThan(status Status) bool {
	return s.status.Index() > status.Index()
}

func (s *TaskState) clearMarker() {
	s.pendingHold = false
	s.remembered = ""
}

func (s *TaskState) markPendingHold() {
	s.pendingHold = true
	s.remembered = ""
}

func (s *TaskState) remember(status Status) {
	s.pendingHold = false
	s.remembered = status
}

// setState applies a normal status change and keeps the held marker
// consistent. It returns the previous snapshot when anything changed.
func (s *TaskState) setState(status Status) (Snapshot, bool) {
	if s.HoldSwap() == s.status {
		s.clearMarker()
	}
	if status == s.status && !s.pendingHold && s.remembered == "" {
		return Snapshot{}, false
	}
	prev := s.Snapshot()

	switch {
	case status == Held:
		s.remember(s.status)
	case IsActive(status):
		if s.status == Held {
			s.markPendingHold()
		}
	case s.pendingHold && !IsFinal(status):
		s.remember(status)
		status = Held
	default:
		s.clearMarker()
	}

	if status == s.status && s.HoldSwap() == prev.HoldSwap {
		return Snapshot{}, false
	}
	s.status = status
	s.logChange(prev)
	return prev, true
}

func (s *TaskState) logChange(prev Snapshot) {
	s.logger.Debug(fmt.Sprintf("[%s] -%s => %s", s.id, prev, s.Snapshot()),
		"task", s.id.String(),
		"from", string(prev.Status),
		"to", string(s.status),
	)
}

// SetStatus applies a normal status change, such as one reported by a job.
func (s *TaskState) SetStatus(status Status) (Snapshot, bool) {
	return s.setState(status)
}

// SetHeld holds the task. An active task keeps its status and is held when
// its job ends; a waiting-like task moves to held at once. Other statuses
// are left alone and ok is false.
func (s *TaskState) SetHeld() (prev Snapshot, ok bool) {
	switch {
	case IsActive(s.status):
		prev = s.Snapshot()
		s.markPendingHold()
		return prev, true
	case CanBeHeld(s.status):
		return s.setState(Held)
	}
	return Snapshot{}, false
}

// UnsetHeld releases the task. A pending hold is simply cleared. A held task
// returns to its remembered status without any reset side effects, so its
// outputs and prerequisites stay as they were. Only a held task with no
// remembered status is reset to waiting; a task that is neither held nor
// pending a hold is left alone.
func (s *TaskState) UnsetHeld() (prev Snapshot, ok bool) {
	switch {
	case s.pendingHold:
		prev = s.Snapshot()
		s.clearMarker()
		return prev, true
	case s.remembered != "":
		prev = s.Snapshot()
		s.status = s.remembered
		s.clearMarker()
		s.logChange(prev)
		return prev, true
	case s.status == Held:
		return s.ResetState(Waiting)
	}
	return Snapshot{}, false
}

// ResetState forces the task into status. Standard outputs are set to match
// the new status; custom outputs are only cleared when resetting to
// submitted or earlier. Resetting to waiting also clears the ordinary
// prerequisites. Callers must check CanResetTo first.
func (s *TaskState) ResetState(status Status) (Snapshot, bool) {
	if StatusLeq(status, Submitted) {
		s.outputs.SetAllIncomplete()
	}
	s.outputs.SetCompletion(OutputExpired, status == Expired)
	s.outputs.SetCompletion(OutputSubmitted, StatusGeq(status, Submitted))
	s.outputs.SetCompletion(OutputStarted, StatusGeq(status, Running))
	s.outputs.SetCompletion(OutputSubmitFailed, status == SubmitFailed)
	s.outputs.SetCompletion(OutputSucceeded, status == Succeeded)
	s.outputs.SetCompletion(OutputFailed, status == Failed)
	if status == Waiting {
		s.SetPrerequisitesNotSatisfied()
	}
	return s.setState(status)
}

func (s *TaskState) invalidate() {
	s.satCached = false
	s.suiCached = false
}

// SatisfyMe offers completed outputs to every prerequisite, ordinary and
// suicide. It returns the conditions that became satisfied.
func (s *TaskState) SatisfyMe(outputs map[prerequisite.Key]struct{}) []prerequisite.Key {
	var used []prerequisite.Key
	for _, p := range s.prerequisites {
		used = append(used, p.SatisfyMe(outputs)...)
	}
	for _, p := range s.suicides {
		used = append(used, p.SatisfyMe(outputs)...)
	}
	if len(used) > 0 {
		s.invalidate()
	}
	return used
}

// PrerequisitesAreAllSatisfied reports whether every ordinary prerequisite
// is satisfied.
func (s *TaskState) PrerequisitesAreAllSatisfied() bool {
	if !s.satCached {
		s.satValue = allSatisfied(s.prerequisites)
		s.satCached = true
	}
	return s.satValue
}

// PrerequisitesNotAllSatisfied reports whether any ordinary prerequisite is
// unsatisfied.
func (s *TaskState) PrerequisitesNotAllSatisfied() bool {
	return !s.PrerequisitesAreAllSatisfied()
}

// SuicidePrerequisitesAreAllSatisfied reports whether the task should be
// removed. A task without suicide prerequisites never is.
func (s *TaskState) SuicidePrerequisitesAreAllSatisfied() bool {
	if len(s.suicides) == 0 {
		return false
	}
	if !s.suiCached {
		s.suiValue = allSatisfied(s.suicides)
		s.suiCached = true
	}
	return s.suiValue
}

func allSatisfied(ps []*prerequisite.Prerequisite) bool {
	for _, p := range ps {
		if !p.IsSatisfied() {
			return false
		}
	}
	return true
}

// SetPrerequisitesAllSatisfied force-satisfies every ordinary prerequisite.
func (s *TaskState) SetPrerequisitesAllSatisfied() {
	for _, p := range s.prerequisites {
		p.SetSatisfied()
	}
	s.invalidate()
}

// SetPrerequisitesNotSatisfied resets every ordinary prerequisite.
func (s *TaskState) SetPrerequisitesNotSatisfied() {
	for _, p := range s.prerequisites {
		p.SetNotSatisfied()
	}
	s.invalidate()
}

// ResolvedDependencies lists the satisfied upstream outputs, sorted.
func (s *TaskState) ResolvedDependencies() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range s.prerequisites {
		for _, k := range p.Resolved() {
			if key := k.String(); !seen[key] {
				seen[key] = true
				out = append(out, key)
			}
		}
	}
	sort.Strings(out)
	return out
}

// TargetPoints returns the distinct upstream points of the ordinary
// prerequisites, earliest first.
func (s *TaskState) TargetPoints() []cycling.Point {
	seen := map[string]bool{}
	var out []cycling.Point
	for _, p := range s.prerequisites {
		for _, pt := range p.TargetPoints() {
			if !seen[pt.String()] {
				seen[pt.String()] = true
				out = append(out, pt)
			}
		}
	}
	cycling.SortPoints(out)
	return out
}

// ExternalTriggers lists the external trigger messages in registration order.
func (s *TaskState) ExternalTriggers() []string { return append([]string(nil), s.extOrder...) }

// SatisfyExternalTrigger marks msg as received. It reports whether msg is a
// trigger of this task.
func (s *TaskState) SatisfyExternalTrigger(msg string) bool {
	if _, ok := s.extTriggers[msg]; !ok {
		return false
	}
	s.extTriggers[msg] = true
	return true
}

// ExternalTriggersAllSatisfied reports whether every external trigger was
// received.
func (s *TaskState) ExternalTriggersAllSatisfied() bool {
	for _, done := range s.extTriggers {
		if !done {
			return false
		}
	}
	return true
}

// SatisfyXTrigger marks an xtrigger label as satisfied.
func (s *TaskState) SatisfyXTrigger(label string) bool {
	if _, ok := s.xtriggers[label]; !ok {
		return false
	}
	s.xtriggers[label] = true
	return true
}

// XTriggers lists the xtrigger labels, sorted.
func (s *TaskState) XTriggers() []string {
	out := make([]string, 0, len(s.xtriggers))
	for l := range s.xtriggers {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// XTriggersAllSatisfied reports whether every xtrigger is satisfied.
func (s *TaskState) XTriggersAllSatisfied() bool {
	for _, done := range s.xtriggers {
		if !done {
			return false
		}
	}
	return true
}
