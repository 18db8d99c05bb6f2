// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package scheduler

import (
	"context"
	"fmt"

	"github.com/specialistvlad/cyclegrid/internal/ctxlog"
	"github.com/specialistvlad/cyclegrid/internal/taskid"
	"github.com/specialistvlad/cyclegrid/internal/taskstate"
)

// outputStatus maps standard outputs to the status they put a task in.
var outputStatus = map[string]taskstate.Status{
	taskstate.OutputExpired:      taskstate.Expired,
	taskstate.OutputSubmitted:    taskstate.Submitted,
	taskstate.OutputSubmitFailed: taskstate.SubmitFailed,
	taskstate.OutputStarted:      taskstate.Running,
	taskstate.OutputSucceeded:    taskstate.Succeeded,
	taskstate.OutputFailed:       taskstate.Failed,
}

// impliedOutputs lists outputs a job must have passed through before
// reporting the key output.
var impliedOutputs = map[string][]string{
	taskstate.OutputStarted:   {taskstate.OutputSubmitted},
	taskstate.OutputSucceeded: {taskstate.OutputSubmitted, taskstate.OutputStarted},
	taskstate.OutputFailed:    {taskstate.OutputSubmitted, taskstate.OutputStarted},
}

// spawnsSuccessor reports whether an instance in status s has left the
// waiting stages for good.
func spawnsSuccessor(s taskstate.Status) bool {
	return taskstate.IsFinal(s) || taskstate.StatusGeq(s, taskstate.Submitted)
}

// ProcessOutput records an output reported for a task instance. output is
// either an output label or the message of a custom output.
func (p *Pool) ProcessOutput(ctx context.Context, id taskid.ID, output string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processOutput(ctx, id, output)
}

func (p *Pool) processOutput(ctx context.Context, id taskid.ID, output string) error {
	in, found := p.tasks[id]
	if !found {
		return fmt.Errorf("no such task in the pool: %s", id)
	}
	outs := in.state.Outputs()
	label := output
	if !outs.Exists(label) {
		var known bool
		if label, known = outs.LabelFor(output); !known {
			return fmt.Errorf("task %s has no output %q", id, output)
		}
	}

	ctxlog.FromContext(ctx).Debug("Processing output.", "task", id.String(), "output", label)

	labels := append([]string{label}, impliedOutputs[label]...)
	for _, l := range labels {
		outs.SetCompletion(l, true)
	}
	if status, standard := outputStatus[label]; standard {
		if status == taskstate.Submitted {
			in.submitNum++
		}
		if err := p.apply(ctx, in, func(st *taskstate.TaskState) (taskstate.Snapshot, bool) {
			return st.SetStatus(status)
		}); err != nil {
			return err
		}
		if spawnsSuccessor(status) {
			if err := p.spawnSuccessor(ctx, in); err != nil {
				return err
			}
		}
	}
	p.record(in, labels...)
	return p.settle(ctx)
}

// QueueReady moves every waiting instance whose prerequisites and triggers
// are satisfied through queued to ready, and returns their IDs.
func (p *Pool) QueueReady(ctx context.Context) ([]taskid.ID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queueReady(ctx)
}

func (p *Pool) queueReady(ctx context.Context) ([]taskid.ID, error) {
	var ready []taskid.ID
	for _, in := range p.sorted() {
		st := in.state
		if st.Status() != taskstate.Waiting {
			continue
		}
		if !st.PrerequisitesAreAllSatisfied() || !st.ExternalTriggersAllSatisfied() || !st.XTriggersAllSatisfied() {
			continue
		}
		for _, next := range []taskstate.Status{taskstate.Queued, taskstate.Ready} {
			if err := p.apply(ctx, in, func(st *taskstate.TaskState) (taskstate.Snapshot, bool) {
				return st.SetStatus(next)
			}); err != nil {
				return ready, err
			}
		}
		ready = append(ready, in.id())
	}
	return ready, nil
}

// Hold holds the given instances. Active ones are held when their job ends.
func (p *Pool) Hold(ctx context.Context, ids ...taskid.ID) Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.each(ctx, "hold", ids, (*taskstate.TaskState).SetHeld)
}

// Release releases held instances.
func (p *Pool) Release(ctx context.Context, ids ...taskid.ID) Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.each(ctx, "release", ids, (*taskstate.TaskState).UnsetHeld)
}

func (p *Pool) each(ctx context.Context, command string, ids []taskid.ID, change func(*taskstate.TaskState) (taskstate.Snapshot, bool)) Result {
	logger := ctxlog.FromContext(ctx)
	targets, err := p.lookup(ids)
	if err != nil {
		logger.Warn("Command rejected.", "command", command, "error", err)
		return rejected(err.Error())
	}
	for _, in := range targets {
		if err := p.apply(ctx, in, change); err != nil {
			return rejected(err.Error())
		}
	}
	if err := p.settle(ctx); err != nil {
		return rejected(err.Error())
	}
	logger.Info("Command succeeded.", "command", command, "tasks", len(targets))
	return ok()
}

// Reset forces instances into status. Only statuses in the reset set are
// accepted; anything else is rejected before any task is touched.
func (p *Pool) Reset(ctx context.Context, status string, ids ...taskid.ID) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	target, err := taskstate.ParseStatus(status)
	if err != nil {
		return rejected(err.Error())
	}
	if !taskstate.CanResetTo(target) {
		logger.Warn("Command rejected.", "command", "reset", "status", status)
		return rejected(fmt.Sprintf("cannot reset to %s, allowed: %v", status, taskstate.ResetTargets()))
	}
	targets, err := p.lookup(ids)
	if err != nil {
		return rejected(err.Error())
	}

	for _, in := range targets {
		if err := p.apply(ctx, in, func(st *taskstate.TaskState) (taskstate.Snapshot, bool) {
			return st.ResetState(target)
		}); err != nil {
			return rejected(err.Error())
		}
		if target == taskstate.Waiting {
			in.state.SatisfyMe(p.historySet())
		}
		if spawnsSuccessor(target) {
			if err := p.spawnSuccessor(ctx, in); err != nil {
				return rejected(err.Error())
			}
		}
		p.record(in, in.state.Outputs().Completed()...)
	}
	if err := p.settle(ctx); err != nil {
		return rejected(err.Error())
	}
	logger.Info("Command succeeded.", "command", "reset", "status", status, "tasks", len(targets))
	return ok()
}

// Remove takes instances out of the pool. Unless they already did, their
// successors are spawned so the sequences carry on.
func (p *Pool) Remove(ctx context.Context, ids ...taskid.ID) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	targets, err := p.lookup(ids)
	if err != nil {
		return rejected(err.Error())
	}
	for _, in := range targets {
		if err := p.spawnSuccessor(ctx, in); err != nil {
			return rejected(err.Error())
		}
		p.remove(ctx, in, reasonRemoved)
	}
	if err := p.settle(ctx); err != nil {
		return rejected(err.Error())
	}
	return ok()
}

// ExternalTrigger delivers an external trigger message to every instance
// waiting on it and returns how many accepted it.
func (p *Pool) ExternalTrigger(ctx context.Context, msg string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, in := range p.tasks {
		if in.state.SatisfyExternalTrigger(msg) {
			n++
		}
	}
	ctxlog.FromContext(ctx).Debug("External trigger received.", "message", msg, "tasks", n)
	return n
}

// XTrigger marks an xtrigger of one instance as satisfied.
func (p *Pool) XTrigger(ctx context.Context, id taskid.ID, label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	in, found := p.tasks[id]
	if !found {
		return fmt.Errorf("no such task in the pool: %s", id)
	}
	if !in.state.SatisfyXTrigger(label) {
		return fmt.Errorf("task %s has no xtrigger %q", id, label)
	}
	ctxlog.FromContext(ctx).Debug("Xtrigger satisfied.", "task", id.String(), "xtrigger", label)
	return nil
}

// Tasks lists the instances in the pool by point, then name.
func (p *Pool) Tasks() []taskid.ID {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]taskid.ID, 0, len(p.tasks))
	for _, in := range p.sorted() {
		ids = append(ids, in.id())
	}
	return ids
}

// Task returns a view of one instance.
func (p *Pool) Task(id taskid.ID) (TaskInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	in, found := p.tasks[id]
	if !found {
		return TaskInfo{}, false
	}
	return in.info(), true
}

// Snapshot returns a view of every instance, in Tasks order.
func (p *Pool) Snapshot() []TaskInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]TaskInfo, 0, len(p.tasks))
	for _, in := range p.sorted() {
		out = append(out, in.info())
	}
	return out
}
