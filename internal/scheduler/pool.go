// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/specialistvlad/cyclegrid/internal/ctxlog"
	"github.com/specialistvlad/cyclegrid/internal/cycling"
	"github.com/specialistvlad/cyclegrid/internal/metrics"
	"github.com/specialistvlad/cyclegrid/internal/prerequisite"
	"github.com/specialistvlad/cyclegrid/internal/taskdef"
	"github.com/specialistvlad/cyclegrid/internal/taskid"
	"github.com/specialistvlad/cyclegrid/internal/taskstate"
	"github.com/specialistvlad/cyclegrid/internal/taskstore"
	"github.com/specialistvlad/cyclegrid/internal/workflow"
)

// DefaultMaxActivePoints bounds the runahead window when the workflow sets
// no runahead limit.
const DefaultMaxActivePoints = 3

// Pool is the set of live task instances of one workflow.
type Pool struct {
	mu sync.Mutex

	wf       *workflow.Workflow
	store    taskstore.Store
	recorder metrics.Recorder
	now      func() time.Time

	runahead        cycling.Interval
	maxActivePoints int

	tasks   map[taskid.ID]*instance
	history map[prerequisite.Key]cycling.Point

	recording bool
	step      int
	events    []Event
}

// Option configures a Pool.
type Option func(*Pool)

// WithRunahead overrides the workflow runahead limit.
func WithRunahead(limit cycling.Interval) Option {
	return func(p *Pool) { p.runahead = limit }
}

// WithMaxActivePoints sets the window size used when no runahead interval
// applies.
func WithMaxActivePoints(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.maxActivePoints = n
		}
	}
}

// WithRecorder reports pool activity to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pool) { p.recorder = r }
}

// WithClock sets the time source for persisted rows.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) { p.now = now }
}

// New creates an empty pool for wf. Call Start to spawn the first instances.
func New(wf *workflow.Workflow, store taskstore.Store, opts ...Option) *Pool {
	p := &Pool{
		wf:              wf,
		store:           store,
		recorder:        metrics.Nop{},
		now:             time.Now,
		runahead:        wf.Runahead(),
		maxActivePoints: DefaultMaxActivePoints,
		tasks:           map[taskid.ID]*instance{},
		history:         map[prerequisite.Key]cycling.Point{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start spawns the first instance of every task and releases those inside
// the runahead window.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, def := range p.wf.Definitions() {
		first := def.FirstPoint(nil)
		if first == nil {
			continue
		}
		if _, err := p.spawn(ctx, def, first); err != nil {
			return err
		}
	}
	return p.settle(ctx)
}

// Spawn inserts the instance of name at point, which must be a valid point
// of the task.
func (p *Pool) Spawn(ctx context.Context, name, point string) (taskid.ID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	def, found := p.wf.Definition(name)
	if !found {
		return taskid.ID{}, fmt.Errorf("task %q is not in the graph", name)
	}
	pt, err := p.wf.System().ParsePoint(point)
	if err != nil {
		return taskid.ID{}, err
	}
	if !def.IsValidPoint(pt) {
		return taskid.ID{}, fmt.Errorf("%s is not a valid cycle point of task %s", pt, name)
	}
	in, err := p.spawn(ctx, def, pt)
	if err != nil {
		return taskid.ID{}, err
	}
	if in == nil {
		return taskid.ID{}, fmt.Errorf("%s is beyond the final cycle point", pt)
	}
	return in.id(), p.settle(ctx)
}

// spawn creates the instance of def at point in the runahead state. It
// returns the existing instance when there is one, and nil when the point
// lies beyond the final cycle point.
func (p *Pool) spawn(ctx context.Context, def *taskdef.Definition, point cycling.Point) (*instance, error) {
	if final := p.wf.FinalPoint(); final != nil && cycling.Before(final, point) {
		return nil, nil
	}
	id := taskid.New(def.Name, point.String())
	if in, exists := p.tasks[id]; exists {
		return in, nil
	}

	logger := ctxlog.FromContext(ctx)
	st, err := def.NewState(point, taskstate.Runahead, logger)
	if err != nil {
		return nil, err
	}
	st.SatisfyMe(p.historySet())

	in := &instance{def: def, state: st}
	p.tasks[id] = in
	p.recorder.ObserveSpawn(def.Name)
	p.recorder.SetPoolSize(len(p.tasks))
	logger.Debug("Spawned task.", "task", id.String())
	return in, p.persist(ctx, in)
}

// spawnSuccessor creates the next instance of in's task once.
func (p *Pool) spawnSuccessor(ctx context.Context, in *instance) error {
	if in.spawned {
		return nil
	}
	in.spawned = true
	next := in.def.NextPoint(in.state.Point())
	if next == nil {
		return nil
	}
	_, err := p.spawn(ctx, in.def, next)
	return err
}

// settle brings the pool to a consistent state after a change: suicides
// are applied, the runahead window is released, spent instances are
// removed and the output history is pruned.
func (p *Pool) settle(ctx context.Context) error {
	if err := p.removeSuicides(ctx); err != nil {
		return err
	}
	if err := p.releaseRunahead(ctx); err != nil {
		return err
	}
	p.removeSpent(ctx)
	p.pruneHistory()
	return nil
}

// runaheadBase is the earliest point with an unfinished instance.
func (p *Pool) runaheadBase() cycling.Point {
	var base cycling.Point
	for _, in := range p.tasks {
		if taskstate.IsFinal(in.state.Status()) {
			continue
		}
		base = cycling.Min(base, in.state.Point())
	}
	return base
}

// runaheadLimit is the latest point allowed out of the runahead state.
func (p *Pool) runaheadLimit(base cycling.Point) (cycling.Point, error) {
	if p.runahead != nil {
		return base.Add(p.runahead)
	}
	limit := base
	for i := 1; i < p.maxActivePoints; i++ {
		next := p.nextWorkflowPoint(limit)
		if next == nil {
			break
		}
		limit = next
	}
	return limit, nil
}

// nextWorkflowPoint is the earliest point after pt on which any task runs.
func (p *Pool) nextWorkflowPoint(pt cycling.Point) cycling.Point {
	var next cycling.Point
	for _, def := range p.wf.Definitions() {
		next = cycling.Min(next, def.NextPoint(pt))
	}
	return next
}

func (p *Pool) releaseRunahead(ctx context.Context) error {
	base := p.runaheadBase()
	if base == nil {
		return nil
	}
	limit, err := p.runaheadLimit(base)
	if err != nil {
		return err
	}
	holdAfter := p.wf.HoldAfterPoint()
	for _, in := range p.sorted() {
		if in.state.Status() != taskstate.Runahead || cycling.Before(limit, in.state.Point()) {
			continue
		}
		if err := p.apply(ctx, in, func(st *taskstate.TaskState) (taskstate.Snapshot, bool) {
			return st.SetStatus(taskstate.Waiting)
		}); err != nil {
			return err
		}
		if holdAfter != nil && cycling.Before(holdAfter, in.state.Point()) {
			if err := p.apply(ctx, in, (*taskstate.TaskState).SetHeld); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pool) removeSuicides(ctx context.Context) error {
	for _, in := range p.sorted() {
		if !in.state.SuicidePrerequisitesAreAllSatisfied() {
			continue
		}
		// A task removed before it submitted still has to keep its
		// sequence going.
		if taskstate.StatusLeq(in.state.Status(), taskstate.Queued) {
			if err := p.spawnSuccessor(ctx, in); err != nil {
				return err
			}
		}
		p.remove(ctx, in, reasonSuicide)
	}
	return nil
}

// removeSpent drops finished instances of points before the runahead base.
// Their outputs live on in the history.
func (p *Pool) removeSpent(ctx context.Context) {
	base := p.runaheadBase()
	for _, in := range p.sorted() {
		st := in.state.Status()
		if st != taskstate.Succeeded && st != taskstate.Expired {
			continue
		}
		if !in.spawned {
			continue
		}
		if base == nil || cycling.Before(in.state.Point(), base) {
			p.remove(ctx, in, reasonSpent)
		}
	}
}

func (p *Pool) remove(ctx context.Context, in *instance, reason string) {
	delete(p.tasks, in.id())
	p.recorder.ObserveRemoval(reason)
	p.recorder.SetPoolSize(len(p.tasks))
	ctxlog.FromContext(ctx).Info("Removed task.", "task", in.id().String(), "reason", reason)
}

// historySet returns the completed outputs as a set of keys.
func (p *Pool) historySet() map[prerequisite.Key]struct{} {
	out := make(map[prerequisite.Key]struct{}, len(p.history))
	for k := range p.history {
		out[k] = struct{}{}
	}
	return out
}

// record adds the completed outputs of in to the history and offers them
// to every instance in the pool.
func (p *Pool) record(in *instance, labels ...string) {
	id := in.id()
	fresh := map[prerequisite.Key]struct{}{}
	for _, label := range labels {
		k := prerequisite.Key{Task: id.Name, Point: id.Point, Output: label}
		p.history[k] = in.state.Point()
		fresh[k] = struct{}{}
	}
	for _, other := range p.tasks {
		other.state.SatisfyMe(fresh)
	}
}

// pruneHistory forgets outputs older than anything the pool can still ask
// for. Spawned successors keep their own target points alive.
func (p *Pool) pruneHistory() {
	var cutoff cycling.Point
	for _, in := range p.tasks {
		cutoff = cycling.Min(cutoff, in.state.Point())
		for _, pt := range in.state.TargetPoints() {
			cutoff = cycling.Min(cutoff, pt)
		}
		for _, sp := range in.state.SuicidePrerequisites() {
			cutoff = cycling.Min(cutoff, cycling.Min(sp.TargetPoints()...))
		}
	}
	if cutoff == nil {
		return
	}
	for k, pt := range p.history {
		if cycling.Before(pt, cutoff) {
			delete(p.history, k)
		}
	}
}

// apply runs a state change and persists it when anything changed.
func (p *Pool) apply(ctx context.Context, in *instance, change func(*taskstate.TaskState) (taskstate.Snapshot, bool)) error {
	prev, changed := change(in.state)
	if !changed {
		return nil
	}
	cur := in.state.Snapshot()
	p.recorder.ObserveTransition(string(prev.Status), string(cur.Status))
	if p.recording && prev.Status != cur.Status {
		p.events = append(p.events, Event{
			Step: p.step,
			Task: in.id().String(),
			From: string(prev.Status),
			To:   string(cur.Status),
		})
	}
	return p.persist(ctx, in)
}

func (p *Pool) persist(ctx context.Context, in *instance) error {
	id := in.id()
	snap := in.state.Snapshot()
	err := p.store.PutTaskState(ctx, taskstore.Row{
		Cycle:     id.Point,
		Name:      id.Name,
		SubmitNum: in.submitNum,
		Status:    string(snap.Status),
		HoldSwap:  string(snap.HoldSwap),
		Updated:   p.now(),
	})
	if err != nil {
		return fmt.Errorf("persisting %s: %w", id, err)
	}
	return nil
}

// sorted lists the instances by point, then name.
func (p *Pool) sorted() []*instance {
	out := make([]*instance, 0, len(p.tasks))
	for _, in := range p.tasks {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].state.Point(), out[j].state.Point()
		if !cycling.Equal(a, b) {
			return cycling.Before(a, b)
		}
		return out[i].def.Name < out[j].def.Name
	})
	return out
}

func (p *Pool) lookup(ids []taskid.ID) ([]*instance, error) {
	out := make([]*instance, 0, len(ids))
	for _, id := range ids {
		in, found := p.tasks[id]
		if !found {
			return nil, fmt.Errorf("no such task in the pool: %s", id)
		}
		out = append(out, in)
	}
	return out, nil
}
