// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package scheduler

import (
	"context"

	"github.com/specialistvlad/cyclegrid/internal/ctxlog"
	"github.com/specialistvlad/cyclegrid/internal/taskstate"
)

// jobOutputs is the message sequence a simulated job reports.
var jobOutputs = []string{
	taskstate.OutputSubmitted,
	taskstate.OutputStarted,
	taskstate.OutputSucceeded,
}

// Simulate runs the pool with jobs that always succeed. Each step queues
// every ready instance and completes its job. It stops when nothing is
// ready, after maxSteps steps (no limit when maxSteps <= 0), or when ctx is
// done, and returns the status changes in the order they happened.
func (p *Pool) Simulate(ctx context.Context, maxSteps int) ([]Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	p.recording = true
	p.events = nil
	defer func() { p.recording = false }()

	for p.step = 1; maxSteps <= 0 || p.step <= maxSteps; p.step++ {
		if err := ctx.Err(); err != nil {
			return p.events, err
		}
		ready, err := p.queueReady(ctx)
		if err != nil {
			return p.events, err
		}
		if len(ready) == 0 {
			logger.Info("Simulation stalled or complete.", "steps", p.step-1, "remaining", len(p.tasks))
			break
		}
		for _, id := range ready {
			for _, out := range jobOutputs {
				if _, still := p.tasks[id]; !still {
					break
				}
				if err := p.processOutput(ctx, id, out); err != nil {
					return p.events, err
				}
			}
		}
		logger.Debug("Simulation step done.", "step", p.step, "ran", len(ready))
	}
	return p.events, nil
}
