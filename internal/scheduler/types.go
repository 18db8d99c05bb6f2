// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package scheduler

import (
	"github.com/specialistvlad/cyclegrid/internal/taskdef"
	"github.com/specialistvlad/cyclegrid/internal/taskid"
	"github.com/specialistvlad/cyclegrid/internal/taskstate"
)

// Result is the outcome of an operator command. A failed command leaves the
// pool untouched.
type Result struct {
	Success bool   `yaml:"success"`
	Reason  string `yaml:"reason,omitempty"`
}

func ok() Result { return Result{Success: true} }

func rejected(reason string) Result { return Result{Reason: reason} }

// TaskInfo is a read-only view of one instance.
type TaskInfo struct {
	ID            string   `yaml:"id"`
	Status        string   `yaml:"status"`
	HoldSwap      string   `yaml:"hold_swap,omitempty"`
	SubmitNum     int      `yaml:"submit_num"`
	Completed     []string `yaml:"completed,omitempty"`
	Prerequisites []string `yaml:"satisfied_by,omitempty"`
}

// Event is one status change observed during a simulation.
type Event struct {
	Step int    `yaml:"step"`
	Task string `yaml:"task"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Removal reasons reported to the metrics recorder.
const (
	reasonSuicide = "suicide"
	reasonSpent   = "spent"
	reasonRemoved = "removed"
)

type instance struct {
	def       *taskdef.Definition
	state     *taskstate.TaskState
	submitNum int
	// spawned is set once the successor instance has been created.
	spawned bool
}

func (in *instance) id() taskid.ID { return in.state.ID() }

func (in *instance) info() TaskInfo {
	snap := in.state.Snapshot()
	return TaskInfo{
		ID:            in.id().String(),
		Status:        string(snap.Status),
		HoldSwap:      string(snap.HoldSwap),
		SubmitNum:     in.submitNum,
		Completed:     in.state.Outputs().Completed(),
		Prerequisites: in.state.ResolvedDependencies(),
	}
}
