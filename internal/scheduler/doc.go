// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package scheduler holds the task pool: the live set of task instances of
// one running workflow.
//
// # Why Scheduler Exists
//
// The workflow package describes what could run: definitions, sequences and
// trigger expressions. Nothing there knows which instances exist right now.
// The pool is where that happens. It creates instances lazily as sequences
// produce new cycle points, feeds every completed output to the instances
// waiting on it, and applies operator commands.
//
// # How It Works
//
// The pool follows the spawn-on-submit model:
//  1. Start creates the first instance of every task, in the runahead state
//  2. Instances inside the runahead window are released to waiting
//  3. QueueReady moves satisfied waiting instances through queued to ready
//  4. ProcessOutput records job outputs; the first submission of an
//     instance spawns its successor at the next valid point
//  5. Completed outputs satisfy dependents, suicide triggers remove
//     instances, and finished instances of older cycles are cleaned up
//
// Outputs are kept in a history set so that an instance spawned later still
// sees outputs of instances that have already left the pool. The history is
// pruned below the earliest point any remaining instance depends on.
//
// # Thread-Safety
//
// The state machine underneath is not synchronized. Every exported method
// takes the pool mutex for its whole duration, so all mutations of task
// state are serialized.
package scheduler
