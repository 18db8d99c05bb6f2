// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

/*
Package taskstate implements the lifecycle of a single task instance.

# Why TaskState Package Exists

A task instance is one task definition at one cycle point. Everything the
scheduler needs to know about it lives here: the status, the held marker,
the prerequisites gating it, the suicide prerequisites that remove it, and
the outputs it has completed.

Statuses form a fixed order rather than an unordered set. Comparisons such as
"has this instance at least been submitted?" are answered by position in
that order, so the order is part of the contract.

# The Held Marker

Holding a task must never lose its real status. Two fields carry this:

  - pendingHold: an active task (submitted or running) cannot stop its job,
    so the hold is deferred and applied on the next non-final transition.
  - remembered: the status a held task had, restored on release.

All transitions funnel through one internal routine that keeps these fields
consistent. A held task never silently progresses into an intermediate
status, but a final status (succeeded, failed, expired, submit-failed)
always takes effect.

# Concurrency

A TaskState is not safe for concurrent use. The task pool owns every
instance and serializes access.
*/
package taskstate
