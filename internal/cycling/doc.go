// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package cycling defines the coordinate space a workflow cycles through.
//
// # Core Concepts
//
//   - Point: one coordinate in the cycling space, e.g. `5` in integer cycling or
//     `20250101T0000Z` in date-time cycling. Points are immutable values.
//
//   - Interval: a signed distance between two points of the same system, e.g.
//     `P3` or `-PT6H`. The zero interval is the "null interval" and marks
//     one-off sequences.
//
//   - Sequence: a generator of recurring points built from a recurrence
//     expression (`R3/0/10`, `P3`, `R1/+P3`, ...) plus the workflow's initial
//     and final cycle points as context. Sequences may exclude single points or
//     whole nested sequences (`P1!3`, `P1!(3, R/5/P5)`).
//
//   - System: the factory for all of the above. A workflow selects exactly one
//     system when its configuration is loaded and threads it through every
//     constructor, so there is no process-wide cycling state.
//
// Points, intervals and sequences from different systems never mix. Every
// cross-system comparison or arithmetic operation reports
// ErrIncompatibleSystems.
//
// Concrete systems live in the integer and isodate sub-packages; the loader
// sub-package picks one by mode name.
package cycling
