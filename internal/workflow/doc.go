// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

/*
Package workflow turns a loaded configuration model into runnable task
definitions.

# Why Workflow Package Exists

The configuration model is plain data: strings for points, raw graph text,
parameter values as cty values. The scheduler needs typed, validated
structures: one cycling system, one sequence per graph section, and a
taskdef.Definition for every task in the graph with dependencies resolved
per sequence. This package is the single place where that translation and
all cross-cutting validation happen:

  - cycling mode, initial and final points, runahead limit
  - parameter values, templates and parameterized runtime names
  - family inheritance and the family member map used by the graph parser
  - graph parsing per section
  - triggers on unknown tasks or undeclared custom outputs
  - same-point dependency cycles

Every failure is returned as a *ConfigError naming the part of the
configuration at fault. Nothing is logged and swallowed.
*/
package workflow
