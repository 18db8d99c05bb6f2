// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package graph parses the dependency text of one graph section into trigger
// maps: for every downstream task, the set of trigger expressions that must
// be satisfied before it runs.
//
// # Why Graph Package Exists
//
// Workflow authors write dependencies as compact text:
//
//	prep => sim<m> & obs
//	sim<m-1>[-P1] => sim<m>
//	FAM:succeed-all => post
//
// Everything downstream (task definitions, prerequisites, the scheduler)
// wants explicit, per-task records instead. The parser is the single place
// that turns the text into those records, so the rest of the system never
// has to know about families, parameters or chain syntax.
//
// # Pipeline
//
// Parse runs a fixed sequence of stages over the section text:
//
//  1. Strip comments and whitespace, drop blank lines.
//  2. Join continuation lines (a line ending with "=>" or followed by a line
//     starting with "=>").
//  3. Extract inter-workflow polling notation, name<wf::task:status>.
//  4. Validate syntax, reporting every bad node at once.
//  5. Expand parameters into a de-duplicated set of concrete lines.
//  6. Split chains into (left, right) pairs; the head of each chain also gets
//     an auto-trigger pair with an empty left side.
//  7. Process each pair: default qualifiers, family expansion, ":finish"
//     expansion, and recording into the trigger map.
//
// Re-adding an identical (expression, task) pair overwrites the same map
// entry, so repeated lines are harmless.
//
// # Trigger Map Keys
//
// Left-hand expressions are parsed into trigger.Expr trees and keyed by their
// canonical rendering. "FAM:succeed-all" with FAM = {m1, m2} and
// "(m1 & m2)" both render as "m1:succeed & m2:succeed" and land on the same
// key. The auto-trigger entry uses the empty key.
//
// # Errors
//
// All failures are *ParseError values. Nothing is recorded for a section that
// fails to parse.
package graph
