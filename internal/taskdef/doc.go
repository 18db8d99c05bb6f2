// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package taskdef holds the static definition of a task: the sequences it
// runs on and the dependencies it has on each. A Definition turns those into
// concrete prerequisites for an instance at a given cycle point.
package taskdef
