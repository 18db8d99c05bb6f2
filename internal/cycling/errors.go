// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package cycling

import (
	"errors"
	"fmt"
)

// ErrIncompatibleSystems is returned when values from two cycling systems
// are compared or combined.
var ErrIncompatibleSystems = errors.New("incompatible cycling systems")

// PointParsingError reports a point string that is not valid in a system.
type PointParsingError struct {
	Value string
	Mode  Mode
}

func (e *PointParsingError) Error() string {
	return fmt.Sprintf("incompatible value for %s cycling: %q", e.Mode, e.Value)
}

// IntervalParsingError reports an interval string that is not valid in a system.
type IntervalParsingError struct {
	Value string
	Mode  Mode
}

func (e *IntervalParsingError) Error() string {
	return fmt.Sprintf("invalid %s cycling interval: %q", e.Mode, e.Value)
}

// SequenceError reports a recurrence expression that cannot produce a
// sequence: bad syntax, a negative step or missing context points.
type SequenceError struct {
	Expr string
	Msg  string
	Err  error
}

func (e *SequenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad recurrence %q: %s: %v", e.Expr, e.Msg, e.Err)
	}
	return fmt.Sprintf("bad recurrence %q: %s", e.Expr, e.Msg)
}

func (e *SequenceError) Unwrap() error { return e.Err }

// Incompatible builds the error returned for a cross-system operation.
func Incompatible(a, b Mode) error {
	return fmt.Errorf("%w: %s vs %s", ErrIncompatibleSystems, a, b)
}
