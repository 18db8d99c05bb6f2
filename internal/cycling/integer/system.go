// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package integer

import (
	"errors"
	"strings"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
)

// System is the integer cycling factory.
type System struct{}

var _ cycling.System = System{}

// New returns the integer cycling system.
func New() System { return System{} }

func (System) Mode() cycling.Mode { return cycling.ModeInteger }

func (System) ParsePoint(s string) (cycling.Point, error) {
	p, err := ParsePoint(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (System) ParseInterval(s string) (cycling.Interval, error) {
	i, err := ParseInterval(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (System) NullInterval() cycling.Interval { return Interval(0) }

// RelativePoint resolves "+P<n>"/"-P<n>" against context, or parses an
// absolute point.
func (s System) RelativePoint(expr string, context cycling.Point) (cycling.Point, error) {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "+P") || strings.HasPrefix(expr, "-P") {
		if context == nil {
			return nil, &cycling.PointParsingError{Value: expr, Mode: cycling.ModeInteger}
		}
		iv, err := ParseInterval(expr)
		if err != nil {
			return nil, err
		}
		return context.Add(iv)
	}
	return s.ParsePoint(expr)
}

func (s System) NewSequence(expr string, contextStart, contextStop cycling.Point) (cycling.Sequence, error) {
	seq, err := cycling.NewRecurringSequence(s, stepper{}, expr, contextStart, contextStop)
	if err != nil {
		return nil, err
	}
	return seq, nil
}

var errNotInteger = errors.New("integer stepper given non-integer values")

// stepper does closed-form integer sequence arithmetic.
type stepper struct{}

func (stepper) Nth(start cycling.Point, step cycling.Interval, k int64) (cycling.Point, error) {
	p, ok1 := start.(Point)
	i, ok2 := step.(Interval)
	if !ok1 || !ok2 {
		return nil, errNotInteger
	}
	return p + Point(int64(i)*k), nil
}

func (stepper) FloorIndex(start cycling.Point, step cycling.Interval, at cycling.Point) (int64, error) {
	s, ok1 := start.(Point)
	i, ok2 := step.(Interval)
	p, ok3 := at.(Point)
	if !ok1 || !ok2 || !ok3 || i == 0 {
		return 0, errNotInteger
	}
	return floorDiv(int64(p-s), int64(i)), nil
}

func (stepper) Div(iv cycling.Interval, n int64) (cycling.Interval, error) {
	i, ok := iv.(Interval)
	if !ok || n == 0 {
		return nil, errNotInteger
	}
	return i / Interval(n), nil
}

func (stepper) Mod(offset, step cycling.Interval) (cycling.Interval, bool) {
	o, ok1 := offset.(Interval)
	s, ok2 := step.(Interval)
	if !ok1 || !ok2 || s == 0 {
		return nil, false
	}
	return Interval(floorMod(int64(o), int64(s))), true
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
