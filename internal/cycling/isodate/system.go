// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package isodate

import (
	"errors"
	"strings"
	"time"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
)

// System is the Gregorian date-time cycling factory.
type System struct{}

var _ cycling.System = System{}

// New returns the date-time cycling system.
func New() System { return System{} }

func (System) Mode() cycling.Mode { return cycling.ModeGregorian }

func (System) ParsePoint(s string) (cycling.Point, error) {
	p, err := ParsePoint(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (System) ParseInterval(s string) (cycling.Interval, error) {
	d, err := ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (System) NullInterval() cycling.Interval { return Duration{} }

// RelativePoint resolves "+P1D"/"-PT6H" against context, or parses an
// absolute point.
func (s System) RelativePoint(expr string, context cycling.Point) (cycling.Point, error) {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "+P") || strings.HasPrefix(expr, "-P") {
		if context == nil {
			return nil, &cycling.PointParsingError{Value: expr, Mode: cycling.ModeGregorian}
		}
		d, err := ParseDuration(expr)
		if err != nil {
			return nil, err
		}
		return context.Add(d)
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

var (
	errNotDateTime = errors.New("date-time stepper given non date-time values")
	errNominal     = errors.New("nominal duration cannot be divided evenly")
)

// stepper uses second arithmetic for exact steps and a corrected estimate
// for steps with years or months.
type stepper struct{}

func (stepper) Nth(start cycling.Point, step cycling.Interval, k int64) (cycling.Point, error) {
	p, ok1 := start.(Point)
	d, ok2 := step.(Duration)
	if !ok1 || !ok2 {
		return nil, errNotDateTime
	}
	return Point{t: d.scale(k).addTo(p.t)}, nil
}

func (st stepper) FloorIndex(start cycling.Point, step cycling.Interval, at cycling.Point) (int64, error) {
	s, ok1 := start.(Point)
	d, ok2 := step.(Duration)
	p, ok3 := at.(Point)
	if !ok1 || !ok2 || !ok3 || d.IsNull() {
		return 0, errNotDateTime
	}
	diff := int64(p.t.Sub(s.t) / time.Second)
	if d.Exact() {
		return floorDiv(diff, d.TotalSeconds()), nil
	}

	approx := int64(d.addTo(refTime).Sub(refTime) / time.Second)
	if approx <= 0 {
		return 0, errNotDateTime
	}
	k := floorDiv(diff, approx)
	nth := func(k int64) time.Time { return d.scale(k).addTo(s.t) }
	for nth(k).After(p.t) {
		k--
	}
	for !nth(k + 1).After(p.t) {
		k++
	}
	return k, nil
}

func (stepper) Div(iv cycling.Interval, n int64) (cycling.Interval, error) {
	d, ok := iv.(Duration)
	if !ok || n == 0 {
		return nil, errNotDateTime
	}
	if d.Exact() {
		return fromSeconds(d.TotalSeconds() / n), nil
	}
	parts := []int64{d.Years, d.Months, d.Days, d.Hours, d.Minutes, d.Seconds}
	for _, p := range parts {
		if p%n != 0 {
			return nil, errNominal
		}
	}
	return Duration{d.Years / n, d.Months / n, d.Days / n, d.Hours / n, d.Minutes / n, d.Seconds / n}, nil
}

func (stepper) Mod(offset, step cycling.Interval) (cycling.Interval, bool) {
	o, ok1 := offset.(Duration)
	s, ok2 := step.(Duration)
	if !ok1 || !ok2 || !o.Exact() || !s.Exact() || s.IsNull() {
		return nil, false
	}
	return fromSeconds(floorMod(o.TotalSeconds(), s.TotalSeconds())), true
}
