// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package integer implements integer cycling: points are plain integers and
// intervals are written "P<n>", optionally signed.
package integer

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
)

// Point is an integer cycle point.
type Point int64

// Interval is a signed integer distance between two points.
type Interval int64

var (
	_ cycling.Point    = Point(0)
	_ cycling.Interval = Interval(0)

	pointRe    = regexp.MustCompile(`^[+-]?\d+$`)
	intervalRe = regexp.MustCompile(`^([+-])?P(\d+)$`)
)

// ParsePoint parses a decimal integer point.
func ParsePoint(s string) (Point, error) {
	if !pointRe.MatchString(s) {
		return 0, &cycling.PointParsingError{Value: s, Mode: cycling.ModeInteger}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &cycling.PointParsingError{Value: s, Mode: cycling.ModeInteger}
	}
	return Point(n), nil
}

// ParseInterval parses "P<n>", "+P<n>" or "-P<n>".
func ParseInterval(s string) (Interval, error) {
	m := intervalRe.FindStringSubmatch(s)
	if m == nil {
		return 0, &cycling.IntervalParsingError{Value: s, Mode: cycling.ModeInteger}
	}
	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, &cycling.IntervalParsingError{Value: s, Mode: cycling.ModeInteger}
	}
	if m[1] == "-" {
		n = -n
	}
	return Interval(n), nil
}

func (p Point) String() string                      { return strconv.FormatInt(int64(p), 10) }
func (p Point) Mode() cycling.Mode                  { return cycling.ModeInteger }
func (p Point) Standardise() (cycling.Point, error) { return p, nil }

func (p Point) Add(iv cycling.Interval) (cycling.Point, error) {
	i, ok := iv.(Interval)
	if !ok {
		return nil, cycling.Incompatible(cycling.ModeInteger, modeOf(iv))
	}
	return p + Point(i), nil
}

func (p Point) Sub(iv cycling.Interval) (cycling.Point, error) {
	i, ok := iv.(Interval)
	if !ok {
		return nil, cycling.Incompatible(cycling.ModeInteger, modeOf(iv))
	}
	return p - Point(i), nil
}

func (p Point) Diff(other cycling.Point) (cycling.Interval, error) {
	o, ok := other.(Point)
	if !ok {
		return nil, cycling.Incompatible(cycling.ModeInteger, modeOf(other))
	}
	return Interval(p - o), nil
}

func (p Point) Cmp(other cycling.Point) (int, error) {
	o, ok := other.(Point)
	if !ok {
		return 0, cycling.Incompatible(cycling.ModeInteger, modeOf(other))
	}
	return cmpInt(int64(p), int64(o)), nil
}

func (i Interval) String() string {
	if i < 0 {
		return fmt.Sprintf("-P%d", -int64(i))
	}
	return fmt.Sprintf("P%d", int64(i))
}

func (i Interval) Mode() cycling.Mode         { return cycling.ModeInteger }
func (i Interval) IsNull() bool               { return i == 0 }
func (i Interval) Neg() cycling.Interval      { return -i }
func (i Interval) Mul(f int) cycling.Interval { return i * Interval(f) }

func (i Interval) Add(other cycling.Interval) (cycling.Interval, error) {
	o, ok := other.(Interval)
	if !ok {
		return nil, cycling.Incompatible(cycling.ModeInteger, modeOf(other))
	}
	return i + o, nil
}

func (i Interval) Cmp(other cycling.Interval) (int, error) {
	o, ok := other.(Interval)
	if !ok {
		return 0, cycling.Incompatible(cycling.ModeInteger, modeOf(other))
	}
	return cmpInt(int64(i), int64(o)), nil
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type moded interface{ Mode() cycling.Mode }

func modeOf(v moded) cycling.Mode {
	if v == nil {
		return "none"
	}
	return v.Mode()
}
