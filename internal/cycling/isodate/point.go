// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package isodate implements Gregorian date-time cycling in UTC. Points accept
// the ISO-8601 basic and extended forms and render as YYYYMMDDThhmmZ.
package isodate

import (
	"regexp"
	"strconv"
	"time"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
)

// Point is a UTC date-time cycle point.
type Point struct {
	t time.Time
}

var _ cycling.Point = Point{}

var (
	basicRe    = regexp.MustCompile(`^(\d{4})(?:(\d{2})(\d{2}))?(?:T(\d{2})(\d{2})?(\d{2})?)?(Z|\+00(?::?00)?)?$`)
	extendedRe = regexp.MustCompile(`^(\d{4})-(\d{2})(?:-(\d{2}))?(?:T(\d{2})(?::(\d{2}))?(?::(\d{2}))?)?(Z|\+00(?::?00)?)?$`)
)

// NewPoint wraps a time, converting it to UTC and dropping sub-second parts.
func NewPoint(t time.Time) Point {
	return Point{t: t.UTC().Truncate(time.Second)}
}

// Time returns the point as a UTC time.
func (p Point) Time() time.Time { return p.t }

// ParsePoint accepts YYYY, YYYYMMDD, YYYYMMDDThh, YYYYMMDDThhmm(ss) and the
// extended YYYY-MM-DDThh:mm(:ss) forms, each with an optional Z.
func ParsePoint(s string) (Point, error) {
	m := basicRe.FindStringSubmatch(s)
	if m == nil {
		m = extendedRe.FindStringSubmatch(s)
	}
	if m == nil {
		return Point{}, &cycling.PointParsingError{Value: s, Mode: cycling.ModeGregorian}
	}
	num := func(i, def int) int {
		if m[i] == "" {
			return def
		}
		n, _ := strconv.Atoi(m[i])
		return n
	}
	year, month, day := num(1, 0), num(2, 1), num(3, 1)
	hour, minute, sec := num(4, 0), num(5, 0), num(6, 0)
	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != sec {
		return Point{}, &cycling.PointParsingError{Value: s, Mode: cycling.ModeGregorian}
	}
	return Point{t: t}, nil
}

func (p Point) String() string {
	if p.t.Second() != 0 {
		return p.t.Format("20060102T150405Z")
	}
	return p.t.Format("20060102T1504Z")
}

func (p Point) Mode() cycling.Mode { return cycling.ModeGregorian }

func (p Point) Standardise() (cycling.Point, error) {
	std, err := ParsePoint(p.String())
	if err != nil {
		return nil, err
	}
	return std, nil
}

func (p Point) Add(iv cycling.Interval) (cycling.Point, error) {
	d, ok := iv.(Duration)
	if !ok {
		return nil, cycling.Incompatible(cycling.ModeGregorian, modeOf(iv))
	}
	return Point{t: d.addTo(p.t)}, nil
}

func (p Point) Sub(iv cycling.Interval) (cycling.Point, error) {
	d, ok := iv.(Duration)
	if !ok {
		return nil, cycling.Incompatible(cycling.ModeGregorian, modeOf(iv))
	}
	return Point{t: d.neg().addTo(p.t)}, nil
}

// Diff returns the exact duration p - other.
func (p Point) Diff(other cycling.Point) (cycling.Interval, error) {
	o, ok := other.(Point)
	if !ok {
		return nil, cycling.Incompatible(cycling.ModeGregorian, modeOf(other))
	}
	return fromSeconds(int64(p.t.Sub(o.t) / time.Second)), nil
}

func (p Point) Cmp(other cycling.Point) (int, error) {
	o, ok := other.(Point)
	if !ok {
		return 0, cycling.Incompatible(cycling.ModeGregorian, modeOf(other))
	}
	return p.t.Compare(o.t), nil
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

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 { return a - floorDiv(a, b)*b }

type moded interface{ Mode() cycling.Mode }

func modeOf(v moded) cycling.Mode {
	if v == nil {
		return "none"
	}
	return v.Mode()
}
