// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package isodate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
)

// Duration is an ISO-8601 duration. Years and months are nominal; everything
// else is exact because all points are UTC.
type Duration struct {
	Years   int64
	Months  int64
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

var _ cycling.Interval = Duration{}

var durationRe = regexp.MustCompile(
	`^([+-])?P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// refTime anchors comparisons between nominal durations.
var refTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseDuration parses a signed ISO-8601 duration such as "P1DT6H" or "-PT30M".
func ParseDuration(s string) (Duration, error) {
	m := durationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "+P" || s == "-P" || strings.HasSuffix(s, "T") {
		return Duration{}, &cycling.IntervalParsingError{Value: s, Mode: cycling.ModeGregorian}
	}
	field := func(i int) int64 {
		if m[i] == "" {
			return 0
		}
		n, _ := strconv.ParseInt(m[i], 10, 64)
		return n
	}
	d := Duration{
		Years:   field(2),
		Months:  field(3),
		Days:    field(4)*7 + field(5),
		Hours:   field(6),
		Minutes: field(7),
		Seconds: field(8),
	}
	if m[1] == "-" {
		d = d.neg()
	}
	return d, nil
}

// Exact reports whether the duration has no nominal (year or month) part.
func (d Duration) Exact() bool { return d.Years == 0 && d.Months == 0 }

// TotalSeconds returns the exact length of the duration. Only meaningful when
// Exact is true.
func (d Duration) TotalSeconds() int64 {
	return ((d.Days*24+d.Hours)*60+d.Minutes)*60 + d.Seconds
}

// fromSeconds builds a normalised exact duration.
func fromSeconds(total int64) Duration {
	sign := int64(1)
	if total < 0 {
		sign, total = -1, -total
	}
	d := Duration{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
	if sign < 0 {
		d = d.neg()
	}
	return d
}

func (d Duration) neg() Duration {
	return Duration{-d.Years, -d.Months, -d.Days, -d.Hours, -d.Minutes, -d.Seconds}
}

func (d Duration) scale(f int64) Duration {
	return Duration{d.Years * f, d.Months * f, d.Days * f, d.Hours * f, d.Minutes * f, d.Seconds * f}
}

// addTo shifts t by the duration. Month arithmetic clamps to the last day of
// the target month, so 2024-01-31 plus P1M is 2024-02-29.
func (d Duration) addTo(t time.Time) time.Time {
	if months := d.Years*12 + d.Months; months != 0 {
		y, mo, day := t.Date()
		total := int64(y)*12 + int64(mo-1) + months
		ny, nm := floorDiv(total, 12), time.Month(floorMod(total, 12)+1)
		if last := daysIn(int(ny), nm); day > last {
			day = last
		}
		t = time.Date(int(ny), nm, day, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	}
	return t.Add(time.Duration(d.TotalSeconds()) * time.Second)
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Duration) String() string {
	if d.IsNull() {
		return "P0Y"
	}
	sign := ""
	parts := []int64{d.Years, d.Months, d.Days, d.Hours, d.Minutes, d.Seconds}
	allNonPos := true
	for _, p := range parts {
		if p > 0 {
			allNonPos = false
		}
	}
	if allNonPos {
		sign = "-"
		d = d.neg()
	}
	var b strings.Builder
	b.WriteString(sign + "P")
	write := func(n int64, unit string) {
		if n != 0 {
			b.WriteString(strconv.FormatInt(n, 10) + unit)
		}
	}
	write(d.Years, "Y")
	write(d.Months, "M")
	write(d.Days, "D")
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 {
		b.WriteString("T")
		write(d.Hours, "H")
		write(d.Minutes, "M")
		write(d.Seconds, "S")
	}
	return b.String()
}

func (d Duration) Mode() cycling.Mode { return cycling.ModeGregorian }

func (d Duration) IsNull() bool { return d == Duration{} }

func (d Duration) Neg() cycling.Interval { return d.neg() }

func (d Duration) Mul(f int) cycling.Interval { return d.scale(int64(f)) }

func (d Duration) Add(other cycling.Interval) (cycling.Interval, error) {
	o, ok := other.(Duration)
	if !ok {
		return nil, cycling.Incompatible(cycling.ModeGregorian, modeOf(other))
	}
	return Duration{
		d.Years + o.Years, d.Months + o.Months, d.Days + o.Days,
		d.Hours + o.Hours, d.Minutes + o.Minutes, d.Seconds + o.Seconds,
	}, nil
}

// Cmp orders durations by their exact length, or by their effect on a fixed
// reference date when either has a nominal part.
func (d Duration) Cmp(other cycling.Interval) (int, error) {
	o, ok := other.(Duration)
	if !ok {
		return 0, cycling.Incompatible(cycling.ModeGregorian, modeOf(other))
	}
	if d.Exact() && o.Exact() {
		return cmpInt(d.TotalSeconds(), o.TotalSeconds()), nil
	}
	return d.addTo(refTime).Compare(o.addTo(refTime)), nil
}
