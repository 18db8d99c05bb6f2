// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package cycling

import (
	"regexp"
	"sort"
	"strings"
)

// Compare orders two points, treating nil as smaller than any point.
// Points from different systems compare as equal and report an error.
func Compare(a, b Point) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	case b == nil:
		return 1, nil
	}
	return a.Cmp(b)
}

// Before reports whether a is strictly earlier than b. Cross-system
// comparisons are never "before".
func Before(a, b Point) bool {
	c, err := Compare(a, b)
	return err == nil && c < 0
}

// Equal reports whether two points are the same coordinate.
func Equal(a, b Point) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	c, err := a.Cmp(b)
	return err == nil && c == 0
}

// Max returns the latest non-nil point, or nil when all are nil.
func Max(points ...Point) Point {
	var best Point
	for _, p := range points {
		if p == nil {
			continue
		}
		if best == nil || Before(best, p) {
			best = p
		}
	}
	return best
}

// Min returns the earliest non-nil point, or nil when all are nil.
func Min(points ...Point) Point {
	var best Point
	for _, p := range points {
		if p == nil {
			continue
		}
		if best == nil || Before(p, best) {
			best = p
		}
	}
	return best
}

// SortPoints orders points in place, earliest first.
func SortPoints(points []Point) {
	sort.SliceStable(points, func(i, j int) bool { return Before(points[i], points[j]) })
}

// InBounds reports whether start <= p <= stop, with a nil stop unbounded.
func InBounds(p, start, stop Point) bool {
	if start != nil && Before(p, start) {
		return false
	}
	if stop != nil && Before(stop, p) {
		return false
	}
	return true
}

var exclusionSplit = regexp.MustCompile(`^([^!]+)!(.+)$`)

// SplitExclusions separates "EXPR!EXCL" and "EXPR!(A, B)" into the base
// recurrence and its list of exclusion strings.
func SplitExclusions(expr string) (string, []string) {
	expr = strings.TrimSpace(expr)
	m := exclusionSplit.FindStringSubmatch(expr)
	if m == nil {
		return expr, nil
	}
	base := strings.TrimSpace(m[1])
	rest := strings.TrimSpace(m[2])
	rest = strings.TrimPrefix(rest, "(")
	rest = strings.TrimSuffix(rest, ")")
	var out []string
	for _, item := range strings.Split(rest, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return base, out
}

// Points lists up to limit valid points of seq, starting from the first
// valid point at or after from (or the sequence start when from is nil).
func Points(seq Sequence, from Point, limit int) []Point {
	if from == nil {
		from = seq.Start()
	}
	var out []Point
	for p := seq.FirstPoint(from); p != nil && len(out) < limit; p = seq.NextPoint(p) {
		out = append(out, p)
	}
	return out
}
