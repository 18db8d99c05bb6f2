// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package cycling

import "fmt"

// Mode names a cycling coordinate system.
type Mode string

const (
	// ModeInteger cycles through plain integers.
	ModeInteger Mode = "integer"
	// ModeGregorian cycles through UTC date-times on the Gregorian calendar.
	ModeGregorian Mode = "gregorian"
)

// Point is a single, immutable coordinate in a cycling system.
type Point interface {
	fmt.Stringer

	// Mode reports the system the point belongs to.
	Mode() Mode

	// Standardise re-validates the point and returns its canonical form.
	Standardise() (Point, error)

	// Add returns the point shifted forward by the interval.
	Add(Interval) (Point, error)

	// Sub returns the point shifted backward by the interval.
	Sub(Interval) (Point, error)

	// Diff returns the interval from other to this point (p - other).
	Diff(other Point) (Interval, error)

	// Cmp returns -1, 0 or +1 comparing this point to other.
	Cmp(other Point) (int, error)
}

// Interval is a signed duration in one cycling system.
type Interval interface {
	fmt.Stringer

	Mode() Mode

	// IsNull reports whether this is the zero interval.
	IsNull() bool

	// Neg returns the interval with its sign flipped.
	Neg() Interval

	// Mul scales the interval by an integer factor.
	Mul(factor int) Interval

	// Add returns the sum of two intervals.
	Add(Interval) (Interval, error)

	// Cmp returns -1, 0 or +1 comparing this interval to other.
	Cmp(other Interval) (int, error)
}

// Sequence generates the recurring points of one graph section.
//
// IsOnSequence ignores the sequence bounds; IsValid honours them. Both treat an
// excluded point as off the sequence, and the stepping methods skip excluded
// candidates instead of stopping at them.
type Sequence interface {
	fmt.Stringer

	Mode() Mode

	// Start returns the first point of the sequence.
	Start() Point

	// Stop returns the last point, or nil for an unbounded sequence.
	Stop() Point

	// Step returns the recurrence interval, or nil for a one-off sequence.
	Step() Interval

	// NextPoint returns the smallest valid point strictly greater than p,
	// or nil when there is none within bounds.
	NextPoint(p Point) Point

	// PrevPoint returns the largest valid point strictly less than p, or nil.
	// A one-off sequence has no previous point.
	PrevPoint(p Point) Point

	// NearestPrevPoint returns the largest valid point before p, for any p,
	// on-sequence or not.
	NearestPrevPoint(p Point) Point

	// FirstPoint returns the smallest valid point greater than or equal to p.
	FirstPoint(p Point) Point

	IsOnSequence(p Point) bool
	IsValid(p Point) bool

	// SetOffset shifts the whole sequence by the offset, normalised into
	// [0, step).
	SetOffset(offset Interval) error

	// Exclusions returns the textual exclusions attached to the sequence.
	Exclusions() []string
}

// System is the factory for points, intervals and sequences of one mode.
type System interface {
	Mode() Mode

	// ParsePoint parses and standardises a point string.
	ParsePoint(s string) (Point, error)

	// ParseInterval parses a signed interval string.
	ParseInterval(s string) (Interval, error)

	// NullInterval returns the zero interval.
	NullInterval() Interval

	// RelativePoint resolves expr against context. expr is either an
	// absolute point or a signed interval such as "+P1".
	RelativePoint(expr string, context Point) (Point, error)

	// NewSequence builds a sequence from a recurrence expression and the
	// context start and stop points. contextStop may be nil.
	NewSequence(expr string, contextStart, contextStop Point) (Sequence, error)
}
