// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package cycling

// maxExclusionSkips bounds how many excluded candidates a stepping method
// walks over before giving up. It only matters when the exclusions cover the
// whole sequence.
const maxExclusionSkips = 1 << 16

// Stepper supplies the system-specific arithmetic a RecurringSequence needs.
type Stepper interface {
	// Nth returns start + k*step. k may be negative.
	Nth(start Point, step Interval, k int64) (Point, error)

	// FloorIndex returns the largest k such that Nth(start, step, k) <= p.
	FloorIndex(start Point, step Interval, p Point) (int64, error)

	// Div divides an interval by n, rounding towards zero.
	Div(iv Interval, n int64) (Interval, error)

	// Mod reduces offset into [0, step). ok is false when the pair of
	// intervals cannot be reduced exactly.
	Mod(offset, step Interval) (r Interval, ok bool)
}

// RecurringSequence is the system-independent Sequence implementation. The
// concrete systems construct it with their own Stepper.
type RecurringSequence struct {
	sys     System
	stepper Stepper
	expr    string

	start Point
	stop  Point
	step  Interval // nil for a one-off sequence
	empty bool

	exclusions []string
	exclPoints []Point
	exclSeqs   []Sequence
}

var _ Sequence = (*RecurringSequence)(nil)

// NewRecurringSequence parses expr, including any "!" exclusions, into a
// sequence bounded by the context points.
func NewRecurringSequence(sys System, stepper Stepper, expr string, contextStart, contextStop Point) (*RecurringSequence, error) {
	base, excl := SplitExclusions(expr)
	rec, err := MatchRecurrence(base)
	if err != nil {
		return nil, err
	}

	s := &RecurringSequence{
		sys:        sys,
		stepper:    stepper,
		expr:       expr,
		exclusions: excl,
	}
	if err := s.resolve(rec, base, contextStart, contextStop); err != nil {
		return nil, err
	}
	s.clampStop(contextStop)

	for _, item := range excl {
		if p, err := sys.RelativePoint(item, contextStart); err == nil {
			s.exclPoints = append(s.exclPoints, p)
			continue
		}
		seq, err := sys.NewSequence(item, contextStart, contextStop)
		if err != nil {
			return nil, &SequenceError{Expr: expr, Msg: "bad exclusion " + item, Err: err}
		}
		s.exclSeqs = append(s.exclSeqs, seq)
	}
	return s, nil
}

func (s *RecurringSequence) resolve(rec *Recurrence, base string, contextStart, contextStop Point) error {
	endContext := contextStop
	if endContext == nil {
		endContext = contextStart
	}
	point := func(expr string, ctx Point) (Point, error) {
		if expr == "" {
			return nil, nil
		}
		p, err := s.sys.RelativePoint(expr, ctx)
		if err != nil {
			return nil, &SequenceError{Expr: base, Msg: "bad point " + expr, Err: err}
		}
		return p, nil
	}

	var step Interval
	if rec.Interval != "" {
		iv, err := s.sys.ParseInterval(rec.Interval)
		if err != nil {
			return &SequenceError{Expr: base, Msg: "bad interval", Err: err}
		}
		if c, err := iv.Cmp(s.sys.NullInterval()); err != nil || c < 0 {
			return &SequenceError{Expr: base, Msg: "negative intervals are not supported"}
		}
		if !iv.IsNull() {
			step = iv
		}
	}

	switch rec.Format {
	case FormatStartEnd:
		start, err := point(rec.Start, contextStart)
		if err != nil {
			return err
		}
		end, err := point(rec.End, endContext)
		if err != nil {
			return err
		}
		s.start = start
		if rec.Reps <= 1 {
			s.stop = start
			return nil
		}
		diff, err := end.Diff(start)
		if err != nil {
			return &SequenceError{Expr: base, Msg: "bad bounds", Err: err}
		}
		if c, _ := diff.Cmp(s.sys.NullInterval()); c < 0 {
			return &SequenceError{Expr: base, Msg: "negative intervals are not supported"}
		}
		step, err = s.stepper.Div(diff, int64(rec.Reps-1))
		if err != nil {
			return &SequenceError{Expr: base, Msg: "cannot divide bounds", Err: err}
		}
		if step.IsNull() {
			s.stop = start
			return nil
		}
		s.step = step
		s.stop = end

	case FormatStartInterval:
		start, err := point(rec.Start, contextStart)
		if err != nil {
			return err
		}
		if start == nil {
			start = contextStart
		}
		if start == nil {
			return &SequenceError{Expr: base, Msg: "no start point and no initial cycle point"}
		}
		s.start = start
		if rec.Reps == 1 || step == nil {
			s.stop = start
			return nil
		}
		s.step = step
		if rec.Reps > 1 {
			stop, err := s.stepper.Nth(start, step, int64(rec.Reps-1))
			if err != nil {
				return &SequenceError{Expr: base, Msg: "bad bounds", Err: err}
			}
			s.stop = stop
		} else {
			s.stop = contextStop
		}

	case FormatIntervalEnd:
		end, err := point(rec.End, endContext)
		if err != nil {
			return err
		}
		if rec.Reps == 1 || step == nil {
			s.start, s.stop = end, end
			return nil
		}
		s.step = step
		s.stop = end
		if rec.Reps > 1 {
			start, err := s.stepper.Nth(end, step, -int64(rec.Reps-1))
			if err != nil {
				return &SequenceError{Expr: base, Msg: "bad bounds", Err: err}
			}
			s.start = start
			return nil
		}
		if contextStart == nil {
			return &SequenceError{Expr: base, Msg: "no initial cycle point to count back to"}
		}
		k, err := s.stepper.FloorIndex(end, step, contextStart)
		if err != nil {
			return &SequenceError{Expr: base, Msg: "bad bounds", Err: err}
		}
		start, err := s.stepper.Nth(end, step, k)
		if err != nil {
			return &SequenceError{Expr: base, Msg: "bad bounds", Err: err}
		}
		if Before(start, contextStart) {
			if start, err = s.stepper.Nth(end, step, k+1); err != nil {
				return &SequenceError{Expr: base, Msg: "bad bounds", Err: err}
			}
		}
		s.start = start
	}
	return nil
}

// clampStop caps the stop point at the context stop and then pulls it back
// onto the sequence.
func (s *RecurringSequence) clampStop(contextStop Point) {
	if s.step == nil {
		if contextStop != nil && Before(contextStop, s.start) {
			s.empty = true
		}
		return
	}
	if contextStop != nil && (s.stop == nil || Before(contextStop, s.stop)) {
		s.stop = contextStop
	}
	if s.stop == nil {
		return
	}
	k, ok := s.floor(s.stop)
	if !ok || k < 0 {
		s.empty = true
		return
	}
	s.stop = s.nth(k)
}

func (s *RecurringSequence) nth(k int64) Point {
	p, err := s.stepper.Nth(s.start, s.step, k)
	if err != nil {
		return nil
	}
	return p
}

func (s *RecurringSequence) floor(p Point) (int64, bool) {
	k, err := s.stepper.FloorIndex(s.start, s.step, p)
	return k, err == nil
}

func (s *RecurringSequence) compatible(p Point) bool {
	return p != nil && p.Mode() == s.sys.Mode()
}

func (s *RecurringSequence) withinStop(p Point) bool {
	return s.stop == nil || !Before(s.stop, p)
}

func (s *RecurringSequence) excluded(p Point) bool {
	for _, x := range s.exclPoints {
		if Equal(x, p) {
			return true
		}
	}
	for _, seq := range s.exclSeqs {
		if seq.IsValid(p) {
			return true
		}
	}
	return false
}

// scanForward returns the first non-excluded point at index k or later.
func (s *RecurringSequence) scanForward(k int64) Point {
	for i := 0; i < maxExclusionSkips; i++ {
		c := s.nth(k)
		if c == nil || !s.withinStop(c) {
			return nil
		}
		if !s.excluded(c) {
			return c
		}
		k++
	}
	return nil
}

// scanBackward returns the last non-excluded point at index k or earlier.
func (s *RecurringSequence) scanBackward(k int64) Point {
	for i := 0; i < maxExclusionSkips && k >= 0; i++ {
		c := s.nth(k)
		if c == nil {
			return nil
		}
		if !s.excluded(c) {
			return c
		}
		k--
	}
	return nil
}

// lastBefore returns the largest valid point strictly less than p.
func (s *RecurringSequence) lastBefore(p Point) Point {
	if !Before(s.start, p) {
		return nil
	}
	if s.stop != nil && Before(s.stop, p) {
		k, ok := s.floor(s.stop)
		if !ok {
			return nil
		}
		return s.scanBackward(k)
	}
	k, ok := s.floor(p)
	if !ok {
		return nil
	}
	if Equal(s.nth(k), p) {
		k--
	}
	return s.scanBackward(k)
}

func (s *RecurringSequence) String() string { return s.expr }
func (s *RecurringSequence) Mode() Mode     { return s.sys.Mode() }
func (s *RecurringSequence) Start() Point   { return s.start }
func (s *RecurringSequence) Stop() Point    { return s.stop }
func (s *RecurringSequence) Step() Interval { return s.step }

func (s *RecurringSequence) Exclusions() []string {
	return append([]string(nil), s.exclusions...)
}

func (s *RecurringSequence) IsOnSequence(p Point) bool {
	if !s.compatible(p) {
		return false
	}
	if s.step == nil {
		return Equal(p, s.start) && !s.excluded(p)
	}
	k, ok := s.floor(p)
	return ok && Equal(s.nth(k), p) && !s.excluded(p)
}

func (s *RecurringSequence) IsValid(p Point) bool {
	if s.empty || !s.compatible(p) {
		return false
	}
	return InBounds(p, s.start, s.stop) && s.IsOnSequence(p)
}

func (s *RecurringSequence) NextPoint(p Point) Point {
	if s.empty || !s.compatible(p) {
		return nil
	}
	if s.step == nil {
		if Before(p, s.start) && !s.excluded(s.start) {
			return s.start
		}
		return nil
	}
	if Before(p, s.start) {
		return s.scanForward(0)
	}
	k, ok := s.floor(p)
	if !ok {
		return nil
	}
	return s.scanForward(k + 1)
}

func (s *RecurringSequence) PrevPoint(p Point) Point {
	if s.empty || s.step == nil || !s.compatible(p) {
		return nil
	}
	return s.lastBefore(p)
}

func (s *RecurringSequence) NearestPrevPoint(p Point) Point {
	if s.empty || !s.compatible(p) {
		return nil
	}
	if s.step == nil {
		if Before(s.start, p) && !s.excluded(s.start) {
			return s.start
		}
		return nil
	}
	return s.lastBefore(p)
}

func (s *RecurringSequence) FirstPoint(p Point) Point {
	if s.empty || !s.compatible(p) {
		return nil
	}
	if !Before(s.start, p) {
		if s.step == nil {
			if s.excluded(s.start) {
				return nil
			}
			return s.start
		}
		return s.scanForward(0)
	}
	if s.IsValid(p) {
		return p
	}
	return s.NextPoint(p)
}

func (s *RecurringSequence) SetOffset(offset Interval) error {
	if offset == nil || offset.IsNull() {
		return nil
	}
	if s.step == nil {
		start, err := s.start.Add(offset)
		if err != nil {
			return err
		}
		s.start, s.stop = start, start
		return nil
	}
	r, ok := s.stepper.Mod(offset, s.step)
	if !ok {
		r = offset
	}
	if r.IsNull() {
		return nil
	}
	start, err := s.start.Add(r)
	if err != nil {
		return err
	}
	s.start = start
	if s.stop != nil {
		stop, err := s.stop.Add(r)
		if err != nil {
			return err
		}
		s.stop = stop
	}
	return nil
}
