// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package cycling

import (
	"regexp"
	"strconv"
)

// RecurrenceFormat tags how the captures of a recurrence expression are
// turned into sequence bounds.
type RecurrenceFormat int

const (
	// FormatStartEnd spreads reps points evenly from START to END inclusive.
	FormatStartEnd RecurrenceFormat = iota + 1
	// FormatStartInterval steps forward from START (or the context start).
	FormatStartInterval
	// FormatIntervalEnd steps backward from END.
	FormatIntervalEnd
)

// Recurrence holds the named captures of a matched recurrence expression.
// Empty strings mean "not given".
type Recurrence struct {
	Format   RecurrenceFormat
	Reps     int // 0 when omitted
	Start    string
	End      string
	Interval string
}

const (
	rePoint    = `[^PR/][^/]*`
	reInterval = `P[^/]*`
)

// recurrenceRules is evaluated in order and the first match wins. Several
// patterns are prefixes of later ones, so the order is part of the grammar.
var recurrenceRules = []struct {
	re     *regexp.Regexp
	format RecurrenceFormat
}{
	{regexp.MustCompile(`^R(?P<reps>\d+)/(?P<start>` + rePoint + `)/(?P<end>` + rePoint + `)$`), FormatStartEnd},
	{regexp.MustCompile(`^(?P<start>` + rePoint + `)/(?P<intv>` + reInterval + `)/?$`), FormatStartInterval},
	{regexp.MustCompile(`^(?P<intv>` + reInterval + `)/?$`), FormatStartInterval},
	{regexp.MustCompile(`^(?P<intv>` + reInterval + `)/(?P<end>` + rePoint + `)$`), FormatIntervalEnd},
	{regexp.MustCompile(`^R(?P<reps>1)/?(?P<start>` + rePoint + `)/?$`), FormatStartInterval},
	{regexp.MustCompile(`^R(?P<reps>\d+)?/(?P<start>` + rePoint + `)/(?P<intv>` + reInterval + `)$`), FormatStartInterval},
	{regexp.MustCompile(`^R(?P<reps>\d+)?/(?P<intv>` + reInterval + `)/(?P<end>` + rePoint + `)$`), FormatIntervalEnd},
	{regexp.MustCompile(`^R(?P<reps>\d+)?/(?P<intv>` + reInterval + `)/?$`), FormatStartInterval},
	{regexp.MustCompile(`^R(?P<reps>1)/?$`), FormatStartInterval},
	{regexp.MustCompile(`^R(?P<reps>1)//(?P<end>` + rePoint + `)$`), FormatIntervalEnd},
}

// MatchRecurrence classifies a recurrence expression (without exclusions).
func MatchRecurrence(expr string) (*Recurrence, error) {
	for _, rule := range recurrenceRules {
		m := rule.re.FindStringSubmatch(expr)
		if m == nil {
			continue
		}
		rec := &Recurrence{Format: rule.format}
		for i, name := range rule.re.SubexpNames() {
			switch name {
			case "reps":
				if m[i] != "" {
					n, err := strconv.Atoi(m[i])
					if err != nil {
						return nil, &SequenceError{Expr: expr, Msg: "bad repetition count", Err: err}
					}
					rec.Reps = n
				}
			case "start":
				rec.Start = m[i]
			case "end":
				rec.End = m[i]
			case "intv":
				rec.Interval = m[i]
			}
		}
		if zeroReps.MatchString(expr) {
			return nil, &SequenceError{Expr: expr, Msg: "repetition count must be positive"}
		}
		return rec, nil
	}
	return nil, &SequenceError{Expr: expr, Msg: "unrecognised cycling format"}
}

var zeroReps = regexp.MustCompile(`^R0+/`)
