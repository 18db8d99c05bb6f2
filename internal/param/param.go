// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package param expands parameterized task names and graph lines.
//
// A parameter is a named, ordered list of values. Task names and graph lines
// reference parameters inside angle brackets, "sim<m,n>", and are expanded
// into one concrete name per combination of values. Each parameter renders
// through a template such as "_m%(m)02d", so "sim<m,n>" with m=1 and n=cat
// becomes "sim_m01_cat".
package param

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Value is one parameter value. Integer-looking values keep their integer
// form so templates can zero-pad them and "m=0" matches "m=00".
type Value struct {
	Str   string
	Int   int
	IsInt bool
}

// StrValue builds a Value from text, detecting integers.
func StrValue(s string) Value {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Value{Str: s, Int: n, IsInt: true}
	}
	return Value{Str: s}
}

// IntValue builds an integer Value.
func IntValue(n int) Value {
	return Value{Str: strconv.Itoa(n), Int: n, IsInt: true}
}

func (v Value) String() string { return v.Str }

// ExpandError reports an undefined parameter, an illegal value or an offset
// used where only plain and pinned references are allowed.
type ExpandError struct {
	Msg string
}

func (e *ExpandError) Error() string { return "parameter expansion: " + e.Msg }

func expandErrorf(format string, args ...any) error {
	return &ExpandError{Msg: fmt.Sprintf(format, args...)}
}

// Params holds the configured parameter values and their name templates.
type Params struct {
	Values    map[string][]Value
	Templates map[string]string
}

// NewParams validates values and fills in default templates for any
// parameter without an explicit one.
func NewParams(values map[string][]Value, templates map[string]string) (*Params, error) {
	p := &Params{
		Values:    make(map[string][]Value, len(values)),
		Templates: make(map[string]string, len(values)),
	}
	for name, vals := range values {
		if !paramNameRe.MatchString(name) {
			return nil, expandErrorf("bad parameter name %q", name)
		}
		if len(vals) == 0 {
			return nil, expandErrorf("parameter %q has no values", name)
		}
		p.Values[name] = append([]Value(nil), vals...)
		if tmpl, ok := templates[name]; ok {
			p.Templates[name] = tmpl
		} else {
			p.Templates[name] = defaultTemplate(name, vals)
		}
	}
	for name := range templates {
		if _, ok := values[name]; !ok {
			return nil, expandErrorf("template given for undefined parameter %q", name)
		}
	}
	return p, nil
}

// Len reports how many parameters are defined.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Values)
}

var paramNameRe = regexp.MustCompile(`^\w+$`)

// defaultTemplate returns "_<name>%(<name>)0Nd" for all-integer parameters,
// N being the width of the largest value, and "_%(<name>)s" otherwise.
func defaultTemplate(name string, vals []Value) string {
	width := 0
	for _, v := range vals {
		if !v.IsInt {
			return "_%(" + name + ")s"
		}
		if w := len(strconv.Itoa(v.Int)); w > width {
			width = w
		}
	}
	return fmt.Sprintf("_%s%%(%s)0%dd", name, name, width)
}

var templateFieldRe = regexp.MustCompile(`%\((\w+)\)([-+ 0#]*\d*)([sd])`)

// Render interpolates %(name)s and %(name)0Nd fields in tmpl.
func Render(tmpl string, values map[string]Value) (string, error) {
	var firstErr error
	out := templateFieldRe.ReplaceAllStringFunc(tmpl, func(field string) string {
		m := templateFieldRe.FindStringSubmatch(field)
		v, ok := values[m[1]]
		if !ok {
			if firstErr == nil {
				firstErr = expandErrorf("template %q references unknown parameter %q", tmpl, m[1])
			}
			return field
		}
		if m[3] == "s" {
			return fmt.Sprintf("%"+m[2]+"s", v.Str)
		}
		if !v.IsInt {
			if firstErr == nil {
				firstErr = expandErrorf("template %q needs an integer for %q, got %q", tmpl, m[1], v.Str)
			}
			return field
		}
		return fmt.Sprintf("%"+m[2]+"d", v.Int)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// ItemInIterable reports whether item is one of values, comparing integers
// by value so "0" and "00" match an integer 0.
func ItemInIterable(item string, values []Value) bool {
	_, ok := findValue(item, values)
	return ok
}

func findValue(item string, values []Value) (Value, bool) {
	target := StrValue(item)
	for _, v := range values {
		if v.Str == target.Str || (v.IsInt && target.IsInt && v.Int == target.Int) {
			return v, true
		}
	}
	return Value{}, false
}

var rangeRe = regexp.MustCompile(`^\s*(-?\d+)\s*\.\.\s*(-?\d+)\s*(?:\.\.\s*(\d+)\s*)?$`)

// ParseRange expands "START..STOP" or "START..STOP..STEP" into integer values,
// both ends inclusive.
func ParseRange(s string) ([]Value, error) {
	m := rangeRe.FindStringSubmatch(s)
	if m == nil {
		return nil, expandErrorf("bad range %q", s)
	}
	start, _ := strconv.Atoi(m[1])
	stop, _ := strconv.Atoi(m[2])
	step := 1
	if m[3] != "" {
		step, _ = strconv.Atoi(m[3])
	}
	if step <= 0 {
		return nil, expandErrorf("bad range %q: step must be positive", s)
	}
	if stop < start {
		return nil, expandErrorf("bad range %q: stop before start", s)
	}
	var out []Value
	for i := start; i <= stop; i += step {
		out = append(out, IntValue(i))
	}
	return out, nil
}
