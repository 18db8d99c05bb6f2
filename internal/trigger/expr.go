// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package trigger models the boolean trigger expressions on the left of a
// graph arrow as a small expression tree.
//
// Expressions are rewritten as trees (family members substituted, ":finish"
// split into succeed-or-fail) and rendered back to a canonical string that
// serves as the key of a task's trigger map. Two graphs that mean the same
// thing render the same keys.
package trigger

import "strings"

// Condition is one leaf: a task, an optional cycle offset such as "-P1" and
// the trigger qualifier as written, e.g. "succeed" or a custom output label.
type Condition struct {
	Task      string
	Offset    string
	Qualifier string
}

func (c Condition) String() string {
	var b strings.Builder
	b.WriteString(c.Task)
	if c.Offset != "" {
		b.WriteString("[" + c.Offset + "]")
	}
	if c.Qualifier != "" {
		b.WriteString(":" + c.Qualifier)
	}
	return b.String()
}

// Output returns the task output the qualifier waits on.
func (c Condition) Output() string { return OutputFor(c.Qualifier) }

// Expr is a trigger expression tree node.
type Expr interface {
	// Render returns the canonical text: no outer parentheses and
	// parentheses around every nested operator of the other kind.
	Render() string

	// Conditions lists the leaves in order of appearance.
	Conditions() []Condition

	// Eval evaluates the expression with leaf truth given by f.
	Eval(f func(Condition) bool) bool

	// Prune drops every leaf for which drop returns true. It returns nil
	// when nothing is left.
	Prune(drop func(Condition) bool) Expr

	// Map replaces every leaf with the expression f returns for it.
	Map(f func(Condition) Expr) Expr
}

// Leaf is a single condition.
type Leaf struct {
	Cond Condition
}

// And is a conjunction of two or more terms.
type And struct {
	Terms []Expr
}

// Or is a disjunction of two or more terms.
type Or struct {
	Terms []Expr
}

// NewLeaf wraps a condition.
func NewLeaf(c Condition) *Leaf { return &Leaf{Cond: c} }

// NewAnd builds a conjunction, flattening nested conjunctions and skipping
// nil terms. A single remaining term is returned as is.
func NewAnd(terms ...Expr) Expr {
	flat := flatten(terms, func(e Expr) ([]Expr, bool) {
		a, ok := e.(*And)
		if !ok {
			return nil, false
		}
		return a.Terms, true
	})
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return &And{Terms: flat}
}

// NewOr builds a disjunction, flattening nested disjunctions and skipping
// nil terms. A single remaining term is returned as is.
func NewOr(terms ...Expr) Expr {
	flat := flatten(terms, func(e Expr) ([]Expr, bool) {
		o, ok := e.(*Or)
		if !ok {
			return nil, false
		}
		return o.Terms, true
	})
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return &Or{Terms: flat}
}

func flatten(terms []Expr, same func(Expr) ([]Expr, bool)) []Expr {
	var out []Expr
	for _, t := range terms {
		if t == nil {
			continue
		}
		if inner, ok := same(t); ok {
			out = append(out, inner...)
			continue
		}
		out = append(out, t)
	}
	return out
}

func (l *Leaf) Render() string                   { return l.Cond.String() }
func (l *Leaf) Conditions() []Condition          { return []Condition{l.Cond} }
func (l *Leaf) Eval(f func(Condition) bool) bool { return f(l.Cond) }

func (l *Leaf) Prune(drop func(Condition) bool) Expr {
	if drop(l.Cond) {
		return nil
	}
	return l
}

func (l *Leaf) Map(f func(Condition) Expr) Expr { return f(l.Cond) }

func (a *And) Render() string          { return renderTerms(a.Terms, " & ") }
func (a *And) Conditions() []Condition { return collect(a.Terms) }

func (a *And) Eval(f func(Condition) bool) bool {
	for _, t := range a.Terms {
		if !t.Eval(f) {
			return false
		}
	}
	return true
}

func (a *And) Prune(drop func(Condition) bool) Expr {
	return NewAnd(pruneTerms(a.Terms, drop)...)
}

func (a *And) Map(f func(Condition) Expr) Expr {
	return NewAnd(mapTerms(a.Terms, f)...)
}

func (o *Or) Render() string          { return renderTerms(o.Terms, " | ") }
func (o *Or) Conditions() []Condition { return collect(o.Terms) }

func (o *Or) Eval(f func(Condition) bool) bool {
	for _, t := range o.Terms {
		if t.Eval(f) {
			return true
		}
	}
	return false
}

func (o *Or) Prune(drop func(Condition) bool) Expr {
	return NewOr(pruneTerms(o.Terms, drop)...)
}

func (o *Or) Map(f func(Condition) Expr) Expr {
	return NewOr(mapTerms(o.Terms, f)...)
}

func renderTerms(terms []Expr, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		if _, leaf := t.(*Leaf); leaf {
			parts[i] = t.Render()
		} else {
			parts[i] = "(" + t.Render() + ")"
		}
	}
	return strings.Join(parts, sep)
}

func collect(terms []Expr) []Condition {
	var out []Condition
	for _, t := range terms {
		out = append(out, t.Conditions()...)
	}
	return out
}

func pruneTerms(terms []Expr, drop func(Condition) bool) []Expr {
	out := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if p := t.Prune(drop); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func mapTerms(terms []Expr, f func(Condition) Expr) []Expr {
	out := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if m := t.Map(f); m != nil {
			out = append(out, m)
		}
	}
	return out
}

var outputs = map[string]string{
	"succeed":     "succeeded",
	"fail":        "failed",
	"start":       "started",
	"submit":      "submitted",
	"submit-fail": "submit-failed",
	"expire":      "expired",
}

// OutputFor maps a trigger qualifier to the output it waits on. Custom
// output labels map to themselves; no qualifier means succeeded.
func OutputFor(qualifier string) string {
	if qualifier == "" {
		return "succeeded"
	}
	if out, ok := outputs[qualifier]; ok {
		return out
	}
	return qualifier
}
