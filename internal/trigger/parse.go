// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package trigger

import (
	"fmt"
	"regexp"
	"strings"
)

var conditionRe = regexp.MustCompile(`^([^\[\]:()&|\s]+)(?:\[([^\]]*)\])?(?::([\w\-]+))?$`)

// ParseCondition parses "task[offset]:qualifier"; offset and qualifier are
// optional.
func ParseCondition(s string) (Condition, error) {
	m := conditionRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Condition{}, fmt.Errorf("bad trigger condition %q", s)
	}
	return Condition{Task: m[1], Offset: m[2], Qualifier: m[3]}, nil
}

// ParseExpr parses a trigger expression over "&", "|" and parentheses, with
// "&" binding tighter than "|".
func ParseExpr(s string) (Expr, error) {
	p := &exprParser{src: s, toks: tokenize(s)}
	if len(p.toks) == 0 {
		return nil, fmt.Errorf("empty trigger expression")
	}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected %q in trigger expression %q", p.toks[p.pos], s)
	}
	return e, nil
}

func tokenize(s string) []string {
	var (
		toks []string
		cur  strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	depth := 0 // inside an offset bracket
	for _, r := range s {
		switch {
		case r == '[':
			depth++
			cur.WriteRune(r)
		case r == ']':
			depth--
			cur.WriteRune(r)
		case depth > 0:
			cur.WriteRune(r)
		case r == '(' || r == ')' || r == '&' || r == '|':
			flush()
			toks = append(toks, string(r))
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

type exprParser struct {
	src  string
	toks []string
	pos  int
}

func (p *exprParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *exprParser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for p.peek() == "|" {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	return NewOr(terms...), nil
}

func (p *exprParser) parseAnd() (Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for p.peek() == "&" {
		p.pos++
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	return NewAnd(terms...), nil
}

func (p *exprParser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok {
	case "":
		return nil, fmt.Errorf("unexpected end of trigger expression %q", p.src)
	case "(":
		p.pos++
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("unbalanced parentheses in trigger expression %q", p.src)
		}
		p.pos++
		return e, nil
	case ")", "&", "|":
		return nil, fmt.Errorf("unexpected %q in trigger expression %q", tok, p.src)
	}
	p.pos++
	c, err := ParseCondition(tok)
	if err != nil {
		return nil, err
	}
	return NewLeaf(c), nil
}
