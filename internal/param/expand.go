// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package param

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	groupRe = regexp.MustCompile(`<([^<>]+)>`)
	refRe   = regexp.MustCompile(`^(\w+)(?:([+-])(\d+)|=([\w\-+.]+))?$`)
)

// removeSentinel replaces a parameter group whose offset falls outside the
// value list. Lines never contain NUL bytes, so it cannot collide.
const removeSentinel = "\x00"

type ref struct {
	name      string
	offset    int
	hasOffset bool
	pin       Value
	hasPin    bool
}

func (p *Params) parseGroup(body string, allowOffsets bool) ([]ref, error) {
	var refs []ref
	for _, item := range strings.Split(body, ",") {
		item = strings.TrimSpace(item)
		m := refRe.FindStringSubmatch(item)
		if m == nil {
			return nil, expandErrorf("bad parameter reference %q", item)
		}
		r := ref{name: m[1]}
		values, ok := p.Values[r.name]
		if !ok {
			return nil, expandErrorf("parameter %q is not defined", r.name)
		}
		switch {
		case m[2] != "":
			if !allowOffsets {
				return nil, expandErrorf("parameter offsets are not supported in task names: %q", item)
			}
			n, _ := strconv.Atoi(m[3])
			if m[2] == "-" {
				n = -n
			}
			r.offset, r.hasOffset = n, true
		case m[4] != "":
			v, ok := findValue(m[4], values)
			if !ok {
				return nil, expandErrorf("illegal value %q for parameter %q", m[4], r.name)
			}
			r.pin, r.hasPin = v, true
		}
		refs = append(refs, r)
	}
	return refs, nil
}

// NameResult is one concrete name produced by a NameExpander together with
// the parameter values that produced it.
type NameResult struct {
	Name   string
	Values map[string]Value
}

// NameExpander expands parameterized task and family names.
type NameExpander struct {
	params *Params
}

// NewNameExpander returns an expander over params.
func NewNameExpander(params *Params) *NameExpander {
	return &NameExpander{params: params}
}

var nameGroupRe = regexp.MustCompile(`^([^<>]*)<([^<>]+)>([^<>]*)$`)

// Expand turns "foo<i,j>" into one result per value combination, in the
// order the parameters appear with the last one varying fastest. "i=3" pins
// a parameter; offsets such as "i-1" are rejected. A name without a
// parameter group expands to itself.
func (e *NameExpander) Expand(name string) ([]NameResult, error) {
	if !strings.ContainsAny(name, "<>") {
		return []NameResult{{Name: name}}, nil
	}
	m := nameGroupRe.FindStringSubmatch(name)
	if m == nil {
		return nil, expandErrorf("bad parameterized name %q", name)
	}
	if e.params == nil {
		return nil, expandErrorf("no parameters defined for %q", name)
	}
	refs, err := e.params.parseGroup(m[2], false)
	if err != nil {
		return nil, err
	}

	var (
		results []NameResult
		walkErr error
	)
	chosen := make(map[string]Value, len(refs))
	var walk func(i int)
	walk = func(i int) {
		if walkErr != nil {
			return
		}
		if i == len(refs) {
			var b strings.Builder
			b.WriteString(m[1])
			for _, r := range refs {
				s, err := Render(e.params.Templates[r.name], chosen)
				if err != nil {
					walkErr = err
					return
				}
				b.WriteString(s)
			}
			b.WriteString(m[3])
			values := make(map[string]Value, len(chosen))
			for k, v := range chosen {
				values[k] = v
			}
			results = append(results, NameResult{Name: b.String(), Values: values})
			return
		}
		r := refs[i]
		if r.hasPin {
			chosen[r.name] = r.pin
			walk(i + 1)
			return
		}
		for _, v := range e.params.Values[r.name] {
			chosen[r.name] = v
			walk(i + 1)
		}
	}
	walk(0)
	if walkErr != nil {
		return nil, walkErr
	}
	return results, nil
}

// GraphExpander expands parameterized graph lines.
type GraphExpander struct {
	params *Params
}

// NewGraphExpander returns an expander over params.
func NewGraphExpander(params *Params) *GraphExpander {
	return &GraphExpander{params: params}
}

// Expand returns the sorted, de-duplicated set of concrete lines for line.
//
// Offsets ("i-1") index into the parameter's ordered value list. When an
// offset falls off either end, the chain is cut after the segment holding
// it, so "a<i-1>=>b<i>" yields a bare "b_i0" for the first value.
func (e *GraphExpander) Expand(line string) ([]string, error) {
	locs := groupRe.FindAllStringSubmatchIndex(line, -1)
	if len(locs) == 0 {
		return []string{line}, nil
	}
	if e.params == nil {
		return nil, expandErrorf("no parameters defined for %q", line)
	}

	groups := make([][]ref, len(locs))
	var loop []string
	seen := map[string]bool{}
	for i, loc := range locs {
		refs, err := e.params.parseGroup(line[loc[2]:loc[3]], true)
		if err != nil {
			return nil, err
		}
		groups[i] = refs
		for _, r := range refs {
			if !r.hasPin && !seen[r.name] {
				seen[r.name] = true
				loop = append(loop, r.name)
			}
		}
	}

	out := map[string]struct{}{}
	idx := make(map[string]int, len(loop))
	var walkErr error
	var walk func(i int)
	walk = func(i int) {
		if walkErr != nil {
			return
		}
		if i < len(loop) {
			for j := range e.params.Values[loop[i]] {
				idx[loop[i]] = j
				walk(i + 1)
			}
			return
		}
		expanded, err := e.substitute(line, locs, groups, idx)
		if err != nil {
			walkErr = err
			return
		}
		if expanded != "" {
			out[expanded] = struct{}{}
		}
	}
	walk(0)
	if walkErr != nil {
		return nil, walkErr
	}

	lines := make([]string, 0, len(out))
	for l := range out {
		lines = append(lines, l)
	}
	sort.Strings(lines)
	return lines, nil
}

func (e *GraphExpander) substitute(line string, locs [][]int, groups [][]ref, idx map[string]int) (string, error) {
	var b strings.Builder
	prev := 0
	for g, loc := range locs {
		b.WriteString(line[prev:loc[0]])
		prev = loc[1]

		text := ""
		for _, r := range groups[g] {
			v := r.pin
			if !r.hasPin {
				values := e.params.Values[r.name]
				j := idx[r.name] + r.offset
				if j < 0 || j >= len(values) {
					text = removeSentinel
					break
				}
				v = values[j]
			}
			s, err := Render(e.params.Templates[r.name], map[string]Value{r.name: v})
			if err != nil {
				return "", err
			}
			text += s
		}
		b.WriteString(text)
	}
	b.WriteString(line[prev:])
	return dropRemoved(b.String()), nil
}

// dropRemoved keeps only the segments after the last one holding the
// sentinel. A sentinel in the final segment drops the whole line.
func dropRemoved(line string) string {
	segs := strings.Split(line, "=>")
	for k := len(segs) - 1; k >= 0; k-- {
		if strings.Contains(segs[k], removeSentinel) {
			return strings.Join(segs[k+1:], "=>")
		}
	}
	return line
}
