// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package graph

import (
	"regexp"
	"sort"
	"strings"

	"github.com/specialistvlad/cyclegrid/internal/param"
	"github.com/specialistvlad/cyclegrid/internal/trigger"
)

const (
	reName   = `\w[\w\-+%@]*`
	reParams = `<[\w,=\-+]+>`
	reOffset = `\[[\w\-+^$:]+\]`
	reTrig   = `:[\w\-]+`

	arrow = "=>"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	pollingRe    = regexp.MustCompile(`(` + reName + `)<([\w.\-/]+)::(` + reName + `)(?::([\w\-]+))?>`)
	nodeFullRe   = regexp.MustCompile(`^@?` + reName + `(?:` + reParams + `)?(?:` + reOffset + `)?(?:` + reTrig + `)?$`)
	nodePartsRe  = regexp.MustCompile(`^(@?` + reName + `)(` + reOffset + `)?(` + reTrig + `)?$`)
	nodeSplitRe  = regexp.MustCompile(`=>|[&|()]`)
	xtriggerRe   = regexp.MustCompile(`^@\w+$`)
)

// Entry is one trigger expression of a downstream task. The auto-trigger
// entry has a nil Expr.
type Entry struct {
	Expr       trigger.Expr
	Conditions []trigger.Condition
	Suicide    bool
}

// PollingTask records a local task that stands in for a task of another
// workflow, written as name<workflow::task:status>.
type PollingTask struct {
	Workflow string
	Task     string
	Status   string
	Raw      string
}

// Parser turns graph section text into trigger maps.
type Parser struct {
	families map[string][]string
	expander *param.GraphExpander

	// Triggers maps task name, then canonical expression, to its entry.
	Triggers map[string]map[string]Entry
	// Original maps task name, then canonical expression, to the left-hand
	// text it was parsed from.
	Original     map[string]map[string]string
	PollingTasks map[string]PollingTask
	// XTriggers maps task name to the external trigger labels ("@label")
	// that gate it.
	XTriggers map[string][]string
}

// NewParser returns a parser that knows the given family membership and
// parameters. Either may be nil.
func NewParser(families map[string][]string, params *param.Params) *Parser {
	p := &Parser{families: families}
	if params != nil {
		p.expander = param.NewGraphExpander(params)
	}
	p.reset()
	return p
}

func (p *Parser) reset() {
	p.Triggers = map[string]map[string]Entry{}
	p.Original = map[string]map[string]string{}
	p.PollingTasks = map[string]PollingTask{}
	p.XTriggers = map[string][]string{}
}

// Parse replaces the parser's maps with the result of parsing text.
func (p *Parser) Parse(text string) error {
	p.reset()
	lines := stripLines(text)
	if len(lines) == 0 {
		return nil
	}

	lines, err := joinLines(lines)
	if err != nil {
		return err
	}
	for i, line := range lines {
		lines[i] = p.extractPolling(line)
	}
	if err := validate(lines); err != nil {
		return err
	}
	lines, err = p.expandParams(lines)
	if err != nil {
		return err
	}

	type pair struct{ left, right string }
	var pairs []pair
	seen := map[pair]bool{}
	add := func(l, r string) {
		pr := pair{l, r}
		if !seen[pr] {
			seen[pr] = true
			pairs = append(pairs, pr)
		}
	}
	for _, line := range lines {
		chain := strings.Split(line, arrow)
		for _, name := range autoTriggerNames(chain[0]) {
			add("", name)
		}
		for i := 0; i+1 < len(chain); i++ {
			add(chain[i], chain[i+1])
		}
	}

	for _, pr := range pairs {
		if err := p.procPair(pr.left, pr.right); err != nil {
			p.reset()
			return err
		}
	}
	return nil
}

func stripLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = whitespaceRe.ReplaceAllString(line, "")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func joinLines(lines []string) ([]string, error) {
	if strings.HasPrefix(lines[0], arrow) {
		return nil, &ParseError{Msg: "leading arrow", Lines: []string{lines[0]}}
	}
	if last := lines[len(lines)-1]; strings.HasSuffix(last, arrow) {
		return nil, &ParseError{Msg: "trailing arrow", Lines: []string{last}}
	}
	var (
		out []string
		cur strings.Builder
	)
	for i, line := range lines {
		cur.WriteString(line)
		if strings.HasSuffix(line, arrow) {
			continue
		}
		if i+1 < len(lines) && strings.HasPrefix(lines[i+1], arrow) {
			continue
		}
		out = append(out, cur.String())
		cur.Reset()
	}
	return out, nil
}

func (p *Parser) extractPolling(line string) string {
	return pollingRe.ReplaceAllStringFunc(line, func(m string) string {
		sub := pollingRe.FindStringSubmatch(m)
		status := sub[4]
		if status == "" {
			status = "succeed"
		}
		p.PollingTasks[sub[1]] = PollingTask{
			Workflow: sub[2],
			Task:     sub[3],
			Status:   status,
			Raw:      m,
		}
		return sub[1]
	})
}

func validate(lines []string) error {
	var doubled []string
	for _, line := range lines {
		if strings.Contains(line, "&&") || strings.Contains(line, "||") {
			doubled = append(doubled, line)
		}
	}
	if len(doubled) > 0 {
		return &ParseError{Msg: `use single "&" and "|" for AND and OR`, Lines: doubled}
	}

	var bad []string
	for _, line := range lines {
		for _, tok := range nodeSplitRe.Split(line, -1) {
			tok = strings.TrimPrefix(tok, "!")
			if tok == "" {
				continue
			}
			if !nodeFullRe.MatchString(tok) {
				bad = append(bad, tok)
			}
		}
	}
	if len(bad) > 0 {
		return &ParseError{Msg: "bad graph node format", Lines: bad}
	}
	return nil
}

func (p *Parser) expandParams(lines []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, line := range lines {
		expanded := []string{line}
		if strings.Contains(line, "<") {
			if p.expander == nil {
				return nil, &ParseError{Msg: "parameterized node but no parameters defined", Lines: []string{line}}
			}
			var err error
			if expanded, err = p.expander.Expand(line); err != nil {
				return nil, err
			}
		}
		for _, l := range expanded {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out, nil
}

// autoTriggerNames returns the nodes at the head of a chain that have no
// cycle offset. They get an entry with no prerequisites.
func autoTriggerNames(head string) []string {
	var out []string
	for _, tok := range nodeSplitRe.Split(head, -1) {
		if tok == "" || strings.HasPrefix(tok, "!") || strings.HasPrefix(tok, "@") {
			continue
		}
		m := nodePartsRe.FindStringSubmatch(tok)
		if m == nil || m[2] != "" {
			continue
		}
		out = append(out, m[1])
	}
	return out
}

type target struct {
	name    string
	suicide bool
}

func (p *Parser) procPair(left, right string) error {
	switch {
	case strings.Contains(right, "|"):
		return &ParseError{Msg: "illegal OR on the right side", Lines: []string{left + arrow + right}}
	case strings.Contains(right, ":"):
		return &ParseError{Msg: "illegal trigger qualifier on the right side", Lines: []string{left + arrow + right}}
	case strings.Contains(right, "["):
		return &ParseError{Msg: "illegal cycle offset on the right side", Lines: []string{left + arrow + right}}
	case strings.ContainsAny(right, "()"):
		return &ParseError{Msg: "illegal parentheses on the right side", Lines: []string{left + arrow + right}}
	case strings.Contains(left, "!"):
		return &ParseError{Msg: "suicide marker on the left side", Lines: []string{left + arrow + right}}
	case strings.Count(left, "(") != strings.Count(left, ")"):
		return &ParseError{Msg: "unbalanced parentheses", Lines: []string{left}}
	}

	var rights []target
	for _, r := range strings.Split(right, "&") {
		t := target{name: r}
		if strings.HasPrefix(r, "!") {
			t = target{name: r[1:], suicide: true}
		}
		if t.name == "" {
			return &ParseError{Msg: "empty task name", Lines: []string{left + arrow + right}}
		}
		if strings.HasPrefix(t.name, "@") {
			return &ParseError{Msg: "external trigger on the right side", Lines: []string{t.name}}
		}
		rights = append(rights, t)
	}

	if left == "" {
		for _, t := range rights {
			for _, member := range p.membersOrSelf(t.name) {
				p.record(member, "", "", Entry{Suicide: t.suicide})
			}
		}
		return nil
	}

	lefts := []string{left}
	if !strings.ContainsAny(left, "|(") {
		lefts = strings.Split(left, "&")
	}
	for _, l := range lefts {
		if l == "" {
			return &ParseError{Msg: "empty task name", Lines: []string{left + arrow + right}}
		}
		if xtriggerRe.MatchString(l) {
			p.recordXTrigger(l[1:], rights)
			continue
		}
		if strings.Contains(l, "@") && strings.ContainsAny(l, "|&") {
			return &ParseError{Msg: "external triggers cannot be used in conditional expressions", Lines: []string{l}}
		}
		if err := p.procExpr(l, rights); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) recordXTrigger(label string, rights []target) {
	for _, t := range rights {
		for _, member := range p.membersOrSelf(t.name) {
			if !containsString(p.XTriggers[member], label) {
				p.XTriggers[member] = append(p.XTriggers[member], label)
			}
			p.record(member, "", "", Entry{})
		}
	}
}

func (p *Parser) procExpr(left string, rights []target) error {
	expr, err := trigger.ParseExpr(left)
	if err != nil {
		return &ParseError{Msg: err.Error()}
	}
	expr = expr.Map(func(c trigger.Condition) trigger.Expr {
		if c.Qualifier == "" {
			c.Qualifier = "succeed"
		}
		return trigger.NewLeaf(c)
	})

	var mem, allAny bool
	for _, c := range expr.Conditions() {
		_, isFamily := p.families[c.Task]
		_, kind := splitFamilySuffix(c.Qualifier)
		switch {
		case isFamily && kind == "":
			return parseErrorf("family trigger %s needs a -all, -any or -mem suffix", c)
		case !isFamily && kind != "":
			return parseErrorf("%s is not a family, so %q is not allowed", c.Task, c.Qualifier)
		case kind == "mem":
			mem = true
		case kind != "":
			allAny = true
		}
	}
	if mem && allAny {
		return parseErrorf("cannot mix -all/-any and -mem family triggers in %q", left)
	}

	if !mem {
		expanded := expandFinish(expr.Map(p.expandFamily))
		for _, t := range rights {
			for _, member := range p.membersOrSelf(t.name) {
				p.recordExpr(member, left, expanded, t.suicide)
			}
		}
		return nil
	}
	return p.procMemToMem(left, expr, rights)
}

// procMemToMem pairs the i-th member (sorted) of every -mem family on the
// left with the i-th member of every family on the right.
func (p *Parser) procMemToMem(left string, expr trigger.Expr, rights []target) error {
	size := -1
	check := func(fam string) error {
		n := len(p.families[fam])
		if size >= 0 && n != size {
			return parseErrorf("mem-to-mem families differ in size in %q", left)
		}
		size = n
		return nil
	}
	for _, c := range expr.Conditions() {
		if _, kind := splitFamilySuffix(c.Qualifier); kind == "mem" {
			if err := check(c.Task); err != nil {
				return err
			}
		}
	}
	for _, t := range rights {
		if _, ok := p.families[t.name]; !ok {
			return parseErrorf("mem-to-mem trigger needs a family on the right, got %s", t.name)
		}
		if err := check(t.name); err != nil {
			return err
		}
	}

	for i := 0; i < size; i++ {
		expanded := expr.Map(func(c trigger.Condition) trigger.Expr {
			base, kind := splitFamilySuffix(c.Qualifier)
			if kind != "mem" {
				return trigger.NewLeaf(c)
			}
			return trigger.NewLeaf(trigger.Condition{Task: p.sortedMembers(c.Task)[i], Offset: c.Offset, Qualifier: base})
		})
		expanded = expandFinish(expanded)
		for _, t := range rights {
			p.recordExpr(p.sortedMembers(t.name)[i], left, expanded, t.suicide)
		}
	}
	return nil
}

func (p *Parser) expandFamily(c trigger.Condition) trigger.Expr {
	if _, ok := p.families[c.Task]; !ok {
		return trigger.NewLeaf(c)
	}
	base, kind := splitFamilySuffix(c.Qualifier)
	members := p.sortedMembers(c.Task)
	leaves := make([]trigger.Expr, 0, len(members))
	for _, m := range members {
		leaves = append(leaves, trigger.NewLeaf(trigger.Condition{Task: m, Offset: c.Offset, Qualifier: base}))
	}
	if kind == "any" {
		return trigger.NewOr(leaves...)
	}
	return trigger.NewAnd(leaves...)
}

// expandFinish rewrites every ":finish" leaf as succeed-or-fail.
func expandFinish(e trigger.Expr) trigger.Expr {
	return e.Map(func(c trigger.Condition) trigger.Expr {
		if c.Qualifier != "finish" {
			return trigger.NewLeaf(c)
		}
		ok, failed := c, c
		ok.Qualifier, failed.Qualifier = "succeed", "fail"
		return trigger.NewOr(trigger.NewLeaf(ok), trigger.NewLeaf(failed))
	})
}

func (p *Parser) recordExpr(task, original string, expr trigger.Expr, suicide bool) {
	p.record(task, expr.Render(), original, Entry{
		Expr:       expr,
		Conditions: expr.Conditions(),
		Suicide:    suicide,
	})
}

func (p *Parser) record(task, key, original string, e Entry) {
	if p.Triggers[task] == nil {
		p.Triggers[task] = map[string]Entry{}
		p.Original[task] = map[string]string{}
	}
	p.Triggers[task][key] = e
	p.Original[task][key] = original
}

func (p *Parser) membersOrSelf(name string) []string {
	if members, ok := p.families[name]; ok {
		return members
	}
	return []string{name}
}

func (p *Parser) sortedMembers(fam string) []string {
	members := append([]string(nil), p.families[fam]...)
	sort.Strings(members)
	return members
}

func splitFamilySuffix(q string) (base, kind string) {
	for _, k := range []string{"all", "any", "mem"} {
		if strings.HasSuffix(q, "-"+k) {
			return strings.TrimSuffix(q, "-"+k), k
		}
	}
	return q, ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Tasks returns every task named in the trigger map, sorted.
func (p *Parser) Tasks() []string {
	out := make([]string, 0, len(p.Triggers))
	for name := range p.Triggers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
