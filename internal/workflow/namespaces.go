// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package workflow

import (
	"sort"

	"github.com/specialistvlad/cyclegrid/internal/config"
	"github.com/specialistvlad/cyclegrid/internal/dag"
	"github.com/specialistvlad/cyclegrid/internal/param"
)

// namespace is one expanded runtime entry: a task or a family.
type namespace struct {
	name    string
	parents []string
	task    *config.Task
}

// runtime holds the expanded inheritance hierarchy.
type runtime struct {
	nodes map[string]*namespace
}

func buildRuntime(m *config.Model, params *param.Params) (*runtime, error) {
	rt := &runtime{nodes: map[string]*namespace{}}
	exp := param.NewNameExpander(params)

	add := func(name string, inherit []string, task *config.Task) error {
		results, err := exp.Expand(name)
		if err != nil {
			return &ConfigError{Section: "runtime " + name, Err: err}
		}
		for _, r := range results {
			if _, dup := rt.nodes[r.Name]; dup {
				return configErrorf("runtime "+name, "namespace %q defined twice", r.Name)
			}
			ns := &namespace{name: r.Name, task: task}
			for _, parent := range inherit {
				expanded, err := exp.Expand(pinParams(parent, r.Values))
				if err != nil {
					return &ConfigError{Section: "runtime " + name, Err: err}
				}
				for _, p := range expanded {
					ns.parents = append(ns.parents, p.Name)
				}
			}
			rt.nodes[r.Name] = ns
		}
		return nil
	}

	for _, f := range m.Families {
		if err := add(f.Name, f.Inherit, nil); err != nil {
			return nil, err
		}
	}
	for _, t := range m.Tasks {
		if err := add(t.Name, t.Inherit, t); err != nil {
			return nil, err
		}
	}

	g := dag.New()
	for _, name := range rt.sortedNames() {
		ns := rt.nodes[name]
		g.AddNode(name)
		for _, p := range ns.parents {
			parent, ok := rt.nodes[p]
			switch {
			case !ok:
				return nil, configErrorf("runtime "+name, "inherits undefined family %q", p)
			case parent.task != nil:
				return nil, configErrorf("runtime "+name, "inherits task %q; only families can be inherited", p)
			}
			g.Connect(p, name)
		}
	}
	if err := g.DetectCycles(); err != nil {
		return nil, &ConfigError{Section: "runtime", Err: err}
	}
	return rt, nil
}

func (rt *runtime) sortedNames() []string {
	out := make([]string, 0, len(rt.nodes))
	for name := range rt.nodes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// lineage returns name followed by its ancestors, nearest first.
func (rt *runtime) lineage(name string) []string {
	out := []string{name}
	seen := map[string]bool{name: true}
	for i := 0; i < len(out); i++ {
		ns, ok := rt.nodes[out[i]]
		if !ok {
			continue
		}
		for _, p := range ns.parents {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// task returns the runtime settings of a task, if any.
func (rt *runtime) task(name string) *config.Task {
	if ns, ok := rt.nodes[name]; ok {
		return ns.task
	}
	return nil
}

// families maps every family with at least one task to its sorted
// descendant tasks.
func (rt *runtime) families() map[string][]string {
	members := map[string][]string{}
	for _, name := range rt.sortedNames() {
		if rt.nodes[name].task == nil {
			continue
		}
		for _, anc := range rt.lineage(name)[1:] {
			members[anc] = append(members[anc], name)
		}
	}
	return members
}

// tasks lists the runtime task names, sorted.
func (rt *runtime) tasks() []string {
	var out []string
	for _, name := range rt.sortedNames() {
		if rt.nodes[name].task != nil {
			out = append(out, name)
		}
	}
	return out
}
