// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package workflow

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/cyclegrid/internal/config"
	"github.com/specialistvlad/cyclegrid/internal/param"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// buildParams converts configured parameters. It returns nil when none are
// defined.
func buildParams(defs []*config.Parameter, templates map[string]string) (*param.Params, error) {
	if len(defs) == 0 {
		if len(templates) > 0 {
			return nil, configErrorf("parameters", "templates given but no parameters defined")
		}
		return nil, nil
	}
	values := make(map[string][]param.Value, len(defs))
	for _, d := range defs {
		if _, dup := values[d.Name]; dup {
			return nil, configErrorf("parameters", "parameter %q defined twice", d.Name)
		}
		vals, err := parameterValues(d)
		if err != nil {
			return nil, &ConfigError{Section: "parameter " + d.Name, Err: err}
		}
		values[d.Name] = vals
	}
	params, err := param.NewParams(values, templates)
	if err != nil {
		return nil, &ConfigError{Section: "parameters", Err: err}
	}
	return params, nil
}

func parameterValues(d *config.Parameter) ([]param.Value, error) {
	if d.Range != "" {
		return param.ParseRange(d.Range)
	}
	out := make([]param.Value, 0, len(d.Values))
	for _, v := range d.Values {
		switch v.Type() {
		case cty.Number:
			var n int
			if err := gocty.FromCtyValue(v, &n); err != nil {
				return nil, fmt.Errorf("value %s is not an integer", v.AsBigFloat().Text('f', -1))
			}
			out = append(out, param.IntValue(n))
		case cty.String:
			out = append(out, param.StrValue(v.AsString()))
		default:
			return nil, fmt.Errorf("unsupported value type %s", v.Type().FriendlyName())
		}
	}
	return out, nil
}

var groupRe = regexp.MustCompile(`<([^<>]+)>`)

// pinParams rewrites "FAM<i>" into "FAM<i=3>" using the values that produced
// a parameterized task, so an inherited parent expands to exactly one name.
func pinParams(name string, values map[string]param.Value) string {
	if len(values) == 0 {
		return name
	}
	return groupRe.ReplaceAllStringFunc(name, func(group string) string {
		items := strings.Split(group[1:len(group)-1], ",")
		for i, item := range items {
			item = strings.TrimSpace(item)
			if v, ok := values[item]; ok {
				item = item + "=" + v.Str
			}
			items[i] = item
		}
		return "<" + strings.Join(items, ",") + ">"
	})
}
