// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/cyclegrid/internal/config"
	"github.com/specialistvlad/cyclegrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// translateScheduling converts the HCL scheduling block into the agnostic model.
func (l *Loader) translateScheduling(s *Scheduling) *config.Scheduling {
	out := &config.Scheduling{
		CyclingMode:       s.CyclingMode,
		InitialCyclePoint: s.InitialCyclePoint,
		FinalCyclePoint:   s.FinalCyclePoint,
		RunaheadLimit:     s.RunaheadLimit,
		HoldAfterPoint:    s.HoldAfterPoint,
	}
	for _, g := range s.Graphs {
		out.Graphs = append(out.Graphs, &config.GraphSection{
			Recurrence:   g.Recurrence,
			Dependencies: g.Dependencies,
		})
	}
	return out
}

// translateParameter evaluates the parameter values list. Values stay as
// cty values; the workflow layer decides between integers and strings.
func (l *Loader) translateParameter(ctx context.Context, p *Parameter) (*config.Parameter, error) {
	logger := ctxlog.FromContext(ctx).With("parameter", p.Name)
	out := &config.Parameter{Name: p.Name, Range: p.Range}

	hasValues := isExprDefined(ctx, p.Values, "values")
	switch {
	case hasValues && p.Range != "":
		return nil, fmt.Errorf("parameter '%s': set either values or range, not both", p.Name)
	case !hasValues && p.Range == "":
		return nil, fmt.Errorf("parameter '%s': one of values or range is required", p.Name)
	case !hasValues:
		logger.Debug("Parameter defined by range.", "range", p.Range)
		return out, nil
	}

	val, diags := p.Values.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid values for parameter '%s': %w", p.Name, diags)
	}
	if !val.Type().IsTupleType() && !val.Type().IsListType() {
		return nil, fmt.Errorf("parameter '%s': values must be a list, got %s", p.Name, val.Type().FriendlyName())
	}
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		if v.IsNull() || (v.Type() != cty.Number && v.Type() != cty.String) {
			return nil, fmt.Errorf("parameter '%s': values must be numbers or strings", p.Name)
		}
		out.Values = append(out.Values, v)
	}
	logger.Debug("Parameter values evaluated.", "count", len(out.Values))
	return out, nil
}

// translateTemplates evaluates the optional parameter_templates map.
func (l *Loader) translateTemplates(ctx context.Context, expr hcl.Expression) (map[string]string, error) {
	if !isExprDefined(ctx, expr, "parameter_templates") {
		return nil, nil
	}
	m, err := stringMap(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid parameter_templates: %w", err)
	}
	return m, nil
}

// translateTask converts the HCL task block into the agnostic model.
func (l *Loader) translateTask(ctx context.Context, t *Task) (*config.Task, error) {
	out := &config.Task{
		Name:             t.Name,
		Inherit:          t.Inherit,
		Sequential:       t.Sequential,
		ExternalTriggers: t.ExternalTriggers,
		Outputs:          map[string]string{},
	}
	if isExprDefined(ctx, t.Outputs, "outputs") {
		m, err := stringMap(t.Outputs)
		if err != nil {
			return nil, fmt.Errorf("invalid outputs for task '%s': %w", t.Name, err)
		}
		out.Outputs = m
	}
	return out, nil
}

// stringMap evaluates an object or map expression into map[string]string.
func stringMap(expr hcl.Expression) (map[string]string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	val, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return nil, err
	}
	return out, nil
}
