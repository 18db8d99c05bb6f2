package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/cyclegrid/internal/config"
	"github.com/specialistvlad/cyclegrid/internal/ctxlog"
	"github.com/specialistvlad/cyclegrid/internal/cycling"
	"github.com/specialistvlad/cyclegrid/internal/dag"
	"github.com/specialistvlad/cyclegrid/internal/graph"
	"github.com/specialistvlad/cyclegrid/internal/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func build(t *testing.T, m *config.Model) (*Workflow, error) {
	t.Helper()
	return Build(ctxlog.Discard(context.Background()), m)
}

func model(graphs ...string) *config.Model {
	m := config.NewModel()
	m.Scheduling.CyclingMode = "integer"
	m.Scheduling.InitialCyclePoint = "1"
	m.Scheduling.FinalCyclePoint = "3"
	for i := 0; i+1 < len(graphs); i += 2 {
		m.Scheduling.Graphs = append(m.Scheduling.Graphs, &config.GraphSection{
			Recurrence:   graphs[i],
			Dependencies: graphs[i+1],
		})
	}
	return m
}

func pointStrings(ps []cycling.Point) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.String())
	}
	return out
}

func TestBuildBasicWorkflow(t *testing.T) {
	w, err := build(t, model(
		"R1", "prep => foo",
		"P1", "foo[-P1] => foo => bar",
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"bar", "foo", "prep"}, w.TaskNames())
	assert.Equal(t, cycling.ModeInteger, w.System().Mode())
	assert.Equal(t, "1", w.InitialPoint().String())
	assert.Equal(t, "3", w.FinalPoint().String())
	assert.Nil(t, w.Runahead())
	require.Len(t, w.Sections(), 2)

	foo, ok := w.Definition("foo")
	require.True(t, ok)
	assert.Len(t, foo.Sequences, 2)
	require.Len(t, foo.Dependencies, 2)

	pts, err := w.Points("foo", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, pointStrings(pts))

	pts, err = w.Points("prep", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, pointStrings(pts))

	_, err = w.Points("nope", 1)
	assert.Error(t, err)

	prereqs, _, err := foo.Prerequisites(w.InitialPoint())
	require.NoError(t, err)
	assert.Len(t, prereqs, 2)

	order, err := w.DependencyGraph().TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"prep", "foo", "bar"}, order)
}

func TestBuildWithoutContextLogger(t *testing.T) {
	var wf *Workflow
	var err error
	require.NotPanics(t, func() {
		wf, err = Build(context.Background(), model("P1", "foo => bar"))
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bar", "foo"}, wf.TaskNames())
}

func TestBuildFamiliesAndParameters(t *testing.T) {
	m := model("R1", "prep => SIMS\nSIMS:succeed-all => post")
	m.Parameters = []*config.Parameter{
		{Name: "i", Values: []cty.Value{cty.NumberIntVal(0), cty.NumberIntVal(1)}},
	}
	m.Families = []*config.Family{{Name: "SIMS"}}
	m.Tasks = []*config.Task{
		{Name: "sim<i>", Inherit: []string{"SIMS"}},
		{Name: "post", Outputs: map[string]string{"report": "report written"}, Sequential: true},
	}

	w, err := build(t, m)
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{"SIMS": {"sim_i0", "sim_i1"}}, w.Families())
	assert.Equal(t, []string{"post", "prep", "sim_i0", "sim_i1"}, w.TaskNames())

	sim, ok := w.Definition("sim_i1")
	require.True(t, ok)
	assert.Equal(t, []string{"sim_i1", "SIMS"}, sim.Namespaces)

	post, _ := w.Definition("post")
	assert.True(t, post.Sequential)
	assert.Equal(t, "report written", post.Outputs["report"])
	require.Len(t, post.Dependencies, 1)
	require.Len(t, post.Dependencies[0].Dependencies, 1)
	assert.Len(t, post.Dependencies[0].Dependencies[0].Triggers, 2)
}

func TestParameterizedInheritance(t *testing.T) {
	m := model("P1", "a<i> => b<i>")
	m.Parameters = []*config.Parameter{{Name: "i", Range: "1..2"}}
	m.Families = []*config.Family{{Name: "FAM<i>"}}
	m.Tasks = []*config.Task{{Name: "b<i>", Inherit: []string{"FAM<i>"}}}

	w, err := build(t, m)
	require.NoError(t, err)
	b, ok := w.Definition("b_i2")
	require.True(t, ok)
	assert.Equal(t, []string{"b_i2", "FAM_i2"}, b.Namespaces)
	assert.Equal(t, []string{"b_i2"}, w.Families()["FAM_i2"])
}

func TestCustomOutputsAndTriggers(t *testing.T) {
	m := model("P1", "a:ready => b")
	m.Tasks = []*config.Task{
		{Name: "a", Outputs: map[string]string{"ready": "data ready"}},
		{Name: "b", ExternalTriggers: []string{"go-$CYLC_TASK_CYCLE_POINT"}},
	}
	w, err := build(t, m)
	require.NoError(t, err)

	b, _ := w.Definition("b")
	assert.Equal(t, "ready", b.Dependencies[0].Dependencies[0].Triggers[0].Output)
	assert.Equal(t, []string{"go-$CYLC_TASK_CYCLE_POINT"}, b.ExternalTriggers)
}

func TestXTriggersAndHoldAfter(t *testing.T) {
	m := model("P1", "@clock => a")
	m.Scheduling.HoldAfterPoint = "2"
	m.Scheduling.RunaheadLimit = "P2"
	w, err := build(t, m)
	require.NoError(t, err)

	a, ok := w.Definition("a")
	require.True(t, ok)
	assert.Equal(t, []string{"clock"}, a.XTrigLabels)
	assert.Equal(t, "2", w.HoldAfterPoint().String())
	assert.Equal(t, "P2", w.Runahead().String())
}

func TestGregorianWorkflow(t *testing.T) {
	m := model("PT12H", "a[-PT12H] => a")
	m.Scheduling.CyclingMode = "gregorian"
	m.Scheduling.InitialCyclePoint = "20250101T00Z"
	m.Scheduling.FinalCyclePoint = "+P1D"

	w, err := build(t, m)
	require.NoError(t, err)
	pts, err := w.Points("a", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"20250101T0000Z", "20250101T1200Z", "20250102T0000Z"}, pointStrings(pts))
}

func TestBuildErrors(t *testing.T) {
	testCases := map[string]func() *config.Model{
		"missing scheduling": func() *config.Model { return &config.Model{} },
		"no graph":           func() *config.Model { return model() },
		"bad recurrence":     func() *config.Model { return model("R/x/y/z", "a") },
		"bad cycling mode": func() *config.Model {
			m := model("P1", "a")
			m.Scheduling.CyclingMode = "lunar"
			return m
		},
		"gregorian needs initial point": func() *config.Model {
			m := model("P1D", "a")
			m.Scheduling.CyclingMode = "gregorian"
			m.Scheduling.InitialCyclePoint = ""
			m.Scheduling.FinalCyclePoint = ""
			return m
		},
		"final before initial": func() *config.Model {
			m := model("P1", "a")
			m.Scheduling.FinalCyclePoint = "0"
			return m
		},
		"bad runahead": func() *config.Model {
			m := model("P1", "a")
			m.Scheduling.RunaheadLimit = "three"
			return m
		},
		"same point cycle": func() *config.Model { return model("P1", "a => b => a") },
		"trigger off unknown task": func() *config.Model {
			return model("P1", "ghost[-P1] => a")
		},
		"undefined custom output": func() *config.Model { return model("P1", "a:ready => b") },
		"undefined parent": func() *config.Model {
			m := model("P1", "a")
			m.Tasks = []*config.Task{{Name: "a", Inherit: []string{"NOPE"}}}
			return m
		},
		"inherit a task": func() *config.Model {
			m := model("P1", "a => b")
			m.Tasks = []*config.Task{{Name: "a"}, {Name: "b", Inherit: []string{"a"}}}
			return m
		},
		"family inheritance cycle": func() *config.Model {
			m := model("P1", "a")
			m.Families = []*config.Family{{Name: "F1", Inherit: []string{"F2"}}, {Name: "F2", Inherit: []string{"F1"}}}
			return m
		},
		"duplicate namespace": func() *config.Model {
			m := model("P1", "a")
			m.Tasks = []*config.Task{{Name: "a"}, {Name: "a"}}
			return m
		},
		"non-integer parameter": func() *config.Model {
			m := model("P1", "a<i>")
			m.Parameters = []*config.Parameter{{Name: "i", Values: []cty.Value{cty.NumberFloatVal(1.5)}}}
			return m
		},
		"template without parameters": func() *config.Model {
			m := model("P1", "a")
			m.ParameterTemplates = map[string]string{"i": "_%(i)s"}
			return m
		},
		"shadowed standard output": func() *config.Model {
			m := model("P1", "a")
			m.Tasks = []*config.Task{{Name: "a", Outputs: map[string]string{"succeeded": "x"}}}
			return m
		},
	}

	for name, mk := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := build(t, mk())
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "got %v", err)
		})
	}
}

func TestErrorsUnwrapToCause(t *testing.T) {
	_, err := build(t, model("P1", "a && b => c"))
	var perr *graph.ParseError
	assert.True(t, errors.As(err, &perr))

	_, err = build(t, model("P1", "a => b => a"))
	var cycle *dag.CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Path)

	m := model("P1", "a<k>")
	m.Parameters = []*config.Parameter{{Name: "i", Range: "0..1"}}
	_, err = build(t, m)
	var perr2 *param.ExpandError
	assert.True(t, errors.As(err, &perr2), "got %v", err)
}
