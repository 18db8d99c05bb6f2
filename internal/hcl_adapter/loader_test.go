package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/cyclegrid/internal/config"
	"github.com/specialistvlad/cyclegrid/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func load(t *testing.T, paths ...string) (*config.Model, error) {
	t.Helper()
	ctx := ctxlog.Discard(context.Background())
	return NewLoader().Load(ctx, paths...)
}

const workflowHCL = `
scheduling {
  cycling_mode        = "integer"
  initial_cycle_point = "1"
  final_cycle_point   = "3"
  runahead_limit      = "P2"

  graph "R1" {
    dependencies = "prep => foo"
  }
  graph "P1" {
    dependencies = <<-EOT
      foo[-P1] => foo => bar
    EOT
  }
}

parameter "i" {
  values = [0, 1]
}

parameter "run" {
  values = ["a", "b"]
}

parameter "j" {
  range = "0..2"
}

parameter_templates = {
  run = "_%(run)s"
}
`

const runtimeHCL = `
family "SIMS" {}

task "foo" {
  inherit           = ["SIMS"]
  sequential        = true
  outputs           = { out1 = "file ready" }
  external_triggers = ["data-$CYLC_TASK_CYCLE_POINT"]
}

task "sim<i>" {
  inherit = ["SIMS"]
}
`

func TestLoadWorkflow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "flow.hcl", workflowHCL)
	writeFile(t, dir, "runtime/tasks.hcl", runtimeHCL)
	writeFile(t, dir, "README.md", "ignored")

	model, err := load(t, dir)
	require.NoError(t, err)

	wantScheduling := &config.Scheduling{
		CyclingMode:       "integer",
		InitialCyclePoint: "1",
		FinalCyclePoint:   "3",
		RunaheadLimit:     "P2",
		Graphs: []*config.GraphSection{
			{Recurrence: "R1", Dependencies: "prep => foo"},
			{Recurrence: "P1", Dependencies: "foo[-P1] => foo => bar\n"},
		},
	}
	if diff := cmp.Diff(wantScheduling, model.Scheduling); diff != "" {
		t.Errorf("scheduling mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, model.Parameters, 3)
	assert.Equal(t, "i", model.Parameters[0].Name)
	require.Len(t, model.Parameters[0].Values, 2)
	assert.True(t, model.Parameters[0].Values[1].Equals(cty.NumberIntVal(1)).True())
	assert.True(t, model.Parameters[1].Values[0].Equals(cty.StringVal("a")).True())
	assert.Equal(t, "0..2", model.Parameters[2].Range)
	assert.Equal(t, map[string]string{"run": "_%(run)s"}, model.ParameterTemplates)

	require.Len(t, model.Families, 1)
	assert.Equal(t, "SIMS", model.Families[0].Name)

	require.Len(t, model.Tasks, 2)
	foo := model.Tasks[0]
	assert.Equal(t, "foo", foo.Name)
	assert.True(t, foo.Sequential)
	assert.Equal(t, []string{"SIMS"}, foo.Inherit)
	assert.Equal(t, map[string]string{"out1": "file ready"}, foo.Outputs)
	assert.Equal(t, []string{"data-$CYLC_TASK_CYCLE_POINT"}, foo.ExternalTriggers)
	assert.Equal(t, "sim<i>", model.Tasks[1].Name)
	assert.Empty(t, model.Tasks[1].Outputs)
}

func TestLoadErrors(t *testing.T) {
	testCases := map[string]struct {
		files   map[string]string
		errText string
	}{
		"syntax error": {
			files:   map[string]string{"a.hcl": "scheduling {\n"},
			errText: "failed to parse",
		},
		"unknown block": {
			files:   map[string]string{"a.hcl": "scheduling {}\nrunner \"x\" {}\n"},
			errText: "failed to decode",
		},
		"missing scheduling": {
			files:   map[string]string{"a.hcl": "task \"a\" {}\n"},
			errText: "no scheduling block",
		},
		"duplicate scheduling": {
			files:   map[string]string{"a.hcl": "scheduling {}\n", "b.hcl": "scheduling {}\n"},
			errText: "duplicate scheduling block",
		},
		"parameter without values": {
			files:   map[string]string{"a.hcl": "scheduling {}\nparameter \"i\" {}\n"},
			errText: "one of values or range is required",
		},
		"parameter with both": {
			files:   map[string]string{"a.hcl": "scheduling {}\nparameter \"i\" {\n values = [1]\n range = \"0..1\"\n}\n"},
			errText: "not both",
		},
		"parameter values not a list": {
			files:   map[string]string{"a.hcl": "scheduling {}\nparameter \"i\" {\n values = 3\n}\n"},
			errText: "must be a list",
		},
		"outputs not a map": {
			files:   map[string]string{"a.hcl": "scheduling {}\ntask \"a\" {\n outputs = [\"x\"]\n}\n"},
			errText: "invalid outputs",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			for file, content := range tc.files {
				writeFile(t, dir, file, content)
			}
			_, err := load(t, dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, err := load(t, filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "error accessing path")
}

func TestLoadSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "flow.hcl", "scheduling {\n  graph \"R1\" {\n    dependencies = \"a\"\n  }\n}\n")
	model, err := load(t, path)
	require.NoError(t, err)
	require.Len(t, model.Scheduling.Graphs, 1)
	assert.Equal(t, "a", model.Scheduling.Graphs[0].Dependencies)
}
