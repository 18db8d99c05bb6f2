package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/cyclegrid/internal/hcl_adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const chainHCL = `
scheduling {
  cycling_mode        = "integer"
  initial_cycle_point = "1"
  final_cycle_point   = "3"

  graph "R1" {
    dependencies = "prep => foo"
  }
  graph "P1" {
    dependencies = <<-EOT
      foo[-P1] => foo => bar
      foo:fail => !bar
    EOT
  }
}
`

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{WorkflowPath: "wf.hcl"}, false},
		{"missing path", Config{}, true},
		{"bad level", Config{WorkflowPath: "wf.hcl", LogLevel: "loud"}, true},
		{"bad format", Config{WorkflowPath: "wf.hcl", LogFormat: "xml"}, true},
		{"bad port", Config{WorkflowPath: "wf.hcl", MetricsPort: -1}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "info", cfg.LogLevel)
			assert.Equal(t, "text", cfg.LogFormat)
			assert.Equal(t, DefaultMaxSteps, cfg.MaxSteps)
		})
	}
}

func TestNewAppRejectsBadWorkflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hcl")
	bad := `
scheduling {
  graph "P1" {
    dependencies = "a => => b"
  }
}
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o600))

	cfg, err := NewConfig(Config{WorkflowPath: path})
	require.NoError(t, err)
	_, err = NewApp(&SafeBuffer{}, &SafeBuffer{}, cfg, hcl_adapter.NewLoader())
	assert.ErrorContains(t, err, "invalid workflow")
}

func TestValidate(t *testing.T) {
	a, out, logs := SetupAppTest(t, chainHCL, Config{})
	require.NoError(t, a.Validate())

	var s Summary
	require.NoError(t, yaml.Unmarshal([]byte(out.String()), &s))
	assert.Equal(t, "integer", s.CyclingMode)
	assert.Equal(t, "3", s.FinalPoint)
	assert.Equal(t, []string{"R1", "P1"}, s.Sections)
	assert.Equal(t, []string{"bar", "foo", "prep"}, s.Tasks)
	assert.Contains(t, logs.String(), "Workflow is valid.")
}

func TestGraph(t *testing.T) {
	a, out, _ := SetupAppTest(t, chainHCL, Config{})
	require.NoError(t, a.Graph("P1"))

	var got []SectionReport
	require.NoError(t, yaml.Unmarshal([]byte(out.String()), &got))
	require.Len(t, got, 1)
	assert.Equal(t, []TriggerReport{
		{Task: "bar", Triggers: []string{"foo:succeed"}, Suicides: []string{"foo:fail"}},
		{Task: "foo", Triggers: []string{"foo[-P1]:succeed"}},
	}, got[0].Tasks)

	assert.Error(t, a.Graph("P7"))
}

func TestPoints(t *testing.T) {
	a, out, _ := SetupAppTest(t, chainHCL, Config{})
	require.NoError(t, a.Points("foo", 5))
	var got map[string][]string
	require.NoError(t, yaml.Unmarshal([]byte(out.String()), &got))
	assert.Equal(t, map[string][]string{"foo": {"1", "2", "3"}}, got)

	assert.Error(t, a.Points("nope", 5))
}

func TestRunSimulation(t *testing.T) {
	a, out, _ := SetupAppTest(t, chainHCL, Config{})
	require.NoError(t, a.Run(context.Background()))

	var rep RunReport
	require.NoError(t, yaml.Unmarshal([]byte(out.String()), &rep))
	assert.Empty(t, rep.Pool)

	var done []string
	for _, e := range rep.Steps {
		if e.To == "succeeded" {
			done = append(done, e.Task)
		}
	}
	assert.Equal(t, []string{"prep.1", "foo.1", "bar.1", "foo.2", "bar.2", "foo.3", "bar.3"}, done)
}

func TestRunRejectsBadRunaheadOverride(t *testing.T) {
	a, _, _ := SetupAppTest(t, chainHCL, Config{RunaheadOverride: "PT1H"})
	assert.ErrorContains(t, a.Run(context.Background()), "runahead")
}

func TestHealthHandler(t *testing.T) {
	a, _, _ := SetupAppTest(t, chainHCL, Config{})
	rr := httptest.NewRecorder()
	a.healthHandler(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK\n", rr.Body.String())
}
