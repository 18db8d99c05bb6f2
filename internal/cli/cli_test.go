package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workflowHCL = `
scheduling {
  cycling_mode        = "integer"
  initial_cycle_point = "1"
  final_cycle_point   = "2"

  graph "P1" {
    dependencies = "a[-P1] => a => b"
  }
}
`

func writeWorkflow(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.hcl")
	require.NoError(t, os.WriteFile(path, []byte(workflowHCL), 0o600))
	return path
}

func execute(args ...string) (string, error) {
	out, logs := &bytes.Buffer{}, &bytes.Buffer{}
	err := Execute(args, out, logs)
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %T: %v", err, err)
	return exitErr.Code
}

func TestCommands(t *testing.T) {
	path := writeWorkflow(t)

	t.Run("validate", func(t *testing.T) {
		out, err := execute("validate", path)
		require.NoError(t, err)
		assert.Contains(t, out, "cycling_mode: integer")
	})

	t.Run("graph", func(t *testing.T) {
		out, err := execute("graph", path, "--section", "P1")
		require.NoError(t, err)
		assert.Contains(t, out, "a[-P1]:succeed")
	})

	t.Run("points", func(t *testing.T) {
		out, err := execute("points", path, "--task", "b", "--limit", "5")
		require.NoError(t, err)
		assert.Contains(t, out, "b:")
		assert.Contains(t, out, `"2"`)
	})

	t.Run("run", func(t *testing.T) {
		out, err := execute("run", path, "--simulate", "--log-format", "json")
		require.NoError(t, err)
		assert.Contains(t, out, "events:")
		assert.Contains(t, out, "task: b.2")
	})
}

func TestHelp(t *testing.T) {
	out, err := execute("--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "validate")
}

func TestUsageErrors(t *testing.T) {
	path := writeWorkflow(t)
	testCases := map[string][]string{
		"unknown flag":         {"validate", path, "--this-is-not-a-valid-flag"},
		"missing path":         {"validate"},
		"bad log level":        {"validate", path, "--log-level", "loud"},
		"bad log format":       {"validate", path, "--log-format", "xml"},
		"points without task":  {"points", path},
		"run without simulate": {"run", path},
		"unknown command":      {"frobnicate"},
	}
	for name, args := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := execute(args...)
			require.Error(t, err)
			assert.Equal(t, ExitUsage, exitCode(t, err))
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	_, err := execute("validate", filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
	assert.Equal(t, ExitRuntime, exitCode(t, err))
	assert.Contains(t, err.Error(), "failed to load configuration")
}
