package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copyScenarios copies the harness scenarios into a fresh directory.
func copyScenarios(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "scenarios", name+".yaml"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), data, 0o644))
	}
	return dir
}

func TestTest_AllPass(t *testing.T) {
	dir := copyScenarios(t, "top_n", "filter_placement", "optional_over_empty")

	stdout, _, err := execute(t, "", "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ top_n")
	assert.Contains(t, stdout, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTest_Filter(t *testing.T) {
	dir := copyScenarios(t, "top_n", "top_n_disabled", "filter_placement")

	stdout, _, err := execute(t, "", "--format", "json", "test", dir, "--filter", "top_*")
	require.NoError(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
	for _, s := range resp.Data.Scenarios {
		assert.NotEqual(t, "filter_placement", s.Name)
	}
}

func TestTest_Golden(t *testing.T) {
	dir := copyScenarios(t, "top_n")
	golden := filepath.Join(dir, "golden", "top_n.golden")

	_, _, err := execute(t, "", "test", dir, "--update")
	require.NoError(t, err)
	require.FileExists(t, golden)

	_, _, err = execute(t, "", "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte("stale\n"), 0o644))
	stdout, _, err := execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ top_n")
	assert.Contains(t, stdout, "snapshot does not match golden file")
}

func TestTest_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	scenario := `name: wrong_count
description: Expects the wrong number of solutions.
dataset: (dataset (triple :a :p 1))
plan: (bgp (?s ?p ?o))
expect:
  solutions: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong_count.yaml"), []byte(scenario), 0o644))

	stdout, _, err := execute(t, "", "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
}

func TestTest_CommandErrors(t *testing.T) {
	dir := copyScenarios(t, "top_n")

	testCases := []struct {
		name string
		args []string
		code string
	}{
		{"missing directory", []string{"test", filepath.Join(dir, "nope")}, ErrCodeNotFound},
		{"bad filter", []string{"test", dir, "--filter", "["}, ErrCodeGeneric},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, err := execute(t, "", tc.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, stdout, "Error ["+tc.code+"]")
		})
	}
}

func TestTest_Empty(t *testing.T) {
	stdout, _, err := execute(t, "", "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}
