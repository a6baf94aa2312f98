package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_WellFormed(t *testing.T) {
	stdout, _, err := execute(t, "(bgp (?s ?p ?o))", "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ plan is well formed (fingerprint ")
}

func TestCheck_Warnings(t *testing.T) {
	stdout, _, err := execute(t, "(top (3) (bgp (?s ?p ?o)))", "check")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ top has no sort conditions")
}

func TestCheck_JSON(t *testing.T) {
	testCases := []struct {
		name       string
		plan       string
		wantStatus string
		wantWell   bool
		wantErr    bool
	}{
		{"well formed", "(filter (= ?x 1) (bgp (?s ?p ?x)))", "ok", true, false},
		{"malformed", "(top (3) (bgp (?s ?p ?o)))", "error", false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, err := execute(t, tc.plan, "--format", "json", "check")
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, ExitFailure, GetExitCode(err))
			} else {
				require.NoError(t, err)
			}

			var resp struct {
				Status string      `json:"status"`
				Data   CheckResult `json:"data"`
				Error  *CLIError   `json:"error"`
			}
			require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
			assert.Equal(t, tc.wantStatus, resp.Status)
			assert.Equal(t, tc.wantWell, resp.Data.WellFormed)
			assert.Len(t, resp.Data.Fingerprint, 16)
			if tc.wantErr {
				require.NotNil(t, resp.Error)
				assert.Equal(t, ErrCodeInvalidPlan, resp.Error.Code)
			}
		})
	}
}

func TestCheck_Variables(t *testing.T) {
	stdout, _, err := execute(t, "(filter (= ?x 1) (bgp (?s ?p ?x)))", "--format", "json", "check")
	require.NoError(t, err)

	var resp struct {
		Data CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.ElementsMatch(t, []string{"?p", "?s", "?x"}, resp.Data.Variables)
}

func TestCheck_ParseError(t *testing.T) {
	stdout, _, err := execute(t, "(bgp", "check")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error ["+ErrCodeParseFailed+"]")
}
