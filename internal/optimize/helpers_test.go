package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/sse"
)

func mustOp(t *testing.T, src string) queryir.Op {
	t.Helper()
	op, err := sse.ParseOp(src)
	require.NoError(t, err, "parse %s", src)
	return op
}

// ruleCase is one input plan and the expected output of a rule. An empty
// want means the rule must leave the plan unchanged.
type ruleCase struct {
	name string
	in   string
	want string
}

func runRuleCases(t *testing.T, rule string, params Params, testCases []ruleCase) {
	t.Helper()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := mustOp(t, tc.in)
			got, err := Apply(rule, in, params)
			require.NoError(t, err)
			if tc.want == "" {
				assert.True(t, queryir.Equal(in, got), "expected no change, got %s", sse.Format(got))
				return
			}
			assert.Equal(t, sse.Format(mustOp(t, tc.want)), sse.Format(got))
		})
	}
}
