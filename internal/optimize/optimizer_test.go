package optimize

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/sse"
)

func TestOptimizer_Enabled(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		enabled := New(DefaultPolicy()).Enabled()
		assert.NotContains(t, enabled, RuleImplicitJoin)
		assert.NotContains(t, enabled, RuleJoinStrategy)
		assert.NotContains(t, enabled, RuleMergeBGPs)
		assert.Contains(t, enabled, RuleFilterPlacement)
		assert.Len(t, enabled, 14)
	})

	t.Run("overrides", func(t *testing.T) {
		policy := DefaultPolicy().Set(RuleJoinStrategy, On).Set(RuleTopN, Off)
		enabled := New(policy).Enabled()
		assert.Contains(t, enabled, RuleJoinStrategy)
		assert.NotContains(t, enabled, RuleTopN)
	})

	t.Run("pipeline order", func(t *testing.T) {
		policy := DefaultPolicy()
		for _, r := range Rules() {
			policy = policy.Set(r.Name, On)
		}
		enabled := New(policy).Enabled()
		require.Len(t, enabled, len(Rules()))
		for i, r := range Rules() {
			assert.Equal(t, r.Name, enabled[i])
		}
	})

	t.Run("policy is copied", func(t *testing.T) {
		policy := DefaultPolicy()
		o := New(policy)
		policy.Rules[RuleTopN] = Off
		assert.Contains(t, o.Enabled(), RuleTopN)

		snapshot := o.Policy()
		snapshot.Rules[RuleFilterPlacement] = Off
		assert.NotContains(t, o.Policy().Rules, RuleFilterPlacement)
	})
}

func TestOptimizer_Optimize(t *testing.T) {
	testCases := []struct {
		name   string
		policy Policy
		in     string
		want   string
	}{
		{
			name:   "filter lands on covering prefix",
			policy: DefaultPolicy(),
			in:     "(filter (= ?x 1) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))",
			want:   "(sequence (filter (= ?x 1) (bgp (?s ?p ?x))) (bgp (?s1 ?p1 ?x1)))",
		},
		{
			name:   "pattern split disabled",
			policy: func() Policy { p := DefaultPolicy(); p.Params.PlaceBGPs = false; return p }(),
			in:     "(filter (= ?x 1) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))",
			want:   "(filter (= ?x 1) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))",
		},
		{
			name:   "top n",
			policy: DefaultPolicy(),
			in:     "(slice _ 5 (order (?z) (bgp (?s ?p ?z))))",
			want:   "(top (5 ?z) (bgp (?s ?p ?z)))",
		},
		{
			name:   "top n disabled",
			policy: DefaultPolicy().Set(RuleTopN, Off),
			in:     "(slice _ 5 (order (?z) (bgp (?s ?p ?z))))",
			want:   "(slice _ 5 (order (?z) (bgp (?s ?p ?z))))",
		},
		{
			name:   "distinct over covering order",
			policy: DefaultPolicy(),
			in:     "(distinct (order (?s ?p ?o) (bgp (?s ?p ?o))))",
			want:   "(reduced (order (?s ?p ?o) (bgp (?s ?p ?o))))",
		},
		{
			name:   "empty join",
			policy: DefaultPolicy(),
			in:     "(join (table unit) (table empty))",
			want:   "(table empty)",
		},
		{
			name:   "optional over empty",
			policy: DefaultPolicy(),
			in:     "(leftjoin (table unit) (table empty))",
			want:   "(table unit)",
		},
		{
			name:   "assignment inlined under projection",
			policy: DefaultPolicy(),
			in:     "(project (?y) (filter ?x (extend ((?x true) (?y false)) (table unit))))",
			want:   "(project (?y) (filter true (extend ((?y false)) (table unit))))",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o := New(tc.policy)
			got := o.Optimize(context.Background(), mustOp(t, tc.in))
			assert.Equal(t, sse.Format(mustOp(t, tc.want)), sse.Format(got))
		})
	}
}

func TestOptimizer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	o := New(DefaultPolicy(), WithMetrics(m))

	o.Optimize(context.Background(), mustOp(t, "(filter (= ?x 1) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Examined.WithLabelValues(RuleFilterPlacement)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Fired.WithLabelValues(RuleFilterPlacement)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Fired.WithLabelValues(RuleTopN)))
	assert.Equal(t, len(o.Enabled()), testutil.CollectAndCount(m.Examined))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestOptimizer_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	o := New(DefaultPolicy(), WithLogger(logger))

	o.Optimize(context.Background(), mustOp(t, "(filter (= ?x 1) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))"))

	out := buf.String()
	assert.Contains(t, out, "rule fired")
	assert.Contains(t, out, "rule=filter-placement")
	assert.NotContains(t, out, "rule=top-n")
}

func TestOptimizer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := mustOp(t, "(filter (= ?x 1) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))")
	got := New(DefaultPolicy()).Optimize(ctx, in)
	assert.True(t, queryir.Equal(in, got))
}

func TestApply_UnknownRule(t *testing.T) {
	_, err := Apply("no-such-rule", mustOp(t, "(bgp (?s ?p ?o))"), DefaultParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-rule")
}
