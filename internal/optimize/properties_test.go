package optimize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/eval"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/sse"
)

// corpus exercises at least one rule each.
var corpus = []string{
	"(filter (= ?x 1) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))",
	"(slice 2 5 (order (?z) (bgp (?s ?p ?z))))",
	"(distinct (order (?s ?p ?o) (bgp (?s ?p ?o))))",
	"(project (?y) (filter ?x (extend ((?x true) (?y false)) (table unit))))",
	"(join (table unit) (table empty))",
	"(filter (in ?x :a :b) (bgp (?s ?p ?x)))",
	"(filter (exprlist (= ?a 1) (= ?b 2) (= ?a ?b)) (join (bgp (?s :p ?a)) (bgp (?s :q ?b))))",
	"(filter (= ?a 1) (union (bgp (?s :p ?a)) (bgp (?s :q ?b))))",
	"(project (?s) (join (bgp (?s ?p ?o)) (project (?s) (extend ((?x 1)) (bgp (?s ?q ?r))))))",
	"(leftjoin (bgp (?s :p ?o)) (bgp (?o :q ?z)))",
	"(extend ((?b (+ ?a 1))) (extend ((?a (* 2 3))) (table unit)))",
	"(bgp (?s ?p ?o) (?s :p :o))",
}

func TestRules_Idempotent(t *testing.T) {
	for _, r := range Rules() {
		// renaming adds one marker per run
		if r.Name == RuleScopeRename {
			continue
		}
		t.Run(r.Name, func(t *testing.T) {
			params := DefaultParams()
			for _, src := range corpus {
				once := r.apply(mustOp(t, src), params)
				twice := r.apply(once, params)
				assert.True(t, queryir.Equal(once, twice), "%s on %s: %s then %s",
					r.Name, src, sse.Format(once), sse.Format(twice))
			}
		})
	}
}

func TestRules_NoOpWithoutPrecondition(t *testing.T) {
	in := mustOp(t, "(bgp (?s ?p ?o))")
	for _, r := range Rules() {
		t.Run(r.Name, func(t *testing.T) {
			got, err := Apply(r.Name, in, DefaultParams())
			require.NoError(t, err)
			assert.True(t, queryir.Equal(in, got))
		})
	}
}

const equivalenceData = `(dataset
  (triple :a :p 1)
  (triple :a :q :b)
  (triple :b :p 2)
  (triple :b :q :c)
  (triple :c :p 3)
  (triple :c :name "c")
  (quad :g :a :p 4))`

func TestOptimize_PreservesSolutions(t *testing.T) {
	quads, err := sse.ParseDataset(equivalenceData)
	require.NoError(t, err)
	ev := eval.New(eval.MemDataset(quads))

	testCases := []struct {
		name    string
		plan    string
		ordered bool
	}{
		{name: "filter on prefix", plan: "(filter (= ?o 1) (bgp (?s :p ?o) (?s :q ?t)))"},
		{name: "one of", plan: "(filter (in ?t :b :c) (bgp (?s :q ?t)))"},
		{name: "not one of", plan: "(filter (notin ?t :b) (bgp (?s :q ?t)))"},
		{name: "iri equality", plan: "(filter (= ?s :a) (join (bgp (?s :p ?o)) (bgp (?s :q ?t))))"},
		{name: "conjunction", plan: "(filter (exprlist (> ?o 1) (isIRI ?t)) (bgp (?s :p ?o) (?s :q ?t)))"},
		{name: "optional", plan: "(leftjoin (bgp (?s :p ?o)) (bgp (?s :name ?n)))"},
		{name: "empty branch", plan: "(union (bgp (?s :p ?o)) (join (bgp (?s :q ?t)) (table empty)))"},
		{name: "inlined assignment", plan: "(project (?s) (filter ?x (extend ((?x (= ?o 2))) (bgp (?s :p ?o)))))"},
		{name: "computed column", plan: "(project (?s ?c) (extend ((?c (+ ?o 10))) (bgp (?s :p ?o))))"},
		{name: "top n", plan: "(slice 1 1 (order (?o) (bgp (?s :p ?o))))", ordered: true},
		{name: "order above distinct", plan: "(distinct (project (?s) (order (?s) (bgp (?s ?p ?o)))))", ordered: true},
		{name: "reduced", plan: "(distinct (order (?s ?o) (bgp (?s :p ?o))))", ordered: true},
	}

	o := New(DefaultPolicy())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan := mustOp(t, tc.plan)
			optimized := o.Optimize(context.Background(), plan)

			want, err := ev.Evaluate(context.Background(), plan)
			require.NoError(t, err)
			got, err := ev.Evaluate(context.Background(), optimized)
			require.NoError(t, err)

			assert.NotEmpty(t, want)
			assert.True(t, eval.SameSolutions(want, got, tc.ordered), "%s optimized to %s",
				tc.plan, sse.Format(optimized))
		})
	}
}
