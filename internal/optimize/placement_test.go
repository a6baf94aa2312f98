package optimize

import "testing"

func TestFilterPlacement(t *testing.T) {
	testCases := []ruleCase{
		{
			name: "split pattern after covering triple",
			in:   "(filter (= ?x 1) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))",
			want: "(sequence (filter (= ?x 1) (bgp (?s ?p ?x))) (bgp (?s1 ?p1 ?x1)))",
		},
		{
			name: "pattern covered only as a whole",
			in:   "(filter (= ?x ?x1) (bgp (?s ?p ?x) (?s ?p ?x1)))",
		},
		{
			name: "variable not in pattern",
			in:   "(filter (= ?x 1) (bgp (?s ?p ?o)))",
		},
		{
			name: "closed expression lands on unit",
			in:   "(filter (= 13 14) (bgp (?s ?p ?o)))",
			want: "(sequence (filter (= 13 14) (table unit)) (bgp (?s ?p ?o)))",
		},
		{
			name: "graph variable in single quad",
			in:   "(filter (isIRI ?g) (quadpattern (quad ?g ?s ?p ?o)))",
		},
		{
			name: "graph variable splits quads",
			in:   "(filter (isIRI ?g) (quadpattern (quad ?g ?s ?p ?o1) (quad ?g ?s ?p ?o2)))",
			want: "(sequence (filter (isIRI ?g) (quadpattern (quad ?g ?s ?p ?o1))) (quadpattern (quad ?g ?s ?p ?o2)))",
		},
		{
			name: "sequence middle element",
			in:   "(filter (= ?x 123) (sequence (bgp (?s ?p ?x1)) (bgp (?s ?p ?x)) (bgp (?s ?p ?x2))))",
			want: "(sequence (bgp (?s ?p ?x1)) (filter (= ?x 123) (bgp (?s ?p ?x))) (bgp (?s ?p ?x2)))",
		},
		{
			name: "sequence prefix",
			in:   "(filter (= ?x ?x2) (sequence (bgp (?s ?p ?x)) (bgp (?s ?p ?x2)) (bgp (?s ?p ?x3))))",
			want: "(sequence (filter (= ?x ?x2) (sequence (bgp (?s ?p ?x)) (bgp (?s ?p ?x2)))) (bgp (?s ?p ?x3)))",
		},
		{
			name: "sequence covered only at the end",
			in:   "(filter (= ?x ?x2) (sequence (bgp (?s ?p ?x)) (bgp (?s ?p ?x2))))",
		},
		{
			name: "join sides",
			in:   "(filter (exprlist (= ?a 1) (= ?b 2) (= ?a ?b)) (join (bgp (?s :p ?a)) (bgp (?s :q ?b))))",
			want: "(filter (= ?a ?b) (join (filter (= ?a 1) (bgp (?s :p ?a))) (filter (= ?b 2) (bgp (?s :q ?b)))))",
		},
		{
			name: "join shared variable goes both ways",
			in:   "(filter (= ?s :x) (join (bgp (?s :p ?a)) (bgp (?s :q ?b))))",
			want: "(join (filter (= ?s :x) (bgp (?s :p ?a))) (filter (= ?s :x) (bgp (?s :q ?b))))",
		},
		{
			name: "leftjoin left only",
			in:   "(filter (exprlist (= ?a 1) (= ?b 2)) (leftjoin (bgp (?s :p ?a)) (bgp (?s :q ?b))))",
			want: "(filter (= ?b 2) (leftjoin (filter (= ?a 1) (bgp (?s :p ?a))) (bgp (?s :q ?b))))",
		},
		{
			name: "conditional left only",
			in:   "(filter (= ?a 1) (conditional (bgp (?s :p ?a)) (bgp (?s :q ?b))))",
			want: "(conditional (filter (= ?a 1) (bgp (?s :p ?a))) (bgp (?s :q ?b)))",
		},
		{
			name: "union both branches",
			in:   "(filter (= ?a 1) (union (bgp (?s :p ?a)) (bgp (?s :q ?a))))",
			want: "(union (filter (= ?a 1) (bgp (?s :p ?a))) (filter (= ?a 1) (bgp (?s :q ?a))))",
		},
		{
			name: "union one branch keeps outer filter",
			in:   "(filter (= ?a 1) (union (bgp (?s :p ?a)) (bgp (?s :q ?b))))",
			want: "(filter (= ?a 1) (union (filter (= ?a 1) (bgp (?s :p ?a))) (bgp (?s :q ?b))))",
		},
		{
			name: "union branch already filtered",
			in:   "(filter (= ?a 1) (union (filter (= ?a 1) (bgp (?s :p ?a))) (bgp (?s :q ?b))))",
		},
		{
			name: "disjunction branches",
			in:   "(filter (= ?a 1) (disjunction (bgp (?s :p ?a)) (bgp (?s :q ?b))))",
			want: "(disjunction (filter (= ?a 1) (bgp (?s :p ?a))) (filter (= ?a 1) (bgp (?s :q ?b))))",
		},
		{
			name: "extend passes unrelated expression",
			in:   "(filter (exprlist (= ?x1 123) (= ?x2 456)) (extend ((?z 789)) (bgp (?s ?p ?x1))))",
			want: "(filter (= ?x2 456) (extend ((?z 789)) (filter (= ?x1 123) (bgp (?s ?p ?x1)))))",
		},
		{
			name: "extend blocks its own variable",
			in:   "(filter (= ?x 123) (extend ((?x 123)) (bgp (?s ?p ?z))))",
		},
		{
			name: "nested filter merges inner first",
			in: "(filter (= ?x 123) (extend ((?x1 123)) " +
				"(filter (< ?x 456) (bgp (?s ?p ?x) (?s ?p ?z)))))",
			want: "(extend ((?x1 123)) (sequence " +
				"(filter (exprlist (< ?x 456) (= ?x 123)) (bgp (?s ?p ?x))) (bgp (?s ?p ?z))))",
		},
		{
			name: "nested extends over table",
			in: "(filter (exprlist (= ?s 5) (= ?w 6) (= ?s1 7)) " +
				"(extend ((?w 2)) (extend ((?s 1)) (table (vars ?s1) (row [?s1 4])))))",
			want: "(filter (= ?w 6) (extend ((?w 2)) (filter (= ?s 5) (extend ((?s 1)) " +
				"(filter (= ?s1 7) (table (vars ?s1) (row [?s1 4])))))))",
		},
		{
			name: "project exported variable",
			in:   "(filter (= ?x 123) (project (?x) (bgp (?s ?p ?x))))",
			want: "(project (?x) (filter (= ?x 123) (bgp (?s ?p ?x))))",
		},
		{
			name: "project hidden variable",
			in:   "(filter (= ?x 123) (project (?s) (bgp (?s ?p ?x))))",
		},
		{
			name: "distinct",
			in:   "(filter (= ?x 123) (distinct (bgp (?s ?p ?x))))",
			want: "(distinct (filter (= ?x 123) (bgp (?s ?p ?x))))",
		},
		{
			name: "minus is a barrier",
			in:   "(filter (= ?a 1) (minus (bgp (?s :p ?a)) (bgp (?s :q ?a))))",
		},
		{
			name: "unstable expression stays on top",
			in:   "(filter (exprlist (< (rand) 0.5) (= ?x 1)) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))",
			want: "(filter (< (rand) 0.5) (sequence (filter (= ?x 1) (bgp (?s ?p ?x))) (bgp (?s1 ?p1 ?x1))))",
		},
		{
			name: "unstable only",
			in:   "(filter (< (rand) 0.5) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))",
		},
	}

	runRuleCases(t, RuleFilterPlacement, DefaultParams(), testCases)
}

func TestFilterPlacement_WithoutPatternSplit(t *testing.T) {
	params := DefaultParams()
	params.PlaceBGPs = false

	testCases := []ruleCase{
		{
			name: "pattern kept whole",
			in:   "(filter (= ?x 1) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))",
		},
		{
			name: "join side wrapped",
			in:   "(filter (= ?x 1) (join (bgp (?s ?p ?x)) (bgp (?s1 ?p1 ?x1))))",
			want: "(join (filter (= ?x 1) (bgp (?s ?p ?x))) (bgp (?s1 ?p1 ?x1)))",
		},
		{
			name: "join side without match",
			in:   "(filter (= ?z 1) (join (bgp (?s ?p ?x)) (bgp (?s1 ?p1 ?x1))))",
		},
	}

	runRuleCases(t, RuleFilterPlacement, params, testCases)
}
