package optimize

import "testing"

func TestFilterConjunction(t *testing.T) {
	testCases := []ruleCase{
		{
			name: "nested and",
			in:   "(filter (&& (= ?x 1) (&& (= ?y 2) (= ?z 3))) (bgp (?x ?y ?z)))",
			want: "(filter (exprlist (= ?x 1) (= ?y 2) (= ?z 3)) (bgp (?x ?y ?z)))",
		},
		{
			name: "keeps list order",
			in:   "(filter (exprlist (bound ?x) (&& (= ?y 2) (= ?z 3))) (bgp (?x ?y ?z)))",
			want: "(filter (exprlist (bound ?x) (= ?y 2) (= ?z 3)) (bgp (?x ?y ?z)))",
		},
		{
			name: "or untouched",
			in:   "(filter (|| (= ?x 1) (= ?y 2)) (bgp (?x ?y ?z)))",
		},
		{
			name: "and below or untouched",
			in:   "(filter (|| (&& (= ?x 1) (= ?y 2)) (= ?z 3)) (bgp (?x ?y ?z)))",
		},
	}

	runRuleCases(t, RuleFilterConjunction, DefaultParams(), testCases)
}

func TestExpandOneOf(t *testing.T) {
	testCases := []ruleCase{
		{
			name: "in",
			in:   "(filter (in ?x :a 2 3) (bgp (?s ?p ?x)))",
			want: "(filter (|| (|| (= ?x :a) (= ?x 2)) (= ?x 3)) (bgp (?s ?p ?x)))",
		},
		{
			name: "in single value",
			in:   "(filter (in ?x :a) (bgp (?s ?p ?x)))",
			want: "(filter (= ?x :a) (bgp (?s ?p ?x)))",
		},
		{
			name: "not in",
			in:   "(filter (notin ?x 1 2) (bgp (?s ?p ?x)))",
			want: "(filter (exprlist (!= ?x 1) (!= ?x 2)) (bgp (?s ?p ?x)))",
		},
		{
			name: "not in beside other expressions",
			in:   "(filter (exprlist (bound ?s) (notin ?x 1 2) (isIRI ?p)) (bgp (?s ?p ?x)))",
			want: "(filter (exprlist (bound ?s) (!= ?x 1) (!= ?x 2) (isIRI ?p)) (bgp (?s ?p ?x)))",
		},
		{
			name: "unstable operand",
			in:   "(filter (in (rand) 1 2) (table unit))",
		},
		{
			name: "no values",
			in:   "(filter (in ?x) (bgp (?s ?p ?x)))",
		},
		{
			name: "nested in untouched",
			in:   "(filter (! (in ?x 1 2)) (bgp (?s ?p ?x)))",
		},
	}

	runRuleCases(t, RuleExpandOneOf, DefaultParams(), testCases)
}

func TestFilterEquality(t *testing.T) {
	testCases := []ruleCase{
		{
			name: "iri substituted",
			in:   "(filter (= ?x <x>) (bgp (?s ?p ?x)))",
			want: "(assign ((?x <x>)) (bgp (?s ?p <x>)))",
		},
		{
			name: "constant on the left",
			in:   "(filter (= <x> ?x) (bgp (?s ?p ?x)))",
			want: "(assign ((?x <x>)) (bgp (?s ?p <x>)))",
		},
		{
			name: "sameTerm",
			in:   "(filter (sameTerm ?x <x>) (bgp (?s ?p ?x)))",
			want: "(assign ((?x <x>)) (bgp (?s ?p <x>)))",
		},
		{
			name: "blank node",
			in:   "(filter (= ?x _:b) (bgp (?s ?p ?x)))",
			want: "(assign ((?x _:b)) (bgp (?s ?p _:b)))",
		},
		{
			name: "other expressions kept",
			in:   "(filter (exprlist (= ?x <x>) (> ?o 3)) (bgp (?x ?p ?o)))",
			want: "(filter (> ?o 3) (assign ((?x <x>)) (bgp (<x> ?p ?o))))",
		},
		{
			name: "two variables",
			in:   "(filter (exprlist (= ?x <x>) (= ?y <y>)) (bgp (?x ?p ?y)))",
			want: "(assign ((?x <x>) (?y <y>)) (bgp (<x> ?p <y>)))",
		},
		{
			name: "repeated equality",
			in:   "(filter (exprlist (= ?x <x>) (sameTerm ?x <x>)) (bgp (?s ?p ?x)))",
			want: "(assign ((?x <x>)) (bgp (?s ?p <x>)))",
		},
		{
			name: "numeric literal",
			in:   "(filter (= ?x 1) (bgp (?s ?p ?x)))",
		},
		{
			name: "string literal",
			in:   "(filter (= ?x \"a\") (bgp (?s ?p ?x)))",
		},
		{
			name: "conflicting constants",
			in:   "(filter (exprlist (= ?x <a>) (= ?x <b>)) (bgp (?s ?p ?x)))",
		},
		{
			name: "optional variable",
			in:   "(filter (= ?x <x>) (leftjoin (bgp (?s ?p ?o)) (bgp (?o ?q ?x))))",
		},
		{
			name: "unbound variable",
			in:   "(filter (= ?x <x>) (bgp (?s ?p ?o)))",
			want: "(table empty)",
		},
		{
			name: "bound test below",
			in:   "(filter (= ?x <x>) (filter (bound ?x) (bgp (?s ?p ?x))))",
		},
		{
			name: "through join",
			in:   "(filter (= ?x <x>) (join (bgp (?s ?p ?x)) (bgp (?x ?q ?o))))",
			want: "(assign ((?x <x>)) (join (bgp (?s ?p <x>)) (bgp (<x> ?q ?o))))",
		},
		{
			name: "not or",
			in:   "(filter (|| (= ?x <a>) (= ?x <b>)) (bgp (?s ?p ?x)))",
		},
	}

	runRuleCases(t, RuleFilterEquality, DefaultParams(), testCases)
}

func TestFilterDisjunction(t *testing.T) {
	testCases := []ruleCase{
		{
			name: "two equalities",
			in:   "(filter (|| (= ?x <a>) (= ?x <b>)) (bgp (?s ?p ?x)))",
			want: "(disjunction (assign ((?x <a>)) (bgp (?s ?p <a>))) (assign ((?x <b>)) (bgp (?s ?p <b>))))",
		},
		{
			name: "residual branch guarded",
			in:   "(filter (|| (= ?x <a>) (isLiteral ?x)) (bgp (?s ?p ?x)))",
			want: "(disjunction (assign ((?x <a>)) (bgp (?s ?p <a>))) " +
				"(filter (exprlist (isLiteral ?x) (!= ?x <a>)) (bgp (?s ?p ?x))))",
		},
		{
			name: "duplicate constant",
			in:   "(filter (|| (= ?x <a>) (|| (sameTerm ?x <a>) (= ?x <b>))) (bgp (?s ?p ?x)))",
			want: "(disjunction (assign ((?x <a>)) (bgp (?s ?p <a>))) (assign ((?x <b>)) (bgp (?s ?p <b>))))",
		},
		{
			name: "other list element kept above",
			in:   "(filter (exprlist (> ?o 1) (|| (= ?x <a>) (= ?x <b>))) (bgp (?x ?p ?o)))",
			want: "(filter (> ?o 1) (disjunction (assign ((?x <a>)) (bgp (<a> ?p ?o))) " +
				"(assign ((?x <b>)) (bgp (<b> ?p ?o)))))",
		},
		{
			name: "literal constants",
			in:   "(filter (|| (= ?x 1) (= ?x 2)) (bgp (?s ?p ?x)))",
		},
		{
			name: "optional variable",
			in:   "(filter (|| (= ?x <a>) (= ?x <b>)) (leftjoin (bgp (?s ?p ?o)) (bgp (?o ?q ?x))))",
		},
		{
			name: "and is not looked into",
			in:   "(filter (&& (|| (= ?x <a>) (= ?x <b>)) (bound ?s)) (bgp (?s ?p ?x)))",
		},
	}

	runRuleCases(t, RuleFilterDisjunction, DefaultParams(), testCases)
}

func TestImplicitJoin(t *testing.T) {
	testCases := []ruleCase{
		{
			name: "subject variables",
			in:   "(filter (= ?s ?t) (bgp (?s ?p ?o) (?t ?p ?o2)))",
			want: "(assign ((?s ?t)) (bgp (?t ?p ?o) (?t ?p ?o2)))",
		},
		{
			name: "object variables need sameTerm",
			in:   "(filter (= ?o ?o2) (bgp (?s ?p ?o) (?t ?p ?o2)))",
		},
		{
			name: "sameTerm on objects",
			in:   "(filter (sameTerm ?o ?o2) (bgp (?s ?p ?o) (?t ?p ?o2)))",
			want: "(assign ((?o ?o2)) (bgp (?s ?p ?o2) (?t ?p ?o2)))",
		},
		{
			name: "remaining expressions kept",
			in:   "(filter (exprlist (= ?s ?t) (isIRI ?o)) (bgp (?s ?p ?o) (?t ?p ?o2)))",
			want: "(filter (isIRI ?o) (assign ((?s ?t)) (bgp (?t ?p ?o) (?t ?p ?o2))))",
		},
		{
			name: "optional variable",
			in:   "(filter (= ?s ?t) (leftjoin (bgp (?s ?p ?o)) (bgp (?t ?p ?o))))",
		},
		{
			name: "unbound variable",
			in:   "(filter (= ?s ?z) (bgp (?s ?p ?o)))",
			want: "(table empty)",
		},
		{
			name: "two candidates",
			in:   "(filter (exprlist (= ?s ?t) (= ?p ?q)) (bgp (?s ?p ?o) (?t ?q ?o)))",
		},
		{
			name: "extend binding",
			in:   "(filter (= ?s ?t) (extend ((?t ?s)) (bgp (?s ?p ?o))))",
		},
	}

	runRuleCases(t, RuleImplicitJoin, DefaultParams(), testCases)
}
