package optimize

import (
	"fmt"

	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/scope"
)

// Rule is one named rewrite of the pipeline.
type Rule struct {
	Name        string
	Description string
	DefaultOn   bool

	apply func(queryir.Op, Params) queryir.Op
}

// Rule names, in pipeline order.
const (
	RuleScopeRename          = "scope-rename"
	RuleFilterConjunction    = "filter-conjunction"
	RuleExpandOneOf          = "expand-one-of"
	RuleImplicitJoin         = "implicit-join"
	RuleFilterDisjunction    = "filter-disjunction"
	RuleTopN                 = "top-n"
	RuleOrderByDistinct      = "order-by-distinct"
	RuleDistinctToReduced    = "distinct-to-reduced"
	RuleFilterEquality       = "filter-equality"
	RuleJoinStrategy         = "join-strategy"
	RuleFilterPlacement      = "filter-placement"
	RuleConstantFold         = "constant-fold"
	RuleReorderBGP           = "reorder-bgp"
	RuleMergeBGPs            = "merge-bgps"
	RuleExtendCombine        = "extend-combine"
	RuleEliminateAssignments = "eliminate-assignments"
	RulePropagateEmpty       = "propagate-empty"
)

// registry holds every rule in the order the pipeline runs them.
// The order is fixed at compile time and never changes.
var registry = []Rule{
	{
		Name:        RuleScopeRename,
		Description: "rename sub-select variables apart from the enclosing query",
		DefaultOn:   true,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return scope.ScopeRename(op) },
	},
	{
		Name:        RuleFilterConjunction,
		Description: "split && in filter lists into separate expressions",
		DefaultOn:   true,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return splitConjunctions(op) },
	},
	{
		Name:        RuleExpandOneOf,
		Description: "expand IN and NOT IN into equality disjunctions and inequality lists",
		DefaultOn:   true,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return expandOneOf(op) },
	},
	{
		Name:        RuleImplicitJoin,
		Description: "turn a filter equating two variables into a substitution",
		DefaultOn:   false,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return implicitJoin(op) },
	},
	{
		Name:        RuleFilterDisjunction,
		Description: "split equality disjunctions into a disjunction of specialized branches",
		DefaultOn:   true,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return splitDisjunctions(op) },
	},
	{
		Name:        RuleTopN,
		Description: "fuse small slices over order into top",
		DefaultOn:   true,
		apply:       func(op queryir.Op, p Params) queryir.Op { return fuseTopN(op, p.TopNLimit) },
	},
	{
		Name:        RuleOrderByDistinct,
		Description: "sort after distinct when the sort keys are projected",
		DefaultOn:   true,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return orderByDistinct(op) },
	},
	{
		Name:        RuleDistinctToReduced,
		Description: "weaken distinct to reduced over a covering order",
		DefaultOn:   true,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return distinctToReduced(op) },
	},
	{
		Name:        RuleFilterEquality,
		Description: "substitute IRI and blank node equalities into the filtered plan",
		DefaultOn:   true,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return filterEquality(op) },
	},
	{
		Name:        RuleJoinStrategy,
		Description: "evaluate linear right sides by substitution",
		DefaultOn:   false,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return joinStrategy(op) },
	},
	{
		Name:        RuleFilterPlacement,
		Description: "push filter expressions to where their variables become bound",
		DefaultOn:   true,
		apply:       func(op queryir.Op, p Params) queryir.Op { return placeFilters(op, p.PlaceBGPs) },
	},
	{
		Name:        RuleConstantFold,
		Description: "evaluate closed expressions",
		DefaultOn:   true,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return foldConstants(op) },
	},
	{
		Name:        RuleReorderBGP,
		Description: "order pattern triples by constant positions",
		DefaultOn:   true,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return reorderPatterns(op) },
	},
	{
		Name:        RuleMergeBGPs,
		Description: "merge adjacent patterns over the same graph",
		DefaultOn:   false,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return mergePatterns(op) },
	},
	{
		Name:        RuleExtendCombine,
		Description: "merge nested extends and assigns",
		DefaultOn:   true,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return combineExtends(op) },
	},
	{
		Name:        RuleEliminateAssignments,
		Description: "inline single-use bindings and drop unused ones",
		DefaultOn:   true,
		apply:       func(op queryir.Op, p Params) queryir.Op { return eliminateAssignments(op, p) },
	},
	{
		Name:        RulePropagateEmpty,
		Description: "collapse operators over empty tables",
		DefaultOn:   true,
		apply:       func(op queryir.Op, _ Params) queryir.Op { return propagateEmpty(op) },
	},
}

// Rules returns the registry in pipeline order.
func Rules() []Rule {
	out := make([]Rule, len(registry))
	copy(out, registry)
	return out
}

func lookup(name string) (Rule, bool) {
	for _, r := range registry {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// Apply runs a single rule over op, whatever its default enablement.
func Apply(name string, op queryir.Op, params Params) (queryir.Op, error) {
	r, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown rule %q", name)
	}
	return r.apply(op, params), nil
}
