package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/sse"
)

// checkExpectations returns one message per failed expectation.
func checkExpectations(exp Expectation, original, optimized queryir.Op, result *Result) []string {
	var errs []string

	if exp.Plan != "" {
		want, err := sse.ParseOp(exp.Plan)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("expect.plan does not parse: %v", err))
		case !queryir.Equal(want, optimized):
			errs = append(errs, fmt.Sprintf("optimized plan mismatch:\n  Expected: %s\n  Actual:   %s",
				sse.Format(want), result.Optimized))
		}
	}

	if exp.Unchanged && !queryir.Equal(original, optimized) {
		errs = append(errs, fmt.Sprintf("expected no rewrite, got %s", result.Optimized))
	}

	for _, name := range exp.Fired {
		if !slices.Contains(result.Fired, name) {
			errs = append(errs, fmt.Sprintf("rule %s did not fire (fired: %v)", name, result.Fired))
		}
	}
	for _, name := range exp.NotFired {
		if slices.Contains(result.Fired, name) {
			errs = append(errs, fmt.Sprintf("rule %s fired unexpectedly", name))
		}
	}

	if exp.Solutions != nil && *exp.Solutions != result.Solutions {
		errs = append(errs, fmt.Sprintf("solution count: expected %d, got %d", *exp.Solutions, result.Solutions))
	}
	return errs
}
