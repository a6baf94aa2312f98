package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/qopt/internal/eval"
	"github.com/roach88/qopt/internal/optimize"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/sse"
	"github.com/roach88/qopt/internal/store"
	"github.com/roach88/qopt/internal/testutil"
)

// fixedNow is the value of NOW() during scenario runs.
var fixedNow = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Harness holds what one scenario run needs.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario with a background context.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, nil)
}

// RunContext executes a scenario.
//
// Each run gets a fresh in-memory store. The plan is optimized under the
// scenario's policy, both plans are evaluated against the store, and
// their solutions are compared: as sequences when the optimized plan is
// ordered at the top, as multisets otherwise. A nil logger discards.
//
// The returned error covers setup failures (bad dataset or plan text,
// store errors). Failed checks are reported in the Result.
func RunContext(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	quads, err := sse.ParseDataset(scenario.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	plan, err := sse.ParseOp(scenario.Plan)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	policy, err := scenario.policy()
	if err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if _, err := st.Load(ctx, quads); err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	h := &Harness{store: st, logger: logger}
	return h.run(ctx, scenario, plan, policy)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario, plan queryir.Op, policy optimize.Policy) (*Result, error) {
	result := NewResult()
	result.Original = sse.Format(plan)

	if v := queryir.Validate(plan); !v.IsWellFormed {
		for _, w := range v.Warnings {
			result.AddError("plan: " + w)
		}
		return result, nil
	}

	reg := prometheus.NewRegistry()
	opt := optimize.New(policy,
		optimize.WithLogger(h.logger),
		optimize.WithMetrics(optimize.NewMetrics(reg)),
	)
	optimized := opt.Optimize(ctx, plan)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Optimized = sse.Format(optimized)
	result.Fingerprint = queryir.FingerprintHex(optimized)
	fired, err := firedRules(reg, opt.Enabled())
	if err != nil {
		return nil, fmt.Errorf("failed to read rule metrics: %w", err)
	}
	result.Fired = fired

	before, err := h.evaluate(ctx, plan)
	if err != nil {
		result.AddError(fmt.Sprintf("evaluating original plan: %v", err))
		return result, nil
	}
	after, err := h.evaluate(ctx, optimized)
	if err != nil {
		result.AddError(fmt.Sprintf("evaluating optimized plan: %v", err))
		return result, nil
	}
	result.Solutions = len(after)
	result.Ordered = isOrdered(optimized)

	if !eval.SameSolutions(before, after, result.Ordered) {
		result.AddError(fmt.Sprintf("solutions differ: original returned %d, optimized returned %d",
			len(before), len(after)))
	}
	for _, msg := range checkExpectations(scenario.Expect, plan, optimized, result) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"fired", len(result.Fired),
		"solutions", result.Solutions,
	)
	return result, nil
}

// evaluate runs op with a fixed clock and a fresh id sequence so both
// plans see the same NOW() and UUID() values.
func (h *Harness) evaluate(ctx context.Context, op queryir.Op) ([]eval.Binding, error) {
	ids := testutil.NewSequentialIDs("urn:qopt:id")
	ev := eval.New(h.store,
		eval.WithNow(fixedNow),
		eval.WithIDs(ids.Next),
		eval.WithLogger(h.logger),
	)
	return ev.Evaluate(ctx, op)
}

// isOrdered reports whether solution order is observable: an Order or
// Top at the top of the plan, possibly under order-preserving modifiers.
func isOrdered(op queryir.Op) bool {
	for {
		switch o := op.(type) {
		case queryir.Order, queryir.Top:
			return true
		case queryir.Project:
			op = o.Sub
		case queryir.Distinct:
			op = o.Sub
		case queryir.Reduced:
			op = o.Sub
		case queryir.Slice:
			op = o.Sub
		case queryir.Extend:
			op = o.Sub
		default:
			return false
		}
	}
}

// firedRules reads the fired counter for each rule in order from a
// registry that only this run wrote to.
func firedRules(reg *prometheus.Registry, order []string) ([]string, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, err
	}

	fired := map[string]bool{}
	for _, mf := range families {
		if mf.GetName() != "qopt_rule_fired_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.GetCounter().GetValue() == 0 {
				continue
			}
			for _, l := range m.GetLabel() {
				if l.GetName() == "rule" {
					fired[l.GetValue()] = true
				}
			}
		}
	}

	out := []string{}
	for _, name := range order {
		if fired[name] {
			out = append(out, name)
		}
	}
	return out, nil
}
