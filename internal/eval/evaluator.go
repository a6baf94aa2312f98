package eval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
)

// Dataset is the quad source a plan is evaluated against.
type Dataset interface {
	// Find returns the quads matching the given slots. A nil slot
	// matches any term. A nil graph matches every named graph but not
	// the default graph, which is addressed as ir.DefaultGraph.
	Find(ctx context.Context, g, s, p, o ir.Term) ([]ir.Quad, error)
}

// Evaluator is a reference plan evaluator. It materializes every
// intermediate result and exists to check that rewrites preserve
// solutions, not to be fast.
//
// Most operators are evaluated bottom-up. Sequence and Conditional feed
// each solution of their left side into the right side, and the
// operators that can receive such a solution (Pattern, Table, Filter,
// Join, Union, Sequence, Conditional, Disjunction) start from it.
// Everything else is evaluated on its own and joined with it.
type Evaluator struct {
	data   Dataset
	env    Env
	logger *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithNow fixes the value of NOW().
func WithNow(t time.Time) Option {
	return func(e *Evaluator) {
		e.env.Now = t
	}
}

// WithIDs sets the identifier source used by UUID, STRUUID, and BNODE.
func WithIDs(next func() string) Option {
	return func(e *Evaluator) {
		e.env.NewID = next
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// New creates an evaluator over data.
func New(data Dataset, opts ...Option) *Evaluator {
	e := &Evaluator{
		data:   data,
		env:    Env{Now: time.Now()},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the solutions of op in evaluation order.
func (e *Evaluator) Evaluate(ctx context.Context, op queryir.Op) ([]Binding, error) {
	rows, err := e.eval(ctx, op, Binding{})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("plan evaluated", "root", op.Name(), "solutions", len(rows))
	return rows, nil
}

func (e *Evaluator) eval(ctx context.Context, op queryir.Op, seed Binding) ([]Binding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch o := op.(type) {
	case queryir.Pattern:
		return e.evalPattern(ctx, o, seed)
	case queryir.Table:
		return evalTable(o, seed), nil
	case queryir.Filter:
		rows, err := e.eval(ctx, o.Sub, seed)
		if err != nil {
			return nil, err
		}
		out := rows[:0:0]
		for _, r := range rows {
			if TestAll(o.Exprs, r, &e.env) {
				out = append(out, r)
			}
		}
		return out, nil
	case queryir.Join:
		left, err := e.eval(ctx, o.Left, seed)
		if err != nil {
			return nil, err
		}
		right, err := e.eval(ctx, o.Right, seed)
		if err != nil {
			return nil, err
		}
		return join(left, right), nil
	case queryir.Union:
		return e.evalAll(ctx, []queryir.Op{o.Left, o.Right}, seed)
	case queryir.Disjunction:
		return e.evalAll(ctx, o.Elems, seed)
	case queryir.Sequence:
		rows := []Binding{seed}
		for _, elem := range o.Elems {
			var next []Binding
			for _, r := range rows {
				more, err := e.eval(ctx, elem, r)
				if err != nil {
					return nil, err
				}
				next = append(next, more...)
			}
			rows = next
		}
		return rows, nil
	case queryir.Conditional:
		left, err := e.eval(ctx, o.Left, seed)
		if err != nil {
			return nil, err
		}
		var out []Binding
		for _, l := range left {
			right, err := e.eval(ctx, o.Right, l)
			if err != nil {
				return nil, err
			}
			if len(right) == 0 {
				out = append(out, l)
				continue
			}
			out = append(out, right...)
		}
		return out, nil
	}

	rows, err := e.evalDetached(ctx, op)
	if err != nil {
		return nil, err
	}
	if len(seed) == 0 {
		return rows, nil
	}
	return join([]Binding{seed}, rows), nil
}

func (e *Evaluator) evalAll(ctx context.Context, ops []queryir.Op, seed Binding) ([]Binding, error) {
	var out []Binding
	for _, op := range ops {
		rows, err := e.eval(ctx, op, seed)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// evalDetached evaluates the operators that never see an incoming
// solution.
func (e *Evaluator) evalDetached(ctx context.Context, op queryir.Op) ([]Binding, error) {
	empty := Binding{}
	switch o := op.(type) {
	case queryir.LeftJoin:
		left, err := e.eval(ctx, o.Left, empty)
		if err != nil {
			return nil, err
		}
		right, err := e.eval(ctx, o.Right, empty)
		if err != nil {
			return nil, err
		}
		var out []Binding
		for _, l := range left {
			matched := false
			for _, r := range right {
				m := merge(l, r)
				if m == nil || !TestAll(o.Exprs, m, &e.env) {
					continue
				}
				matched = true
				out = append(out, m)
			}
			if !matched {
				out = append(out, l)
			}
		}
		return out, nil
	case queryir.Minus:
		left, err := e.eval(ctx, o.Left, empty)
		if err != nil {
			return nil, err
		}
		right, err := e.eval(ctx, o.Right, empty)
		if err != nil {
			return nil, err
		}
		var out []Binding
		for _, l := range left {
			if !slices.ContainsFunc(right, func(r Binding) bool { return sharesAndAgrees(l, r) }) {
				out = append(out, l)
			}
		}
		return out, nil
	case queryir.Extend:
		rows, err := e.eval(ctx, o.Sub, empty)
		if err != nil {
			return nil, err
		}
		return e.extend(rows, o.Bindings, false)
	case queryir.Assign:
		rows, err := e.eval(ctx, o.Sub, empty)
		if err != nil {
			return nil, err
		}
		return e.extend(rows, o.Bindings, true)
	case queryir.Project:
		rows, err := e.eval(ctx, o.Sub, empty)
		if err != nil {
			return nil, err
		}
		out := make([]Binding, len(rows))
		for i, r := range rows {
			p := Binding{}
			for _, v := range o.Vars {
				if t, ok := r[v]; ok {
					p[v] = t
				}
			}
			out[i] = p
		}
		return out, nil
	case queryir.Distinct:
		rows, err := e.eval(ctx, o.Sub, empty)
		if err != nil {
			return nil, err
		}
		return distinct(rows), nil
	case queryir.Reduced:
		// REDUCED permits any amount of de-duplication; removing all of
		// it keeps results comparable with DISTINCT.
		rows, err := e.eval(ctx, o.Sub, empty)
		if err != nil {
			return nil, err
		}
		return distinct(rows), nil
	case queryir.Order:
		rows, err := e.eval(ctx, o.Sub, empty)
		if err != nil {
			return nil, err
		}
		return e.sort(rows, o.Conds), nil
	case queryir.Slice:
		rows, err := e.eval(ctx, o.Sub, empty)
		if err != nil {
			return nil, err
		}
		return slice(rows, o.Offset, o.Length), nil
	case queryir.Top:
		rows, err := e.eval(ctx, o.Sub, empty)
		if err != nil {
			return nil, err
		}
		return slice(e.sort(rows, o.Conds), 0, o.Count), nil
	case queryir.Group:
		rows, err := e.eval(ctx, o.Sub, empty)
		if err != nil {
			return nil, err
		}
		return e.group(rows, o), nil
	default:
		panic(fmt.Sprintf("eval: unknown op %T", op))
	}
}

func (e *Evaluator) evalPattern(ctx context.Context, p queryir.Pattern, seed Binding) ([]Binding, error) {
	rows := []Binding{seed}
	for _, t := range p.Triples {
		var next []Binding
		for _, r := range rows {
			g := ir.Term(ir.DefaultGraph)
			if p.Graph != nil {
				g = resolve(r, p.Graph)
			}
			quads, err := e.data.Find(ctx, g, resolve(r, t.S), resolve(r, t.P), resolve(r, t.O))
			if err != nil {
				return nil, fmt.Errorf("match %s: %w", t, err)
			}
			for _, q := range quads {
				b := r
				if p.Graph != nil {
					b = bindSlot(b, p.Graph, q.G)
				}
				b = bindSlot(b, t.S, q.S)
				b = bindSlot(b, t.P, q.P)
				b = bindSlot(b, t.O, q.O)
				if b != nil {
					next = append(next, b)
				}
			}
		}
		rows = next
	}
	return rows, nil
}

// resolve returns the constant in a slot, the binding of a bound
// variable, or nil for an unbound variable.
func resolve(b Binding, slot ir.Term) ir.Term {
	v, ok := slot.(ir.Var)
	if !ok {
		return slot
	}
	return b[v]
}

// bindSlot binds a variable slot to the matched term. It returns nil
// when the variable is already bound to something else, which happens
// for a variable repeated within one triple.
func bindSlot(b Binding, slot, t ir.Term) Binding {
	if b == nil {
		return nil
	}
	v, ok := slot.(ir.Var)
	if !ok {
		return b
	}
	if cur, bound := b[v]; bound {
		if cur != t {
			return nil
		}
		return b
	}
	out := make(Binding, len(b)+1)
	for k, x := range b {
		out[k] = x
	}
	out[v] = t
	return out
}

func evalTable(t queryir.Table, seed Binding) []Binding {
	switch t.Kind {
	case queryir.TableUnit:
		return []Binding{seed}
	case queryir.TableEmpty:
		return nil
	}
	var out []Binding
	for _, row := range t.Rows {
		b := Binding{}
		for i, v := range t.Vars {
			if i < len(row) && row[i] != nil {
				b[v] = row[i]
			}
		}
		if m := merge(seed, b); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (e *Evaluator) extend(rows []Binding, bindings []queryir.VarExpr, assign bool) ([]Binding, error) {
	out := make([]Binding, 0, len(rows))
	for _, r := range rows {
		b := r
		keep := true
		for _, x := range bindings {
			t, err := Eval(x.Expr, b, &e.env)
			if err != nil {
				continue
			}
			if cur, bound := b[x.Var]; bound {
				if !assign {
					return nil, errorf(CodeRebind, "extend: %s is already bound", x.Var)
				}
				if cur != t {
					keep = false
					break
				}
				continue
			}
			next := make(Binding, len(b)+1)
			for k, v := range b {
				next[k] = v
			}
			next[x.Var] = t
			b = next
		}
		if keep {
			out = append(out, b)
		}
	}
	return out, nil
}

func (e *Evaluator) sort(rows []Binding, conds []queryir.SortCond) []Binding {
	type keyed struct {
		row  Binding
		keys []ir.Term
	}
	ks := make([]keyed, len(rows))
	for i, r := range rows {
		keys := make([]ir.Term, len(conds))
		for j, c := range conds {
			if t, err := Eval(c.Expr, r, &e.env); err == nil {
				keys[j] = t
			}
		}
		ks[i] = keyed{row: r, keys: keys}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		for j, c := range conds {
			cmp := OrderTerms(a.keys[j], b.keys[j])
			if c.Desc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp
			}
		}
		return 0
	})
	out := make([]Binding, len(ks))
	for i, k := range ks {
		out[i] = k.row
	}
	return out
}

func slice(rows []Binding, offset, length int64) []Binding {
	start := int64(0)
	if offset != queryir.Unset {
		start = min(offset, int64(len(rows)))
	}
	end := int64(len(rows))
	// Compare against the remaining rows so huge lengths cannot overflow.
	if length != queryir.Unset && length < end-start {
		end = start + length
	}
	return rows[start:end]
}

// merge returns the union of two compatible solutions, or nil when they
// bind a shared variable to different terms.
func merge(a, b Binding) Binding {
	out := make(Binding, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if cur, ok := out[k]; ok && cur != v {
			return nil
		}
		out[k] = v
	}
	return out
}

func join(left, right []Binding) []Binding {
	var out []Binding
	for _, l := range left {
		for _, r := range right {
			if m := merge(l, r); m != nil {
				out = append(out, m)
			}
		}
	}
	return out
}

// sharesAndAgrees is the MINUS test: the solutions share a variable and
// are compatible.
func sharesAndAgrees(a, b Binding) bool {
	shared := false
	for k, v := range a {
		if w, ok := b[k]; ok {
			if v != w {
				return false
			}
			shared = true
		}
	}
	return shared
}

func distinct(rows []Binding) []Binding {
	seen := map[string]bool{}
	var out []Binding
	for _, r := range rows {
		sig := Signature(r)
		if !seen[sig] {
			seen[sig] = true
			out = append(out, r)
		}
	}
	return out
}
