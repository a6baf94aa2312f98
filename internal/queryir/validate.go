package queryir

import (
	"fmt"

	"github.com/roach88/qopt/internal/ir"
)

// ValidationResult contains structural diagnostics for a plan.
//
// The optimizer never rejects a plan: rules find no rewrite on malformed
// input and pass it through. Validate exists for the CLI's check command
// and for tests that want to catch a bad plan before optimizing it.
type ValidationResult struct {
	// IsWellFormed is true when no warning was produced.
	IsWellFormed bool

	// Warnings lists each problem with the node path where it was found.
	Warnings []string
}

// Validate checks a plan for structural problems: missing children,
// empty lists where the evaluator expects at least one element, table
// rows whose width does not match the header, bad slice bounds, and
// operator calls with the wrong number of arguments.
//
// Validate is a pure function with no side effects.
func Validate(op Op) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateOp(op, "")

	return ValidationResult{
		IsWellFormed: len(v.warnings) == 0,
		Warnings:     v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateOp(op Op, path string) {
	if op == nil {
		v.addWarning("%s: nil plan node", pathOrRoot(path))
		return
	}
	path = path + "/" + op.Name()

	switch o := op.(type) {
	case Pattern:
		v.validatePattern(o, path)
	case Filter:
		if len(o.Exprs) == 0 {
			v.addWarning("%s: filter has no expressions", path)
		}
	case Extend:
		v.validateBindings(o.Bindings, path, true)
	case Assign:
		v.validateBindings(o.Bindings, path, false)
	case Project:
		seen := ir.VarSet{}
		for _, x := range o.Vars {
			if seen.Has(x) {
				v.addWarning("%s: variable %s projected twice", path, x)
			}
			seen.Add(x)
		}
	case Order:
		if len(o.Conds) == 0 {
			v.addWarning("%s: order has no sort conditions", path)
		}
	case Slice:
		if o.Offset < Unset || o.Length < Unset {
			v.addWarning("%s: negative slice bound (offset %d, length %d)", path, o.Offset, o.Length)
		}
	case Top:
		if o.Count < 0 {
			v.addWarning("%s: negative top count %d", path, o.Count)
		}
		if len(o.Conds) == 0 {
			v.addWarning("%s: top has no sort conditions", path)
		}
	case Table:
		v.validateTable(o, path)
	case Sequence:
		if len(o.Elems) == 0 {
			v.addWarning("%s: sequence has no elements", path)
		}
	case Disjunction:
		if len(o.Elems) == 0 {
			v.addWarning("%s: disjunction has no elements", path)
		}
	case Group:
		for _, a := range o.Aggs {
			if !knownAggregates[a.Agg.Name] {
				v.addWarning("%s: unknown aggregate %q", path, a.Agg.Name)
			}
		}
	}

	for _, e := range NodeExprs(op) {
		v.validateExpr(e, path)
	}
	for _, c := range Children(op) {
		v.validateOp(c, path)
	}
}

func (v *validator) validatePattern(p Pattern, path string) {
	if _, isLit := p.Graph.(ir.Literal); isLit {
		v.addWarning("%s: literal graph name %s", path, p.Graph)
	}
	for i, t := range p.Triples {
		if t.S == nil || t.P == nil || t.O == nil {
			v.addWarning("%s: triple %d has an empty slot", path, i)
			continue
		}
		if _, isLit := t.P.(ir.Literal); isLit {
			v.addWarning("%s: triple %d has a literal predicate", path, i)
		}
	}
}

func (v *validator) validateBindings(bs []VarExpr, path string, strict bool) {
	if len(bs) == 0 {
		v.addWarning("%s: no bindings", path)
	}
	seen := ir.VarSet{}
	for _, b := range bs {
		if b.Var.IsZero() {
			v.addWarning("%s: binding with no variable", path)
		}
		if b.Expr == nil {
			v.addWarning("%s: binding for %s has no expression", path, b.Var)
		}
		// a repeated Assign target is legal re-assignment; a repeated
		// Extend target always fails at evaluation time
		if strict && seen.Has(b.Var) {
			v.addWarning("%s: variable %s bound twice", path, b.Var)
		}
		seen.Add(b.Var)
	}
}

func (v *validator) validateTable(t Table, path string) {
	if t.Kind != TableData {
		if len(t.Vars) > 0 || len(t.Rows) > 0 {
			v.addWarning("%s: unit or empty table carries rows", path)
		}
		return
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Vars) {
			v.addWarning("%s: row %d has %d values for %d variables", path, i, len(row), len(t.Vars))
		}
		for _, term := range row {
			if _, isVar := term.(ir.Var); isVar {
				v.addWarning("%s: row %d holds a variable", path, i)
			}
		}
	}
}

// operatorArity lists fixed-arity operators. Variadic calls are not
// checked beyond their minimum.
var operatorArity = map[string]int{
	OpEq: 2, OpNe: 2, OpLt: 2, OpLe: 2, OpGt: 2, OpGe: 2,
	OpAnd: 2, OpOr: 2, OpNot: 1,
	OpMul: 2, OpDiv: 2,
	FnSameTerm: 2, FnBound: 1,
}

var knownAggregates = map[string]bool{
	"count": true, "sum": true, "min": true, "max": true,
	"avg": true, "sample": true, "group_concat": true,
}

func (v *validator) validateExpr(e Expr, path string) {
	switch x := e.(type) {
	case nil:
		v.addWarning("%s: nil expression", path)
	case ExprVar:
		if x.Var.IsZero() {
			v.addWarning("%s: variable reference with no name", path)
		}
	case Const:
		if _, isVar := x.Term.(ir.Var); isVar || x.Term == nil {
			v.addWarning("%s: constant holds %v", path, x.Term)
		}
	case Call:
		if x.Name == "" {
			v.addWarning("%s: call with no function name", path)
		}
		if n, ok := operatorArity[x.Name]; ok && len(x.Args) != n {
			v.addWarning("%s: %s takes %d arguments, got %d", path, x.Name, n, len(x.Args))
		}
		if (x.Name == OpIn || x.Name == OpNotIn) && len(x.Args) == 0 {
			v.addWarning("%s: %s needs a left-hand argument", path, x.Name)
		}
		for _, a := range x.Args {
			v.validateExpr(a, path)
		}
	}
}

func pathOrRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
