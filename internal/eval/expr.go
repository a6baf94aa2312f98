package eval

import (
	"time"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
)

// Binding is one solution: a partial map from variables to terms.
// Bindings are treated as immutable once built.
type Binding map[ir.Var]ir.Term

// Env carries the per-query state some functions read.
type Env struct {
	// Now is the value of NOW() for the whole query.
	Now time.Time
	// NewID returns a fresh identifier for UUID, STRUUID, and BNODE.
	NewID func() string
	// Rand returns a value in [0, 1) for RAND.
	Rand func() float64
}

// Eval evaluates e against one solution.
func Eval(e queryir.Expr, b Binding, env *Env) (ir.Term, error) {
	switch x := e.(type) {
	case queryir.Const:
		return x.Term, nil
	case queryir.ExprVar:
		if t, ok := b[x.Var]; ok && t != nil {
			return t, nil
		}
		return nil, errorf(CodeUnbound, "variable %s is unbound", x.Var)
	case queryir.Call:
		return call(x, b, env)
	default:
		return nil, errorf(CodeTypeError, "unknown expression %T", e)
	}
}

// Test evaluates a filter expression: true only when e evaluates without
// error to a term whose effective boolean value is true.
func Test(e queryir.Expr, b Binding, env *Env) bool {
	t, err := Eval(e, b, env)
	if err != nil {
		return false
	}
	ok, err := EBV(t)
	return err == nil && ok
}

// TestAll is Test over a filter's expression list.
func TestAll(es []queryir.Expr, b Binding, env *Env) bool {
	for _, e := range es {
		if !Test(e, b, env) {
			return false
		}
	}
	return true
}

// notFoldable holds functions whose value depends on the moment or the
// call, so evaluating them ahead of execution would change the answer.
var notFoldable = map[string]bool{
	"now":     true,
	"rand":    true,
	"uuid":    true,
	"struuid": true,
	"bnode":   true,
	"bound":   true,
}

// Fold evaluates a closed expression ahead of execution. It reports
// false when e mentions a variable, uses a function that must run at
// execution time, or raises an error.
func Fold(e queryir.Expr) (ir.Term, bool) {
	if !queryir.IsClosed(e) || !foldable(e) {
		return nil, false
	}
	t, err := Eval(e, nil, nil)
	if err != nil {
		return nil, false
	}
	return t, true
}

func foldable(e queryir.Expr) bool {
	c, ok := e.(queryir.Call)
	if !ok {
		return true
	}
	if notFoldable[c.Name] {
		return false
	}
	for _, a := range c.Args {
		if !foldable(a) {
			return false
		}
	}
	return true
}
