package queryir

import (
	"strings"

	"github.com/roach88/qopt/internal/ir"
)

// Expr is an expression tree node. Expr is a sealed interface: only
// ExprVar, Const, and Call implement it.
//
// Operators and function calls share the Call node; Call.Name holds the
// operator symbol ("=", "&&") or the canonical function name ("sameTerm").
type Expr interface {
	exprNode() // Sealed - only types in this package implement it
}

// ExprVar is a variable reference.
type ExprVar struct {
	Var ir.Var
}

// Const is a constant term (never a variable).
type Const struct {
	Term ir.Term
}

// Call applies an operator or function to arguments.
type Call struct {
	Name string
	Args []Expr
}

func (ExprVar) exprNode() {}
func (Const) exprNode()   {}
func (Call) exprNode()    {}

// Operator and function names with special meaning to the rewrite rules.
const (
	OpEq       = "="
	OpNe       = "!="
	OpLt       = "<"
	OpLe       = "<="
	OpGt       = ">"
	OpGe       = ">="
	OpAnd      = "&&"
	OpOr       = "||"
	OpNot      = "!"
	OpAdd      = "+"
	OpSub      = "-"
	OpMul      = "*"
	OpDiv      = "/"
	OpIn       = "in"
	OpNotIn    = "notin"
	FnSameTerm = "sameTerm"
	FnBound    = "bound"
)

// canonicalNames maps lower-cased spellings to the canonical function name.
var canonicalNames = map[string]string{
	"sameterm":    FnSameTerm,
	"bound":       FnBound,
	"in":          OpIn,
	"notin":       OpNotIn,
	"isiri":       "isIRI",
	"isuri":       "isIRI",
	"isblank":     "isBlank",
	"isliteral":   "isLiteral",
	"isnumeric":   "isNumeric",
	"str":         "str",
	"lang":        "lang",
	"langmatches": "langMatches",
	"datatype":    "datatype",
	"iri":         "iri",
	"uri":         "iri",
	"strlen":      "strlen",
	"ucase":       "ucase",
	"lcase":       "lcase",
	"concat":      "concat",
	"contains":    "contains",
	"strstarts":   "strstarts",
	"strends":     "strends",
	"substr":      "substr",
	"regex":       "regex",
	"abs":         "abs",
	"ceil":        "ceil",
	"floor":       "floor",
	"round":       "round",
	"if":          "if",
	"coalesce":    "coalesce",
	"rand":        "rand",
	"uuid":        "uuid",
	"struuid":     "struuid",
	"bnode":       "bnode",
	"now":         "now",
}

// CanonicalName returns the canonical spelling of a function name.
// Operator symbols and unknown names (extension functions) are returned
// unchanged.
func CanonicalName(name string) string {
	if c, ok := canonicalNames[strings.ToLower(name)]; ok {
		return c
	}
	return name
}

// V returns a variable reference.
func V(name string) ExprVar {
	return ExprVar{Var: ir.NewVar(name)}
}

// C returns a constant.
func C(t ir.Term) Const {
	return Const{Term: t}
}

// Fn returns a call with a canonicalized name.
func Fn(name string, args ...Expr) Call {
	return Call{Name: CanonicalName(name), Args: args}
}

// Eq returns (= a b).
func Eq(a, b Expr) Call {
	return Call{Name: OpEq, Args: []Expr{a, b}}
}

// Ne returns (!= a b).
func Ne(a, b Expr) Call {
	return Call{Name: OpNe, Args: []Expr{a, b}}
}

// Or returns (|| a b).
func Or(a, b Expr) Call {
	return Call{Name: OpOr, Args: []Expr{a, b}}
}

// And returns (&& a b).
func And(a, b Expr) Call {
	return Call{Name: OpAnd, Args: []Expr{a, b}}
}

// ExprVars returns the set of variables mentioned by e.
func ExprVars(e Expr) ir.VarSet {
	s := ir.VarSet{}
	addExprVars(s, e)
	return s
}

// ExprListVars returns the set of variables mentioned by any of es.
func ExprListVars(es []Expr) ir.VarSet {
	s := ir.VarSet{}
	for _, e := range es {
		addExprVars(s, e)
	}
	return s
}

func addExprVars(s ir.VarSet, e Expr) {
	switch x := e.(type) {
	case ExprVar:
		s.Add(x.Var)
	case Const:
	case Call:
		for _, a := range x.Args {
			addExprVars(s, a)
		}
	}
}

// IsClosed reports whether e mentions no variables.
func IsClosed(e Expr) bool {
	return len(ExprVars(e)) == 0
}

// MentionsVar reports whether e mentions v.
func MentionsVar(e Expr, v ir.Var) bool {
	switch x := e.(type) {
	case ExprVar:
		return x.Var == v
	case Call:
		for _, a := range x.Args {
			if MentionsVar(a, v) {
				return true
			}
		}
	}
	return false
}

// CountVar counts the occurrences of v in e.
func CountVar(e Expr, v ir.Var) int {
	switch x := e.(type) {
	case ExprVar:
		if x.Var == v {
			return 1
		}
	case Call:
		n := 0
		for _, a := range x.Args {
			n += CountVar(a, v)
		}
		return n
	}
	return 0
}

// RewriteExpr rebuilds e bottom-up, applying fn to every node after its
// arguments have been rewritten. fn returns nil to keep the node.
// Untouched sub-expressions are shared with the input.
func RewriteExpr(e Expr, fn func(Expr) Expr) Expr {
	if c, ok := e.(Call); ok {
		var args []Expr
		for i, a := range c.Args {
			na := RewriteExpr(a, fn)
			if args == nil && !EqualExpr(na, a) {
				args = make([]Expr, len(c.Args))
				copy(args, c.Args[:i])
			}
			if args != nil {
				args[i] = na
			}
		}
		if args != nil {
			e = Call{Name: c.Name, Args: args}
		}
	}
	if out := fn(e); out != nil {
		return out
	}
	return e
}

// SubstituteExpr replaces every reference to a variable in m with the
// mapped expression.
func SubstituteExpr(e Expr, m map[ir.Var]Expr) Expr {
	if len(m) == 0 {
		return e
	}
	return RewriteExpr(e, func(x Expr) Expr {
		if v, ok := x.(ExprVar); ok {
			if r, ok := m[v.Var]; ok {
				return r
			}
		}
		return nil
	})
}

// unstableFunctions return a different value on every call, so the number
// and place of evaluations is observable.
var unstableFunctions = map[string]bool{
	"rand":    true,
	"uuid":    true,
	"struuid": true,
	"bnode":   true,
}

// IsStable reports whether e is free of functions whose value changes
// between calls (RAND, UUID, STRUUID, BNODE). NOW is stable: it returns
// one time point per query.
func IsStable(e Expr) bool {
	switch x := e.(type) {
	case Call:
		if unstableFunctions[x.Name] {
			return false
		}
		for _, a := range x.Args {
			if !IsStable(a) {
				return false
			}
		}
	}
	return true
}
