package eval

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/qopt/internal/ir"
)

// numKind orders the numeric types by promotion: integer < decimal < double.
type numKind int

const (
	kindInteger numKind = iota
	kindDecimal
	kindDouble
)

// number is a parsed numeric literal. Decimals are carried as float64;
// the reference evaluator does not need arbitrary precision.
type number struct {
	kind numKind
	i    int64
	f    float64
}

func (n number) float() float64 {
	if n.kind == kindInteger {
		return float64(n.i)
	}
	return n.f
}

func (n number) term() ir.Term {
	switch n.kind {
	case kindInteger:
		return ir.NewInteger(n.i)
	case kindDecimal:
		s := strconv.FormatFloat(n.f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return ir.NewDecimal(s)
	default:
		return ir.NewDouble(n.f)
	}
}

// asNumber parses a numeric literal.
func asNumber(t ir.Term) (number, error) {
	l, ok := t.(ir.Literal)
	if !ok || !l.IsNumeric() {
		return number{}, errorf(CodeTypeError, "not a number: %s", termString(t))
	}
	lex := strings.TrimSpace(l.Lexical)
	switch l.Datatype {
	case ir.XSDInteger:
		i, err := strconv.ParseInt(lex, 10, 64)
		if err != nil {
			return number{}, errorf(CodeTypeError, "bad integer %q", l.Lexical)
		}
		return number{kind: kindInteger, i: i}, nil
	case ir.XSDDecimal:
		f, err := strconv.ParseFloat(lex, 64)
		if err != nil {
			return number{}, errorf(CodeTypeError, "bad decimal %q", l.Lexical)
		}
		return number{kind: kindDecimal, f: f}, nil
	default:
		f, err := parseDouble(lex)
		if err != nil {
			return number{}, errorf(CodeTypeError, "bad double %q", l.Lexical)
		}
		return number{kind: kindDouble, f: f}, nil
	}
}

func parseDouble(s string) (float64, error) {
	switch s {
	case "INF", "+INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// promote returns a and b converted to their common numeric type.
func promote(a, b number) (number, number) {
	k := max(a.kind, b.kind)
	return convert(a, k), convert(b, k)
}

func convert(n number, k numKind) number {
	if n.kind == k {
		return n
	}
	return number{kind: k, f: n.float()}
}

func arithmetic(op string, a, b number) (number, error) {
	a, b = promote(a, b)
	if op == "/" && a.kind == kindInteger {
		a, b = convert(a, kindDecimal), convert(b, kindDecimal)
	}
	if a.kind == kindInteger {
		switch op {
		case "+":
			return number{kind: kindInteger, i: a.i + b.i}, nil
		case "-":
			return number{kind: kindInteger, i: a.i - b.i}, nil
		case "*":
			return number{kind: kindInteger, i: a.i * b.i}, nil
		}
	}
	var f float64
	switch op {
	case "+":
		f = a.f + b.f
	case "-":
		f = a.f - b.f
	case "*":
		f = a.f * b.f
	case "/":
		if b.f == 0 && a.kind != kindDouble {
			return number{}, errorf(CodeDivideByZero, "division by zero")
		}
		f = a.f / b.f
	}
	return number{kind: a.kind, f: f}, nil
}

func compareNumbers(a, b number) int {
	a, b = promote(a, b)
	if a.kind == kindInteger {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	switch {
	case a.f < b.f:
		return -1
	case a.f > b.f:
		return 1
	}
	return 0
}

// isString reports whether t is a plain or language-tagged string.
func isString(t ir.Term) (ir.Literal, bool) {
	l, ok := t.(ir.Literal)
	if !ok {
		return ir.Literal{}, false
	}
	return l, l.Datatype == ir.XSDString || l.Lang != ""
}

func isSimple(t ir.Term) (ir.Literal, bool) {
	l, ok := t.(ir.Literal)
	return l, ok && l.Datatype == ir.XSDString && l.Lang == ""
}

func asBoolean(t ir.Term) (bool, bool) {
	l, ok := t.(ir.Literal)
	if !ok || l.Datatype != ir.XSDBoolean {
		return false, false
	}
	switch strings.TrimSpace(l.Lexical) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// EBV computes the effective boolean value of a term.
func EBV(t ir.Term) (bool, error) {
	if b, ok := asBoolean(t); ok {
		return b, nil
	}
	if l, ok := t.(ir.Literal); ok {
		if l.IsNumeric() {
			n, err := asNumber(l)
			if err != nil {
				return false, nil
			}
			f := n.float()
			return f != 0 && !math.IsNaN(f), nil
		}
		if _, ok := isString(l); ok {
			return l.Lexical != "", nil
		}
		if l.Datatype == ir.XSDBoolean {
			return false, nil
		}
	}
	return false, errorf(CodeTypeError, "no effective boolean value for %s", termString(t))
}

// Equal implements the = operator: value equality for numbers,
// booleans, and strings, term equality for IRIs and blank nodes. It
// errors on literals of unknown datatypes that are not identical.
func Equal(a, b ir.Term) (bool, error) {
	la, aLit := a.(ir.Literal)
	lb, bLit := b.(ir.Literal)
	if !aLit || !bLit {
		return a == b, nil
	}
	if la.IsNumeric() && lb.IsNumeric() {
		na, err := asNumber(la)
		if err != nil {
			return false, err
		}
		nb, err := asNumber(lb)
		if err != nil {
			return false, err
		}
		return compareNumbers(na, nb) == 0 && !math.IsNaN(na.float()), nil
	}
	if ba, ok := asBoolean(la); ok {
		if bb, ok := asBoolean(lb); ok {
			return ba == bb, nil
		}
	}
	if _, ok := isString(la); ok {
		if _, ok := isString(lb); ok {
			return la == lb, nil
		}
	}
	if la == lb {
		return true, nil
	}
	if known(la) && known(lb) {
		return false, nil
	}
	return false, errorf(CodeTypeError, "cannot compare %s and %s", termString(a), termString(b))
}

// known reports whether the evaluator understands the literal's datatype
// well enough to say two different values are unequal.
func known(l ir.Literal) bool {
	if l.IsNumeric() || l.Lang != "" {
		return true
	}
	switch l.Datatype {
	case ir.XSDString, ir.XSDBoolean, ir.XSDDateTime:
		return true
	}
	return false
}

// Compare implements <, <=, >, and >= between numbers, simple strings,
// booleans, and dateTimes.
func Compare(a, b ir.Term) (int, error) {
	la, aLit := a.(ir.Literal)
	lb, bLit := b.(ir.Literal)
	if aLit && bLit {
		if la.IsNumeric() && lb.IsNumeric() {
			na, err := asNumber(la)
			if err != nil {
				return 0, err
			}
			nb, err := asNumber(lb)
			if err != nil {
				return 0, err
			}
			return compareNumbers(na, nb), nil
		}
		if _, ok := isSimple(la); ok {
			if _, ok := isSimple(lb); ok {
				return strings.Compare(la.Lexical, lb.Lexical), nil
			}
		}
		if ba, ok := asBoolean(la); ok {
			if bb, ok := asBoolean(lb); ok {
				return boolInt(ba) - boolInt(bb), nil
			}
		}
		if la.Datatype == ir.XSDDateTime && lb.Datatype == ir.XSDDateTime {
			return strings.Compare(la.Lexical, lb.Lexical), nil
		}
	}
	return 0, errorf(CodeTypeError, "cannot order %s and %s", termString(a), termString(b))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// OrderTerms is the total order used by ORDER BY: unbound first, then
// blank nodes, IRIs, and literals. Comparable literals use Compare;
// the rest fall back to their lexical form and datatype.
func OrderTerms(a, b ir.Term) int {
	ra, rb := orderRank(a), orderRank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case nil:
		return 0
	case ir.BlankNode:
		return strings.Compare(string(x), string(b.(ir.BlankNode)))
	case ir.IRI:
		return strings.Compare(string(x), string(b.(ir.IRI)))
	case ir.Literal:
		if c, err := Compare(a, b); err == nil && c != 0 {
			return c
		}
		y := b.(ir.Literal)
		if c := strings.Compare(x.Lexical, y.Lexical); c != 0 {
			return c
		}
		if c := strings.Compare(string(x.Datatype), string(y.Datatype)); c != 0 {
			return c
		}
		return strings.Compare(x.Lang, y.Lang)
	}
	return 0
}

func orderRank(t ir.Term) int {
	switch t.(type) {
	case nil:
		return 0
	case ir.BlankNode:
		return 1
	case ir.IRI:
		return 2
	default:
		return 3
	}
}

func termString(t ir.Term) string {
	if t == nil {
		return "unbound"
	}
	return t.String()
}

func boolTerm(b bool) ir.Term {
	return ir.NewBoolean(b)
}
