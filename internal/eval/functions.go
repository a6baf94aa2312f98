package eval

import (
	"math"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
)

type function struct {
	min, max int // max < 0 means variadic
	fn       func(args []ir.Term, env *Env) (ir.Term, error)
}

var functions map[string]function

func init() {
	functions = map[string]function{
		queryir.OpEq:       {2, 2, fnEq},
		queryir.OpNe:       {2, 2, fnNe},
		queryir.OpLt:       {2, 2, compareWith(func(c int) bool { return c < 0 })},
		queryir.OpLe:       {2, 2, compareWith(func(c int) bool { return c <= 0 })},
		queryir.OpGt:       {2, 2, compareWith(func(c int) bool { return c > 0 })},
		queryir.OpGe:       {2, 2, compareWith(func(c int) bool { return c >= 0 })},
		queryir.OpNot:      {1, 1, fnNot},
		queryir.OpAdd:      {1, 2, fnArith(queryir.OpAdd)},
		queryir.OpSub:      {1, 2, fnArith(queryir.OpSub)},
		queryir.OpMul:      {2, 2, fnArith(queryir.OpMul)},
		queryir.OpDiv:      {2, 2, fnArith(queryir.OpDiv)},
		queryir.FnSameTerm: {2, 2, fnSameTerm},
		"isIRI":            {1, 1, kindTest(func(t ir.Term) bool { _, ok := t.(ir.IRI); return ok })},
		"isBlank":          {1, 1, kindTest(func(t ir.Term) bool { _, ok := t.(ir.BlankNode); return ok })},
		"isLiteral":        {1, 1, kindTest(func(t ir.Term) bool { _, ok := t.(ir.Literal); return ok })},
		"isNumeric":        {1, 1, kindTest(isNumeric)},
		"str":              {1, 1, fnStr},
		"lang":             {1, 1, fnLang},
		"langMatches":      {2, 2, fnLangMatches},
		"datatype":         {1, 1, fnDatatype},
		"iri":              {1, 1, fnIRI},
		"strlen":           {1, 1, fnStrlen},
		"ucase":            {1, 1, caseMapper(cases.Upper(language.Und))},
		"lcase":            {1, 1, caseMapper(cases.Lower(language.Und))},
		"concat":           {0, -1, fnConcat},
		"contains":         {2, 2, stringTest(strings.Contains)},
		"strstarts":        {2, 2, stringTest(strings.HasPrefix)},
		"strends":          {2, 2, stringTest(strings.HasSuffix)},
		"substr":           {2, 3, fnSubstr},
		"regex":            {2, 3, fnRegex},
		"abs":              {1, 1, numeric(math.Abs)},
		"ceil":             {1, 1, numeric(math.Ceil)},
		"floor":            {1, 1, numeric(math.Floor)},
		"round":            {1, 1, numeric(func(f float64) float64 { return math.Floor(f + 0.5) })},
		"now":              {0, 0, fnNow},
		"rand":             {0, 0, fnRand},
		"uuid":             {0, 0, fnUUID},
		"struuid":          {0, 0, fnStrUUID},
		"bnode":            {0, 1, fnBNode},
	}
}

func call(c queryir.Call, b Binding, env *Env) (ir.Term, error) {
	switch c.Name {
	case queryir.OpAnd:
		return logical(c, b, env, false)
	case queryir.OpOr:
		return logical(c, b, env, true)
	case queryir.FnBound:
		if err := arity(c, 1, 1); err != nil {
			return nil, err
		}
		v, ok := c.Args[0].(queryir.ExprVar)
		if !ok {
			return nil, errorf(CodeTypeError, "bound needs a variable")
		}
		t, bound := b[v.Var]
		return boolTerm(bound && t != nil), nil
	case "if":
		if err := arity(c, 3, 3); err != nil {
			return nil, err
		}
		t, err := Eval(c.Args[0], b, env)
		if err != nil {
			return nil, err
		}
		cond, err := EBV(t)
		if err != nil {
			return nil, err
		}
		if cond {
			return Eval(c.Args[1], b, env)
		}
		return Eval(c.Args[2], b, env)
	case "coalesce":
		for _, a := range c.Args {
			if t, err := Eval(a, b, env); err == nil {
				return t, nil
			}
		}
		return nil, errorf(CodeUnbound, "coalesce: no argument has a value")
	case queryir.OpIn, queryir.OpNotIn:
		return oneOf(c, b, env)
	}

	f, ok := functions[c.Name]
	if !ok {
		return nil, errorf(CodeUnknownFunction, "unknown function %s", c.Name)
	}
	if err := arity(c, f.min, f.max); err != nil {
		return nil, err
	}
	args := make([]ir.Term, len(c.Args))
	for i, a := range c.Args {
		t, err := Eval(a, b, env)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	return f.fn(args, env)
}

func arity(c queryir.Call, min, max int) error {
	n := len(c.Args)
	if n < min || (max >= 0 && n > max) {
		return errorf(CodeArity, "%s: got %d arguments", c.Name, n)
	}
	return nil
}

// logical evaluates && and || with the error-absorbing truth table:
// an error on one side is masked when the other side decides the result.
func logical(c queryir.Call, b Binding, env *Env, isOr bool) (ir.Term, error) {
	if err := arity(c, 2, 2); err != nil {
		return nil, err
	}
	var firstErr error
	for _, a := range c.Args {
		t, err := Eval(a, b, env)
		if err == nil {
			var v bool
			v, err = EBV(t)
			if err == nil {
				if v == isOr {
					return boolTerm(isOr), nil
				}
				continue
			}
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return boolTerm(!isOr), nil
}

// oneOf evaluates IN and NOT IN. A match wins over errors in other
// candidates; with no match, any error is reported.
func oneOf(c queryir.Call, b Binding, env *Env) (ir.Term, error) {
	if err := arity(c, 1, -1); err != nil {
		return nil, err
	}
	negate := c.Name == queryir.OpNotIn
	x, err := Eval(c.Args[0], b, env)
	if err != nil {
		return nil, err
	}
	var firstErr error
	for _, a := range c.Args[1:] {
		t, err := Eval(a, b, env)
		if err == nil {
			var eq bool
			eq, err = Equal(x, t)
			if err == nil && eq {
				return boolTerm(!negate), nil
			}
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return boolTerm(negate), nil
}

func fnEq(args []ir.Term, _ *Env) (ir.Term, error) {
	eq, err := Equal(args[0], args[1])
	if err != nil {
		return nil, err
	}
	return boolTerm(eq), nil
}

func fnNe(args []ir.Term, _ *Env) (ir.Term, error) {
	eq, err := Equal(args[0], args[1])
	if err != nil {
		return nil, err
	}
	return boolTerm(!eq), nil
}

func compareWith(accept func(int) bool) func([]ir.Term, *Env) (ir.Term, error) {
	return func(args []ir.Term, _ *Env) (ir.Term, error) {
		c, err := Compare(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return boolTerm(accept(c)), nil
	}
}

func fnNot(args []ir.Term, _ *Env) (ir.Term, error) {
	v, err := EBV(args[0])
	if err != nil {
		return nil, err
	}
	return boolTerm(!v), nil
}

func fnArith(op string) func([]ir.Term, *Env) (ir.Term, error) {
	return func(args []ir.Term, _ *Env) (ir.Term, error) {
		a, err := asNumber(args[0])
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			if op == queryir.OpSub {
				a, _ = arithmetic(queryir.OpSub, number{kind: kindInteger}, a)
			}
			return a.term(), nil
		}
		b, err := asNumber(args[1])
		if err != nil {
			return nil, err
		}
		n, err := arithmetic(op, a, b)
		if err != nil {
			return nil, err
		}
		return n.term(), nil
	}
}

func fnSameTerm(args []ir.Term, _ *Env) (ir.Term, error) {
	return boolTerm(args[0] == args[1]), nil
}

func kindTest(test func(ir.Term) bool) func([]ir.Term, *Env) (ir.Term, error) {
	return func(args []ir.Term, _ *Env) (ir.Term, error) {
		return boolTerm(test(args[0])), nil
	}
}

func isNumeric(t ir.Term) bool {
	l, ok := t.(ir.Literal)
	if !ok || !l.IsNumeric() {
		return false
	}
	_, err := asNumber(l)
	return err == nil
}

func fnStr(args []ir.Term, _ *Env) (ir.Term, error) {
	switch t := args[0].(type) {
	case ir.IRI:
		return ir.NewString(string(t)), nil
	case ir.Literal:
		return ir.NewString(t.Lexical), nil
	}
	return nil, errorf(CodeTypeError, "str of %s", termString(args[0]))
}

func fnLang(args []ir.Term, _ *Env) (ir.Term, error) {
	l, ok := args[0].(ir.Literal)
	if !ok {
		return nil, errorf(CodeTypeError, "lang of %s", termString(args[0]))
	}
	return ir.NewString(l.Lang), nil
}

func fnLangMatches(args []ir.Term, _ *Env) (ir.Term, error) {
	tag, ok1 := isSimple(args[0])
	rng, ok2 := isSimple(args[1])
	if !ok1 || !ok2 {
		return nil, errorf(CodeTypeError, "langMatches needs simple strings")
	}
	t, r := strings.ToLower(tag.Lexical), strings.ToLower(rng.Lexical)
	if r == "*" {
		return boolTerm(t != ""), nil
	}
	return boolTerm(t == r || strings.HasPrefix(t, r+"-")), nil
}

func fnDatatype(args []ir.Term, _ *Env) (ir.Term, error) {
	l, ok := args[0].(ir.Literal)
	if !ok {
		return nil, errorf(CodeTypeError, "datatype of %s", termString(args[0]))
	}
	if l.Lang != "" {
		return ir.RDFLangString, nil
	}
	return l.Datatype, nil
}

func fnIRI(args []ir.Term, _ *Env) (ir.Term, error) {
	switch t := args[0].(type) {
	case ir.IRI:
		return t, nil
	case ir.Literal:
		if _, ok := isSimple(t); ok {
			return ir.IRI(t.Lexical), nil
		}
	}
	return nil, errorf(CodeTypeError, "iri of %s", termString(args[0]))
}

func fnStrlen(args []ir.Term, _ *Env) (ir.Term, error) {
	l, ok := isString(args[0])
	if !ok {
		return nil, errorf(CodeTypeError, "strlen of %s", termString(args[0]))
	}
	return ir.NewInteger(int64(utf8.RuneCountInString(l.Lexical))), nil
}

// withLexical keeps the language tag or datatype of a string argument.
func withLexical(l ir.Literal, lexical string) ir.Literal {
	if l.Lang != "" {
		return ir.NewLangLiteral(lexical, l.Lang)
	}
	return ir.NewLiteral(lexical, l.Datatype)
}

func caseMapper(c cases.Caser) func([]ir.Term, *Env) (ir.Term, error) {
	return func(args []ir.Term, _ *Env) (ir.Term, error) {
		l, ok := isString(args[0])
		if !ok {
			return nil, errorf(CodeTypeError, "case mapping of %s", termString(args[0]))
		}
		return withLexical(l, c.String(l.Lexical)), nil
	}
}

func fnConcat(args []ir.Term, _ *Env) (ir.Term, error) {
	var b strings.Builder
	lang, sameLang := "", true
	for i, a := range args {
		l, ok := isString(a)
		if !ok {
			return nil, errorf(CodeTypeError, "concat of %s", termString(a))
		}
		b.WriteString(l.Lexical)
		if i == 0 {
			lang = l.Lang
		} else if l.Lang != lang {
			sameLang = false
		}
	}
	if sameLang && lang != "" {
		return ir.NewLangLiteral(b.String(), lang), nil
	}
	return ir.NewString(b.String()), nil
}

func stringTest(test func(s, sub string) bool) func([]ir.Term, *Env) (ir.Term, error) {
	return func(args []ir.Term, _ *Env) (ir.Term, error) {
		a, ok1 := isString(args[0])
		b, ok2 := isString(args[1])
		if !ok1 || !ok2 || (b.Lang != "" && a.Lang != b.Lang) {
			return nil, errorf(CodeTypeError, "incompatible string arguments")
		}
		return boolTerm(test(a.Lexical, b.Lexical)), nil
	}
}

func fnSubstr(args []ir.Term, _ *Env) (ir.Term, error) {
	l, ok := isString(args[0])
	if !ok {
		return nil, errorf(CodeTypeError, "substr of %s", termString(args[0]))
	}
	start, err := asNumber(args[1])
	if err != nil {
		return nil, err
	}
	runes := []rune(l.Lexical)
	from := int(math.Round(start.float())) - 1
	to := len(runes)
	if len(args) == 3 {
		n, err := asNumber(args[2])
		if err != nil {
			return nil, err
		}
		to = from + int(math.Round(n.float()))
	}
	from, to = max(from, 0), min(to, len(runes))
	if from >= to {
		return withLexical(l, ""), nil
	}
	return withLexical(l, string(runes[from:to])), nil
}

func fnRegex(args []ir.Term, _ *Env) (ir.Term, error) {
	text, ok1 := isString(args[0])
	pattern, ok2 := isSimple(args[1])
	if !ok1 || !ok2 {
		return nil, errorf(CodeTypeError, "regex needs string arguments")
	}
	prefix := ""
	if len(args) == 3 {
		flags, ok := isSimple(args[2])
		if !ok {
			return nil, errorf(CodeTypeError, "regex flags must be a string")
		}
		for _, f := range flags.Lexical {
			switch f {
			case 'i', 's', 'm':
				prefix += string(f)
			default:
				return nil, errorf(CodeTypeError, "unsupported regex flag %q", f)
			}
		}
	}
	if prefix != "" {
		prefix = "(?" + prefix + ")"
	}
	re, err := regexp.Compile(prefix + pattern.Lexical)
	if err != nil {
		return nil, errorf(CodeTypeError, "bad regex: %v", err)
	}
	return boolTerm(re.MatchString(text.Lexical)), nil
}

func numeric(op func(float64) float64) func([]ir.Term, *Env) (ir.Term, error) {
	return func(args []ir.Term, _ *Env) (ir.Term, error) {
		n, err := asNumber(args[0])
		if err != nil {
			return nil, err
		}
		if n.kind == kindInteger {
			return ir.NewInteger(int64(op(float64(n.i)))), nil
		}
		n.f = op(n.f)
		return n.term(), nil
	}
}

func fnNow(_ []ir.Term, env *Env) (ir.Term, error) {
	now := time.Now()
	if env != nil && !env.Now.IsZero() {
		now = env.Now
	}
	return ir.NewLiteral(now.UTC().Format(time.RFC3339Nano), ir.XSDDateTime), nil
}

func fnRand(_ []ir.Term, env *Env) (ir.Term, error) {
	if env != nil && env.Rand != nil {
		return ir.NewDouble(env.Rand()), nil
	}
	return ir.NewDouble(rand.Float64()), nil
}

func newID(env *Env) string {
	if env != nil && env.NewID != nil {
		return env.NewID()
	}
	return uuid.NewString()
}

func fnUUID(_ []ir.Term, env *Env) (ir.Term, error) {
	return ir.IRI("urn:uuid:" + newID(env)), nil
}

func fnStrUUID(_ []ir.Term, env *Env) (ir.Term, error) {
	return ir.NewString(newID(env)), nil
}

func fnBNode(args []ir.Term, env *Env) (ir.Term, error) {
	if len(args) == 1 {
		if _, ok := isSimple(args[0]); !ok {
			return nil, errorf(CodeTypeError, "bnode label must be a simple string")
		}
	}
	return ir.BlankNode(newID(env)), nil
}
