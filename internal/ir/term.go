package ir

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Term is a sealed interface for the slots of a triple template and for
// constants inside expressions.
// Only Var, IRI, BlankNode, and Literal implement this.
type Term interface {
	term() // Sealed - only these types implement it
	String() string
}

// IRI is an absolute IRI reference, stored without angle brackets.
type IRI string

func (IRI) term() {}

// String renders the IRI in angle brackets.
func (i IRI) String() string {
	return "<" + string(i) + ">"
}

// BlankNode is a blank node label, stored without the "_:" prefix.
type BlankNode string

func (BlankNode) term() {}

// String renders the blank node with its "_:" prefix.
func (b BlankNode) String() string {
	return "_:" + string(b)
}

// Literal is an RDF literal. Datatype is always set; language-tagged
// strings use RDFLangString.
type Literal struct {
	Lexical  string
	Datatype IRI
	Lang     string
}

func (Literal) term() {}

// NewLiteral creates a typed literal with an NFC-normalized lexical form.
func NewLiteral(lexical string, datatype IRI) Literal {
	if datatype == "" {
		datatype = XSDString
	}
	return Literal{Lexical: norm.NFC.String(lexical), Datatype: datatype}
}

// NewLangLiteral creates a language-tagged string. Tags are lower-cased.
func NewLangLiteral(lexical, lang string) Literal {
	return Literal{
		Lexical:  norm.NFC.String(lexical),
		Datatype: RDFLangString,
		Lang:     strings.ToLower(lang),
	}
}

// NewString creates an xsd:string literal.
func NewString(s string) Literal {
	return NewLiteral(s, XSDString)
}

// NewInteger creates an xsd:integer literal.
func NewInteger(n int64) Literal {
	return Literal{Lexical: strconv.FormatInt(n, 10), Datatype: XSDInteger}
}

// NewDecimal creates an xsd:decimal literal from its lexical form.
func NewDecimal(lexical string) Literal {
	return Literal{Lexical: lexical, Datatype: XSDDecimal}
}

// NewDouble creates an xsd:double literal.
func NewDouble(f float64) Literal {
	return Literal{Lexical: FormatDouble(f), Datatype: XSDDouble}
}

// NewBoolean creates an xsd:boolean literal.
func NewBoolean(b bool) Literal {
	return Literal{Lexical: strconv.FormatBool(b), Datatype: XSDBoolean}
}

// FormatDouble renders a float in the canonical xsd:double form used by
// the printer ("1.0e0", "2.5e-3").
func FormatDouble(f float64) string {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	n, _ := strconv.Atoi(exp)
	return mant + "e" + strconv.Itoa(n)
}

// IsNumeric reports whether the literal has one of the numeric datatypes.
func (l Literal) IsNumeric() bool {
	switch l.Datatype {
	case XSDInteger, XSDDecimal, XSDDouble, XSDFloat:
		return true
	}
	return false
}

// String renders the literal in the short form used by the plan printer:
// integers, decimals, doubles, and booleans are bare when their lexical
// form is canonical; strings are quoted.
func (l Literal) String() string {
	if l.Lang != "" {
		return quote(l.Lexical) + "@" + l.Lang
	}
	switch l.Datatype {
	case XSDString:
		return quote(l.Lexical)
	case XSDInteger:
		if isBareInteger(l.Lexical) {
			return l.Lexical
		}
	case XSDDecimal:
		if isBareDecimal(l.Lexical) {
			return l.Lexical
		}
	case XSDDouble:
		if isBareDouble(l.Lexical) {
			return l.Lexical
		}
	case XSDBoolean:
		if l.Lexical == "true" || l.Lexical == "false" {
			return l.Lexical
		}
	}
	return quote(l.Lexical) + "^^" + l.Datatype.String()
}

// quote produces a double-quoted string with the escapes the reader accepts.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func trimSign(s string) string {
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return s[1:]
	}
	return s
}

func isBareInteger(s string) bool {
	return isDigits(trimSign(s))
}

func isBareDecimal(s string) bool {
	intPart, frac, ok := strings.Cut(trimSign(s), ".")
	return ok && isDigits(intPart) && isDigits(frac)
}

func isBareDouble(s string) bool {
	mant, exp, ok := strings.Cut(trimSign(s), "e")
	if !ok {
		return false
	}
	return isBareDecimal(mant) && isBareInteger(exp)
}

// Triple is a triple template: each slot is a variable or a constant.
type Triple struct {
	S, P, O Term
}

// Terms returns the slots in subject, predicate, object order.
func (t Triple) Terms() []Term {
	return []Term{t.S, t.P, t.O}
}

// Vars returns the distinct variables of the triple in slot order.
func (t Triple) Vars() []Var {
	var out []Var
	for _, term := range t.Terms() {
		if v, ok := term.(Var); ok && !containsVar(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// String renders the triple as "(?s ?p ?o)".
func (t Triple) String() string {
	return "(" + t.S.String() + " " + t.P.String() + " " + t.O.String() + ")"
}

// Quad is a stored quad. G is DefaultGraph for the default graph.
type Quad struct {
	G, S, P, O Term
}

// DefaultGraph names the default graph in stored quads.
const DefaultGraph IRI = "urn:x-arq:DefaultGraph"

// IsConstant reports whether the term is not a variable.
func IsConstant(t Term) bool {
	_, isVar := t.(Var)
	return t != nil && !isVar
}

func containsVar(vs []Var, v Var) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}
