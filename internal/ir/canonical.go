package ir

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Key produces the canonical encoding of a term.
// CRITICAL: This is the ONLY encoding that should be used for storage keys
// and content hashing.
//
// Differences from String:
//  1. Literals always carry their datatype ("1"^^<...#integer>), so two
//     literals with different datatypes never share a key
//  2. Text is NFC normalized
//  3. Variables are rejected (they are never stored)
func Key(t Term) (string, error) {
	switch v := t.(type) {
	case nil:
		return "", fmt.Errorf("nil term has no canonical key")
	case Var:
		return "", fmt.Errorf("variable %s has no canonical key", v)
	case IRI:
		return "<" + norm.NFC.String(string(v)) + ">", nil
	case BlankNode:
		return "_:" + norm.NFC.String(string(v)), nil
	case Literal:
		lex := quote(norm.NFC.String(v.Lexical))
		if v.Lang != "" {
			return lex + "@" + v.Lang, nil
		}
		return lex + "^^" + v.Datatype.String(), nil
	default:
		return "", fmt.Errorf("unsupported term type %T", t)
	}
}

// MustKey is like Key but panics on error.
// Use only in tests or when the term is known to be a constant.
func MustKey(t Term) string {
	k, err := Key(t)
	if err != nil {
		panic(err)
	}
	return k
}

// Kind names the term type in storage ("iri", "bnode", "literal").
func Kind(t Term) string {
	switch t.(type) {
	case IRI:
		return "iri"
	case BlankNode:
		return "bnode"
	case Literal:
		return "literal"
	case Var:
		return "var"
	default:
		return ""
	}
}
