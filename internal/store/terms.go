package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/qopt/internal/ir"
)

// termColumns is the row form of a term in the terms table.
type termColumns struct {
	kind     string
	value    string
	datatype sql.NullString
	lang     string
}

func encodeTerm(t ir.Term) termColumns {
	switch v := t.(type) {
	case ir.IRI:
		return termColumns{kind: "iri", value: string(v)}
	case ir.BlankNode:
		return termColumns{kind: "bnode", value: string(v)}
	case ir.Literal:
		return termColumns{
			kind:     "literal",
			value:    v.Lexical,
			datatype: sql.NullString{String: string(v.Datatype), Valid: true},
			lang:     v.Lang,
		}
	}
	return termColumns{}
}

func (c termColumns) decode() (ir.Term, error) {
	switch c.kind {
	case "iri":
		return ir.IRI(c.value), nil
	case "bnode":
		return ir.BlankNode(c.value), nil
	case "literal":
		if c.lang != "" {
			return ir.NewLangLiteral(c.value, c.lang), nil
		}
		if !c.datatype.Valid {
			return nil, fmt.Errorf("literal %q has no datatype", c.value)
		}
		return ir.Literal{Lexical: c.value, Datatype: ir.IRI(c.datatype.String)}, nil
	}
	return nil, fmt.Errorf("unknown term kind %q", c.kind)
}
