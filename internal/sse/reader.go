package sse

import (
	"strconv"
	"strings"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
)

// node is a parsed s-expression: an atom or a parenthesized or
// bracketed list.
type node struct {
	tok     token
	list    bool
	bracket bool
	items   []node
	line    int
	col     int
}

func (n node) isSymbol(s string) bool {
	return !n.list && n.tok.Kind == tokSymbol && n.tok.Text == s
}

// head returns the leading symbol of a list, or "".
func (n node) head() string {
	if !n.list || n.bracket || len(n.items) == 0 || n.items[0].list || n.items[0].tok.Kind != tokSymbol {
		return ""
	}
	return n.items[0].tok.Text
}

func (n node) errorf(code, format string, args ...any) error {
	return newSyntaxError(code, n.line, n.col, format, args...)
}

// readAll parses src into its top-level forms.
func readAll(src string) ([]node, error) {
	lex := newLexer(src)
	var out []node
	for {
		tok, err := lex.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == tokEOF {
			return out, nil
		}
		n, err := readNode(lex, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
}

// readOne parses exactly one top-level form.
func readOne(src string) (node, error) {
	forms, err := readAll(src)
	if err != nil {
		return node{}, err
	}
	switch len(forms) {
	case 0:
		return node{}, newSyntaxError(CodeUnexpected, 1, 1, "empty input")
	case 1:
		return forms[0], nil
	default:
		return node{}, forms[1].errorf(CodeUnexpected, "unexpected form after the first")
	}
}

func readNode(lex *lexer, tok token) (node, error) {
	switch tok.Kind {
	case tokLParen, tokLBracket:
		closer := tokRParen
		if tok.Kind == tokLBracket {
			closer = tokRBracket
		}
		n := node{list: true, bracket: tok.Kind == tokLBracket, line: tok.Line, col: tok.Col}
		for {
			t, err := lex.next()
			if err != nil {
				return node{}, err
			}
			switch t.Kind {
			case closer:
				return n, nil
			case tokEOF:
				return node{}, newSyntaxError(CodeUnterminated, tok.Line, tok.Col, "unclosed %s", tok.Kind)
			case tokRParen, tokRBracket:
				return node{}, newSyntaxError(CodeUnexpected, t.Line, t.Col, "mismatched %s", t.Kind)
			}
			child, err := readNode(lex, t)
			if err != nil {
				return node{}, err
			}
			n.items = append(n.items, child)
		}
	case tokRParen, tokRBracket:
		return node{}, newSyntaxError(CodeUnexpected, tok.Line, tok.Col, "unexpected %s", tok.Kind)
	default:
		return node{tok: tok, line: tok.Line, col: tok.Col}, nil
	}
}

// ParseOp reads one plan.
func ParseOp(src string) (queryir.Op, error) {
	n, err := readOne(src)
	if err != nil {
		return nil, err
	}
	return buildOp(n)
}

// ParseExpr reads one expression.
func ParseExpr(src string) (queryir.Expr, error) {
	n, err := readOne(src)
	if err != nil {
		return nil, err
	}
	return buildExpr(n)
}

// ParseTerm reads one constant or variable.
func ParseTerm(src string) (ir.Term, error) {
	n, err := readOne(src)
	if err != nil {
		return nil, err
	}
	return buildTerm(n)
}

// ParseDataset reads "(dataset (triple s p o) (quad g s p o) ...)".
// Triples go to the default graph.
func ParseDataset(src string) ([]ir.Quad, error) {
	n, err := readOne(src)
	if err != nil {
		return nil, err
	}
	if n.head() != "dataset" {
		return nil, n.errorf(CodeUnknownForm, "expected (dataset ...)")
	}
	var quads []ir.Quad
	for _, item := range n.items[1:] {
		switch item.head() {
		case "triple":
			t, err := buildTriple(item)
			if err != nil {
				return nil, err
			}
			quads = append(quads, ir.Quad{G: ir.DefaultGraph, S: t.S, P: t.P, O: t.O})
		case "quad":
			g, t, err := buildQuad(item)
			if err != nil {
				return nil, err
			}
			quads = append(quads, ir.Quad{G: g, S: t.S, P: t.P, O: t.O})
		default:
			return nil, item.errorf(CodeUnknownForm, "expected (triple ...) or (quad ...)")
		}
	}
	for _, q := range quads {
		for _, term := range []ir.Term{q.G, q.S, q.P, q.O} {
			if _, isVar := term.(ir.Var); isVar {
				return nil, n.errorf(CodeBadTerm, "dataset quad holds variable %s", term)
			}
		}
	}
	return quads, nil
}

func expectArgs(n node, min, max int) error {
	got := len(n.items) - 1
	if got < min || (max >= 0 && got > max) {
		if max == min {
			return n.errorf(CodeArity, "(%s ...) takes %d arguments, got %d", n.head(), min, got)
		}
		return n.errorf(CodeArity, "(%s ...) takes %d to %d arguments, got %d", n.head(), min, max, got)
	}
	return nil
}

func buildOp(n node) (queryir.Op, error) {
	name := n.head()
	if name == "" {
		return nil, n.errorf(CodeUnknownForm, "expected a plan form")
	}

	switch name {
	case "bgp":
		return buildBGP(n)
	case "quadpattern":
		return buildQuadPattern(n)
	case "join", "conditional", "union", "minus":
		if err := expectArgs(n, 2, 2); err != nil {
			return nil, err
		}
		left, right, err := buildPair(n.items[1], n.items[2])
		if err != nil {
			return nil, err
		}
		switch name {
		case "join":
			return queryir.Join{Left: left, Right: right}, nil
		case "conditional":
			return queryir.Conditional{Left: left, Right: right}, nil
		case "union":
			return queryir.Union{Left: left, Right: right}, nil
		default:
			return queryir.Minus{Left: left, Right: right}, nil
		}
	case "leftjoin":
		if err := expectArgs(n, 2, 3); err != nil {
			return nil, err
		}
		left, right, err := buildPair(n.items[1], n.items[2])
		if err != nil {
			return nil, err
		}
		var exprs []queryir.Expr
		if len(n.items) == 4 {
			if exprs, err = buildExprList(n.items[3]); err != nil {
				return nil, err
			}
		}
		return queryir.LeftJoin{Left: left, Right: right, Exprs: exprs}, nil
	case "filter":
		if err := expectArgs(n, 2, 2); err != nil {
			return nil, err
		}
		exprs, err := buildExprList(n.items[1])
		if err != nil {
			return nil, err
		}
		sub, err := buildOp(n.items[2])
		if err != nil {
			return nil, err
		}
		return queryir.Filter{Exprs: exprs, Sub: sub}, nil
	case "extend", "assign":
		if err := expectArgs(n, 2, 2); err != nil {
			return nil, err
		}
		bindings, err := buildBindings(n.items[1], false)
		if err != nil {
			return nil, err
		}
		sub, err := buildOp(n.items[2])
		if err != nil {
			return nil, err
		}
		if name == "extend" {
			return queryir.Extend{Bindings: bindings, Sub: sub}, nil
		}
		return queryir.Assign{Bindings: bindings, Sub: sub}, nil
	case "project":
		if err := expectArgs(n, 2, 2); err != nil {
			return nil, err
		}
		vars, err := buildVarList(n.items[1])
		if err != nil {
			return nil, err
		}
		sub, err := buildOp(n.items[2])
		if err != nil {
			return nil, err
		}
		return queryir.Project{Vars: vars, Sub: sub}, nil
	case "distinct", "reduced":
		if err := expectArgs(n, 1, 1); err != nil {
			return nil, err
		}
		sub, err := buildOp(n.items[1])
		if err != nil {
			return nil, err
		}
		if name == "distinct" {
			return queryir.Distinct{Sub: sub}, nil
		}
		return queryir.Reduced{Sub: sub}, nil
	case "order":
		if err := expectArgs(n, 2, 2); err != nil {
			return nil, err
		}
		if !n.items[1].list {
			return nil, n.items[1].errorf(CodeUnexpected, "expected a list of sort conditions")
		}
		conds, err := buildConds(n.items[1].items)
		if err != nil {
			return nil, err
		}
		sub, err := buildOp(n.items[2])
		if err != nil {
			return nil, err
		}
		return queryir.Order{Conds: conds, Sub: sub}, nil
	case "slice":
		return buildSlice(n)
	case "top":
		return buildTop(n)
	case "sequence", "disjunction":
		elems := make([]queryir.Op, 0, len(n.items)-1)
		for _, item := range n.items[1:] {
			op, err := buildOp(item)
			if err != nil {
				return nil, err
			}
			elems = append(elems, op)
		}
		if name == "sequence" {
			return queryir.Sequence{Elems: elems}, nil
		}
		return queryir.Disjunction{Elems: elems}, nil
	case "table":
		return buildTable(n)
	case "group":
		return buildGroup(n)
	default:
		return nil, n.errorf(CodeUnknownForm, "unknown plan form %q", name)
	}
}

func buildPair(a, b node) (queryir.Op, queryir.Op, error) {
	left, err := buildOp(a)
	if err != nil {
		return nil, nil, err
	}
	right, err := buildOp(b)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// buildBGP accepts both "(bgp (?s ?p ?o))" and "(bgp (triple ?s ?p ?o))".
func buildBGP(n node) (queryir.Op, error) {
	triples := make([]ir.Triple, 0, len(n.items)-1)
	for _, item := range n.items[1:] {
		t, err := buildTriple(item)
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
	return queryir.Pattern{Triples: triples}, nil
}

func buildTriple(n node) (ir.Triple, error) {
	items := n.items
	if n.head() == "triple" {
		items = items[1:]
	}
	if !n.list || len(items) != 3 {
		return ir.Triple{}, n.errorf(CodeArity, "a triple has three slots")
	}
	var slots [3]ir.Term
	for i, item := range items {
		t, err := buildTerm(item)
		if err != nil {
			return ir.Triple{}, err
		}
		slots[i] = t
	}
	return ir.Triple{S: slots[0], P: slots[1], O: slots[2]}, nil
}

func buildQuad(n node) (ir.Term, ir.Triple, error) {
	if err := expectArgs(n, 4, 4); err != nil {
		return nil, ir.Triple{}, err
	}
	var slots [4]ir.Term
	for i, item := range n.items[1:] {
		t, err := buildTerm(item)
		if err != nil {
			return nil, ir.Triple{}, err
		}
		slots[i] = t
	}
	return slots[0], ir.Triple{S: slots[1], P: slots[2], O: slots[3]}, nil
}

// buildQuadPattern requires every quad to name the same graph.
func buildQuadPattern(n node) (queryir.Op, error) {
	var graph ir.Term
	triples := make([]ir.Triple, 0, len(n.items)-1)
	for _, item := range n.items[1:] {
		if item.head() != "quad" {
			return nil, item.errorf(CodeUnknownForm, "expected (quad g s p o)")
		}
		g, t, err := buildQuad(item)
		if err != nil {
			return nil, err
		}
		if graph != nil && g != graph {
			return nil, item.errorf(CodeBadTerm, "quad pattern mixes graphs %s and %s", graph, g)
		}
		graph = g
		triples = append(triples, t)
	}
	if graph == nil {
		return nil, n.errorf(CodeArity, "quad pattern needs at least one quad")
	}
	return queryir.Pattern{Graph: graph, Triples: triples}, nil
}

func buildSlice(n node) (queryir.Op, error) {
	if err := expectArgs(n, 3, 3); err != nil {
		return nil, err
	}
	offset, err := buildBound(n.items[1])
	if err != nil {
		return nil, err
	}
	length, err := buildBound(n.items[2])
	if err != nil {
		return nil, err
	}
	sub, err := buildOp(n.items[3])
	if err != nil {
		return nil, err
	}
	return queryir.Slice{Offset: offset, Length: length, Sub: sub}, nil
}

func buildBound(n node) (int64, error) {
	if n.isSymbol("_") {
		return queryir.Unset, nil
	}
	if n.list || n.tok.Kind != tokNumber {
		return 0, n.errorf(CodeBadTerm, "expected a count or _")
	}
	v, err := strconv.ParseInt(n.tok.Text, 10, 64)
	if err != nil || v < 0 {
		return 0, n.errorf(CodeBadTerm, "bad count %q", n.tok.Text)
	}
	return v, nil
}

// buildTop reads "(top (count cond...) sub)".
func buildTop(n node) (queryir.Op, error) {
	if err := expectArgs(n, 2, 2); err != nil {
		return nil, err
	}
	spec := n.items[1]
	if !spec.list || len(spec.items) < 1 {
		return nil, spec.errorf(CodeUnexpected, "expected (count cond ...)")
	}
	count, err := buildBound(spec.items[0])
	if err != nil {
		return nil, err
	}
	if count == queryir.Unset {
		return nil, spec.errorf(CodeBadTerm, "top needs a count")
	}
	conds, err := buildConds(spec.items[1:])
	if err != nil {
		return nil, err
	}
	sub, err := buildOp(n.items[2])
	if err != nil {
		return nil, err
	}
	return queryir.Top{Count: count, Conds: conds, Sub: sub}, nil
}

func buildConds(items []node) ([]queryir.SortCond, error) {
	conds := make([]queryir.SortCond, 0, len(items))
	for _, item := range items {
		dir := item.head()
		if dir == "asc" || dir == "desc" {
			if err := expectArgs(item, 1, 1); err != nil {
				return nil, err
			}
			e, err := buildExpr(item.items[1])
			if err != nil {
				return nil, err
			}
			conds = append(conds, queryir.SortCond{Expr: e, Desc: dir == "desc"})
			continue
		}
		e, err := buildExpr(item)
		if err != nil {
			return nil, err
		}
		conds = append(conds, queryir.SortCond{Expr: e})
	}
	return conds, nil
}

// buildTable reads "(table unit)", "(table empty)", or
// "(table (vars ?x ?y) (row [?x 1] [?y 2]) ...)".
func buildTable(n node) (queryir.Op, error) {
	if len(n.items) == 2 && n.items[1].isSymbol("unit") {
		return queryir.Unit(), nil
	}
	if len(n.items) == 2 && n.items[1].isSymbol("empty") {
		return queryir.Empty(), nil
	}
	if len(n.items) < 2 || n.items[1].head() != "vars" {
		return nil, n.errorf(CodeUnknownForm, "expected (table unit), (table empty), or (table (vars ...) rows...)")
	}
	header := n.items[1]
	vars := make([]ir.Var, 0, len(header.items)-1)
	col := map[ir.Var]int{}
	for _, item := range header.items[1:] {
		if item.list || item.tok.Kind != tokVar {
			return nil, item.errorf(CodeBadTerm, "table header holds a non-variable")
		}
		v := ir.NewVar(item.tok.Text)
		col[v] = len(vars)
		vars = append(vars, v)
	}

	rows := make([][]ir.Term, 0, len(n.items)-2)
	for _, rowNode := range n.items[2:] {
		if rowNode.head() != "row" {
			return nil, rowNode.errorf(CodeUnknownForm, "expected (row ...)")
		}
		row := make([]ir.Term, len(vars))
		for _, cell := range rowNode.items[1:] {
			if !cell.list || len(cell.items) != 2 {
				return nil, cell.errorf(CodeUnexpected, "expected [?var value]")
			}
			v, err := buildVar(cell.items[0])
			if err != nil {
				return nil, err
			}
			i, ok := col[v]
			if !ok {
				return nil, cell.errorf(CodeBadTerm, "variable %s is not in the table header", v)
			}
			t, err := buildTerm(cell.items[1])
			if err != nil {
				return nil, err
			}
			if _, isVar := t.(ir.Var); isVar {
				return nil, cell.errorf(CodeBadTerm, "table cell holds variable %s", t)
			}
			row[i] = t
		}
		rows = append(rows, row)
	}
	return queryir.Table{Kind: queryir.TableData, Vars: vars, Rows: rows}, nil
}

// buildGroup reads "(group (keys) ((?v (agg ...)) ...) sub)". The
// aggregate list may be omitted.
func buildGroup(n node) (queryir.Op, error) {
	if err := expectArgs(n, 2, 3); err != nil {
		return nil, err
	}
	keys, err := buildBindings(n.items[1], true)
	if err != nil {
		return nil, err
	}
	var aggs []queryir.AggBinding
	subNode := n.items[2]
	if len(n.items) == 4 {
		if aggs, err = buildAggs(n.items[2]); err != nil {
			return nil, err
		}
		subNode = n.items[3]
	}
	sub, err := buildOp(subNode)
	if err != nil {
		return nil, err
	}
	return queryir.Group{Keys: keys, Aggs: aggs, Sub: sub}, nil
}

func buildAggs(n node) ([]queryir.AggBinding, error) {
	if !n.list {
		return nil, n.errorf(CodeUnexpected, "expected a list of aggregate bindings")
	}
	out := make([]queryir.AggBinding, 0, len(n.items))
	for _, item := range n.items {
		if !item.list || len(item.items) != 2 {
			return nil, item.errorf(CodeUnexpected, "expected (?var (aggregate ...))")
		}
		v, err := buildVar(item.items[0])
		if err != nil {
			return nil, err
		}
		agg, err := buildAggregator(item.items[1])
		if err != nil {
			return nil, err
		}
		out = append(out, queryir.AggBinding{Var: v, Agg: agg})
	}
	return out, nil
}

// buildAggregator reads "(count)", "(count distinct ?x)",
// "(group_concat (separator \";\") ?x)".
func buildAggregator(n node) (queryir.Aggregator, error) {
	name := n.head()
	if name == "" {
		return queryir.Aggregator{}, n.errorf(CodeUnknownForm, "expected an aggregate")
	}
	agg := queryir.Aggregator{Name: strings.ToLower(name)}
	rest := n.items[1:]
	if len(rest) > 0 && rest[0].isSymbol("distinct") {
		agg.Distinct = true
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[0].head() == "separator" {
		sep := rest[0]
		if len(sep.items) != 2 || sep.items[1].list || sep.items[1].tok.Kind != tokString {
			return queryir.Aggregator{}, sep.errorf(CodeBadTerm, "separator takes one string")
		}
		agg.Separator = sep.items[1].tok.Text
		rest = rest[1:]
	}
	switch len(rest) {
	case 0:
		if agg.Name != "count" {
			return queryir.Aggregator{}, n.errorf(CodeArity, "%s needs an argument", agg.Name)
		}
	case 1:
		e, err := buildExpr(rest[0])
		if err != nil {
			return queryir.Aggregator{}, err
		}
		agg.Arg = e
	default:
		return queryir.Aggregator{}, n.errorf(CodeArity, "%s takes one argument", agg.Name)
	}
	return agg, nil
}

// buildBindings reads "((?x e) (?y e))". When keysAllowed, a bare
// variable is a group key without an expression.
func buildBindings(n node, keysAllowed bool) ([]queryir.VarExpr, error) {
	if !n.list {
		return nil, n.errorf(CodeUnexpected, "expected a binding list")
	}
	out := make([]queryir.VarExpr, 0, len(n.items))
	for _, item := range n.items {
		if keysAllowed && !item.list {
			v, err := buildVar(item)
			if err != nil {
				return nil, err
			}
			out = append(out, queryir.VarExpr{Var: v})
			continue
		}
		if !item.list || len(item.items) != 2 {
			return nil, item.errorf(CodeUnexpected, "expected (?var expr)")
		}
		v, err := buildVar(item.items[0])
		if err != nil {
			return nil, err
		}
		e, err := buildExpr(item.items[1])
		if err != nil {
			return nil, err
		}
		out = append(out, queryir.VarExpr{Var: v, Expr: e})
	}
	return out, nil
}

func buildVarList(n node) ([]ir.Var, error) {
	if !n.list {
		return nil, n.errorf(CodeUnexpected, "expected a variable list")
	}
	out := make([]ir.Var, 0, len(n.items))
	for _, item := range n.items {
		v, err := buildVar(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func buildVar(n node) (ir.Var, error) {
	if n.list || n.tok.Kind != tokVar {
		return ir.Var{}, n.errorf(CodeBadTerm, "expected a variable")
	}
	return ir.NewVar(n.tok.Text), nil
}

// buildExprList reads a single expression or "(exprlist e1 e2 ...)".
func buildExprList(n node) ([]queryir.Expr, error) {
	if n.head() == "exprlist" {
		out := make([]queryir.Expr, 0, len(n.items)-1)
		for _, item := range n.items[1:] {
			e, err := buildExpr(item)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	}
	e, err := buildExpr(n)
	if err != nil {
		return nil, err
	}
	return []queryir.Expr{e}, nil
}

func buildExpr(n node) (queryir.Expr, error) {
	if !n.list {
		if n.isSymbol("true") || n.isSymbol("false") {
			return queryir.Const{Term: ir.NewBoolean(n.tok.Text == "true")}, nil
		}
		t, err := buildTerm(n)
		if err != nil {
			return nil, err
		}
		if v, ok := t.(ir.Var); ok {
			return queryir.ExprVar{Var: v}, nil
		}
		return queryir.Const{Term: t}, nil
	}
	if n.bracket || len(n.items) == 0 {
		return nil, n.errorf(CodeUnexpected, "expected an expression")
	}

	var name string
	switch fn := n.items[0]; {
	case !fn.list && fn.tok.Kind == tokSymbol:
		name = queryir.CanonicalName(fn.tok.Text)
	case !fn.list && fn.tok.Kind == tokIRI:
		name = "<" + fn.tok.Text + ">"
	default:
		return nil, fn.errorf(CodeUnexpected, "expected a function name")
	}
	args := make([]queryir.Expr, 0, len(n.items)-1)
	for _, item := range n.items[1:] {
		a, err := buildExpr(item)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return queryir.Call{Name: name, Args: args}, nil
}

func buildTerm(n node) (ir.Term, error) {
	if n.list {
		return nil, n.errorf(CodeBadTerm, "expected a term")
	}
	tok := n.tok
	switch tok.Kind {
	case tokVar:
		return ir.NewVar(tok.Text), nil
	case tokIRI:
		return ir.IRI(tok.Text), nil
	case tokBNode:
		return ir.BlankNode(tok.Text), nil
	case tokString:
		if tok.Lang != "" {
			return ir.NewLangLiteral(tok.Text, tok.Lang), nil
		}
		if tok.Datatype == "" {
			return ir.NewString(tok.Text), nil
		}
		dt := ir.IRI(tok.Datatype)
		if !tok.DTIsIRI {
			iri, ok := expandPName(tok.Datatype)
			if !ok {
				return nil, n.errorf(CodeBadTerm, "unknown prefix in datatype %q", tok.Datatype)
			}
			dt = iri
		}
		return ir.NewLiteral(tok.Text, dt), nil
	case tokNumber:
		return numberLiteral(n)
	case tokSymbol:
		if tok.Text == "true" || tok.Text == "false" {
			return ir.NewBoolean(tok.Text == "true"), nil
		}
		if iri, ok := expandPName(tok.Text); ok {
			return iri, nil
		}
		return nil, n.errorf(CodeBadTerm, "unknown term %q", tok.Text)
	default:
		return nil, n.errorf(CodeBadTerm, "expected a term, got %s", tok.Kind)
	}
}

func numberLiteral(n node) (ir.Term, error) {
	text := n.tok.Text
	switch {
	case strings.ContainsAny(text, "eE"):
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return nil, n.errorf(CodeBadTerm, "bad double %q", text)
		}
		return ir.NewLiteral(text, ir.XSDDouble), nil
	case strings.Contains(text, "."):
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return nil, n.errorf(CodeBadTerm, "bad decimal %q", text)
		}
		return ir.NewDecimal(text), nil
	default:
		if _, err := strconv.ParseInt(strings.TrimPrefix(text, "+"), 10, 64); err != nil {
			return nil, n.errorf(CodeBadTerm, "bad integer %q", text)
		}
		return ir.NewLiteral(text, ir.XSDInteger), nil
	}
}

// expandPName resolves "prefix:local" against the fixed prefix table.
func expandPName(s string) (ir.IRI, bool) {
	prefix, local, ok := strings.Cut(s, ":")
	if !ok {
		return "", false
	}
	ns, ok := ir.Prefixes[prefix]
	if !ok {
		return "", false
	}
	return ir.IRI(ns + local), true
}
