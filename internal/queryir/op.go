package queryir

import "github.com/roach88/qopt/internal/ir"

// Op is a plan node. Op is a sealed interface: only the variants in this
// file implement it, and every switch over Op in this module lists them all.
//
// Ops are immutable values. A rewrite builds a new tree and may share any
// untouched sub-tree with its input; no code mutates an Op after
// construction, including the slices it holds.
type Op interface {
	opNode() // Sealed - only types in this package implement it

	// Name is the plan keyword for the variant ("bgp", "join", ...).
	Name() string
}

// Pattern is a basic graph pattern: an ordered list of triple templates
// matched against one graph. Graph is nil for the default graph; a
// non-nil Graph (a variable or IRI) makes the pattern a quad pattern.
type Pattern struct {
	Graph   ir.Term
	Triples []ir.Triple
}

// Join is an inner join. Evaluation is commutative; equality is positional.
type Join struct {
	Left, Right Op
}

// LeftJoin is an optional match. Exprs is an extra join condition
// evaluated only where both sides match.
type LeftJoin struct {
	Left, Right Op
	Exprs       []Expr
}

// Conditional is a LeftJoin without a condition whose right side is
// evaluated by substituting each left solution into it.
type Conditional struct {
	Left, Right Op
}

// Union is the bag union of both sides.
type Union struct {
	Left, Right Op
}

// Minus keeps left solutions with no compatible right solution sharing
// a variable.
type Minus struct {
	Left, Right Op
}

// Filter keeps solutions where every expression evaluates to true.
// An evaluation error counts as false for that solution.
type Filter struct {
	Exprs []Expr
	Sub   Op
}

// VarExpr binds Var to the value of Expr. In Group keys Expr may be nil,
// meaning the key is the variable itself.
type VarExpr struct {
	Var  ir.Var
	Expr Expr
}

// Extend adds new bindings, evaluated left to right. Evaluation fails for
// a solution that already binds one of the variables.
type Extend struct {
	Bindings []VarExpr
	Sub      Op
}

// Assign is like Extend but accepts a solution that already binds the
// variable to an equal value.
type Assign struct {
	Bindings []VarExpr
	Sub      Op
}

// Project restricts the visible variables. Vars is the output column order.
type Project struct {
	Vars []ir.Var
	Sub  Op
}

// Distinct removes all duplicate solutions.
type Distinct struct {
	Sub Op
}

// Reduced may remove duplicate solutions.
type Reduced struct {
	Sub Op
}

// SortCond is one ORDER BY key.
type SortCond struct {
	Expr Expr
	Desc bool
}

// Order sorts solutions. The sort is stable.
type Order struct {
	Conds []SortCond
	Sub   Op
}

// Unset marks an absent Slice offset or length.
const Unset int64 = -1

// Slice paginates. Offset and Length are Unset when absent.
type Slice struct {
	Offset, Length int64
	Sub            Op
}

// Top keeps the first Count solutions of Sub under the order Conds.
// It is the fused form of Slice(Order(...)).
type Top struct {
	Count int64
	Conds []SortCond
	Sub   Op
}

// Sequence evaluates its elements left to right, each element's
// solutions flowing into the next. It is not commutative.
type Sequence struct {
	Elems []Op
}

// TableKind selects the shape of a constant relation.
type TableKind int

const (
	// TableUnit is one empty solution.
	TableUnit TableKind = iota
	// TableEmpty is zero solutions.
	TableEmpty
	// TableData is literal rows.
	TableData
)

// Table is a constant relation. For TableData, each row holds one term
// per entry of Vars; a nil term leaves the variable unbound in that row.
type Table struct {
	Kind TableKind
	Vars []ir.Var
	Rows [][]ir.Term
}

// Aggregator is an aggregate function application inside Group.
// Arg is nil for COUNT(*).
type Aggregator struct {
	Name      string
	Distinct  bool
	Arg       Expr
	Separator string
}

// AggBinding binds the result of an aggregate to Var.
type AggBinding struct {
	Var ir.Var
	Agg Aggregator
}

// Group groups solutions by Keys and computes Aggs per group.
type Group struct {
	Keys []VarExpr
	Aggs []AggBinding
	Sub  Op
}

// Disjunction is a union whose branches are mutually exclusive.
type Disjunction struct {
	Elems []Op
}

func (Pattern) opNode()     {}
func (Join) opNode()        {}
func (LeftJoin) opNode()    {}
func (Conditional) opNode() {}
func (Union) opNode()       {}
func (Minus) opNode()       {}
func (Filter) opNode()      {}
func (Extend) opNode()      {}
func (Assign) opNode()      {}
func (Project) opNode()     {}
func (Distinct) opNode()    {}
func (Reduced) opNode()     {}
func (Order) opNode()       {}
func (Slice) opNode()       {}
func (Top) opNode()         {}
func (Sequence) opNode()    {}
func (Table) opNode()       {}
func (Group) opNode()       {}
func (Disjunction) opNode() {}

// Name implements Op.
func (p Pattern) Name() string {
	if p.Graph != nil {
		return "quadpattern"
	}
	return "bgp"
}

func (Join) Name() string        { return "join" }
func (LeftJoin) Name() string    { return "leftjoin" }
func (Conditional) Name() string { return "conditional" }
func (Union) Name() string       { return "union" }
func (Minus) Name() string       { return "minus" }
func (Filter) Name() string      { return "filter" }
func (Extend) Name() string      { return "extend" }
func (Assign) Name() string      { return "assign" }
func (Project) Name() string     { return "project" }
func (Distinct) Name() string    { return "distinct" }
func (Reduced) Name() string     { return "reduced" }
func (Order) Name() string       { return "order" }
func (Slice) Name() string       { return "slice" }
func (Top) Name() string         { return "top" }
func (Sequence) Name() string    { return "sequence" }
func (Table) Name() string       { return "table" }
func (Group) Name() string       { return "group" }
func (Disjunction) Name() string { return "disjunction" }

// Unit returns Table(Unit).
func Unit() Table {
	return Table{Kind: TableUnit}
}

// Empty returns Table(Empty).
func Empty() Table {
	return Table{Kind: TableEmpty}
}

// IsEmptyTable reports whether op is Table(Empty).
func IsEmptyTable(op Op) bool {
	t, ok := op.(Table)
	return ok && t.Kind == TableEmpty
}

// IsUnitTable reports whether op is Table(Unit).
func IsUnitTable(op Op) bool {
	t, ok := op.(Table)
	return ok && t.Kind == TableUnit
}

// NewFilter wraps sub in a Filter over exprs. An empty list returns sub
// unchanged; a Filter sub absorbs the new expressions after its own.
func NewFilter(exprs []Expr, sub Op) Op {
	if len(exprs) == 0 {
		return sub
	}
	if f, ok := sub.(Filter); ok {
		merged := make([]Expr, 0, len(f.Exprs)+len(exprs))
		merged = append(merged, f.Exprs...)
		merged = append(merged, exprs...)
		return Filter{Exprs: merged, Sub: f.Sub}
	}
	return Filter{Exprs: exprs, Sub: sub}
}

// NewSequence appends next to a sequence. A nil first returns next; a
// Sequence first is extended rather than nested.
func NewSequence(first, next Op) Op {
	if first == nil {
		return next
	}
	if s, ok := first.(Sequence); ok {
		elems := make([]Op, 0, len(s.Elems)+1)
		elems = append(elems, s.Elems...)
		elems = append(elems, next)
		return Sequence{Elems: elems}
	}
	return Sequence{Elems: []Op{first, next}}
}

// BindingVars returns the variables bound by an Extend/Assign list.
func BindingVars(bs []VarExpr) []ir.Var {
	out := make([]ir.Var, len(bs))
	for i, b := range bs {
		out[i] = b.Var
	}
	return out
}
