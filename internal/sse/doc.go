// Package sse reads and writes the s-expression text form of query plans,
// expressions, and small datasets.
//
// Plans:
//
//	(filter (exprlist (= ?x 1) (bound ?y))
//	  (leftjoin
//	    (bgp (?s <http://example/p> ?x))
//	    (bgp (?s <http://example/q> ?y))))
//
// Terms are ?var, <iri>, prefix:local (xsd, rdf, rdfs, owl, ex, and the
// empty prefix, all fixed), _:label, "string", "x"@lang, "x"^^<datatype>,
// bare numbers (integer, decimal, or double by shape), and true/false.
// A filter with one expression writes it bare; several are wrapped in
// (exprlist ...). "_" marks an absent slice bound.
//
// Datasets:
//
//	(dataset
//	  (triple :s :p 1)
//	  (quad :g :s :p 2))
//
// Comments run from ';' or '#' to the end of the line. Errors are
// *SyntaxError values with a 1-based line and column.
package sse
