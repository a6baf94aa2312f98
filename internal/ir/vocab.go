package ir

// Well-known namespaces.
const (
	NSXSD  = "http://www.w3.org/2001/XMLSchema#"
	NSRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NSOWL  = "http://www.w3.org/2002/07/owl#"
)

// Datatype IRIs understood by the printer and the evaluator.
const (
	XSDString     IRI = NSXSD + "string"
	XSDInteger    IRI = NSXSD + "integer"
	XSDDecimal    IRI = NSXSD + "decimal"
	XSDDouble     IRI = NSXSD + "double"
	XSDFloat      IRI = NSXSD + "float"
	XSDBoolean    IRI = NSXSD + "boolean"
	XSDDateTime   IRI = NSXSD + "dateTime"
	RDFLangString IRI = NSRDF + "langString"
)

// RDFType is rdf:type, the generic type-assertion predicate.
const RDFType IRI = NSRDF + "type"

// Prefixes is the fixed prefix table accepted by the plan reader.
var Prefixes = map[string]string{
	"xsd":  NSXSD,
	"rdf":  NSRDF,
	"rdfs": NSRDFS,
	"owl":  NSOWL,
	"ex":   "http://example/",
	"":     "http://example/",
}
