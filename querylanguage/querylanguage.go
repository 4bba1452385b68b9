// Package querylanguage defines a small, dialect-agnostic predicate AST for
// expressing field comparisons and edge-traversal conditions. A P value
// knows nothing about tables or columns; it is resolved against a concrete
// graph schema by dialect/sql/sqlgraph.EvalP.
package querylanguage

import "time"

// Kind identifies the shape of a predicate node.
type Kind int

const (
	KindFieldCmp Kind = iota
	KindFieldsEQ
	KindAnd
	KindOr
	KindHasEdge
	KindHasEdgeWith
)

// P is one node of a predicate tree.
type P struct {
	Kind Kind

	// KindFieldCmp / KindFieldsEQ
	Field  string
	Field2 string
	Op     string
	Value  any

	// KindAnd / KindOr
	Children []P

	// KindHasEdge / KindHasEdgeWith
	Edge     string
	EdgeWith []P
}

// FieldRef names a field for cross-field comparisons built with EQ.
type FieldRef struct{ name string }

// F returns a reference to the field named name, for use with EQ.
func F(name string) FieldRef { return FieldRef{name: name} }

func fieldCmp(op, name string, v any) P { return P{Kind: KindFieldCmp, Field: name, Op: op, Value: v} }

// FieldEQ returns a "field = value" predicate.
func FieldEQ(name string, v any) P { return fieldCmp("=", name, v) }

// FieldNEQ returns a "field <> value" predicate.
func FieldNEQ(name string, v any) P { return fieldCmp("<>", name, v) }

// FieldGT returns a "field > value" predicate.
func FieldGT(name string, v any) P { return fieldCmp(">", name, v) }

// FieldGTE returns a "field >= value" predicate.
func FieldGTE(name string, v any) P { return fieldCmp(">=", name, v) }

// FieldLT returns a "field < value" predicate.
func FieldLT(name string, v any) P { return fieldCmp("<", name, v) }

// FieldLTE returns a "field <= value" predicate.
func FieldLTE(name string, v any) P { return fieldCmp("<=", name, v) }

// FieldHasPrefix returns a "field starts with v" predicate.
func FieldHasPrefix(name, v string) P { return fieldCmp("hasPrefix", name, v) }

// FieldHasSuffix returns a "field ends with v" predicate.
func FieldHasSuffix(name, v string) P { return fieldCmp("hasSuffix", name, v) }

// FieldContains returns a "field contains v" predicate.
func FieldContains(name, v string) P { return fieldCmp("contains", name, v) }

// FieldNil returns a "field IS NULL" predicate.
func FieldNil(name string) P { return P{Kind: KindFieldCmp, Field: name, Op: "isNull"} }

// FieldNotNil returns a "field IS NOT NULL" predicate.
func FieldNotNil(name string) P { return P{Kind: KindFieldCmp, Field: name, Op: "notNull"} }

// EQ compares two field references (e.g. EQ(F("name"), F("last"))), or a
// field reference against a literal value.
func EQ(a, b any) P {
	af, aIsField := a.(FieldRef)
	bf, bIsField := b.(FieldRef)
	switch {
	case aIsField && bIsField:
		return P{Kind: KindFieldsEQ, Field: af.name, Field2: bf.name}
	case aIsField:
		return FieldEQ(af.name, b)
	case bIsField:
		return FieldEQ(bf.name, a)
	default:
		panic("querylanguage: EQ requires at least one field reference")
	}
}

// And combines predicates with AND.
func And(ps ...P) P { return P{Kind: KindAnd, Children: ps} }

// Or combines predicates with OR.
func Or(ps ...P) P { return P{Kind: KindOr, Children: ps} }

// HasEdge reports whether the current node has at least one related entity
// through the named edge.
func HasEdge(name string) P { return P{Kind: KindHasEdge, Edge: name} }

// HasEdgeWith reports whether the current node has a related entity through
// the named edge matching every given predicate.
func HasEdgeWith(name string, ps ...P) P { return P{Kind: KindHasEdgeWith, Edge: name, EdgeWith: ps} }

// TimeConst wraps a time.Time used as a predicate value, letting the caller
// opt into promoting it to the dialect's current-timestamp intrinsic instead
// of a bound literal. A bare Const carries no promotion; AsNow adds it.
//
// This replaces the automatic "value close to now becomes CURRENT_TIMESTAMP"
// convention: promotion only happens when the caller asks for it, and only
// when the value is within epsilon of the wall-clock time the query is
// built (a REDESIGN FLAG against treating it as implicit and lossy).
type TimeConst struct {
	Value   time.Time
	Epsilon time.Duration
}

// Const wraps t as an ordinary predicate constant, with no "now" promotion.
func Const(t time.Time) TimeConst { return TimeConst{Value: t} }

// AsNow opts c into promotion: if c.Value is within epsilon of the time the
// query is assembled, the translator binds the dialect's current-timestamp
// function instead of the literal value.
func (c TimeConst) AsNow(epsilon time.Duration) TimeConst {
	c.Epsilon = epsilon
	return c
}
