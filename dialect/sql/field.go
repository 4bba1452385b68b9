package sql

// This file implements the Field* adapters the generic field wrappers in
// predicate.go call into. Each returns a func(*Selector) — the predicate
// function shape every generated entity package's `predicate.<Type>` is a
// named alias of — so it resolves the field's fully qualified column via
// the selector's current FROM table before delegating to the matching
// package-level predicate constructor.

// FieldEQ returns a predicate function asserting name equals v.
func FieldEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(EQ(s.C(name), v)) }
}

// FieldNEQ returns a predicate function asserting name does not equal v.
func FieldNEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(NEQ(s.C(name), v)) }
}

// FieldGT returns a predicate function asserting name is greater than v.
func FieldGT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GT(s.C(name), v)) }
}

// FieldGTE returns a predicate function asserting name is >= v.
func FieldGTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GTE(s.C(name), v)) }
}

// FieldLT returns a predicate function asserting name is less than v.
func FieldLT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LT(s.C(name), v)) }
}

// FieldLTE returns a predicate function asserting name is <= v.
func FieldLTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LTE(s.C(name), v)) }
}

// FieldIn returns a predicate function asserting name is one of vs.
func FieldIn[T any](name string, vs ...T) func(*Selector) {
	return func(s *Selector) {
		args := make([]any, len(vs))
		for i := range vs {
			args[i] = vs[i]
		}
		s.Where(In(s.C(name), args...))
	}
}

// FieldNotIn returns a predicate function asserting name is none of vs.
func FieldNotIn[T any](name string, vs ...T) func(*Selector) {
	return func(s *Selector) {
		args := make([]any, len(vs))
		for i := range vs {
			args[i] = vs[i]
		}
		s.Where(NotIn(s.C(name), args...))
	}
}

// FieldContains returns a predicate function asserting name contains v.
func FieldContains(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(Contains(s.C(name), v)) }
}

// FieldContainsFold is the case-folded form of FieldContains.
func FieldContainsFold(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(ContainsFold(s.C(name), v)) }
}

// FieldHasPrefix returns a predicate function asserting name starts with v.
func FieldHasPrefix(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(HasPrefix(s.C(name), v)) }
}

// FieldHasSuffix returns a predicate function asserting name ends with v.
func FieldHasSuffix(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(HasSuffix(s.C(name), v)) }
}

// FieldEqualFold is the case-folded form of FieldEQ.
func FieldEqualFold(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(EqualFold(s.C(name), v)) }
}

// FieldIsNull returns a predicate function asserting name IS NULL.
func FieldIsNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(IsNull(s.C(name))) }
}

// FieldNotNull returns a predicate function asserting name IS NOT NULL.
func FieldNotNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(NotNull(s.C(name))) }
}
