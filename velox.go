// Package velox provides the runtime types shared by the ORM's packages:
// the schema-definition interfaces (Schema, Mixin, Field, Edge, Index), the
// mutation/query/policy contracts used by hooks and privacy rules, and the
// context helpers queries use to carry field-selection and pagination state.
package velox

import (
	"context"

	"github.com/veloxdb/velox/schema"
	"github.com/veloxdb/velox/schema/edge"
	"github.com/veloxdb/velox/schema/field"
	"github.com/veloxdb/velox/schema/index"
)

// Field is implemented by the builders returned from the field package
// (field.String, field.Int64, ...). Schema.Fields returns a slice of these.
type Field interface {
	Descriptor() *field.Descriptor
}

// Edge is implemented by the builders returned from the edge package
// (edge.To, edge.From). Schema.Edges returns a slice of these.
type Edge interface {
	Descriptor() *edge.Descriptor
}

// Index is implemented by the builders returned from the index package
// (index.Fields, index.Edges). Schema.Indexes returns a slice of these.
type Index interface {
	Descriptor() *index.Descriptor
}

// Hook is a mutation middleware: it wraps a Mutator and may run logic
// before and/or after the wrapped mutator executes.
type Hook func(Mutator) Mutator

// Mutator is the interface that wraps the Mutate method, invoked by the
// hook chain to execute a mutation and return its result.
type Mutator interface {
	Mutate(context.Context, Mutation) (Value, error)
}

// MutateFunc is an adapter allowing ordinary functions to be used as
// Mutators.
type MutateFunc func(context.Context, Mutation) (Value, error)

// Mutate calls f(ctx, m).
func (f MutateFunc) Mutate(ctx context.Context, m Mutation) (Value, error) {
	return f(ctx, m)
}

// Querier is the interface that wraps the Query method, invoked by the
// interceptor chain to execute a query and return its result.
type Querier interface {
	Query(context.Context, Query) (Value, error)
}

// QuerierFunc is an adapter allowing ordinary functions to be used as
// Queriers.
type QuerierFunc func(context.Context, Query) (Value, error)

// Query calls f(ctx, q).
func (f QuerierFunc) Query(ctx context.Context, q Query) (Value, error) {
	return f(ctx, q)
}

// Interceptor is a query middleware: it wraps a Querier and may run logic
// before and/or after the wrapped querier executes, or replace it outright.
type Interceptor interface {
	Intercept(Querier) Querier
}

// InterceptFunc is an adapter allowing ordinary functions to be used as
// Interceptors.
type InterceptFunc func(Querier) Querier

// Intercept calls f(next).
func (f InterceptFunc) Intercept(next Querier) Querier {
	return f(next)
}

// TraverseFunc is an Interceptor that only observes a query (e.g. for
// auditing or metrics) without altering its result. Traverse runs before
// the wrapped Querier and its error, if non-nil, short-circuits the query.
type TraverseFunc func(context.Context, Query) error

// Intercept returns a Querier that runs the traversal and then, if it
// returned nil, next.
func (f TraverseFunc) Intercept(next Querier) Querier {
	return QuerierFunc(func(ctx context.Context, q Query) (Value, error) {
		if err := f(ctx, q); err != nil {
			return nil, err
		}
		return next.Query(ctx, q)
	})
}

// Traverse calls f(ctx, q).
func (f TraverseFunc) Traverse(ctx context.Context, q Query) error {
	return f(ctx, q)
}

// Mutation is the interface a mutation implements to give hooks and privacy
// rules uniform access to the operation type and pending field values. No
// type in this module outside tests implements it.
type Mutation interface {
	// Op returns the operation type of the mutation.
	Op() Op
	// Type returns the name of the entity type being mutated.
	Type() string
	// Field returns the value of a field by name, and whether it was set.
	Field(name string) (any, bool)
	// SetField sets the value of a field by name, replacing any pending
	// value. Returns an error if the field doesn't exist or the value is
	// of the wrong type.
	SetField(name string, value any) error
	// Fields returns the names of all fields that were set on this
	// mutation.
	Fields() []string
	// OldField returns the database-stored value for a field by name, for
	// update/delete mutations. Returns an error if the mutation is a
	// create, or the value hasn't been loaded.
	OldField(ctx context.Context, name string) (any, error)
}

// Query is the marker interface a query implements to give interceptors and
// privacy rules a uniform handle to attach predicates or inspect query
// state. query.Builder does not implement it.
type Query interface {
	// Type returns the name of the entity type being queried.
	Type() string
}

// Value is the result of executing a Mutator or Querier: a single entity,
// a slice of entities, a count, or any other query/mutation result.
type Value = any

// Policy groups the query and mutation rule chains of a schema, evaluated
// by the privacy layer before a query or mutation is executed.
type Policy interface {
	EvalQuery(context.Context, Query) error
	EvalMutation(context.Context, Mutation) error
}

// Op describes the type of a mutation. Its values are bit flags so a rule
// can match a family of operations (e.g. OpUpdate|OpUpdateOne) in one check.
type Op uint

// Mutation operation flags.
const (
	OpCreate Op = 1 << iota
	OpUpdate
	OpUpdateOne
	OpDelete
	OpDeleteOne
)

// Is reports whether o has all the bits of op set.
func (o Op) Is(op Op) bool {
	return o&op == op
}

// String returns the name of the operation.
func (o Op) String() string {
	switch o {
	case OpCreate:
		return "OpCreate"
	case OpUpdate:
		return "OpUpdate"
	case OpUpdateOne:
		return "OpUpdateOne"
	case OpDelete:
		return "OpDelete"
	case OpDeleteOne:
		return "OpDeleteOne"
	default:
		return "OpUnknown"
	}
}

// Config holds per-schema configuration (storage key overrides, etc.) set
// via Schema.Config.
type Config struct {
	// Table overrides the default (pluralized) table name for the schema.
	Table string
}

// Mixin is the interface implemented by reusable schema building blocks
// (see the mixin and contrib/mixin packages). A schema's Mixin method
// returns the mixins whose Fields/Edges/Indexes/Hooks/Interceptors/Policy
// are merged into the schema's own.
type Mixin interface {
	Fields() []Field
	Edges() []Edge
	Indexes() []Index
	Hooks() []Hook
	Interceptors() []Interceptor
	Policy() Policy
	Annotations() []schema.Annotation
}

// Schema is the base type every entity schema embeds. It supplies no-op
// default implementations for every optional method, so a schema only
// needs to override the methods it actually uses.
//
//	type User struct{ velox.Schema }
//
//	func (User) Fields() []velox.Field { ... }
type Schema struct{}

// Fields returns the fields of the entity. The default returns none.
func (Schema) Fields() []Field { return nil }

// Edges returns the relationships of the entity. The default returns none.
func (Schema) Edges() []Edge { return nil }

// Indexes returns the indexes of the entity. The default returns none.
func (Schema) Indexes() []Index { return nil }

// Config returns the entity's storage configuration. The default is zero.
func (Schema) Config() Config { return Config{} }

// Mixin returns the mixins composed into the entity. The default returns
// none.
func (Schema) Mixin() []Mixin { return nil }

// Hooks returns the mutation hooks registered on the entity. The default
// returns none.
func (Schema) Hooks() []Hook { return nil }

// Interceptors returns the query interceptors registered on the entity.
// The default returns none.
func (Schema) Interceptors() []Interceptor { return nil }

// Policy returns the entity's privacy policy. The default returns nil,
// meaning no restriction beyond what ambient policies impose.
func (Schema) Policy() Policy { return nil }

// Annotations returns the entity's code-generation annotations. The
// default returns none.
func (Schema) Annotations() []schema.Annotation { return nil }

// Viewer is implemented by read-only projections of an entity (views
// backed by a SQL VIEW, a derived SELECT, or a materialized aggregate)
// that carry fields and edges but no mutation surface.
type Viewer interface {
	Fields() []Field
	Edges() []Edge
}

// View is the base type a read-only entity view embeds in place of
// Schema. It behaves like Schema but its absence of a Hooks-driven
// mutation path documents, at the type level, that the entity has none.
type View struct {
	Schema
}

var _ Viewer = View{}

// queryContextKey is the context key QueryContext values are stored under.
type queryContextKey struct{}

// QueryContext carries the field-selection and pagination state threaded
// through a query's interceptor chain; it is attached with NewQueryContext.
type QueryContext struct {
	// Fields lists the columns requested by the caller, for partial-load
	// optimization. Empty means all fields.
	Fields []string
	// Limit and Offset mirror the query's pagination window, if set.
	Limit  *int
	Offset *int
}

// Clone returns a deep copy of the QueryContext, so an interceptor can
// mutate it without affecting the caller's copy.
func (qc *QueryContext) Clone() *QueryContext {
	if qc == nil {
		return nil
	}
	cloned := &QueryContext{
		Fields: append([]string(nil), qc.Fields...),
	}
	if qc.Limit != nil {
		limit := *qc.Limit
		cloned.Limit = &limit
	}
	if qc.Offset != nil {
		offset := *qc.Offset
		cloned.Offset = &offset
	}
	return cloned
}

// AppendFieldOnce returns a QueryContext with name added to Fields, unless
// it is already present.
func (qc *QueryContext) AppendFieldOnce(name string) *QueryContext {
	cloned := qc.Clone()
	for _, f := range cloned.Fields {
		if f == name {
			return cloned
		}
	}
	cloned.Fields = append(cloned.Fields, name)
	return cloned
}

// NewQueryContext returns a new context with qc attached.
func NewQueryContext(ctx context.Context, qc *QueryContext) context.Context {
	return context.WithValue(ctx, queryContextKey{}, qc)
}

// QueryFromContext retrieves the QueryContext attached to ctx, or nil if
// none was attached.
func QueryFromContext(ctx context.Context) *QueryContext {
	qc, _ := ctx.Value(queryContextKey{}).(*QueryContext)
	return qc
}
