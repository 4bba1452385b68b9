// Package query implements the Q component (spec.md §4.5): assembling the
// final SQL text and parameter list for a registered entity type from a set
// of predicates and include paths, using X (querylanguage/sqlgraph.EvalP),
// J (sqlgraph.ParseIncludes/JoinClauses/SelectList) and the dialect/sql
// builder, then materialising the result with R (materialize).
//
// Unlike the teacher's generated *ent.XQuery types, a query.Builder is not
// per-entity code: one Builder, parameterised by a metadata.EntityDescriptor
// and a sqlgraph.Schema, serves every registered type (spec.md §1 "reflective,
// code-free").
package query

import (
	"context"
	"fmt"

	"github.com/veloxdb/velox"
	"github.com/veloxdb/velox/dialect"
	"github.com/veloxdb/velox/dialect/sql"
	"github.com/veloxdb/velox/dialect/sql/sqlgraph"
	"github.com/veloxdb/velox/materialize"
	"github.com/veloxdb/velox/metadata"
	"github.com/veloxdb/velox/querylanguage"
)

// MaxIncludeDepth bounds how many dotted segments an include path may carry
// before ParseIncludes rejects it (spec.md §4.4 "include paths deeper than
// the configured maximum are a usage error, not a silent truncation").
const MaxIncludeDepth = 4

type orderTerm struct {
	field string
	dir   sql.OrderDirection
}

// Builder accumulates predicates, includes and pagination for one query
// against a registered type, deferring SQL emission to Count/All/First.
type Builder struct {
	reg   *metadata.Registry
	graph *sqlgraph.Schema
	drv   dialect.ExecQuerier

	typeName string
	desc     *metadata.EntityDescriptor

	where    []querylanguage.P
	includes []string
	order    []orderTerm
	limit    *int
	offset   *int
}

// For returns a Builder that queries schemaVal's registered type, using drv
// to run the assembled SQL. drv may be a *dialect/sql.Driver, a pinned
// transaction, or any other dialect.ExecQuerier (spec.md §4.5 "the query
// builder does not itself manage connection lifetime").
func For(reg *metadata.Registry, graph *sqlgraph.Schema, drv dialect.ExecQuerier, schemaVal any) (*Builder, error) {
	desc, err := reg.DescriptorFor(schemaVal)
	if err != nil {
		return nil, err
	}
	if _, err := graph.Node(desc.Name); err != nil {
		return nil, velox.NewUsageError(fmt.Sprintf("query: %s is not present in the query graph", desc.Name))
	}
	return &Builder{reg: reg, graph: graph, drv: drv, typeName: desc.Name, desc: desc}, nil
}

// Where ANDs the given predicates onto the query's existing WHERE clause.
func (b *Builder) Where(ps ...querylanguage.P) *Builder {
	b.where = append(b.where, ps...)
	return b
}

// Include adds dotted navigation paths (e.g. "Author.Company") to eagerly
// join and select, sharing joins across paths with a common prefix
// (spec.md §4.4).
func (b *Builder) Include(paths ...string) *Builder {
	b.includes = append(b.includes, paths...)
	return b
}

// OrderBy appends an ascending ORDER BY key, by logical field name.
func (b *Builder) OrderBy(field string) *Builder {
	b.order = append(b.order, orderTerm{field: field, dir: sql.OrderAsc})
	return b
}

// OrderByDesc appends a descending ORDER BY key, by logical field name.
func (b *Builder) OrderByDesc(field string) *Builder {
	b.order = append(b.order, orderTerm{field: field, dir: sql.OrderDesc})
	return b
}

// Limit caps the number of rows a subsequent All returns.
func (b *Builder) Limit(n int) *Builder {
	b.limit = &n
	return b
}

// Offset skips the first n rows of a subsequent All.
func (b *Builder) Offset(n int) *Builder {
	b.offset = &n
	return b
}

// selector assembles the Selector for the query's base table, predicates and
// pagination, returning the include plan (nil if no includes were
// requested) so callers can extend the SELECT list and JOIN chain.
func (b *Builder) selector() (*sql.Selector, *sqlgraph.IncludePlan, error) {
	base, err := b.graph.Node(b.typeName)
	if err != nil {
		return nil, nil, err
	}

	var plan *sqlgraph.IncludePlan
	var cols []string
	if len(b.includes) > 0 {
		plan, err = b.graph.ParseIncludes(b.typeName, b.includes, MaxIncludeDepth)
		if err != nil {
			return nil, nil, velox.NewUsageError(err.Error())
		}
		cols = plan.SelectList(base)
	}

	named, ok := b.drv.(interface{ Dialect() string })
	if !ok {
		return nil, nil, velox.NewUsageError("query: driver does not expose Dialect()")
	}
	sel := sql.Dialect(named.Dialect()).Select(cols...).
		From(sql.Table(base.Table).As("t0"))

	if plan != nil {
		if err := plan.JoinClauses(b.graph, "t0", sel); err != nil {
			return nil, nil, err
		}
	}

	if len(b.where) > 0 {
		pred := b.where[0]
		if len(b.where) > 1 {
			pred = querylanguage.And(b.where...)
		}
		if err := b.graph.EvalP(b.typeName, pred, sel); err != nil {
			return nil, nil, err
		}
	}

	for _, term := range b.order {
		col, ok := b.desc.Field(term.field)
		if !ok {
			return nil, nil, velox.NewUsageError(fmt.Sprintf("query: %s has no field %q", b.typeName, term.field))
		}
		sel.OrderBy(sel.C(col.Column), term.dir)
	}
	if b.limit != nil {
		sel.Limit(*b.limit)
	}
	if b.offset != nil {
		sel.Offset(*b.offset)
	}
	return sel, plan, nil
}

// Count runs a SELECT COUNT(*) for the query's predicates, ignoring any
// Include/OrderBy/Limit/Offset the caller set.
func (b *Builder) Count(ctx context.Context) (int, error) {
	cb := *b
	cb.includes, cb.order, cb.limit, cb.offset = nil, nil, nil, nil
	sel, _, err := cb.selector()
	if err != nil {
		return 0, err
	}
	sel.Count()
	query, args := sel.Query()

	var rows sql.Rows
	if err := b.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	if !rows.Next() {
		return 0, rows.Err()
	}
	var n int
	if err := rows.Scan(&n); err != nil {
		return 0, err
	}
	return n, rows.Err()
}

// All runs the assembled query and materialises every row as a Record.
func (b *Builder) All(ctx context.Context) ([]materialize.Record, error) {
	sel, _, err := b.selector()
	if err != nil {
		return nil, err
	}
	query, args := sel.Query()

	var rows sql.Rows
	if err := b.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	return materialize.New(b.desc).Records(&rows)
}

// First runs the assembled query with an added Limit(1) and returns its
// sole Record, or nil if no row matched.
func (b *Builder) First(ctx context.Context) (materialize.Record, error) {
	one := 1
	b.limit = &one
	recs, err := b.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// Into runs the assembled query and materialises its rows into dst, a
// pointer to a slice of the caller's own struct type.
func (b *Builder) Into(ctx context.Context, dst any) error {
	sel, _, err := b.selector()
	if err != nil {
		return err
	}
	query, args := sel.Query()

	var rows sql.Rows
	if err := b.drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	return materialize.New(b.desc).Into(&rows, dst)
}
