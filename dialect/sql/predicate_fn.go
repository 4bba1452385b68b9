package sql

import (
	"fmt"

	"golang.org/x/text/cases"
)

// foldCaser performs the Unicode-correct case fold ContainsFold/EqualFold
// apply to the bound value before comparing it against a SQL LOWER(column)
// - cases.Fold is locale-independent, matching SQL's own locale-independent
// LOWER() more closely than a simple strings.ToLower would.
var foldCaser = cases.Fold()

// This file implements the comparison/combinator predicate constructors
// documented in dialect/sql/doc.go and consumed by the generic Field*
// wrappers in predicate.go. Each constructor returns a *Predicate whose
// dialect/placeholder-counter are bound lazily when it is attached to a
// Selector (or another Predicate) via Where/And/Or, mirroring how ent's
// sql.P predicates are dialect-agnostic until rendered.

func cmp(op string, column string, v any) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(b *Builder) {
		b.Ident(column).Pad().WriteString(op).Pad().Arg(v)
	}}
	return p
}

// EQ returns a "column = value" predicate. A nil value is automatically
// rewritten to IS NULL per spec.md §4.3's null-comparison rule.
func EQ(column string, v any) *Predicate {
	if v == nil {
		return IsNull(column)
	}
	return cmp("=", column, v)
}

// NEQ returns a "column <> value" predicate (IS NOT NULL when v is nil).
func NEQ(column string, v any) *Predicate {
	if v == nil {
		return NotNull(column)
	}
	return cmp("<>", column, v)
}

// GT returns a "column > value" predicate.
func GT(column string, v any) *Predicate { return cmp(">", column, v) }

// GTE returns a "column >= value" predicate.
func GTE(column string, v any) *Predicate { return cmp(">=", column, v) }

// LT returns a "column < value" predicate.
func LT(column string, v any) *Predicate { return cmp("<", column, v) }

// LTE returns a "column <= value" predicate.
func LTE(column string, v any) *Predicate { return cmp("<=", column, v) }

// IsNull returns a "column IS NULL" predicate.
func IsNull(column string) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(b *Builder) {
		b.Ident(column).Pad().WriteString("IS NULL")
	}}
	return p
}

// NotNull returns a "column IS NOT NULL" predicate.
func NotNull(column string) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(b *Builder) {
		b.Ident(column).Pad().WriteString("IS NOT NULL")
	}}
	return p
}

// In returns a "column IN (v0, v1, ...)" predicate. An empty vs renders a
// predicate that is always false (1 = 0), matching SQL's empty-IN semantics.
func In(column string, vs ...any) *Predicate {
	p := P()
	p.prec = precCmp
	if len(vs) == 0 {
		p.fns = []func(*Builder){func(b *Builder) { b.WriteString("1 = 0") }}
		return p
	}
	p.fns = []func(*Builder){func(b *Builder) {
		b.Ident(column).Pad().WriteString("IN").Pad()
		b.Nested(func(nb *Builder) { nb.Args(vs...) })
	}}
	return p
}

// NotIn returns a "column NOT IN (...)" predicate.
func NotIn(column string, vs ...any) *Predicate {
	p := P()
	p.prec = precCmp
	if len(vs) == 0 {
		p.fns = []func(*Builder){func(b *Builder) { b.WriteString("1 = 1") }}
		return p
	}
	p.fns = []func(*Builder){func(b *Builder) {
		b.Ident(column).Pad().WriteString("NOT IN").Pad()
		b.Nested(func(nb *Builder) { nb.Args(vs...) })
	}}
	return p
}

// like renders a LIKE predicate. On SQL Server the wildcards are joined to
// the bound value with string concatenation, e.g. `[col] LIKE '%' + @p0 +
// '%'`; other dialects bind the whole pattern, wildcards included, as one
// parameter (`"col" LIKE $1` with "%v%").
func like(column, prefix, suffix string, v any) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(b *Builder) {
		b.Ident(column).Pad().WriteString("LIKE").Pad()
		if b.Dialect() != "sqlserver" {
			b.Arg(prefix + fmt.Sprint(v) + suffix)
			return
		}
		parts := make([]string, 0, 3)
		if prefix != "" {
			parts = append(parts, quotedLit(b.Dialect(), prefix))
		}
		switch b.Dialect() {
		default:
			placeholder := b.placeholder(v)
			parts = append(parts, placeholder)
		}
		if suffix != "" {
			parts = append(parts, quotedLit(b.Dialect(), suffix))
		}
		b.WriteString(concatJoin(b.Dialect(), parts))
	}}
	return p
}

func quotedLit(dialectName, s string) string { return "'" + s + "'" }

func concatJoin(dialectName string, parts []string) string {
	sep := " + "
	if len(parts) == 1 {
		return parts[0]
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

// Contains returns a "column LIKE '%value%'" predicate.
func Contains(column string, v any) *Predicate { return like(column, "%", "%", v) }

// HasPrefix returns a "column LIKE 'value%'" predicate.
func HasPrefix(column string, v any) *Predicate { return like(column, "", "%", v) }

// HasSuffix returns a "column LIKE '%value'" predicate.
func HasSuffix(column string, v any) *Predicate { return like(column, "%", "", v) }

// ContainsFold is Contains applied to the case-folded form of column and v.
// v is folded in Go (golang.org/x/text/cases) before binding; column is
// folded in SQL with LOWER(), the two together giving a closer match to
// Unicode case-insensitivity than LOWER() alone on both sides.
func ContainsFold(column string, v any) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(b *Builder) {
		b.WriteString("LOWER(").Ident(column).WriteString(")").Pad().WriteString("LIKE").Pad()
		if b.Dialect() != "sqlserver" {
			b.Arg("%" + fmt.Sprint(foldValue(v)) + "%")
			return
		}
		b.WriteString("'%' +").Pad().Arg(foldValue(v)).Pad().WriteString("+ '%'")
	}}
	return p
}

// EqualFold is EQ applied to the case-folded form of column and v.
func EqualFold(column string, v any) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(b *Builder) {
		b.WriteString("LOWER(").Ident(column).WriteString(")").Pad().WriteString("=").Pad().Arg(foldValue(v))
	}}
	return p
}

// foldValue case-folds v when it is a string, leaving other value types
// untouched.
func foldValue(v any) any {
	if s, ok := v.(string); ok {
		return foldCaser.String(s)
	}
	return v
}

// And combines predicates with AND, short-circuiting to the sole predicate
// when only one is given.
func And(ps ...*Predicate) *Predicate {
	return combine("AND", precAnd, ps)
}

// Or combines predicates with OR.
func Or(ps ...*Predicate) *Predicate {
	return combine("OR", precOr, ps)
}

func combine(op string, prec int, ps []*Predicate) *Predicate {
	ps = nonNil(ps)
	if len(ps) == 0 {
		return P()
	}
	if len(ps) == 1 {
		return ps[0]
	}
	acc := ps[0]
	for _, next := range ps[1:] {
		lhs, rhs := acc, next
		combined := &Predicate{prec: prec}
		combined.fns = []func(*Builder){func(b *Builder) {
			wrapIfLower(b, lhs, prec)
			b.Pad().WriteString(op).Pad()
			wrapIfLower(b, rhs, prec)
		}}
		acc = combined
	}
	return acc
}

func nonNil(ps []*Predicate) []*Predicate {
	out := ps[:0:0]
	for _, p := range ps {
		if p != nil && len(p.fns) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Not negates a predicate, parenthesising it when needed.
func Not(p *Predicate) *Predicate {
	out := &Predicate{prec: precNot}
	out.fns = []func(*Builder){func(b *Builder) {
		b.WriteString("NOT")
		b.Nested(func(nb *Builder) {
			p.dialect, p.total = nb.dialect, nb.total
			q, args := p.Query()
			nb.WriteString(q)
			nb.args = append(nb.args, args...)
		})
	}}
	return out
}

// Raw embeds a raw SQL fragment as a predicate (used for raw WHERE
// overrides, spec.md §4.5 step 5).
func Raw(sql string) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(b *Builder) { b.WriteString(sql) }}
	return p
}

// ColumnsEQ returns an "a = b" predicate comparing two columns directly,
// with no bind parameter — used when translating a field-to-field
// comparison (spec.md's cross-field predicate form).
func ColumnsEQ(a, b string) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(bd *Builder) {
		bd.Ident(a).Pad().WriteString("=").Pad().Ident(b)
	}}
	return p
}

// embedSub renders sub into bd, reusing bd's placeholder counter so a
// subquery's bind parameters continue the parent statement's numbering
// (important for dialects like Postgres whose placeholders are positional).
func embedSub(bd *Builder, sub Querier) {
	if sel, ok := sub.(*Selector); ok {
		q, args := sel.queryTotal(bd.total)
		bd.WriteString(q)
		bd.args = append(bd.args, args...)
		return
	}
	bd.Join(sub)
}

// ExistsP returns an "EXISTS (subquery)" predicate.
func ExistsP(sub Querier) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(bd *Builder) {
		bd.WriteString("EXISTS")
		bd.Nested(func(nb *Builder) { embedSub(nb, sub) })
	}}
	return p
}

// InSub returns a "column IN (subquery)" predicate.
func InSub(column string, sub Querier) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(bd *Builder) {
		bd.Ident(column).Pad().WriteString("IN").Pad()
		bd.Nested(func(nb *Builder) { embedSub(nb, sub) })
	}}
	return p
}

// ExprP wraps an arbitrary column expression ("col1 + col2") together with
// a comparison operator and value — used by the update-expression
// translator for right-hand sides like `salary = salary + 1000`.
func ExprP(expr, op string, v any) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(b *Builder) {
		b.WriteString(expr).Pad().WriteString(op).Pad().Arg(v)
	}}
	return p
}
