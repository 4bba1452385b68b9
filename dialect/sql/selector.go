package sql

import (
	"strconv"
	"strings"
)

// joinClause is one JOIN entry accumulated on a Selector.
type joinClause struct {
	kind string // "JOIN", "LEFT JOIN", "RIGHT JOIN"
	view TableView
	on   *Predicate
}

// cteClause is a WITH-clause entry (spec.md §4.5 step 1).
type cteClause struct {
	name string
	sel  *Selector
}

// setOpClause is a UNION/UNION ALL/INTERSECT/EXCEPT entry (step 10).
type setOpClause struct {
	op  string
	sel *Selector
}

type orderClause struct {
	column string
	dir    OrderDirection
}

// Selector builds a SELECT statement following the ten-step assembly order
// from spec.md §4.5: WITH, SELECT [DISTINCT], FROM, JOIN, WHERE, GROUP BY,
// HAVING, ORDER BY, pagination (OFFSET/FETCH or cursor), then set operations.
type Selector struct {
	Builder
	ctes       []cteClause
	distinct   bool
	selection  []string
	rawSel     []func(*Builder)
	from       TableView
	joins      []joinClause
	where      *Predicate
	groupBy    []string
	having     *Predicate
	order      []orderClause
	offset     *int
	limit      *int
	cursorCol  string
	cursorVal  any
	cursorSize int
	lock       string
	setOps     []setOpClause
}

// Select returns a new Selector projecting the given columns (or "*" when
// none are given), bound to the default dialect. Chain Dialect/SetDialect
// to target a specific one.
func Select(columns ...string) *Selector {
	s := &Selector{selection: columns}
	return s
}

// Dialect returns a DialectBuilder whose statements are bound to dialectName, the entry point
// documented for `sql.Dialect(dialect.Postgres).Select(...)`-style usage.
func Dialect(dialectName string) *DialectBuilder {
	return &DialectBuilder{dialectName: dialectName}
}

// DialectBuilder is the dialect-scoped entry point returned by Dialect.
type DialectBuilder struct {
	dialectName string
}

// Select starts a SELECT statement bound to this dialect.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	s := Select(columns...)
	s.SetDialect(d.dialectName)
	return s
}

// Insert starts an INSERT statement bound to this dialect.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	ib := Insert(table)
	ib.SetDialect(d.dialectName)
	return ib
}

// Update starts an UPDATE statement bound to this dialect.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	ub := Update(table)
	ub.SetDialect(d.dialectName)
	return ub
}

// Delete starts a DELETE statement bound to this dialect.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	db := Delete(table)
	db.SetDialect(d.dialectName)
	return db
}

// SetDialect overrides the dialect on an already-built Selector. It sets
// only the selector's own dialect; Query hands it to the WHERE, HAVING, JOIN,
// CTE and set-operation clauses when it renders them.
func (s *Selector) SetDialect(name string) *Selector {
	s.Builder.SetDialect(name)
	return s
}

// Distinct marks the selection DISTINCT.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// From sets the table (or derived subquery) this selector reads from.
func (s *Selector) From(view TableView) *Selector {
	s.from = view
	return s
}

// C qualifies a bare column name with the current FROM table's alias/name,
// e.g. C("id") -> "users.id" when the table is named "users". Already
// dotted or aggregate expressions are returned unchanged.
func (s *Selector) C(column string) string {
	if column == "" {
		return column
	}
	for _, c := range column {
		if c == '.' || c == '(' {
			return column
		}
	}
	if t, ok := s.from.(*TableBuilder); ok {
		return t.Name() + "." + column
	}
	if t, ok := s.from.(*SelectTable); ok && t.alias != "" {
		return t.alias + "." + column
	}
	return column
}

// TableName returns the current FROM table's name/alias, used by callers
// assembling raw join conditions.
func (s *Selector) TableName() string {
	if s.from == nil {
		return ""
	}
	switch t := s.from.(type) {
	case *TableBuilder:
		return t.Name()
	case *SelectTable:
		return t.alias
	}
	return ""
}

func (s *Selector) join(kind string, view TableView) *Selector {
	s.joins = append(s.joins, joinClause{kind: kind, view: view})
	return s
}

// Join appends an INNER JOIN.
func (s *Selector) Join(view TableView) *Selector { return s.join("JOIN", view) }

// LeftJoin appends a LEFT JOIN.
func (s *Selector) LeftJoin(view TableView) *Selector { return s.join("LEFT JOIN", view) }

// RightJoin appends a RIGHT JOIN.
func (s *Selector) RightJoin(view TableView) *Selector { return s.join("RIGHT JOIN", view) }

// On attaches the ON condition to the most recently added join, as a plain
// "left = right" column equality (the common case); use OnP for an
// arbitrary predicate.
func (s *Selector) On(left, right string) *Selector {
	if len(s.joins) == 0 {
		return s
	}
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(b *Builder) {
		b.Ident(left).Pad().WriteString("=").Pad().Ident(right)
	}}
	s.joins[len(s.joins)-1].on = p
	return s
}

// OnP attaches an arbitrary predicate as the most recent join's condition.
func (s *Selector) OnP(p *Predicate) *Selector {
	if len(s.joins) == 0 {
		return s
	}
	s.joins[len(s.joins)-1].on = p
	return s
}

// Where attaches (AND-combining with any existing) a WHERE predicate.
func (s *Selector) Where(p *Predicate) *Selector {
	if p == nil {
		return s
	}
	if s.where == nil {
		s.where = p
		return s
	}
	s.where = And(s.where, p)
	return s
}

// GroupBy sets the GROUP BY column list.
func (s *Selector) GroupBy(columns ...string) *Selector {
	s.groupBy = append(s.groupBy, columns...)
	return s
}

// Having attaches the HAVING predicate, applicable only alongside GroupBy.
func (s *Selector) Having(p *Predicate) *Selector {
	s.having = p
	return s
}

// OrderBy appends an ORDER BY key; dir defaults to OrderAsc when omitted.
func (s *Selector) OrderBy(column string, dir ...OrderDirection) *Selector {
	d := OrderAsc
	if len(dir) > 0 {
		d = dir[0]
	}
	s.order = append(s.order, orderClause{column: column, dir: d})
	return s
}

// Offset sets the number of rows to skip (spec.md §4.5 pagination step).
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// Limit sets the maximum number of rows to return.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Cursor requests keyset pagination: rows strictly after afterValue in
// column's current ORDER BY direction, capped at size rows. Cursor and
// Offset/Limit are mutually exclusive; Cursor wins if both are set.
func (s *Selector) Cursor(column string, afterValue any, size int) *Selector {
	s.cursorCol = column
	s.cursorVal = afterValue
	s.cursorSize = size
	return s
}

// ForUpdate appends a pessimistic row-lock clause (spec.md external
// interfaces, explicit-lock escape hatch).
func (s *Selector) ForUpdate() *Selector {
	s.lock = "FOR UPDATE"
	return s
}

// ForShare appends a shared row-lock clause.
func (s *Selector) ForShare() *Selector {
	s.lock = "FOR SHARE"
	return s
}

// With prepends a named CTE (spec.md §4.5 step 1 "WITH").
func (s *Selector) With(name string, sub *Selector) *Selector {
	s.ctes = append(s.ctes, cteClause{name: name, sel: sub})
	return s
}

// Union appends sub as a UNION branch (spec.md §4.5 step 10).
func (s *Selector) Union(sub *Selector) *Selector {
	s.setOps = append(s.setOps, setOpClause{op: "UNION", sel: sub})
	return s
}

// UnionAll appends sub as a UNION ALL branch.
func (s *Selector) UnionAll(sub *Selector) *Selector {
	s.setOps = append(s.setOps, setOpClause{op: "UNION ALL", sel: sub})
	return s
}

// Intersect appends sub as an INTERSECT branch.
func (s *Selector) Intersect(sub *Selector) *Selector {
	s.setOps = append(s.setOps, setOpClause{op: "INTERSECT", sel: sub})
	return s
}

// Except appends sub as an EXCEPT branch.
func (s *Selector) Except(sub *Selector) *Selector {
	s.setOps = append(s.setOps, setOpClause{op: "EXCEPT", sel: sub})
	return s
}

// Count rewrites the projection to COUNT(*) AS count, leaving FROM/JOIN/
// WHERE untouched — the standard aggregate convenience the query builder
// (Q) exposes for Count().
func (s *Selector) Count(column ...string) *Selector {
	col := "*"
	if len(column) > 0 && column[0] != "" {
		col = s.C(column[0])
	}
	s.selection = []string{"COUNT(" + col + ") AS count"}
	return s
}

// Query renders the full SELECT statement and its ordered parameter list,
// propagating the selector's dialect/placeholder counter to every clause so
// numbering stays contiguous across WHERE, HAVING and set operations.
func (s *Selector) Query() (string, []any) {
	one := 0
	return s.queryTotal(&one)
}

// queryTotal renders the SELECT statement sharing total with the caller, so
// a Selector embedded as a subquery (EXISTS/IN) keeps placeholder numbering
// contiguous with its parent statement.
func (s *Selector) queryTotal(total *int) (string, []any) {
	b := &Builder{sb: &strings.Builder{}, dialect: s.Dialect(), total: total}
	s.propagate(b)

	if len(s.ctes) > 0 {
		b.WriteString("WITH")
		for i, c := range s.ctes {
			if i > 0 {
				b.Comma()
			}
			c.sel.SetDialect(s.Dialect())
			cb := &Builder{sb: b.sb, dialect: b.dialect, total: b.total}
			cb.Ident(c.name).Pad().WriteString("AS")
			cb.Nested(func(nb *Builder) {
				q, args := c.sel.queryTotal(nb.total)
				nb.WriteString(q)
				nb.args = append(nb.args, args...)
			})
			b.args = append(b.args, cb.args...)
		}
	}

	b.WriteString("SELECT")
	if s.distinct {
		b.WriteString("DISTINCT")
	}
	cols := s.selection
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	for i, c := range cols {
		if i > 0 {
			b.Comma()
		}
		if isExpr(c) {
			b.WriteString(c)
		} else {
			b.Ident(c)
		}
	}

	if s.from != nil {
		b.WriteString("FROM")
		s.writeView(b, s.from)
	}

	for _, j := range s.joins {
		b.WriteString(j.kind)
		s.writeView(b, j.view)
		if j.on != nil {
			b.WriteString("ON")
			j.on.dialect = s.Dialect()
			j.on.total = b.total
			q, args := j.on.Query()
			b.WriteString(q)
			b.args = append(b.args, args...)
		}
	}

	if s.where != nil {
		b.WriteString("WHERE")
		s.where.dialect = s.Dialect()
		s.where.total = b.total
		q, args := s.where.Query()
		b.WriteString(q)
		b.args = append(b.args, args...)
	}

	if len(s.groupBy) > 0 {
		b.WriteString("GROUP BY")
		b.IdentComma(s.groupBy...)
	}

	if s.having != nil {
		b.WriteString("HAVING")
		s.having.dialect = s.Dialect()
		s.having.total = b.total
		q, args := s.having.Query()
		b.WriteString(q)
		b.args = append(b.args, args...)
	}

	if len(s.order) > 0 {
		b.WriteString("ORDER BY")
		for i, o := range s.order {
			if i > 0 {
				b.Comma()
			}
			b.Ident(o.column).Pad().WriteString(string(o.dir))
		}
	}

	s.writePagination(b)

	if s.lock != "" {
		b.WriteString(s.lock)
	}

	for _, so := range s.setOps {
		b.WriteString(so.op)
		so.sel.SetDialect(s.Dialect())
		q, args := so.sel.queryTotal(b.total)
		b.WriteString(q)
		b.args = append(b.args, args...)
	}

	return b.String(), b.args
}

// propagate ensures sub-selectors/predicates embedded before Query was ever
// called inherit this selector's dialect.
func (s *Selector) propagate(b *Builder) {
	if s.where != nil {
		s.where.dialect = b.Dialect()
	}
}

func (s *Selector) writeView(b *Builder, view TableView) {
	switch t := view.(type) {
	case *TableBuilder:
		t.SetDialect(b.Dialect())
	case *SelectTable:
		t.sel.SetDialect(b.Dialect())
	}
	q, args := view.Query()
	b.WriteString(q)
	b.args = append(b.args, args...)
}

// writePagination emits either cursor keyset pagination or classic
// OFFSET/FETCH pagination, dialect-aware (SQL Server uses OFFSET ... ROWS
// FETCH NEXT ... ROWS ONLY, per spec.md §8 S5).
func (s *Selector) writePagination(b *Builder) {
	if s.cursorCol != "" {
		dir := OrderAsc
		for _, o := range s.order {
			if o.column == s.cursorCol {
				dir = o.dir
				break
			}
		}
		op := ">"
		if dir == OrderDesc {
			op = "<"
		}
		cursorPred := GT(s.C(s.cursorCol), s.cursorVal)
		if op == "<" {
			cursorPred = LT(s.C(s.cursorCol), s.cursorVal)
		}
		if s.where == nil {
			b.WriteString("WHERE")
		} else {
			b.WriteString("AND")
		}
		cursorPred.dialect = b.Dialect()
		cursorPred.total = b.total
		q, args := cursorPred.Query()
		b.WriteString(q)
		b.args = append(b.args, args...)
		if s.cursorSize > 0 {
			b.WriteString("LIMIT")
			b.WriteString(strconv.Itoa(s.cursorSize))
		}
		return
	}
	if s.offset == nil && s.limit == nil {
		return
	}
	switch s.Dialect() {
	case "sqlserver":
		off := 0
		if s.offset != nil {
			off = *s.offset
		}
		b.WriteString("OFFSET")
		b.WriteString(strconv.Itoa(off))
		b.WriteString("ROWS")
		if s.limit != nil {
			b.WriteString("FETCH NEXT")
			b.WriteString(strconv.Itoa(*s.limit))
			b.WriteString("ROWS ONLY")
		}
	default:
		if s.limit != nil {
			b.WriteString("LIMIT")
			b.WriteString(strconv.Itoa(*s.limit))
		}
		if s.offset != nil {
			b.WriteString("OFFSET")
			b.WriteString(strconv.Itoa(*s.offset))
		}
	}
}

// isExpr reports whether col is a raw SQL fragment (function call, alias,
// wildcard) rather than a bare identifier that should be quoted.
func isExpr(col string) bool {
	if col == "*" {
		return true
	}
	for _, c := range col {
		if c == '(' || c == ' ' {
			return true
		}
	}
	return false
}
