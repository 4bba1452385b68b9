package sql

// UpdateBuilder builds an UPDATE statement with a SET list and an optional
// WHERE predicate (spec.md's batch `updateMany` operation renders through
// this builder without a primary-key predicate).
type UpdateBuilder struct {
	Builder
	table  string
	sets   []setClause
	where  *Predicate
	nullOK bool
}

type setClause struct {
	column string
	value  any
	expr   bool
}

// Update starts an UPDATE statement against table.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set adds a "column = value" assignment.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.sets = append(u.sets, setClause{column: column, value: v})
	return u
}

// Add adds a "column = column + value" assignment, used to translate
// increment/decrement update expressions.
func (u *UpdateBuilder) Add(column string, v any) *UpdateBuilder {
	u.sets = append(u.sets, setClause{column: column, value: v, expr: true})
	return u
}

// Where attaches the UPDATE's WHERE predicate.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	if p == nil {
		return u
	}
	if u.where == nil {
		u.where = p
		return u
	}
	u.where = And(u.where, p)
	return u
}

// Query renders the UPDATE statement and its parameter list.
func (u *UpdateBuilder) Query() (string, []any) {
	b := NewBuilder(u.Dialect())
	b.WriteString("UPDATE").Ident(u.table).WriteString("SET")
	for i, s := range u.sets {
		if i > 0 {
			b.Comma()
		}
		b.Ident(s.column).Pad().WriteString("=").Pad()
		if s.expr {
			b.Ident(s.column).Pad().WriteString("+").Pad().Arg(s.value)
		} else {
			b.Arg(s.value)
		}
	}
	if u.where != nil {
		b.WriteString("WHERE")
		u.where.dialect = u.Dialect()
		u.where.total = b.total
		q, args := u.where.Query()
		b.WriteString(q)
		b.args = append(b.args, args...)
	}
	return b.String(), b.args
}
