package sql

// DeleteBuilder builds a DELETE statement. spec.md's batch `delete`
// operation renders through this builder without a primary-key predicate.
type DeleteBuilder struct {
	Builder
	table string
	where *Predicate
}

// Delete starts a DELETE statement against table.
func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// Where attaches the DELETE's WHERE predicate.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	if p == nil {
		return d
	}
	if d.where == nil {
		d.where = p
		return d
	}
	d.where = And(d.where, p)
	return d
}

// Query renders the DELETE statement and its parameter list.
func (d *DeleteBuilder) Query() (string, []any) {
	b := NewBuilder(d.Dialect())
	b.WriteString("DELETE FROM").Ident(d.table)
	if d.where != nil {
		b.WriteString("WHERE")
		d.where.dialect = d.Dialect()
		d.where.total = b.total
		q, args := d.where.Query()
		b.WriteString(q)
		b.args = append(b.args, args...)
	}
	return b.String(), b.args
}
