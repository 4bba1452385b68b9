package sql

// TableView is implemented by anything that can appear after FROM/JOIN: a
// bare table name, an aliased table, or a derived subquery.
type TableView interface {
	view()
}

// TableBuilder represents a table reference, optionally aliased, used as
// the target of a Selector's FROM/JOIN clauses or of an Insert/Update/
// Delete statement.
type TableBuilder struct {
	Builder
	name  string
	alias string
	schema string
}

// Table returns a new table reference for name.
func Table(name string) *TableBuilder {
	return &TableBuilder{name: name}
}

// Schema sets the table's schema/database qualifier.
func (t *TableBuilder) Schema(name string) *TableBuilder {
	t.schema = name
	return t
}

// As aliases the table, e.g. `users AS u`.
func (t *TableBuilder) As(alias string) *TableBuilder {
	t.alias = alias
	return t
}

// Name returns the table's alias if set, otherwise its base name. This is
// the identifier other clauses should qualify columns with.
func (t *TableBuilder) Name() string {
	if t.alias != "" {
		return t.alias
	}
	return t.name
}

func (*TableBuilder) view() {}

// Query renders the table reference as it appears after FROM/JOIN.
func (t *TableBuilder) Query() (string, []any) {
	full := t.name
	if t.schema != "" {
		full = t.schema + "." + t.name
	}
	nb := NewBuilder(t.Dialect())
	nb.Ident(full)
	if t.alias != "" {
		nb.Pad().WriteString("AS").Pad().Ident(t.alias)
	}
	return nb.String(), nil
}

// SelectTable is a derived-table (subquery) view, e.g. JOIN (SELECT ...) AS s.
type SelectTable struct {
	sel   *Selector
	alias string
}

func (*SelectTable) view() {}

// As aliases the derived table.
func (s *SelectTable) As(alias string) *SelectTable {
	s.alias = alias
	return s
}

func (s *SelectTable) Query() (string, []any) {
	nb := NewBuilder(s.sel.Dialect())
	nb.Nested(func(b *Builder) {
		q, args := s.sel.Query()
		b.WriteString(q)
		b.args = append(b.args, args...)
	})
	if s.alias != "" {
		nb.Pad().WriteString("AS").Pad().Ident(s.alias)
	}
	return nb.String(), nb.args
}
