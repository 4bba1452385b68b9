package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/veloxdb/velox/dialect"
)

// Querier wraps the two query-emission methods every builder in this
// package implements: the rendered SQL text and its ordered parameter
// list (spec.md §4.5, assembly order 1-10).
type Querier interface {
	Query() (string, []any)
}

// QuerierBuilder groups a Querier with the identifier-quoting and
// placeholder-numbering state a dialect needs while it is being built.
type QuerierBuilder interface {
	Querier
	SetDialect(string) QuerierBuilder
	SetTotal(int)
}

// OrderDirection is the direction of an ORDER BY key.
type OrderDirection string

// Ordering directions.
const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// Builder is the low-level SQL string builder shared by every higher-level
// builder in this package (Selector, InsertBuilder, UpdateBuilder,
// DeleteBuilder, Predicate, ...). It owns identifier quoting, literal
// escaping delegation and parameter placeholder numbering.
type Builder struct {
	sb      *strings.Builder
	dialect string
	args    []any
	total   *int
	errs    []string
}

// NewBuilder returns a builder bound to the given dialect.
func NewBuilder(dialectName string) *Builder {
	one := 0
	return &Builder{sb: &strings.Builder{}, dialect: dialectName, total: &one}
}

// Dialect returns the dialect bound to this builder.
func (b *Builder) Dialect() string {
	if b.dialect == "" {
		return dialect.Postgres
	}
	return b.dialect
}

// SetDialect sets the builder dialect and returns it for chaining.
func (b *Builder) SetDialect(name string) *Builder {
	b.dialect = name
	return b
}

// Quote quotes an identifier for the bound dialect, quoting each part of a
// dotted name separately and doubling the dialect's closing quote character.
func (b *Builder) Quote(ident string) string {
	return quoteIdent(b.Dialect(), ident)
}

func quoteIdent(dialectName, ident string) string {
	if ident == "" || ident == "*" {
		return ident
	}
	if strings.Contains(ident, ".") {
		parts := strings.Split(ident, ".")
		for i, p := range parts {
			parts[i] = quoteIdent(dialectName, p)
		}
		return strings.Join(parts, ".")
	}
	switch dialectName {
	case dialect.MySQL:
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	case dialect.SQLServer:
		return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
	default: // postgres, sqlite and friends use ANSI double-quotes
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	}
}

// placeholder renders the next bind-parameter placeholder for the bound
// dialect and appends v to the argument list (spec.md §4.3 "parameterise").
func (b *Builder) placeholder(v any) string {
	idx := *b.total
	*b.total++
	b.args = append(b.args, v)
	switch b.Dialect() {
	case dialect.Postgres:
		return "$" + strconv.Itoa(idx+1)
	case dialect.SQLServer:
		return "@p" + strconv.Itoa(idx)
	default: // mysql, sqlite
		return "?"
	}
}

// Arg appends a literal argument and writes its placeholder.
func (b *Builder) Arg(v any) *Builder {
	b.WriteString(b.placeholder(v))
	return b
}

// Args appends n arguments, comma-joined.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.Comma()
		}
		b.Arg(v)
	}
	return b
}

// WriteString appends raw SQL text, matching the last written rune against
// the next one so callers never need to think about spacing manually.
func (b *Builder) WriteString(s string) *Builder {
	if s == "" {
		return b
	}
	if b.sb.Len() > 0 {
		last := lastRune(b.sb.String())
		first := rune(s[0])
		if needsSpace(last, first) {
			b.sb.WriteByte(' ')
		}
	}
	b.sb.WriteString(s)
	return b
}

func lastRune(s string) rune {
	r := []rune(s)
	return r[len(r)-1]
}

func needsSpace(last, next rune) bool {
	noSpaceAfter := strings.ContainsRune("( ,.[", last)
	noSpaceBefore := strings.ContainsRune(") ,.]", next)
	return !noSpaceAfter && !noSpaceBefore
}

// Ident writes a quoted identifier.
func (b *Builder) Ident(ident string) *Builder {
	if ident == "" {
		return b
	}
	b.WriteString(b.Quote(ident))
	return b
}

// IdentComma writes a comma-separated list of quoted identifiers.
func (b *Builder) IdentComma(idents ...string) *Builder {
	for i, id := range idents {
		if i > 0 {
			b.Comma()
		}
		b.Ident(id)
	}
	return b
}

// Comma writes a comma followed by a single space.
func (b *Builder) Comma() *Builder {
	b.sb.WriteString(", ")
	return b
}

// Pad writes a single space unconditionally; used before tokens whose
// leading character would otherwise be merged with the previous token.
func (b *Builder) Pad() *Builder {
	b.sb.WriteByte(' ')
	return b
}

// Nested wraps the output of fn in parentheses.
func (b *Builder) Nested(fn func(*Builder)) *Builder {
	b.WriteString("(")
	nb := &Builder{sb: &strings.Builder{}, dialect: b.dialect, total: b.total}
	fn(nb)
	b.sb.WriteString(nb.sb.String())
	b.args = append(b.args, nb.args...)
	b.errs = append(b.errs, nb.errs...)
	b.sb.WriteString(")")
	return b
}

// Join appends the SQL/args of another builder inline (used to splice a
// Selector/Predicate built against a shared placeholder counter).
func (b *Builder) Join(q Querier) *Builder {
	query, args := q.Query()
	b.WriteString(query)
	b.args = append(b.args, args...)
	return b
}

// AddError records a builder-construction error (e.g. an invalid column
// name) to be surfaced when the statement is finally built.
func (b *Builder) AddError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err.Error())
	}
	return b
}

// Err returns all recorded construction errors joined into one error, or
// nil if none were recorded.
func (b *Builder) Err() error {
	if len(b.errs) == 0 {
		return nil
	}
	return fmt.Errorf("dialect/sql: %s", strings.Join(b.errs, "; "))
}

// String returns the accumulated SQL text.
func (b *Builder) String() string { return b.sb.String() }

// TotalArgs returns the accumulated parameter list.
func (b *Builder) TotalArgs() []any { return b.args }

// clone returns a builder that shares the placeholder counter but not the
// text buffer — used by sub-expressions (e.g. a Predicate built standalone
// then merged into a Selector's WHERE clause).
func (b *Builder) clone() *Builder {
	return &Builder{sb: &strings.Builder{}, dialect: b.dialect, total: b.total}
}

// ---------------------------------------------------------------------
// Predicate
// ---------------------------------------------------------------------

// Predicate is a boolean SQL expression fragment together with its
// operator-precedence class, used to decide when a child must be
// parenthesised inside a parent (spec.md §4.3 "Binary" precedence rules).
type Predicate struct {
	Builder
	fns  []func(*Builder)
	prec int
}

// precedence classes, lowest binds loosest.
const (
	precOr = iota
	precAnd
	precNot
	precCmp
)

// P returns an empty predicate ready to be built incrementally.
func P(fns ...func(*Builder)) *Predicate {
	return &Predicate{fns: fns, prec: precCmp}
}

func newPredicate(dialectName string, total *int) *Predicate {
	p := &Predicate{prec: precCmp}
	p.dialect = dialectName
	if total == nil {
		zero := 0
		total = &zero
	}
	p.total = total
	return p
}

// Query renders the predicate's SQL text and parameter list.
func (p *Predicate) Query() (string, []any) {
	total := p.total
	if total == nil {
		zero := 0
		total = &zero
	}
	b := &Builder{sb: &strings.Builder{}, dialect: p.dialect, total: total}
	for _, fn := range p.fns {
		fn(b)
	}
	return b.String(), b.args
}

func binary(dialectName string, total *int, op string, prec int, lhs, rhs *Predicate) *Predicate {
	p := newPredicate(dialectName, total)
	p.prec = prec
	p.fns = []func(*Builder){func(b *Builder) {
		wrapIfLower(b, lhs, prec)
		b.Pad().WriteString(op).Pad()
		wrapIfLower(b, rhs, prec)
	}}
	return p
}

// wrapIfLower parenthesises p's rendered text when its own top-level
// operator binds looser than parentPrec (spec.md §4.3 precedence rule).
func wrapIfLower(b *Builder, p *Predicate, parentPrec int) {
	p.dialect, p.total = b.dialect, b.total
	if p.prec < parentPrec {
		b.Nested(func(nb *Builder) {
			q, args := p.Query()
			nb.WriteString(q)
			nb.args = append(nb.args, args...)
		})
		return
	}
	q, args := p.Query()
	b.WriteString(q)
	b.args = append(b.args, args...)
}
