// Package schema implements the schema builder (the "H" component,
// spec.md §4.9): translating an EntityDescriptor family into portable
// table definitions and applying them as idempotent CREATE TABLE/INDEX
// statements. Versioned, diff-based migration (Atlas's planning/apply
// engine) is out of scope (spec.md Non-goals) — ariga.io/atlas/sql/schema
// is used only as the in-memory table/column IR, a snapshot logged before
// DDL executes, not as a live-diffing engine.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	atlasschema "ariga.io/atlas/sql/schema"

	"github.com/veloxdb/velox"
	"github.com/veloxdb/velox/dialect"
	"github.com/veloxdb/velox/dialect/sql"
	"github.com/veloxdb/velox/schema/field"
)

// Column is a portable column definition, independent of any driver's
// introspection format.
type Column struct {
	Name      string
	Type      field.Type
	Size      int64
	Nullable  bool
	Unique    bool
	Increment bool
	Default   any
	Collation string
	RawType   string // dialect-specific override, e.g. "JSONB"
}

// RawExpr marks a Column.Default value as a SQL expression to emit verbatim
// in a DEFAULT clause (e.g. a function call), rather than a literal to quote.
type RawExpr string

// Index is a portable index definition over one or more columns.
type Index struct {
	Name    string
	Columns []*Column
	Unique  bool
}

// Cascade actions usable as ForeignKey.OnDelete/OnUpdate literals.
const (
	Cascade    = "CASCADE"
	SetNull    = "SET NULL"
	Restrict   = "RESTRICT"
	SetDefault = "SET DEFAULT"
	NoAction   = "NO ACTION"
)

// ForeignKey is a portable foreign-key constraint.
type ForeignKey struct {
	Symbol     string
	Columns    []*Column
	RefTable   *Table
	RefColumns []*Column
	OnDelete   string
	OnUpdate   string
}

// Table is a portable table definition, the unit Create and ValidateDiff
// both operate on.
type Table struct {
	Name        string
	Columns     []*Column
	PrimaryKey  []*Column
	Indexes     []*Index
	ForeignKeys []*ForeignKey
}

// AddColumn appends c to t and returns t for chaining.
func (t *Table) AddColumn(c *Column) *Table {
	t.Columns = append(t.Columns, c)
	return t
}

// Column looks up a column of t by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Migrate applies Table definitions to a database by executing idempotent
// CREATE TABLE/INDEX statements directly (spec.md §4.9 "apply").
type Migrate struct {
	drv          *sql.Driver
	schemaName   string
	globalUnique bool
	log          *slog.Logger
}

// MigrateOption configures a Migrate.
type MigrateOption func(*Migrate)

// WithSchemaName scopes Create to the named database schema (Postgres
// "search_path" / MySQL database), instead of the driver's default.
func WithSchemaName(name string) MigrateOption {
	return func(m *Migrate) { m.schemaName = name }
}

// WithGlobalUniqueID records the global-unique-ID flag on the Migrate.
// Create does not read the flag: no ID ranges are reserved and the emitted
// DDL is the same whether it is set or not.
func WithGlobalUniqueID(b bool) MigrateOption {
	return func(m *Migrate) { m.globalUnique = b }
}

// NewMigrate returns a Migrate bound to drv.
func NewMigrate(drv *sql.Driver, opts ...MigrateOption) (*Migrate, error) {
	if drv == nil {
		return nil, velox.NewSchemaError("migrate: nil driver")
	}
	m := &Migrate{drv: drv, log: slog.Default().With("component", "schema")}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Create executes idempotent CREATE TABLE/INDEX statements for tables
// against the bound driver (spec.md §4.9 "apply"). Before issuing any
// statement it renders tables as an atlas schema snapshot and logs the
// snapshot's schema name and table count at debug level; the columns and
// indexes of the snapshot are not logged.
func (m *Migrate) Create(ctx context.Context, tables ...*Table) error {
	snapshot := toAtlasSchema(m.schemaName, tables)
	m.log.DebugContext(ctx, "applying schema", "schema", snapshot.Name, "tables", len(snapshot.Tables))
	return m.createInline(ctx, tables)
}

func (m *Migrate) createInline(ctx context.Context, tables []*Table) error {
	dialectName := m.drv.Dialect()
	for _, t := range tables {
		for _, stmt := range m.createTableStmts(dialectName, t) {
			if err := m.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
				return velox.NewSchemaError(fmt.Sprintf("create table %q: %v", t.Name, err))
			}
		}
		for _, idx := range t.Indexes {
			stmt := m.createIndexStmt(dialectName, t, idx)
			if err := m.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
				return velox.NewSchemaError(fmt.Sprintf("create index %q: %v", idx.Name, err))
			}
		}
	}
	return nil
}

// createTableStmts renders an idempotent CREATE TABLE for t, using the
// dialect's own "IF NOT EXISTS" support (SQL Server has none, so it is
// guarded by a catalog check instead).
func (m *Migrate) createTableStmts(dialectName string, t *Table) []string {
	b := sql.NewBuilder(dialectName)
	b.WriteString("CREATE TABLE")
	if dialectName != dialect.SQLServer {
		b.WriteString("IF NOT EXISTS")
	}
	b.Ident(m.qualify(t.Name)).WriteString("(")
	for i, c := range t.Columns {
		if i > 0 {
			b.Comma()
		}
		b.Ident(c.Name).Pad().WriteString(columnType(dialectName, c))
		if !c.Nullable {
			b.Pad().WriteString("NOT NULL")
		}
		if c.Increment {
			b.Pad().WriteString(autoIncrementClause(dialectName))
		}
		if c.Unique {
			b.Pad().WriteString("UNIQUE")
		}
		if c.Default != nil {
			b.Pad().WriteString("DEFAULT").Pad().WriteString(defaultLiteral(c.Default))
		}
	}
	if len(t.PrimaryKey) > 0 {
		b.Comma().WriteString("PRIMARY KEY").WriteString("(")
		names := make([]string, len(t.PrimaryKey))
		for i, c := range t.PrimaryKey {
			names[i] = c.Name
		}
		b.IdentComma(names...)
		b.WriteString(")")
	}
	for _, fk := range t.ForeignKeys {
		b.Comma().WriteString(foreignKeyClause(fk))
	}
	b.WriteString(")")

	stmt := b.String()
	if dialectName == dialect.SQLServer {
		return []string{sqlServerGuardedCreate(m.qualify(t.Name), stmt)}
	}
	return []string{stmt}
}

// defaultLiteral renders v for a DDL DEFAULT clause: a RawExpr is written
// verbatim, a string is single-quoted, everything else uses its natural
// textual form.
func defaultLiteral(v any) string {
	switch d := v.(type) {
	case RawExpr:
		return string(d)
	case string:
		return "'" + strings.ReplaceAll(d, "'", "''") + "'"
	case bool:
		if d {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", d)
	}
}

func (m *Migrate) createIndexStmt(dialectName string, t *Table, idx *Index) string {
	b := sql.NewBuilder(dialectName)
	b.WriteString("CREATE")
	if idx.Unique {
		b.WriteString("UNIQUE")
	}
	b.WriteString("INDEX")
	if dialectName != dialect.SQLServer {
		b.WriteString("IF NOT EXISTS")
	}
	b.Ident(idx.Name).WriteString("ON").Ident(m.qualify(t.Name)).WriteString("(")
	names := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		names[i] = c.Name
	}
	b.IdentComma(names...)
	b.WriteString(")")
	if dialectName == dialect.SQLServer {
		return fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'%s' AND object_id = OBJECT_ID(N'%s')) %s",
			strings.ReplaceAll(idx.Name, "'", "''"), strings.ReplaceAll(m.qualify(t.Name), "'", "''"), b.String())
	}
	return b.String()
}

func (m *Migrate) qualify(table string) string {
	if m.schemaName == "" {
		return table
	}
	return m.schemaName + "." + table
}

func sqlServerGuardedCreate(table, createStmt string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "IF OBJECT_ID(N'%s', N'U') IS NULL %s", table, createStmt)
	return sb.String()
}

func autoIncrementClause(dialectName string) string {
	switch dialectName {
	case dialect.MySQL:
		return "AUTO_INCREMENT"
	case dialect.Postgres:
		return "" // callers are expected to use a SERIAL/IDENTITY column type instead
	case dialect.SQLServer:
		return "IDENTITY(1,1)"
	default: // sqlite
		return "" // INTEGER PRIMARY KEY is implicitly ROWID/AUTOINCREMENT-like
	}
}

func foreignKeyClause(fk *ForeignKey) string {
	cols := make([]string, len(fk.Columns))
	for i, c := range fk.Columns {
		cols[i] = c.Name
	}
	refCols := make([]string, len(fk.RefColumns))
	for i, c := range fk.RefColumns {
		refCols[i] = c.Name
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "FOREIGN KEY (%s) REFERENCES %s (%s)",
		strings.Join(cols, ", "), fk.RefTable.Name, strings.Join(refCols, ", "))
	if fk.OnDelete != "" {
		fmt.Fprintf(&sb, " ON DELETE %s", fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		fmt.Fprintf(&sb, " ON UPDATE %s", fk.OnUpdate)
	}
	return sb.String()
}

// columnType maps a portable Column to its dialect-specific SQL type
// literal (spec.md §4.2 "V" type mapping, specialised here for DDL rather
// than value conversion).
func columnType(dialectName string, c *Column) string {
	if c.RawType != "" {
		return c.RawType
	}
	switch c.Type {
	case field.TypeBool:
		if dialectName == dialect.SQLServer {
			return "bit"
		}
		return "boolean"
	case field.TypeTime:
		switch dialectName {
		case dialect.MySQL:
			return "datetime"
		case dialect.SQLServer:
			return "datetime2"
		default:
			return "timestamp"
		}
	case field.TypeUUID:
		switch dialectName {
		case dialect.Postgres:
			return "uuid"
		case dialect.SQLServer:
			return "uniqueidentifier"
		default:
			return "char(36)"
		}
	case field.TypeJSON:
		if dialectName == dialect.Postgres {
			return "jsonb"
		}
		return "json"
	case field.TypeBytes:
		switch dialectName {
		case dialect.Postgres:
			return "bytea"
		case dialect.SQLServer:
			return "varbinary(max)"
		default:
			return "blob"
		}
	case field.TypeEnum:
		return sizedString(dialectName, c, 255)
	case field.TypeString:
		return sizedString(dialectName, c, 255)
	case field.TypeInt8, field.TypeUint8, field.TypeInt16, field.TypeUint16:
		return "smallint"
	case field.TypeInt32, field.TypeUint32, field.TypeInt, field.TypeUint:
		return "int"
	case field.TypeInt64, field.TypeUint64:
		return "bigint"
	case field.TypeFloat32:
		return "real"
	case field.TypeFloat64:
		return "double precision"
	default:
		return "text"
	}
}

func sizedString(dialectName string, c *Column, defaultSize int64) string {
	size := c.Size
	if size <= 0 {
		size = defaultSize
	}
	if dialectName == dialect.SQLServer {
		return fmt.Sprintf("nvarchar(%d)", size)
	}
	return fmt.Sprintf("varchar(%d)", size)
}

func toAtlasSchema(name string, tables []*Table) *atlasschema.Schema {
	s := &atlasschema.Schema{Name: name}
	for _, t := range tables {
		at := &atlasschema.Table{Name: t.Name, Schema: s}
		for _, c := range t.Columns {
			at.Columns = append(at.Columns, &atlasschema.Column{
				Name: c.Name,
				Type: &atlasschema.ColumnType{Raw: columnType("", c), Null: c.Nullable},
			})
		}
		s.Tables = append(s.Tables, at)
	}
	return s
}
