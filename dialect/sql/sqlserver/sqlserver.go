// Package sqlserver binds the dialect/sql query builder to Microsoft SQL
// Server, registering the github.com/microsoft/go-mssqldb driver and
// supplying the literal-formatting and intrinsic-function rules that the
// portable builder in dialect/sql leaves to each dialect binding (spec.md
// §4 "D" dialect binding). Identifier quoting ([name]), bind-parameter
// numbering (@p0, @p1, ...) and OFFSET/FETCH pagination already live in
// dialect/sql/builder.go and selector.go, since those are mechanical
// enough to share across every dialect binding; this package owns the
// SQL Server-specific pieces that aren't.
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/veloxdb/velox/dialect"
	dsql "github.com/veloxdb/velox/dialect/sql"
)

// driverName is the name go-mssqldb registers itself under with
// database/sql, matching dialect.SQLServer so Driver.Dialect() round-trips.
const driverName = "sqlserver"

// DSN builds a SQL Server connection string from discrete parts, the
// sqlserver:// URL form go-mssqldb's connector expects.
type DSN struct {
	Host                   string
	Port                   int
	Database               string
	User                   string
	Password               string
	ConnectionTimeout      time.Duration
	Encrypt                bool
	TrustServerCertificate bool
}

// String renders dsn as a sqlserver:// URL.
func (dsn DSN) String() string {
	host := dsn.Host
	if dsn.Port != 0 {
		host = fmt.Sprintf("%s:%d", dsn.Host, dsn.Port)
	}
	u := &strings.Builder{}
	fmt.Fprintf(u, "sqlserver://")
	if dsn.User != "" {
		fmt.Fprintf(u, "%s:%s@", dsn.User, dsn.Password)
	}
	fmt.Fprintf(u, "%s", host)
	var q []string
	if dsn.Database != "" {
		q = append(q, "database="+dsn.Database)
	}
	if dsn.ConnectionTimeout > 0 {
		q = append(q, fmt.Sprintf("connection+timeout=%d", int(dsn.ConnectionTimeout.Seconds())))
	}
	q = append(q, fmt.Sprintf("encrypt=%t", dsn.Encrypt))
	if dsn.TrustServerCertificate {
		q = append(q, "trustservercertificate=true")
	}
	if len(q) > 0 {
		fmt.Fprintf(u, "?%s", strings.Join(q, "&"))
	}
	return u.String()
}

// Open opens a SQL Server connection and wraps it in a dialect/sql.Driver,
// the same capability seam postgres/mysql/sqlite bindings return (spec.md
// §4 "D" dialect binding "one opener per supported dialect").
func Open(dsn DSN) (*dsql.Driver, error) {
	db, err := sql.Open(driverName, dsn.String())
	if err != nil {
		return nil, fmt.Errorf("sqlserver: open: %w", err)
	}
	return dsql.NewDriver(dialect.SQLServer, dsql.Conn{ExecQuerier: db}), nil
}

// OpenDB wraps an already-opened *sql.DB, the path taken when the caller
// manages the connection pool's lifetime itself (e.g. the P component's
// pool hands out net.Conn-backed *sql.DB instances it built directly).
func OpenDB(db *sql.DB) *dsql.Driver {
	return dsql.NewDriver(dialect.SQLServer, dsql.Conn{ExecQuerier: db})
}

// Now returns the SQL Server intrinsic that evaluates to the current
// session timestamp, SYSDATETIME() rather than GETDATE() for its higher
// (100ns) precision, matching time.Time's resolution more closely.
func Now() string { return "SYSDATETIME()" }

// UTCNow returns the SQL Server intrinsic for the current UTC timestamp.
func UTCNow() string { return "SYSUTCDATETIME()" }

// NewGUID returns the SQL Server intrinsic for a random uniqueidentifier,
// the default expression a uuid.UUID-typed field annotated with
// sqlschema.DefaultExpr(sqlserver.NewGUID()) would use.
func NewGUID() string { return "NEWID()" }

// FormatTime renders t the way a literal timestamp must be written when it
// cannot go through a bind parameter (e.g. inside a DEFAULT clause), using
// SQL Server's ODBC canonical datetime2 format.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05.0000000")
}

// FormatBinary renders b as a SQL Server binary literal (0x-prefixed hex),
// used the same way FormatTime is: only where a bind parameter isn't
// available.
func FormatBinary(b []byte) string {
	return fmt.Sprintf("0x%x", b)
}

// Ping verifies db's connection is reachable, surfacing SQL Server's
// distinct "login failed" and "server not found" errors without requiring
// callers to import go-mssqldb directly.
func Ping(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlserver: ping: %w", err)
	}
	return nil
}
