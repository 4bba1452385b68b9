package dialect

import "context"

// Dialect name constants understood across the engine. A dialect binding
// (package D in the design, §4 "Dialect binding") registers itself under
// one of these names and the core consults them to select escaping,
// pagination and literal-formatting rules.
const (
	MySQL     = "mysql"
	Postgres  = "postgres"
	SQLite    = "sqlite3"
	SQLServer = "sqlserver"
)

// Driver is the interface every dialect binding must satisfy. It is the
// capability seam the query builder, translator and schema builder are
// written against; nothing above this package knows about a concrete
// database/sql driver.
type Driver interface {
	// Exec executes a non-row-returning statement. args must be a []any,
	// v may be nil or a *Result-shaped pointer the driver understands.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a row-returning statement, scanning the driver-native
	// row set into v (a *Rows-shaped pointer).
	Query(ctx context.Context, query string, args, v any) error
	// Tx starts a new transaction bound to this driver's connection.
	Tx(ctx context.Context) (Tx, error)
	// Close releases all resources held by the driver.
	Close() error
	// Dialect returns one of the dialect name constants above.
	Dialect() string
}

// Tx is a Driver that is additionally scoped to a transaction.
type Tx interface {
	Driver
	// Commit commits the transaction. It is a terminal operation: once
	// called (successfully or not) the Tx must not be reused.
	Commit() error
	// Rollback aborts the transaction. Terminal, see Commit.
	Rollback() error
}

// ExecQuerier is implemented by both Driver and Tx; code that only needs to
// run statements (not manage the connection or transaction lifecycle)
// should depend on this narrower interface.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// WithTx runs fn within a transaction started on drv, committing on success
// and rolling back if fn returns an error or panics.
func WithTx(ctx context.Context, drv Driver, fn func(Tx) error) (rerr error) {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr2 := tx.Rollback(); rerr2 != nil {
			return err
		}
		return err
	}
	return tx.Commit()
}
