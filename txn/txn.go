// Package txn implements the transaction and savepoint scope (the "T"
// component, spec.md §4.7): a handle pinning exactly one connection for
// its lifetime, with a LIFO stack of named savepoints and terminal
// Commit/Rollback states. It is written against dialect.Driver/dialect.Tx
// (the teacher's capability seam, dialect/dialect.go) so it composes with
// any dialect binding, including the pool package's Acquire/Release.
package txn

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/veloxdb/velox"
	"github.com/veloxdb/velox/dialect"
)

// Releaser returns a connection to its pool (or closes it, for an
// unpooled driver). It mirrors pool.Pool[C].Release without this package
// depending on pool's generic instantiation.
type Releaser func(broken bool)

// state is the transaction's terminal-state machine.
type state int

const (
	stateActive state = iota
	stateCommitted
	stateRolledBack
)

// Tx pins one dialect.Tx connection for its lifetime and layers a LIFO
// savepoint stack on top (spec.md §3 "Transaction scope").
type Tx struct {
	mu        sync.Mutex
	conn      dialect.Tx
	release   Releaser
	savepoint SavepointSyntax
	stack     []string
	seen      map[string]bool
	state     state
	log       *slog.Logger
}

// SavepointSyntax is the dialect-specific statement text for savepoint
// operations (spec.md §6 "Savepoint syntax" — SQL Server's SAVE
// TRANSACTION vs the ANSI SAVEPOINT form).
type SavepointSyntax struct {
	// Create returns the statement creating a savepoint named name.
	Create func(name string) string
	// RollbackTo returns the statement rolling back to name, leaving the
	// outer transaction alive.
	RollbackTo func(name string) string
	// Release returns the statement releasing name, or "" if the dialect
	// has no explicit release (spec.md: "a no-op on dialects that do not
	// support explicit release").
	Release func(name string) string
}

// Begin starts a transaction on a connection from drv via drv.Tx,
// and returns a Tx handle (spec.md §4.7 "beginTransaction"). release is
// called exactly once, when the transaction reaches a terminal state.
func Begin(ctx context.Context, drv dialect.Driver, release Releaser, syn SavepointSyntax) (*Tx, error) {
	dtx, err := drv.Tx(ctx)
	if err != nil {
		if release != nil {
			release(true)
		}
		return nil, velox.NewConnectionError(err)
	}
	tx := &Tx{
		conn:      dtx,
		release:   release,
		savepoint: syn,
		seen:      make(map[string]bool),
		log:       slog.Default().With("component", "txn"),
	}
	// Design notes §9: "on drop without a terminal call, rollback and
	// release. Do not rely on finaliser timing" — the finalizer below is
	// a best-effort backstop, not the primary mechanism; callers are
	// expected to defer Commit/Rollback explicitly.
	runtime.SetFinalizer(tx, func(t *Tx) {
		t.mu.Lock()
		leaked := t.state == stateActive
		t.mu.Unlock()
		if leaked {
			t.log.Warn("transaction finalized without Commit/Rollback; rolling back")
			_ = t.Rollback(context.Background())
		}
	})
	return tx, nil
}

// Exec runs query through the pinned connection.
func (t *Tx) Exec(ctx context.Context, query string, args, v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateActive {
		return velox.NewObjectDisposedError("transaction")
	}
	return t.conn.Exec(ctx, query, args, v)
}

// Query runs query through the pinned connection.
func (t *Tx) Query(ctx context.Context, query string, args, v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateActive {
		return velox.NewObjectDisposedError("transaction")
	}
	return t.conn.Query(ctx, query, args, v)
}

// Commit is terminal: it commits the pinned connection's transaction and
// releases the connection back to its source regardless of outcome
// (spec.md §4.7). A second terminal call fails with UsageError.
func (t *Tx) Commit() error {
	t.mu.Lock()
	if t.state != stateActive {
		t.mu.Unlock()
		return velox.NewUsageError("transaction already terminal")
	}
	t.state = stateCommitted
	t.mu.Unlock()

	err := t.conn.Commit()
	if t.release != nil {
		t.release(err != nil)
	}
	runtime.SetFinalizer(t, nil)
	return err
}

// Rollback is terminal: it rolls back the pinned connection's
// transaction and releases the connection. A second terminal call fails
// with UsageError.
func (t *Tx) Rollback(_ context.Context) error {
	t.mu.Lock()
	if t.state != stateActive {
		t.mu.Unlock()
		return velox.NewUsageError("transaction already terminal")
	}
	t.state = stateRolledBack
	t.mu.Unlock()

	err := t.conn.Rollback()
	if t.release != nil {
		t.release(false)
	}
	runtime.SetFinalizer(t, nil)
	return err
}

// CreateSavepoint pushes name onto the LIFO savepoint stack and emits the
// dialect's savepoint statement. Names must be unique within the
// transaction (spec.md §4.7).
func (t *Tx) CreateSavepoint(ctx context.Context, name string) error {
	t.mu.Lock()
	if t.state != stateActive {
		t.mu.Unlock()
		return velox.NewObjectDisposedError("transaction")
	}
	if t.seen[name] {
		t.mu.Unlock()
		return velox.NewUsageError(fmt.Sprintf("duplicate savepoint name %q", name))
	}
	t.seen[name] = true
	t.stack = append(t.stack, name)
	t.mu.Unlock()

	return t.conn.Exec(ctx, t.savepoint.Create(name), []any{}, nil)
}

// RollbackTo rolls back to the named savepoint, popping it and every
// savepoint created after it off the stack, leaving the outer
// transaction alive.
func (t *Tx) RollbackTo(ctx context.Context, name string) error {
	t.mu.Lock()
	if t.state != stateActive {
		t.mu.Unlock()
		return velox.NewObjectDisposedError("transaction")
	}
	idx := -1
	for i, n := range t.stack {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return velox.NewUsageError(fmt.Sprintf("unknown savepoint %q", name))
	}
	for _, n := range t.stack[idx:] {
		delete(t.seen, n)
	}
	t.stack = t.stack[:idx]
	t.mu.Unlock()

	return t.conn.Exec(ctx, t.savepoint.RollbackTo(name), []any{}, nil)
}

// ReleaseSavepoint releases the named savepoint. A no-op on dialects
// without explicit release (spec.md §4.7).
func (t *Tx) ReleaseSavepoint(ctx context.Context, name string) error {
	t.mu.Lock()
	if t.state != stateActive {
		t.mu.Unlock()
		return velox.NewObjectDisposedError("transaction")
	}
	t.mu.Unlock()
	if t.savepoint.Release == nil {
		return nil
	}
	stmt := t.savepoint.Release(name)
	if stmt == "" {
		return nil
	}
	return t.conn.Exec(ctx, stmt, []any{}, nil)
}

// ANSISavepoints is the portable SAVEPOINT/RELEASE SAVEPOINT syntax used
// by Postgres, MySQL and SQLite.
var ANSISavepoints = SavepointSyntax{
	Create:     func(name string) string { return "SAVEPOINT " + name },
	RollbackTo: func(name string) string { return "ROLLBACK TO SAVEPOINT " + name },
	Release:    func(name string) string { return "RELEASE SAVEPOINT " + name },
}

// SQLServerSavepoints is SQL Server's SAVE TRANSACTION syntax, which has
// no explicit release statement (spec.md §6).
var SQLServerSavepoints = SavepointSyntax{
	Create:     func(name string) string { return "SAVE TRANSACTION " + name },
	RollbackTo: func(name string) string { return "ROLLBACK TRANSACTION " + name },
	Release:    nil,
}
