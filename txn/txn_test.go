package txn_test

import (
	"context"
	"testing"

	"github.com/veloxdb/velox"
	"github.com/veloxdb/velox/dialect"
	"github.com/veloxdb/velox/txn"
)

// fakeTx is a minimal dialect.Tx that records executed statements.
type fakeTx struct {
	stmts      []string
	commitErr  error
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Exec(ctx context.Context, query string, args, v any) error {
	f.stmts = append(f.stmts, query)
	return nil
}
func (f *fakeTx) Query(ctx context.Context, query string, args, v any) error { return nil }
func (f *fakeTx) Tx(ctx context.Context) (dialect.Tx, error)                { return f, nil }
func (f *fakeTx) Close() error                                              { return nil }
func (f *fakeTx) Dialect() string                                           { return dialect.SQLServer }
func (f *fakeTx) Commit() error                                             { f.committed = true; return f.commitErr }
func (f *fakeTx) Rollback() error                                           { f.rolledBack = true; return nil }

type fakeDriver struct{ tx *fakeTx }

func (d *fakeDriver) Exec(ctx context.Context, query string, args, v any) error  { return nil }
func (d *fakeDriver) Query(ctx context.Context, query string, args, v any) error { return nil }
func (d *fakeDriver) Tx(ctx context.Context) (dialect.Tx, error)                 { return d.tx, nil }
func (d *fakeDriver) Close() error                                               { return nil }
func (d *fakeDriver) Dialect() string                                            { return dialect.SQLServer }

func newTx(t *testing.T) (*txn.Tx, *fakeTx, *bool) {
	t.Helper()
	ftx := &fakeTx{}
	drv := &fakeDriver{tx: ftx}
	released := false
	tx, err := txn.Begin(context.Background(), drv, func(broken bool) { released = true }, txn.SQLServerSavepoints)
	if err != nil {
		t.Fatal(err)
	}
	return tx, ftx, &released
}

func TestCommitReleasesConnection(t *testing.T) {
	tx, ftx, released := newTx(t)
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if !ftx.committed {
		t.Fatal("expected underlying Commit to be called")
	}
	if !*released {
		t.Fatal("expected connection released on commit")
	}
}

func TestDoubleCommitFails(t *testing.T) {
	tx, _, _ := newTx(t)
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); !velox.IsUsageError(err) {
		t.Fatalf("expected UsageError on second commit, got %v", err)
	}
}

func TestRollbackReleasesConnection(t *testing.T) {
	tx, ftx, released := newTx(t)
	if err := tx.Rollback(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !ftx.rolledBack {
		t.Fatal("expected underlying Rollback to be called")
	}
	if !*released {
		t.Fatal("expected connection released on rollback")
	}
}

func TestSavepointLifecycle(t *testing.T) {
	tx, ftx, _ := newTx(t)
	if err := tx.CreateSavepoint(context.Background(), "sp1"); err != nil {
		t.Fatal(err)
	}
	if err := tx.CreateSavepoint(context.Background(), "sp2"); err != nil {
		t.Fatal(err)
	}
	if err := tx.RollbackTo(context.Background(), "sp1"); err != nil {
		t.Fatal(err)
	}
	// sp2 was popped by the rollback; re-creating it must succeed.
	if err := tx.CreateSavepoint(context.Background(), "sp2"); err != nil {
		t.Fatalf("expected sp2 to be reusable after rollback, got %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	wantContains := []string{"SAVE TRANSACTION sp1", "SAVE TRANSACTION sp2", "ROLLBACK TRANSACTION sp1"}
	for _, w := range wantContains {
		found := false
		for _, s := range ftx.stmts {
			if s == w {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected statement %q among %v", w, ftx.stmts)
		}
	}
}

func TestDuplicateSavepointNameFails(t *testing.T) {
	tx, _, _ := newTx(t)
	if err := tx.CreateSavepoint(context.Background(), "sp1"); err != nil {
		t.Fatal(err)
	}
	if err := tx.CreateSavepoint(context.Background(), "sp1"); !velox.IsUsageError(err) {
		t.Fatalf("expected UsageError for duplicate savepoint, got %v", err)
	}
}

func TestOperationsAfterTerminalFail(t *testing.T) {
	tx, _, _ := newTx(t)
	if err := tx.Rollback(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := tx.Exec(context.Background(), "SELECT 1", []any{}, nil); !velox.IsObjectDisposedError(err) {
		t.Fatalf("expected ObjectDisposedError after terminal, got %v", err)
	}
}

func TestReleaseSavepointNoopOnSQLServer(t *testing.T) {
	tx, ftx, _ := newTx(t)
	if err := tx.CreateSavepoint(context.Background(), "sp1"); err != nil {
		t.Fatal(err)
	}
	before := len(ftx.stmts)
	if err := tx.ReleaseSavepoint(context.Background(), "sp1"); err != nil {
		t.Fatal(err)
	}
	if len(ftx.stmts) != before {
		t.Fatal("expected ReleaseSavepoint to be a no-op on SQL Server syntax")
	}
}
