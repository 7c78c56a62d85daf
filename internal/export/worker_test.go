package export

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nexo/internal/amqp"
	"nexo/internal/core"
	"nexo/internal/services"
	"nexo/internal/storage"
)

type fakeAppender struct {
	rows       []core.Transaction
	tombstones []string
	err        error
}

func (f *fakeAppender) AppendTransactionRow(_ context.Context, t core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, t)
	return "Transações!A2:G2", nil
}

func (f *fakeAppender) AppendTombstoneRow(_ context.Context, id string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.tombstones = append(f.tombstones, id)
	return "Transações!A3:G3", nil
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "nexo.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedTransaction(t *testing.T, repo *storage.SQLiteRepository, id string) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		ID:          id,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 2500},
		Description: "mercado",
		Category:    core.CategoryFood,
		Date:        time.Now(),
		AccountID:   "acc-1",
	}
	account := core.Account{ID: "acc-1", Name: "Nubank", Balance: core.Money{Cents: -2500}}
	if err := repo.SaveAll(context.Background(), []core.Transaction{tx}, []core.Account{account}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return tx
}

func TestHandleEventExportsRow(t *testing.T) {
	repo := newTestRepo(t)
	tx := seedTransaction(t, repo, "t1")
	appender := &fakeAppender{}
	w := NewWorker(repo, appender, 10)

	msg := amqp.NewTransactionEvent(tx.ID, services.ActionRecorded)
	if err := w.HandleEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(appender.rows) != 1 || appender.rows[0].ID != tx.ID {
		t.Fatalf("rows = %+v", appender.rows)
	}

	pending, err := repo.GetPendingExport(context.Background(), 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after export = %d, want 0", len(pending))
	}
}

func TestHandleDeletedEventAppendsTombstone(t *testing.T) {
	repo := newTestRepo(t)
	appender := &fakeAppender{}
	w := NewWorker(repo, appender, 10)

	msg := amqp.NewTransactionEvent("gone", services.ActionDeleted)
	if err := w.HandleEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(appender.tombstones) != 1 || appender.tombstones[0] != "gone" {
		t.Fatalf("tombstones = %v", appender.tombstones)
	}
}

func TestHandleEventMissingTransactionIsNoop(t *testing.T) {
	repo := newTestRepo(t)
	appender := &fakeAppender{}
	w := NewWorker(repo, appender, 10)

	msg := amqp.NewTransactionEvent("missing", services.ActionRecorded)
	if err := w.HandleEvent(context.Background(), msg); err != nil {
		t.Fatalf("missing transaction should not error: %v", err)
	}
	if len(appender.rows) != 0 {
		t.Fatalf("rows = %+v", appender.rows)
	}
}

func TestProcessPendingMarksErrors(t *testing.T) {
	repo := newTestRepo(t)
	seedTransaction(t, repo, "t1")
	appender := &fakeAppender{err: errors.New("quota exceeded")}
	w := NewWorker(repo, appender, 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("process pending should swallow per-row errors: %v", err)
	}

	// Error rows stay pending for the next pass.
	appender.err = nil
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(appender.rows) != 1 {
		t.Fatalf("rows after retry = %d, want 1", len(appender.rows))
	}
}

func TestStartupCheckExportsBacklog(t *testing.T) {
	repo := newTestRepo(t)
	seedTransaction(t, repo, "t1")
	appender := &fakeAppender{}
	w := NewWorker(repo, appender, 10)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if len(appender.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(appender.rows))
	}
}
