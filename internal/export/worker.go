// Package export mirrors the local ledger into a Google Sheets backup
// spreadsheet, driven by transaction events with a periodic catch-up pass.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nexo/internal/amqp"
	"nexo/internal/services"
	"nexo/internal/sheets"
	"nexo/internal/storage"
)

// Worker consumes transaction events and appends the referenced rows to the
// backup spreadsheet. Pending rows are picked up in batches as a backstop in
// case events are lost.
type Worker struct {
	storage   *storage.SQLiteRepository
	sheets    sheets.RowAppender
	batchSize int
}

func NewWorker(repo *storage.SQLiteRepository, appender sheets.RowAppender, batchSize int) *Worker {
	return &Worker{
		storage:   repo,
		sheets:    appender,
		batchSize: batchSize,
	}
}

// HandleEvent processes a single transaction event from AMQP.
func (w *Worker) HandleEvent(ctx context.Context, msg *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"id", msg.ID,
		"action", msg.Action)

	if msg.Action == services.ActionDeleted {
		ref, err := w.sheets.AppendTombstoneRow(ctx, msg.ID)
		if err != nil {
			return fmt.Errorf("append tombstone row: %w", err)
		}
		slog.InfoContext(ctx, "Recorded deletion in backup", "id", msg.ID, "sheets_ref", ref)
		return nil
	}

	tx, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted between event and processing; nothing to export.
			slog.WarnContext(ctx, "Transaction gone before export", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.exportTransaction(ctx, tx.ID); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}
	return nil
}

// ProcessPending exports transactions that were never confirmed exported.
// This is the backstop for lost events or worker downtime.
func (w *Worker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, tx := range pending {
		if err := w.exportTransaction(ctx, tx.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", tx.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupCheck exports a larger pending batch once at worker startup to
// recover from downtime.
func (w *Worker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup", "count", len(pending))

	exported := 0
	failed := 0
	for _, tx := range pending {
		if err := w.exportTransaction(ctx, tx.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"id", tx.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

// RunCatchUp runs ProcessPending on a fixed interval until ctx is cancelled.
func (w *Worker) RunCatchUp(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Catch-up pass failed", "error", err)
			}
		}
	}
}

func (w *Worker) exportTransaction(ctx context.Context, id string) error {
	tx, err := w.storage.GetTransaction(ctx, id)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.sheets.AppendTransactionRow(ctx, tx)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkExported(ctx, id); err != nil {
		// The row landed; a failed status update only means one extra export
		// attempt later.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", id,
		"sheets_ref", ref,
		"amount_cents", tx.Amount.Cents)
	return nil
}
