// Package worker exports expense mutations to a spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/sheets"
	"tally/internal/storage"
)

// ExportWorker consumes expense events and mirrors the records into a
// spreadsheet. It always re-reads the record from the store, so replayed or
// reordered events converge on current state.
type ExportWorker struct {
	store    storage.Store
	appender sheets.RowAppender
}

func NewExportWorker(store storage.Store, appender sheets.RowAppender) *ExportWorker {
	return &ExportWorker{
		store:    store,
		appender: appender,
	}
}

// HandleEvent processes one expense event.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	slog.InfoContext(ctx, "Processing expense event",
		"id", ev.ID,
		"action", ev.Action)

	switch ev.Action {
	case amqp.ActionCreated, amqp.ActionUpdated:
		return w.exportRecord(ctx, ev)
	case amqp.ActionDeleted:
		// The export sheet is append-only; deletions are logged, not mirrored.
		slog.InfoContext(ctx, "Skipping deleted expense", "id", ev.ID)
		return nil
	default:
		return fmt.Errorf("unknown event action %q", ev.Action)
	}
}

func (w *ExportWorker) exportRecord(ctx context.Context, ev *amqp.ExpenseEvent) error {
	expense, err := w.store.GetExpense(ctx, ev.ID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted between publish and consume. Nothing left to export.
		slog.WarnContext(ctx, "Expense gone before export", "id", ev.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	if err := w.appender.AppendExpense(ctx, *expense); err != nil {
		return fmt.Errorf("append expense to sheet: %w", err)
	}

	slog.InfoContext(ctx, "Exported expense",
		"id", expense.ID,
		"category", expense.Category,
		"amount_cents", expense.Amount.Cents)
	return nil
}
