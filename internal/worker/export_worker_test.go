package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/storage"
)

type fakeAppender struct {
	rows []core.Expense
	err  error
}

func (a *fakeAppender) AppendExpense(_ context.Context, e core.Expense) error {
	if a.err != nil {
		return a.err
	}
	a.rows = append(a.rows, e)
	return nil
}

func seedRecord(t *testing.T, store storage.Store) *core.Expense {
	t.Helper()
	e := &core.Expense{
		Title:      "Groceries",
		Category:   "Food",
		Amount:     core.Money{Cents: 4250},
		IncurredOn: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		RecordedBy: core.UserRef{ID: "u1", Name: "Alice"},
	}
	require.NoError(t, store.CreateExpense(context.Background(), e))
	return e
}

func TestHandleEventExportsCreatedAndUpdated(t *testing.T) {
	store := storage.NewMemoryStore()
	appender := &fakeAppender{}
	w := NewExportWorker(store, appender)
	ctx := context.Background()

	e := seedRecord(t, store)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewExpenseEvent(e.ID, amqp.ActionCreated, "u1")))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewExpenseEvent(e.ID, amqp.ActionUpdated, "u1")))

	require.Len(t, appender.rows, 2)
	assert.Equal(t, "Groceries", appender.rows[0].Title)
	assert.Equal(t, int64(4250), appender.rows[1].Amount.Cents)
}

func TestHandleEventSkipsDeleted(t *testing.T) {
	appender := &fakeAppender{}
	w := NewExportWorker(storage.NewMemoryStore(), appender)

	err := w.HandleEvent(context.Background(), amqp.NewExpenseEvent("e1", amqp.ActionDeleted, "u1"))
	require.NoError(t, err)
	assert.Empty(t, appender.rows)
}

func TestHandleEventMissingRecordIsNotAnError(t *testing.T) {
	appender := &fakeAppender{}
	w := NewExportWorker(storage.NewMemoryStore(), appender)

	err := w.HandleEvent(context.Background(), amqp.NewExpenseEvent("gone", amqp.ActionCreated, "u1"))
	require.NoError(t, err, "a record deleted before consumption must not requeue forever")
	assert.Empty(t, appender.rows)
}

func TestHandleEventPropagatesAppendFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	appender := &fakeAppender{err: errors.New("sheets unavailable")}
	w := NewExportWorker(store, appender)

	e := seedRecord(t, store)

	err := w.HandleEvent(context.Background(), amqp.NewExpenseEvent(e.ID, amqp.ActionCreated, "u1"))
	assert.Error(t, err, "append failures surface so the event is redelivered")
}

func TestHandleEventRejectsUnknownAction(t *testing.T) {
	w := NewExportWorker(storage.NewMemoryStore(), &fakeAppender{})

	err := w.HandleEvent(context.Background(), &amqp.ExpenseEvent{ID: "e1", Action: "archived", UserID: "u1"})
	assert.Error(t, err)
}
