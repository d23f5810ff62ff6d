// Package services orchestrates expense mutations: validation, ownership
// checks, persistence and event publication.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/storage"
)

// EventPublisher publishes mutation events. A nil publisher disables events.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev *amqp.ExpenseEvent) error
}

// ExpenseService owns the write path and the owner-scoped read path for
// individual records. Aggregations live in the reports package.
type ExpenseService struct {
	store     storage.Store
	publisher EventPublisher
	clock     func() time.Time
}

func NewExpenseService(store storage.Store, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service clock. Tests use this to pin timestamps.
func (s *ExpenseService) WithClock(clock func() time.Time) *ExpenseService {
	s.clock = clock
	return s
}

// CreateInput carries the caller-supplied fields of a new expense.
type CreateInput struct {
	Title      string
	Category   string
	Amount     core.Money
	IncurredOn time.Time
	Notes      string
}

// UpdateChanges carries the fields of a partial update. Nil means keep the
// stored value.
type UpdateChanges struct {
	Title      *string
	Category   *string
	Amount     *core.Money
	IncurredOn *time.Time
	Notes      *string
}

// Create validates and stores a new expense owned by caller. The incurred
// date defaults to now when the caller omits it.
func (s *ExpenseService) Create(ctx context.Context, caller core.UserRef, in CreateInput) (*core.Expense, error) {
	if caller.ID == "" {
		return nil, core.ErrUnauthenticated
	}

	incurred := in.IncurredOn
	if incurred.IsZero() {
		incurred = s.clock()
	}

	e := &core.Expense{
		Title:      in.Title,
		Category:   in.Category,
		Amount:     in.Amount,
		IncurredOn: incurred,
		Notes:      in.Notes,
		RecordedBy: caller,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}

	s.publishEvent(ctx, amqp.NewExpenseEvent(e.ID, amqp.ActionCreated, caller.ID))
	return e, nil
}

// Get returns a single record if it exists and belongs to the caller.
// A record owned by someone else is reported as forbidden, not missing,
// because its existence is already conceded by the id.
func (s *ExpenseService) Get(ctx context.Context, callerID, id string) (*core.Expense, error) {
	if callerID == "" {
		return nil, core.ErrUnauthenticated
	}

	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.RecordedBy.ID != callerID {
		return nil, core.ErrForbidden
	}
	return e, nil
}

// List returns the caller's expenses with incurred dates in [first, last].
func (s *ExpenseService) List(ctx context.Context, callerID string, first, last time.Time) ([]core.Expense, error) {
	if callerID == "" {
		return nil, core.ErrUnauthenticated
	}
	if first.IsZero() || last.IsZero() || last.Before(first) {
		return nil, core.ErrInvalidRange
	}
	return s.store.ListExpenses(ctx, callerID, first, last)
}

// Update applies the non-nil changes to the caller's record and returns the
// updated state.
func (s *ExpenseService) Update(ctx context.Context, callerID, id string, changes UpdateChanges) (*core.Expense, error) {
	e, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if changes.Title != nil {
		e.Title = *changes.Title
	}
	if changes.Category != nil {
		e.Category = *changes.Category
	}
	if changes.Amount != nil {
		e.Amount = *changes.Amount
	}
	if changes.IncurredOn != nil {
		e.IncurredOn = *changes.IncurredOn
	}
	if changes.Notes != nil {
		e.Notes = *changes.Notes
	}
	e.UpdatedAt = s.clock()

	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}

	s.publishEvent(ctx, amqp.NewExpenseEvent(e.ID, amqp.ActionUpdated, callerID))
	return e, nil
}

// Delete removes the caller's record and returns the deleted state.
func (s *ExpenseService) Delete(ctx context.Context, callerID, id string) (*core.Expense, error) {
	e, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return nil, fmt.Errorf("delete expense: %w", err)
	}

	s.publishEvent(ctx, amqp.NewExpenseEvent(id, amqp.ActionDeleted, callerID))
	return e, nil
}

// publishEvent is best effort. The mutation already succeeded locally, so a
// broker failure is logged and swallowed.
func (s *ExpenseService) publishEvent(ctx context.Context, ev *amqp.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", ev.ID,
			"action", ev.Action,
			"error", err)
	}
}
