package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Money struct {
		Cents int64
	}

	// UserRef identifies the owner of an expense record. Name is display
	// info carried over from the auth token, not an account reference.
	UserRef struct {
		ID   string `json:"_id"`
		Name string `json:"name,omitempty"`
	}

	Expense struct {
		ID         string
		Title      string
		Category   string
		Amount     Money
		IncurredOn time.Time
		Notes      string
		RecordedBy UserRef
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// Window is a time interval over incurred_on. End is exclusive unless
	// IncludeEnd is set; both variants exist because the reporting
	// operations use different boundary conventions and those are kept
	// per operation rather than unified.
	Window struct {
		Start      time.Time
		End        time.Time
		IncludeEnd bool
	}
)

var (
	ErrEmptyTitle    = errors.New("title is required")
	ErrEmptyCategory = errors.New("category is required")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingOwner  = errors.New("expense record has no owner")
	ErrInvalidRange  = errors.New("invalid date range")

	ErrNotFound        = errors.New("expense record not found")
	ErrForbidden       = errors.New("user is not authorized")
	ErrUnauthenticated = errors.New("authentication required")
)

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.RecordedBy.ID == "" {
		return ErrMissingOwner
	}
	return nil
}

// HalfOpenRange builds a window covering [start, end).
func HalfOpenRange(start, end time.Time) Window {
	return Window{Start: start, End: end}
}

// ClosedRange builds a window covering [first, last] inclusive.
func ClosedRange(first, last time.Time) Window {
	return Window{Start: first, End: last, IncludeEnd: true}
}

func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	if w.IncludeEnd {
		return !t.After(w.End)
	}
	return t.Before(w.End)
}

func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() || w.End.Before(w.Start) {
		return ErrInvalidRange
	}
	return nil
}
