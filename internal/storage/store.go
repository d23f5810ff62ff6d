package storage

import (
	"context"
	"time"

	"tally/internal/core"
)

// Aggregation row types returned by the store. Sums stay in integer cents so
// totals are exact; only the monthly average carries a fractional value.
type (
	CategoryTotal struct {
		Category string
		Cents    int64
	}

	CategoryAverage struct {
		Category string
		AvgCents float64
	}

	MonthTotal struct {
		Month int // 1-12
		Cents int64
	}

	// DayAmount is one record projected to its day of month; records are
	// deliberately not grouped, so two expenses on the same day yield two
	// rows.
	DayAmount struct {
		Day   int
		Cents int64
	}
)

// Store is the expense record store. Every read takes the owning user ID and
// must never return or aggregate another user's records; implementations
// apply the owner filter in one shared place rather than per query.
type Store interface {
	CreateExpense(ctx context.Context, e *core.Expense) error
	GetExpense(ctx context.Context, id string) (*core.Expense, error)
	// ListExpenses returns the user's records with incurred_on in
	// [first, last] inclusive, ascending by incurred_on with a stable
	// tiebreak.
	ListExpenses(ctx context.Context, userID string, first, last time.Time) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, e *core.Expense) error
	DeleteExpense(ctx context.Context, id string) error

	// SumInWindow returns the total cents and the number of matching
	// records, so callers can distinguish "no records" from a zero sum.
	SumInWindow(ctx context.Context, userID string, w core.Window) (cents int64, count int64, err error)
	CategoryTotals(ctx context.Context, userID string, w core.Window) ([]CategoryTotal, error)
	// CategoryMonthlyAverages averages the per-month sums of each category
	// over all of the user's records. Months are keyed by month number
	// (1-12) regardless of year; months without records contribute
	// nothing, not zero.
	CategoryMonthlyAverages(ctx context.Context, userID string) ([]CategoryAverage, error)
	MonthlyTotals(ctx context.Context, userID string, w core.Window) ([]MonthTotal, error)
	DailyAmounts(ctx context.Context, userID string, w core.Window) ([]DayAmount, error)

	Close() error
}
