// Package sheets defines the export port implemented by spreadsheet backends.
package sheets

import (
	"context"

	"tally/internal/core"
)

// RowAppender appends one expense as a spreadsheet row.
type RowAppender interface {
	AppendExpense(ctx context.Context, e core.Expense) error
}
