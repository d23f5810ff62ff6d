package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"tally/internal/core"
)

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite. Timestamps are stored as unix
// seconds; all strftime-based grouping therefore runs in UTC.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scope builds the owner+window predicate shared by every read. Injecting
// the owner filter here, once, is what keeps a new report type from being
// able to forget it.
func scope(userID string, w core.Window) (string, []any) {
	endOp := "<"
	if w.IncludeEnd {
		endOp = "<="
	}
	clause := "recorded_by = ? AND incurred_on >= ? AND incurred_on " + endOp + " ?"
	return clause, []any{userID, w.Start.Unix(), w.End.Unix()}
}

func (s *SQLiteStore) CreateExpense(ctx context.Context, e *core.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses
		   (id, title, category, amount_cents, incurred_on, notes, recorded_by, recorded_by_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		e.ID, e.Title, e.Category, e.Amount.Cents, e.IncurredOn.Unix(),
		e.Notes, e.RecordedBy.ID, e.RecordedBy.Name, e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"title", e.Title,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	return nil
}

func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*core.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, category, amount_cents, incurred_on, notes,
		        recorded_by, recorded_by_name, created_at, updated_at
		   FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) ListExpenses(ctx context.Context, userID string, first, last time.Time) ([]core.Expense, error) {
	clause, args := scope(userID, core.ClosedRange(first, last))
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, category, amount_cents, incurred_on, notes,
		        recorded_by, recorded_by_name, created_at, updated_at
		   FROM expenses WHERE `+clause+` ORDER BY incurred_on, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func (s *SQLiteStore) UpdateExpense(ctx context.Context, e *core.Expense) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses
		    SET title = ?, category = ?, amount_cents = ?, incurred_on = ?, notes = ?, updated_at = ?
		  WHERE id = ?`,
		e.Title, e.Category, e.Amount.Cents, e.IncurredOn.Unix(), e.Notes, e.UpdatedAt.Unix(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SumInWindow(ctx context.Context, userID string, w core.Window) (int64, int64, error) {
	clause, args := scope(userID, w)
	var cents, count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM expenses WHERE `+clause, args...,
	).Scan(&cents, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("sum window: %w", err)
	}
	return cents, count, nil
}

func (s *SQLiteStore) CategoryTotals(ctx context.Context, userID string, w core.Window) ([]CategoryTotal, error) {
	clause, args := scope(userID, w)
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) FROM expenses WHERE `+clause+` GROUP BY category ORDER BY category`, args...)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.Category, &t.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return totals, nil
}

func (s *SQLiteStore) CategoryMonthlyAverages(ctx context.Context, userID string) ([]CategoryAverage, error) {
	// Inner query buckets by (category, month number); the outer AVG runs
	// over only the months that have records, so absent months never pull
	// the average toward zero.
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, AVG(month_cents) FROM (
		   SELECT category,
		          CAST(strftime('%m', incurred_on, 'unixepoch') AS INTEGER) AS month,
		          SUM(amount_cents) AS month_cents
		     FROM expenses
		    WHERE recorded_by = ?
		    GROUP BY category, month
		 ) GROUP BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("category monthly averages: %w", err)
	}
	defer rows.Close()

	var averages []CategoryAverage
	for rows.Next() {
		var a CategoryAverage
		if err := rows.Scan(&a.Category, &a.AvgCents); err != nil {
			return nil, fmt.Errorf("scan category average: %w", err)
		}
		averages = append(averages, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category averages: %w", err)
	}
	return averages, nil
}

func (s *SQLiteStore) MonthlyTotals(ctx context.Context, userID string, w core.Window) ([]MonthTotal, error) {
	clause, args := scope(userID, w)
	rows, err := s.db.QueryContext(ctx,
		`SELECT CAST(strftime('%m', incurred_on, 'unixepoch') AS INTEGER) AS month,
		        SUM(amount_cents)
		   FROM expenses WHERE `+clause+`
		  GROUP BY month ORDER BY month`, args...)
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	defer rows.Close()

	var totals []MonthTotal
	for rows.Next() {
		var t MonthTotal
		if err := rows.Scan(&t.Month, &t.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly totals: %w", err)
	}
	return totals, nil
}

func (s *SQLiteStore) DailyAmounts(ctx context.Context, userID string, w core.Window) ([]DayAmount, error) {
	clause, args := scope(userID, w)
	rows, err := s.db.QueryContext(ctx,
		`SELECT CAST(strftime('%d', incurred_on, 'unixepoch') AS INTEGER),
		        amount_cents
		   FROM expenses WHERE `+clause+`
		  ORDER BY incurred_on, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("daily amounts: %w", err)
	}
	defer rows.Close()

	var amounts []DayAmount
	for rows.Next() {
		var d DayAmount
		if err := rows.Scan(&d.Day, &d.Cents); err != nil {
			return nil, fmt.Errorf("scan daily amount: %w", err)
		}
		amounts = append(amounts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily amounts: %w", err)
	}
	return amounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*core.Expense, error) {
	var (
		e          core.Expense
		incurredOn int64
		createdAt  int64
		updatedAt  int64
	)
	err := row.Scan(&e.ID, &e.Title, &e.Category, &e.Amount.Cents, &incurredOn,
		&e.Notes, &e.RecordedBy.ID, &e.RecordedBy.Name, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.IncurredOn = time.Unix(incurredOn, 0).UTC()
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	if updatedAt > 0 {
		e.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	}
	return &e, nil
}
