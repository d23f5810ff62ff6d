package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store used for the memory backend and in
// tests. Aggregation semantics mirror the SQLite implementation exactly,
// including month-number bucketing in UTC.
type MemoryStore struct {
	mu       sync.RWMutex
	expenses map[string]core.Expense
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{expenses: make(map[string]core.Expense)}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateExpense(_ context.Context, e *core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.expenses[e.ID] = *e
	return nil
}

func (s *MemoryStore) GetExpense(_ context.Context, id string) (*core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &e, nil
}

func (s *MemoryStore) ListExpenses(_ context.Context, userID string, first, last time.Time) ([]core.Expense, error) {
	w := core.ClosedRange(first, last)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if e.RecordedBy.ID == userID && w.Contains(e.IncurredOn) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IncurredOn.Equal(out[j].IncurredOn) {
			return out[i].IncurredOn.Before(out[j].IncurredOn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) UpdateExpense(_ context.Context, e *core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[e.ID]; !ok {
		return core.ErrNotFound
	}
	s.expenses[e.ID] = *e
	return nil
}

func (s *MemoryStore) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

// matching returns the user's records inside the window. Callers hold no
// lock; the read lock is taken here.
func (s *MemoryStore) matching(userID string, w core.Window) []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if e.RecordedBy.ID == userID && w.Contains(e.IncurredOn) {
			out = append(out, e)
		}
	}
	return out
}

func (s *MemoryStore) SumInWindow(_ context.Context, userID string, w core.Window) (int64, int64, error) {
	var cents int64
	matched := s.matching(userID, w)
	for _, e := range matched {
		cents += e.Amount.Cents
	}
	return cents, int64(len(matched)), nil
}

func (s *MemoryStore) CategoryTotals(_ context.Context, userID string, w core.Window) ([]CategoryTotal, error) {
	sums := make(map[string]int64)
	for _, e := range s.matching(userID, w) {
		sums[e.Category] += e.Amount.Cents
	}

	totals := make([]CategoryTotal, 0, len(sums))
	for cat, cents := range sums {
		totals = append(totals, CategoryTotal{Category: cat, Cents: cents})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })
	return totals, nil
}

func (s *MemoryStore) CategoryMonthlyAverages(_ context.Context, userID string) ([]CategoryAverage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// category -> month number -> summed cents
	buckets := make(map[string]map[int]int64)
	for _, e := range s.expenses {
		if e.RecordedBy.ID != userID {
			continue
		}
		month := int(e.IncurredOn.UTC().Month())
		if buckets[e.Category] == nil {
			buckets[e.Category] = make(map[int]int64)
		}
		buckets[e.Category][month] += e.Amount.Cents
	}

	averages := make([]CategoryAverage, 0, len(buckets))
	for cat, months := range buckets {
		var total int64
		for _, cents := range months {
			total += cents
		}
		averages = append(averages, CategoryAverage{
			Category: cat,
			AvgCents: float64(total) / float64(len(months)),
		})
	}
	sort.Slice(averages, func(i, j int) bool { return averages[i].Category < averages[j].Category })
	return averages, nil
}

func (s *MemoryStore) MonthlyTotals(_ context.Context, userID string, w core.Window) ([]MonthTotal, error) {
	sums := make(map[int]int64)
	for _, e := range s.matching(userID, w) {
		sums[int(e.IncurredOn.UTC().Month())] += e.Amount.Cents
	}

	totals := make([]MonthTotal, 0, len(sums))
	for month, cents := range sums {
		totals = append(totals, MonthTotal{Month: month, Cents: cents})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Month < totals[j].Month })
	return totals, nil
}

func (s *MemoryStore) DailyAmounts(_ context.Context, userID string, w core.Window) ([]DayAmount, error) {
	matched := s.matching(userID, w)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].IncurredOn.Equal(matched[j].IncurredOn) {
			return matched[i].IncurredOn.Before(matched[j].IncurredOn)
		}
		return matched[i].ID < matched[j].ID
	})

	amounts := make([]DayAmount, 0, len(matched))
	for _, e := range matched {
		amounts = append(amounts, DayAmount{
			Day:   e.IncurredOn.UTC().Day(),
			Cents: e.Amount.Cents,
		})
	}
	return amounts, nil
}
