// Package reports computes the read-only spending aggregations. Every report
// is derived from the store on each call and scoped to one owner; nothing here
// is cached or persisted.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jinzhu/now"
	"golang.org/x/sync/errgroup"

	"tally/internal/core"
	"tally/internal/storage"
)

// Aggregator is the slice of the store the engine needs.
type Aggregator interface {
	SumInWindow(ctx context.Context, userID string, w core.Window) (cents int64, count int64, err error)
	CategoryTotals(ctx context.Context, userID string, w core.Window) ([]storage.CategoryTotal, error)
	CategoryMonthlyAverages(ctx context.Context, userID string) ([]storage.CategoryAverage, error)
	MonthlyTotals(ctx context.Context, userID string, w core.Window) ([]storage.MonthTotal, error)
	DailyAmounts(ctx context.Context, userID string, w core.Window) ([]storage.DayAmount, error)
}

type Engine struct {
	store Aggregator
}

func NewEngine(store Aggregator) *Engine {
	return &Engine{store: store}
}

func centsToValue(cents int64) float64 {
	return float64(cents) / 100.0
}

// previewWindows derives the three preview windows from the reference
// instant. All three are half-open and expressed in UTC so a record stamped
// at exactly midnight counts toward the day that starts there.
func previewWindows(at time.Time) (month, today, yesterday core.Window) {
	n := now.New(at.UTC())
	todayStart := n.BeginningOfDay()
	tomorrowStart := todayStart.AddDate(0, 0, 1)
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	month = core.HalfOpenRange(n.BeginningOfMonth(), tomorrowStart)
	today = core.HalfOpenRange(todayStart, tomorrowStart)
	yesterday = core.HalfOpenRange(yesterdayStart, todayStart)
	return month, today, yesterday
}

// CurrentPreview returns the month-to-date, today and yesterday totals
// relative to at. Windows with no records come back nil rather than as a
// zero total.
func (e *Engine) CurrentPreview(ctx context.Context, userID string, at time.Time) (*core.PeriodPreview, error) {
	if userID == "" {
		return nil, core.ErrUnauthenticated
	}

	monthW, todayW, yesterdayW := previewWindows(at)

	preview := &core.PeriodPreview{}
	g, gctx := errgroup.WithContext(ctx)
	for _, part := range []struct {
		label  string
		window core.Window
		out    **core.PeriodTotal
	}{
		{"month", monthW, &preview.Month},
		{"today", todayW, &preview.Today},
		{"yesterday", yesterdayW, &preview.Yesterday},
	} {
		g.Go(func() error {
			cents, count, err := e.store.SumInWindow(gctx, userID, part.window)
			if err != nil {
				return fmt.Errorf("sum %s window: %w", part.label, err)
			}
			if count > 0 {
				*part.out = &core.PeriodTotal{Label: part.label, TotalSpent: centsToValue(cents)}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return preview, nil
}

// CategoryMerge joins the historical monthly average of every category with
// its total for the calendar month containing at. The result covers the
// union of both key sets: a category seen only historically has no total,
// one seen only this month has no average.
func (e *Engine) CategoryMerge(ctx context.Context, userID string, at time.Time) ([]core.CategorySummary, error) {
	if userID == "" {
		return nil, core.ErrUnauthenticated
	}

	monthStart := now.New(at.UTC()).BeginningOfMonth()
	currentMonth := core.HalfOpenRange(monthStart, monthStart.AddDate(0, 1, 0))

	var (
		averages []storage.CategoryAverage
		totals   []storage.CategoryTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		averages, err = e.store.CategoryMonthlyAverages(gctx, userID)
		if err != nil {
			return fmt.Errorf("category averages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		totals, err = e.store.CategoryTotals(gctx, userID, currentMonth)
		if err != nil {
			return fmt.Errorf("category totals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]*core.CategorySummary, len(averages)+len(totals))
	entry := func(category string) *core.CategorySummary {
		if s, ok := merged[category]; ok {
			return s
		}
		s := &core.CategorySummary{Category: category}
		merged[category] = s
		return s
	}
	for _, a := range averages {
		avg := a.AvgCents / 100.0
		entry(a.Category).Merged.Average = &avg
	}
	for _, t := range totals {
		total := centsToValue(t.Cents)
		entry(t.Category).Merged.Total = &total
	}

	result := make([]core.CategorySummary, 0, len(merged))
	for _, s := range merged {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

// CategoryAverages returns one chart point per category with the summed
// amount over [first, last] inclusive.
func (e *Engine) CategoryAverages(ctx context.Context, userID string, first, last time.Time) ([]core.CategoryPoint, error) {
	if userID == "" {
		return nil, core.ErrUnauthenticated
	}
	w := core.ClosedRange(first, last)
	if err := w.Validate(); err != nil {
		return nil, err
	}

	totals, err := e.store.CategoryTotals(ctx, userID, w)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	points := make([]core.CategoryPoint, 0, len(totals))
	for _, t := range totals {
		points = append(points, core.CategoryPoint{X: t.Category, Y: centsToValue(t.Cents)})
	}
	return points, nil
}

// YearlyTotals returns one point per calendar month of the given year that
// has at least one record; empty months are omitted, not zero-filled.
func (e *Engine) YearlyTotals(ctx context.Context, userID string, year int) ([]core.TimePoint, error) {
	if userID == "" {
		return nil, core.ErrUnauthenticated
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	w := core.HalfOpenRange(start, start.AddDate(1, 0, 0))

	totals, err := e.store.MonthlyTotals(ctx, userID, w)
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	points := make([]core.TimePoint, 0, len(totals))
	for _, t := range totals {
		points = append(points, core.TimePoint{X: t.Month, Y: centsToValue(t.Cents)})
	}
	return points, nil
}

// DailyScatter returns one point per record in the calendar month containing
// month, keyed by day of month. Records are not grouped, so two expenses on
// the same day produce two points.
func (e *Engine) DailyScatter(ctx context.Context, userID string, month time.Time) ([]core.TimePoint, error) {
	if userID == "" {
		return nil, core.ErrUnauthenticated
	}
	start := now.New(month.UTC()).BeginningOfMonth()
	w := core.HalfOpenRange(start, start.AddDate(0, 1, 0))

	amounts, err := e.store.DailyAmounts(ctx, userID, w)
	if err != nil {
		return nil, fmt.Errorf("daily amounts: %w", err)
	}
	points := make([]core.TimePoint, 0, len(amounts))
	for _, a := range amounts {
		points = append(points, core.TimePoint{X: a.Day, Y: centsToValue(a.Cents)})
	}
	return points, nil
}
