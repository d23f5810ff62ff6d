package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
	"tally/internal/storage"
)

var clock = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func seedExpense(t *testing.T, store storage.Store, userID, category string, cents int64, incurred time.Time) {
	t.Helper()
	err := store.CreateExpense(context.Background(), &core.Expense{
		Title:      "seed",
		Category:   category,
		Amount:     core.Money{Cents: cents},
		IncurredOn: incurred,
		RecordedBy: core.UserRef{ID: userID, Name: "Seed User"},
	})
	require.NoError(t, err)
}

func TestCurrentPreview(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := NewEngine(store)
	ctx := context.Background()

	// Earlier this month, but neither today nor yesterday.
	seedExpense(t, store, "u1", "Food", 1000, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	// Yesterday.
	seedExpense(t, store, "u1", "Food", 500, time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC))
	// Today, at exactly midnight; counts toward today, not yesterday.
	seedExpense(t, store, "u1", "Food", 250, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	// Previous month; invisible to the preview.
	seedExpense(t, store, "u1", "Food", 99999, time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC))
	// Another user's record on the same day.
	seedExpense(t, store, "u2", "Food", 7777, clock)

	preview, err := engine.CurrentPreview(ctx, "u1", clock)
	require.NoError(t, err)

	require.NotNil(t, preview.Month)
	assert.Equal(t, "month", preview.Month.Label)
	assert.InDelta(t, 17.50, preview.Month.TotalSpent, 1e-9)

	require.NotNil(t, preview.Today)
	assert.InDelta(t, 2.50, preview.Today.TotalSpent, 1e-9)

	require.NotNil(t, preview.Yesterday)
	assert.InDelta(t, 5.00, preview.Yesterday.TotalSpent, 1e-9)
}

func TestCurrentPreviewEmptyWindowsAreNil(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := NewEngine(store)

	// A single record yesterday: month and yesterday populated, today nil.
	seedExpense(t, store, "u1", "Food", 100, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))

	preview, err := engine.CurrentPreview(context.Background(), "u1", clock)
	require.NoError(t, err)

	assert.NotNil(t, preview.Month)
	assert.Nil(t, preview.Today)
	assert.NotNil(t, preview.Yesterday)
}

func TestCurrentPreviewRequiresUser(t *testing.T) {
	engine := NewEngine(storage.NewMemoryStore())

	_, err := engine.CurrentPreview(context.Background(), "", clock)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestCategoryMerge(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := NewEngine(store)

	// Food: 50.00 in January, 30.00 in February, 20.00 this month.
	// Historical average per month = (50 + 30 + 20) / 3 = 33.33...
	seedExpense(t, store, "u1", "Food", 5000, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u1", "Food", 3000, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u1", "Food", 2000, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	// Travel: only seen in a past month.
	seedExpense(t, store, "u1", "Travel", 10000, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	// Gifts: first seen this month.
	seedExpense(t, store, "u1", "Gifts", 1500, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC))

	summaries, err := engine.CategoryMerge(context.Background(), "u1", clock)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	byCat := make(map[string]core.CategorySummary, len(summaries))
	for _, s := range summaries {
		byCat[s.Category] = s
	}

	food := byCat["Food"]
	require.NotNil(t, food.Merged.Average)
	require.NotNil(t, food.Merged.Total)
	assert.InDelta(t, 100.0/3.0, *food.Merged.Average, 1e-9)
	assert.InDelta(t, 20.00, *food.Merged.Total, 1e-9)

	travel := byCat["Travel"]
	require.NotNil(t, travel.Merged.Average)
	assert.Nil(t, travel.Merged.Total)
	assert.InDelta(t, 100.00, *travel.Merged.Average, 1e-9)

	gifts := byCat["Gifts"]
	require.NotNil(t, gifts.Merged.Average)
	require.NotNil(t, gifts.Merged.Total)
	assert.InDelta(t, 15.00, *gifts.Merged.Total, 1e-9)

	// Results are ordered by category name.
	assert.Equal(t, "Food", summaries[0].Category)
	assert.Equal(t, "Gifts", summaries[1].Category)
	assert.Equal(t, "Travel", summaries[2].Category)
}

func TestCategoryMergeAveragesIgnoreMonthYear(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := NewEngine(store)

	// Two Januaries in different years fold into the same month bucket:
	// january sum = 80.00, so the per-month average is 80.00, not 40.00.
	seedExpense(t, store, "u1", "Food", 5000, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u1", "Food", 3000, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))

	summaries, err := engine.CategoryMerge(context.Background(), "u1", clock)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].Merged.Average)
	assert.InDelta(t, 80.00, *summaries[0].Merged.Average, 1e-9)
	assert.Nil(t, summaries[0].Merged.Total)
}

func TestCategoryAverages(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := NewEngine(store)

	first := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	seedExpense(t, store, "u1", "Food", 1000, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u1", "Food", 2000, last) // inclusive upper bound
	seedExpense(t, store, "u1", "Rent", 50000, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u1", "Food", 9999, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	points, err := engine.CategoryAverages(context.Background(), "u1", first, last)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, core.CategoryPoint{X: "Food", Y: 30.00}, points[0])
	assert.Equal(t, core.CategoryPoint{X: "Rent", Y: 500.00}, points[1])
}

func TestCategoryAveragesRejectsInvertedRange(t *testing.T) {
	engine := NewEngine(storage.NewMemoryStore())

	first := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := engine.CategoryAverages(context.Background(), "u1", first, last)
	assert.ErrorIs(t, err, core.ErrInvalidRange)
}

func TestYearlyTotals(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := NewEngine(store)

	seedExpense(t, store, "u1", "Food", 1000, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u1", "Rent", 2000, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u1", "Food", 4000, time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u1", "Food", 9999, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC))
	seedExpense(t, store, "u1", "Food", 9999, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))

	points, err := engine.YearlyTotals(context.Background(), "u1", 2026)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, core.TimePoint{X: 1, Y: 30.00}, points[0])
	assert.Equal(t, core.TimePoint{X: 6, Y: 40.00}, points[1])

	// The sum of the points equals the sum of the year's records.
	var sum float64
	for _, p := range points {
		sum += p.Y
	}
	assert.InDelta(t, 70.00, sum, 1e-9)
}

func TestDailyScatter(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := NewEngine(store)

	// Two records on the same day stay two points.
	seedExpense(t, store, "u1", "Food", 1000, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u1", "Fun", 2500, time.Date(2026, 3, 5, 20, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u1", "Food", 500, time.Date(2026, 3, 28, 0, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u1", "Food", 9999, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	seedExpense(t, store, "u2", "Food", 7777, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))

	points, err := engine.DailyScatter(context.Background(), "u1", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, core.TimePoint{X: 5, Y: 10.00}, points[0])
	assert.Equal(t, core.TimePoint{X: 5, Y: 25.00}, points[1])
	assert.Equal(t, core.TimePoint{X: 28, Y: 5.00}, points[2])
}
