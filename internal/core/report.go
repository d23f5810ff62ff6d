package core

// Report result shapes. These are computed on demand, never persisted, and
// always scoped to a single owner.

// PeriodTotal is one aggregated window in the current-period preview.
type PeriodTotal struct {
	Label      string  `json:"_id"`
	TotalSpent float64 `json:"totalSpent"`
}

// PeriodPreview carries the month/today/yesterday totals. A nil field means
// no records matched that window, which callers must distinguish from a
// zero total.
type PeriodPreview struct {
	Month     *PeriodTotal `json:"month,omitempty"`
	Today     *PeriodTotal `json:"today,omitempty"`
	Yesterday *PeriodTotal `json:"yesterday,omitempty"`
}

// MergedValues holds whichever of the two category aggregates exist for a
// category: the historical monthly average, the current-month total, or both.
type MergedValues struct {
	Average *float64 `json:"average,omitempty"`
	Total   *float64 `json:"total,omitempty"`
}

// CategorySummary is one entry of the category-merge report.
type CategorySummary struct {
	Category string       `json:"_id"`
	Merged   MergedValues `json:"mergedValues"`
}

// CategoryPoint is a chart point keyed by category name.
type CategoryPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

// TimePoint is a chart point keyed by a month number (yearly totals) or a
// day of month (daily scatter).
type TimePoint struct {
	X int     `json:"x"`
	Y float64 `json:"y"`
}
