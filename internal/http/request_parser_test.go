package http

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"tally/internal/core"
)

func TestParseDayRange(t *testing.T) {
	tests := []struct {
		name      string
		firstDay  string
		lastDay   string
		wantFirst time.Time
		wantLast  time.Time
		wantErr   bool
	}{
		{
			name:      "bare dates",
			firstDay:  "2026-03-01",
			lastDay:   "2026-03-31",
			wantFirst: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			wantLast:  time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "rfc3339 timestamps",
			firstDay:  "2026-03-01T08:00:00Z",
			lastDay:   "2026-03-31T18:30:00Z",
			wantFirst: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
			wantLast:  time.Date(2026, 3, 31, 18, 30, 0, 0, time.UTC),
		},
		{
			name:      "single day",
			firstDay:  "2026-03-15",
			lastDay:   "2026-03-15",
			wantFirst: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			wantLast:  time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC),
		},
		{name: "missing firstDay", lastDay: "2026-03-31", wantErr: true},
		{name: "missing lastDay", firstDay: "2026-03-01", wantErr: true},
		{name: "inverted range", firstDay: "2026-03-31", lastDay: "2026-03-01", wantErr: true},
		{name: "garbage", firstDay: "yesterday", lastDay: "2026-03-31", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := url.Values{}
			if tt.firstDay != "" {
				query.Set("firstDay", tt.firstDay)
			}
			if tt.lastDay != "" {
				query.Set("lastDay", tt.lastDay)
			}

			first, last, err := ParseDayRange(query)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, core.ErrInvalidRange) {
					t.Errorf("error %v does not wrap ErrInvalidRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !first.Equal(tt.wantFirst) {
				t.Errorf("first = %v, want %v", first, tt.wantFirst)
			}
			if !last.Equal(tt.wantLast) {
				t.Errorf("last = %v, want %v", last, tt.wantLast)
			}
		})
	}
}

func TestParseYear(t *testing.T) {
	year, err := ParseYear(url.Values{"year": {"2024"}})
	if err != nil || year != 2024 {
		t.Errorf("explicit: got (%d, %v), want (2024, nil)", year, err)
	}

	if _, err := ParseYear(url.Values{}); !errors.Is(err, core.ErrInvalidRange) {
		t.Errorf("missing year: got %v, want ErrInvalidRange", err)
	}
	if _, err := ParseYear(url.Values{"year": {"twenty"}}); !errors.Is(err, core.ErrInvalidRange) {
		t.Errorf("garbage year: got %v, want ErrInvalidRange", err)
	}
	if _, err := ParseYear(url.Values{"year": {"0"}}); !errors.Is(err, core.ErrInvalidRange) {
		t.Errorf("year zero: got %v, want ErrInvalidRange", err)
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth(url.Values{"month": {"2026-01"}})
	if err != nil || got.Month() != time.January || got.Year() != 2026 {
		t.Errorf("year-month: got (%v, %v)", got, err)
	}

	got, err = ParseMonth(url.Values{"month": {"2026-05-20"}})
	if err != nil || got.Month() != time.May {
		t.Errorf("bare date: got (%v, %v)", got, err)
	}

	if _, err := ParseMonth(url.Values{}); !errors.Is(err, core.ErrInvalidRange) {
		t.Errorf("missing month: got %v, want ErrInvalidRange", err)
	}
	if _, err := ParseMonth(url.Values{"month": {"May"}}); !errors.Is(err, core.ErrInvalidRange) {
		t.Errorf("garbage month: got %v, want ErrInvalidRange", err)
	}
}
