// Package http provides the JSON API server and handler implementations.
//
// This file implements utilities for parsing and validating request
// parameters: date ranges, years and months arrive as query strings in a
// couple of accepted layouts.

package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"
)

const dateOnlyLayout = "2006-01-02"

// parseDate accepts a bare date or a full RFC 3339 timestamp. The bool
// reports whether the value carried only a date.
func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateOnlyLayout, s, time.UTC); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: unrecognized date %q", core.ErrInvalidRange, s)
}

// ParseDayRange extracts the required firstDay and lastDay parameters. A
// bare lastDay date is extended to the end of that day so the range stays
// inclusive on both ends.
func ParseDayRange(query url.Values) (first, last time.Time, err error) {
	firstStr := strings.TrimSpace(query.Get("firstDay"))
	lastStr := strings.TrimSpace(query.Get("lastDay"))
	if firstStr == "" || lastStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: firstDay and lastDay are required", core.ErrInvalidRange)
	}

	first, _, err = parseDate(firstStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last, bare, err := parseDate(lastStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if bare {
		last = last.Add(24*time.Hour - time.Second)
	}
	if last.Before(first) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: lastDay before firstDay", core.ErrInvalidRange)
	}
	return first, last, nil
}

// ParseYear extracts the required year parameter.
func ParseYear(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return 0, fmt.Errorf("%w: year is required", core.ErrInvalidRange)
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("%w: invalid year %q", core.ErrInvalidRange, v)
	}
	return year, nil
}

// ParseMonth extracts the required month parameter as a reference instant
// inside the wanted calendar month.
func ParseMonth(query url.Values) (time.Time, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: month is required", core.ErrInvalidRange)
	}
	if t, err := time.ParseInLocation("2006-01", v, time.UTC); err == nil {
		return t, nil
	}
	if t, _, err := parseDate(v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized month %q", core.ErrInvalidRange, v)
}
