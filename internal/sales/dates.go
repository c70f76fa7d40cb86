// Package sales computes the dashboard KPIs from order lines.
package sales

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blockedby/sales-dashboard/internal/models"
)

// ErrInvalidDate is returned when a start or end value cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// Range is an inclusive calendar-date filter. A zero bound is unbounded.
// An end before the start is valid and matches nothing.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange parses optional start/end query values.
// Empty values leave that side unbounded.
func ParseRange(start, end string) (Range, error) {
	var r Range

	if v := strings.TrimSpace(start); v != "" {
		t, err := parseDay(v)
		if err != nil {
			return Range{}, fmt.Errorf("start %q: %w", v, ErrInvalidDate)
		}
		r.Start = t
	}
	if v := strings.TrimSpace(end); v != "" {
		t, err := parseDay(v)
		if err != nil {
			return Range{}, fmt.Errorf("end %q: %w", v, ErrInvalidDate)
		}
		r.End = t
	}
	return r, nil
}

func parseDay(value string) (time.Time, error) {
	if t, err := time.Parse(models.DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return truncateDay(t), nil
}

// truncateDay drops the clock part while keeping the calendar date the value was written in.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether the calendar date of t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	day := truncateDay(t)
	if !r.Start.IsZero() && day.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && day.After(r.End) {
		return false
	}
	return true
}

// StartLabel returns the start date as sent by the client, or "" when unbounded.
func (r Range) StartLabel() string {
	if r.Start.IsZero() {
		return ""
	}
	return r.Start.Format(models.DateLayout)
}

// EndLabel returns the end date as sent by the client, or "" when unbounded.
func (r Range) EndLabel() string {
	if r.End.IsZero() {
		return ""
	}
	return r.End.Format(models.DateLayout)
}

// EndExclusive returns the first instant after the range, for SQL half-open filters.
func (r Range) EndExclusive() time.Time {
	if r.End.IsZero() {
		return time.Time{}
	}
	return r.End.AddDate(0, 0, 1)
}
