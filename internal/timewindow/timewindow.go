// Package timewindow resolves named reporting periods into half-open UTC
// intervals computed against the fixed business timezone (UTC+5:30).
package timewindow

import (
	"fmt"
	"strings"
	"time"
)

// BusinessZone is the reporting timezone. Fixed offset, no DST.
var BusinessZone = time.FixedZone("UTC+05:30", 5*3600+30*60)

// Period is a named reporting window. The values are the dashboard's display
// labels and double as the range_label sent to the upstream query endpoint.
type Period string

const (
	Today              Period = "Today"
	Yesterday          Period = "Yesterday"
	DayBeforeYesterday Period = "Day Before Yesterday"
	ThisMonth          Period = "This Month"
	LastMonth          Period = "Last Month"
	ThisYear           Period = "This Year"
	LastYear           Period = "Last Year"
	AllTime            Period = "All Time"
)

var periods = map[string]Period{
	"today":                Today,
	"yesterday":            Yesterday,
	"day_before_yesterday": DayBeforeYesterday,
	"this_month":           ThisMonth,
	"last_month":           LastMonth,
	"this_year":            ThisYear,
	"last_year":            LastYear,
	"all_time":             AllTime,
}

// ParsePeriod accepts a display label ("This Month") or its snake_case form
// ("this_month"), case-insensitively.
func ParsePeriod(s string) (Period, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	if p, ok := periods[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Previous returns the canonical comparison baseline for a period, if one is
// defined. Already-historical fixed periods and All Time have none.
func (p Period) Previous() (Period, bool) {
	switch p {
	case Today:
		return Yesterday, true
	case Yesterday:
		return DayBeforeYesterday, true
	case ThisMonth:
		return LastMonth, true
	case ThisYear:
		return LastYear, true
	}
	return "", false
}

// Window is a half-open UTC interval [Start, End). A nil Start is unbounded
// past; a nil End is open-ended up to the current moment.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Resolve computes the window for a period against now. Pure and total:
// every Period value yields a window, and AllTime yields the unbounded one.
func Resolve(p Period, now time.Time) Window {
	local := now.In(BusinessZone)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, BusinessZone)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, BusinessZone)
	yearStart := time.Date(local.Year(), 1, 1, 0, 0, 0, 0, BusinessZone)

	switch p {
	case Today:
		return Window{Start: utc(midnight)}
	case Yesterday:
		return Window{Start: utc(midnight.Add(-24 * time.Hour)), End: utc(midnight)}
	case DayBeforeYesterday:
		end := midnight.Add(-24 * time.Hour)
		return Window{Start: utc(end.Add(-24 * time.Hour)), End: utc(end)}
	case ThisMonth:
		return Window{Start: utc(monthStart)}
	case LastMonth:
		return Window{Start: utc(monthStart.AddDate(0, -1, 0)), End: utc(monthStart)}
	case ThisYear:
		return Window{Start: utc(yearStart)}
	case LastYear:
		return Window{Start: utc(yearStart.AddDate(-1, 0, 0)), End: utc(yearStart)}
	}
	return Window{} // AllTime and anything unrecognized: unbounded
}

func utc(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}

// Contains reports membership of an instant in the half-open interval.
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && !t.Before(*w.End) {
		return false
	}
	return true
}

// Unbounded reports whether the window has no bounds at all (All Time).
func (w Window) Unbounded() bool {
	return w.Start == nil && w.End == nil
}

// StartParam and EndParam render the bounds as the ISO-8601 query parameters
// the upstream endpoint expects; an unset bound renders empty.

func (w Window) StartParam() string {
	if w.Start == nil {
		return ""
	}
	return w.Start.Format(time.RFC3339)
}

func (w Window) EndParam() string {
	if w.End == nil {
		return ""
	}
	return w.End.Format(time.RFC3339)
}
