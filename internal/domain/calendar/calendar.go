package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hoteldesk/internal/domain/dayspan"
)

var (
	ErrUnknownViewMode = errors.New("calendar: unknown view mode")
)

// ViewMode selects the shape of the day grid.
type ViewMode string

const (
	ViewMonth  ViewMode = "month"
	ViewWeek   ViewMode = "week"
	ViewBiweek ViewMode = "biweek"
)

// ParseViewMode maps a request string to a ViewMode, defaulting to month
// when empty.
func ParseViewMode(raw string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ViewMonth:
		return ViewMonth, nil
	case ViewWeek:
		return ViewWeek, nil
	case ViewBiweek:
		return ViewBiweek, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownViewMode, raw)
	}
}

// Day is a single cell of the rendered grid. InCurrentMonth marks padding
// cells borrowed from neighboring months in the month view; week and biweek
// views always set it.
type Day struct {
	Date           time.Time
	InCurrentMonth bool
}

// mondayOffset returns how many days the given date sits after the Monday of
// its ISO week. Sunday counts as the last day of the week, not the first.
func mondayOffset(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}

// StartOfWeek returns the Monday of the week the given date falls in, at day
// granularity.
func StartOfWeek(t time.Time) time.Time {
	d := dayspan.Day(t)
	return d.AddDate(0, 0, -mondayOffset(d))
}

// BuildDayGrid produces the ordered cells for the given anchor and view mode.
// Month mode always yields 42 cells (six Monday-aligned weeks) so the grid
// never changes height while navigating; week yields 7, biweek 14. The
// function is pure: same inputs, same grid.
func BuildDayGrid(anchor time.Time, mode ViewMode) []Day {
	switch mode {
	case ViewWeek:
		return weekCells(anchor, 7)
	case ViewBiweek:
		return weekCells(anchor, 14)
	default:
		return monthCells(anchor)
	}
}

func weekCells(anchor time.Time, n int) []Day {
	start := StartOfWeek(anchor)
	cells := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		cells = append(cells, Day{Date: start.AddDate(0, 0, i), InCurrentMonth: true})
	}
	return cells
}

func monthCells(anchor time.Time) []Day {
	d := dayspan.Day(anchor)
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -mondayOffset(first))

	cells := make([]Day, 0, 42)
	for i := 0; i < 42; i++ {
		date := start.AddDate(0, 0, i)
		cells = append(cells, Day{
			Date:           date,
			InCurrentMonth: date.Month() == first.Month() && date.Year() == first.Year(),
		})
	}
	return cells
}

// Span returns the inclusive day range the grid covers, used to scope the
// stock fetch to exactly what will be rendered.
func Span(anchor time.Time, mode ViewMode) dayspan.Span {
	cells := BuildDayGrid(anchor, mode)
	return dayspan.Span{From: cells[0].Date, To: cells[len(cells)-1].Date}
}

// Next advances the anchor by one period: a calendar month (landing on the
// first of that month), 7 days or 14 days.
func Next(anchor time.Time, mode ViewMode) time.Time {
	return step(anchor, mode, 1)
}

// Prev moves the anchor back by one period.
func Prev(anchor time.Time, mode ViewMode) time.Time {
	return step(anchor, mode, -1)
}

func step(anchor time.Time, mode ViewMode, dir int) time.Time {
	d := dayspan.Day(anchor)
	switch mode {
	case ViewWeek:
		return d.AddDate(0, 0, dir*7)
	case ViewBiweek:
		return d.AddDate(0, 0, dir*14)
	default:
		// Step from the first of the month: AddDate on a day-31 anchor would
		// normalize past short months (Jan 31 + 1 month = Mar 3). The grid
		// only depends on the anchor's month, so day 1 loses nothing.
		return time.Date(d.Year(), d.Month()+time.Month(dir), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Today resets the anchor to the provided current time, normalized to a day.
func Today(now time.Time) time.Time {
	return dayspan.Day(now)
}

// FormatPeriod renders the heading for the current period: "January 2026" in
// month mode, "2 – 8 June 2025" for week and biweek modes.
func FormatPeriod(anchor time.Time, mode ViewMode) string {
	d := dayspan.Day(anchor)
	switch mode {
	case ViewWeek, ViewBiweek:
		days := 6
		if mode == ViewBiweek {
			days = 13
		}
		start := StartOfWeek(d)
		end := start.AddDate(0, 0, days)
		return fmt.Sprintf("%d – %d %s %d", start.Day(), end.Day(), end.Month(), end.Year())
	default:
		return fmt.Sprintf("%s %d", d.Month(), d.Year())
	}
}
