package calendar

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseViewMode(t *testing.T) {
	cases := []struct {
		raw  string
		want ViewMode
	}{
		{"", ViewMonth},
		{"month", ViewMonth},
		{"week", ViewWeek},
		{"  Biweek ", ViewBiweek},
	}
	for _, tc := range cases {
		got, err := ParseViewMode(tc.raw)
		if err != nil {
			t.Fatalf("ParseViewMode(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Errorf("ParseViewMode(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
	if _, err := ParseViewMode("quarter"); !errors.Is(err, ErrUnknownViewMode) {
		t.Fatalf("err = %v, want ErrUnknownViewMode", err)
	}
}

func TestStartOfWeek(t *testing.T) {
	cases := []struct {
		name   string
		anchor time.Time
		want   time.Time
	}{
		{"monday stays", date(2025, time.June, 2), date(2025, time.June, 2)},
		{"wednesday", date(2025, time.June, 4), date(2025, time.June, 2)},
		{"sunday belongs to preceding monday", date(2025, time.June, 8), date(2025, time.June, 2)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StartOfWeek(tc.anchor)
			if !got.Equal(tc.want) {
				t.Fatalf("StartOfWeek(%v) = %v, want %v", tc.anchor, got, tc.want)
			}
		})
	}
}

func TestBuildDayGridCellCounts(t *testing.T) {
	anchor := date(2025, time.June, 15)
	counts := map[ViewMode]int{ViewMonth: 42, ViewWeek: 7, ViewBiweek: 14}
	for mode, want := range counts {
		if got := len(BuildDayGrid(anchor, mode)); got != want {
			t.Errorf("%s grid has %d cells, want %d", mode, got, want)
		}
	}
}

func TestMonthGridStartsOnMonday(t *testing.T) {
	// June 2025 starts on a Sunday, so the grid must reach back to Monday
	// May 26 and include six days of padding.
	grid := BuildDayGrid(date(2025, time.June, 15), ViewMonth)
	if !grid[0].Date.Equal(date(2025, time.May, 26)) {
		t.Fatalf("grid starts at %v, want 2025-05-26", grid[0].Date)
	}
	if grid[0].InCurrentMonth {
		t.Fatal("padding cell marked as current month")
	}
	for i := 0; i < 6; i++ {
		if grid[i].InCurrentMonth {
			t.Fatalf("cell %d (%v) is May padding but marked current", i, grid[i].Date)
		}
	}
	if !grid[6].Date.Equal(date(2025, time.June, 1)) || !grid[6].InCurrentMonth {
		t.Fatalf("cell 6 = %+v, want June 1 in current month", grid[6])
	}
}

func TestMonthGridAlwaysSixWeeks(t *testing.T) {
	// February 2027 fits in exactly four Monday-aligned weeks; the grid must
	// still render six so the layout height never jumps.
	grid := BuildDayGrid(date(2027, time.February, 10), ViewMonth)
	if len(grid) != 42 {
		t.Fatalf("grid has %d cells, want 42", len(grid))
	}
	last := grid[len(grid)-1]
	if last.InCurrentMonth {
		t.Fatalf("last cell %v should be March padding", last.Date)
	}
}

func TestWeekGridConsecutiveDays(t *testing.T) {
	grid := BuildDayGrid(date(2025, time.June, 4), ViewWeek)
	for i, cell := range grid {
		want := date(2025, time.June, 2).AddDate(0, 0, i)
		if !cell.Date.Equal(want) {
			t.Fatalf("cell %d = %v, want %v", i, cell.Date, want)
		}
		if !cell.InCurrentMonth {
			t.Fatalf("week cell %d not marked in current month", i)
		}
	}
}

func TestSpanCoversGrid(t *testing.T) {
	s := Span(date(2025, time.June, 4), ViewBiweek)
	if !s.From.Equal(date(2025, time.June, 2)) || !s.To.Equal(date(2025, time.June, 15)) {
		t.Fatalf("biweek span = %+v", s)
	}
}

func TestNavigation(t *testing.T) {
	anchor := date(2025, time.January, 31)
	cases := []struct {
		name string
		got  time.Time
		want time.Time
	}{
		{"next month from day 31", Next(anchor, ViewMonth), date(2025, time.February, 1)},
		{"prev month from day 31", Prev(date(2025, time.March, 31), ViewMonth), date(2025, time.February, 1)},
		{"next month across year", Next(date(2025, time.December, 15), ViewMonth), date(2026, time.January, 1)},
		{"prev week", Prev(anchor, ViewWeek), date(2025, time.January, 24)},
		{"next biweek", Next(anchor, ViewBiweek), date(2025, time.February, 14)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.got.Equal(tc.want) {
				t.Fatalf("= %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestNavigationRoundTrip(t *testing.T) {
	anchor := date(2025, time.June, 10)
	for _, mode := range []ViewMode{ViewWeek, ViewBiweek} {
		if back := Prev(Next(anchor, mode), mode); !back.Equal(anchor) {
			t.Errorf("%s: prev(next(%v)) = %v", mode, anchor, back)
		}
	}

	// Month steps land on the first, so a first-of-month anchor round-trips
	// exactly, and any anchor keeps its month.
	first := date(2025, time.June, 1)
	if back := Prev(Next(first, ViewMonth), ViewMonth); !back.Equal(first) {
		t.Errorf("month: prev(next(%v)) = %v", first, back)
	}
	if back := Prev(Next(anchor, ViewMonth), ViewMonth); back.Month() != anchor.Month() || back.Year() != anchor.Year() {
		t.Errorf("month: prev(next(%v)) landed in %v %d", anchor, back.Month(), back.Year())
	}
}

func TestMonthNavigationReachesEveryMonth(t *testing.T) {
	cur := date(2025, time.January, 31)
	for want := time.February; want <= time.December; want++ {
		cur = Next(cur, ViewMonth)
		if cur.Month() != want {
			t.Fatalf("forward: reached %v, want %v", cur.Month(), want)
		}
	}
	cur = date(2025, time.December, 31)
	for want := time.November; want >= time.January; want-- {
		cur = Prev(cur, ViewMonth)
		if cur.Month() != want {
			t.Fatalf("backward: reached %v, want %v", cur.Month(), want)
		}
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2025, time.June, 10, 15, 30, 0, 0, time.UTC)
	if got := Today(now); !got.Equal(date(2025, time.June, 10)) {
		t.Fatalf("Today = %v", got)
	}
}

func TestFormatPeriod(t *testing.T) {
	cases := []struct {
		anchor time.Time
		mode   ViewMode
		want   string
	}{
		{date(2026, time.January, 15), ViewMonth, "January 2026"},
		{date(2025, time.June, 4), ViewWeek, "2 – 8 June 2025"},
		{date(2025, time.June, 4), ViewBiweek, "2 – 15 June 2025"},
	}
	for _, tc := range cases {
		if got := FormatPeriod(tc.anchor, tc.mode); got != tc.want {
			t.Errorf("FormatPeriod(%v, %s) = %q, want %q", tc.anchor, tc.mode, got, tc.want)
		}
	}
}
