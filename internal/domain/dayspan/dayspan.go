package dayspan

import (
	"errors"
	"time"
)

var (
	ErrInvalidSpan = errors.New("dayspan: to must not precede from")
)

// Day strips the time-of-day component, anchoring the value at midnight UTC.
// Calendar comparisons in this codebase always go through Day first; comparing
// two raw timestamps at day granularity is exactly the defect this avoids.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// Span is an inclusive interval of calendar days [From, To].
type Span struct {
	From time.Time
	To   time.Time
}

// New normalizes both bounds to day granularity and validates their order.
func New(from, to time.Time) (Span, error) {
	s := Span{From: Day(from), To: Day(to)}
	if err := s.Validate(); err != nil {
		return Span{}, err
	}
	return s, nil
}

func (s Span) Validate() error {
	if s.From.IsZero() || s.To.IsZero() {
		return ErrInvalidSpan
	}
	if s.To.Before(s.From) {
		return ErrInvalidSpan
	}
	return nil
}

// Days returns the number of calendar days the span covers, inclusive.
func (s Span) Days() int {
	return int(Day(s.To).Sub(Day(s.From))/(24*time.Hour)) + 1
}

// Contains reports whether the given day falls inside the span.
func (s Span) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(s.From)) && !d.After(Day(s.To))
}

// Overlaps reports whether the two inclusive spans share at least one day.
func (s Span) Overlaps(other Span) bool {
	return !Day(s.From).After(Day(other.To)) && !Day(other.From).After(Day(s.To))
}

// Contiguous reports whether other starts no later than the day after s ends.
// Overlapping spans are contiguous as well; a one-day gap is not.
func (s Span) Contiguous(other Span) bool {
	return !Day(other.From).After(Day(s.To).AddDate(0, 0, 1))
}

// Merge extends the span to cover other. It is the caller's job to check
// Contiguous or Overlaps first; Merge itself simply takes the envelope.
func (s Span) Merge(other Span) Span {
	out := Span{From: Day(s.From), To: Day(s.To)}
	if f := Day(other.From); f.Before(out.From) {
		out.From = f
	}
	if t := Day(other.To); t.After(out.To) {
		out.To = t
	}
	return out
}
