package stock

import (
	"sort"
	"time"
)

// GroupContinuous merges runs of entries that belong to the same category,
// carry the same price and quantity, and sit contiguously (or overlap) on the
// calendar. Entries are first ordered by (category, from date) so ties merge
// deterministically; the result of grouping an already-grouped list is the
// list itself.
func GroupContinuous(entries []Entry) []Entry {
	if len(entries) <= 1 {
		return append([]Entry(nil), entries...)
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CategoryID != sorted[j].CategoryID {
			return sorted[i].CategoryID < sorted[j].CategoryID
		}
		return sorted[i].Span.From.Before(sorted[j].Span.From)
	})

	out := make([]Entry, 0, len(sorted))
	acc := sorted[0]
	for _, next := range sorted[1:] {
		if acc.mergeable(next) {
			acc.Span = acc.Span.Merge(next.Span)
			continue
		}
		out = append(out, acc)
		acc = next
	}
	return append(out, acc)
}

func (e Entry) mergeable(next Entry) bool {
	return e.CategoryID == next.CategoryID &&
		e.Price == next.Price &&
		e.Quantity == next.Quantity &&
		e.Span.Contiguous(next.Span)
}

// SortByDuration orders entries longest span first. The sort is stable so
// equal-duration entries keep their relative input order.
func SortByDuration(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Duration() > out[j].Duration()
	})
	return out
}

// ForDay returns every entry whose span covers the given day, preserving
// input order.
func ForDay(day time.Time, entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Covers(day) {
			out = append(out, e)
		}
	}
	return out
}
