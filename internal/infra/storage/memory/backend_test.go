package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"hoteldesk/internal/domain/dayspan"
	"hoteldesk/internal/domain/room"
	"hoteldesk/internal/domain/stock"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seeded(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	b.SeedRooms([]room.Room{
		{ID: "r1", Number: "101", CategoryID: "std", CategoryName: "Standard", Status: room.StatusAvailable},
		{ID: "r2", Number: "102", CategoryID: "std", CategoryName: "Standard", Status: room.StatusCleaning},
		{ID: "r3", Number: "103", CategoryID: "std", CategoryName: "Standard", Status: room.StatusAvailable},
		{ID: "r4", Number: "201", CategoryID: "dlx", CategoryName: "Deluxe", Status: room.StatusAvailable},
		{ID: "r5", Number: "202", CategoryID: "std", CategoryName: "Standard", Deleted: true},
	})
	return b
}

func params(cat string, from, to time.Time, price float64, qty int) stock.MutationParams {
	return stock.MutationParams{CategoryID: cat, From: from, To: to, Price: price, Quantity: qty}
}

func TestListSortedAndFiltered(t *testing.T) {
	b := seeded(t)
	got, err := b.List(context.Background(), room.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("rooms = %d, want 4 (deleted hidden)", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Number > got[i].Number {
			t.Fatalf("not sorted by number: %+v", got)
		}
	}
}

func TestUpdateStatus(t *testing.T) {
	b := seeded(t)
	ctx := context.Background()
	if err := b.UpdateStatus(ctx, "r1", room.StatusMaintenance); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	r, err := b.ByID(ctx, "r1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if r.Status != room.StatusMaintenance {
		t.Fatalf("status = %s", r.Status)
	}
	if err := b.UpdateStatus(ctx, "ghost", room.StatusAvailable); err != room.ErrNotFound {
		t.Fatalf("unknown room err = %v", err)
	}
	if err := b.UpdateStatus(ctx, "r1", room.Status("nope")); err != room.ErrUnknownStatus {
		t.Fatalf("bad status err = %v", err)
	}
}

func TestBulkCreateWritesPerDayRows(t *testing.T) {
	b := seeded(t)
	ctx := context.Background()

	created, err := b.BulkCreate(ctx, params("std", date(2025, time.June, 1), date(2025, time.June, 3), 100, 2))
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if created != 3 {
		t.Fatalf("created = %d, want one row per day", created)
	}

	span := dayspan.Span{From: date(2025, time.June, 1), To: date(2025, time.June, 3)}
	rows, err := b.ByRange(ctx, span, "std")
	if err != nil {
		t.Fatalf("ByRange: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	for _, r := range rows {
		if r.Span.Days() != 1 {
			t.Fatalf("row spans %d days: %+v", r.Span.Days(), r)
		}
		if r.CategoryName != "Standard" {
			t.Fatalf("category name not resolved: %+v", r)
		}
	}
}

func TestBulkCreateEnforcesRoomCount(t *testing.T) {
	b := seeded(t)
	ctx := context.Background()

	// Three non-deleted std rooms: 2 on sale leaves room for 1 more.
	if _, err := b.BulkCreate(ctx, params("std", date(2025, time.June, 1), date(2025, time.June, 3), 100, 2)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := b.BulkCreate(ctx, params("std", date(2025, time.June, 2), date(2025, time.June, 4), 100, 2))
	if err == nil {
		t.Fatal("oversell accepted")
	}
	if !strings.Contains(err.Error(), "Current stock: 2") || !strings.Contains(err.Error(), "Total rooms: 3") {
		t.Fatalf("error lacks the inventory contract: %v", err)
	}

	// Nothing may have been written for the rejected range.
	rows, _ := b.ByRange(ctx, dayspan.Span{From: date(2025, time.June, 4), To: date(2025, time.June, 4)}, "std")
	if len(rows) != 0 {
		t.Fatalf("partial write after rejection: %+v", rows)
	}

	// The free slot is still usable.
	if _, err := b.BulkCreate(ctx, params("std", date(2025, time.June, 2), date(2025, time.June, 4), 90, 1)); err != nil {
		t.Fatalf("remaining capacity rejected: %v", err)
	}
}

func TestByRangeScopesByCategory(t *testing.T) {
	b := seeded(t)
	ctx := context.Background()
	b.BulkCreate(ctx, params("std", date(2025, time.June, 1), date(2025, time.June, 2), 100, 1))
	b.BulkCreate(ctx, params("dlx", date(2025, time.June, 1), date(2025, time.June, 2), 200, 1))

	span := dayspan.Span{From: date(2025, time.June, 1), To: date(2025, time.June, 2)}
	all, _ := b.ByRange(ctx, span, "")
	if len(all) != 4 {
		t.Fatalf("all rows = %d", len(all))
	}
	dlx, _ := b.ByRange(ctx, span, "dlx")
	if len(dlx) != 2 {
		t.Fatalf("dlx rows = %d", len(dlx))
	}
}

func TestUpdatePriceOverlappingRows(t *testing.T) {
	b := seeded(t)
	ctx := context.Background()
	b.BulkCreate(ctx, params("std", date(2025, time.June, 1), date(2025, time.June, 5), 100, 1))

	updated, err := b.UpdatePrice(ctx, params("std", date(2025, time.June, 2), date(2025, time.June, 3), 150, 0))
	if err != nil {
		t.Fatalf("UpdatePrice: %v", err)
	}
	if updated != 2 {
		t.Fatalf("updated = %d, want 2", updated)
	}

	rows, _ := b.ByRange(ctx, dayspan.Span{From: date(2025, time.June, 1), To: date(2025, time.June, 5)}, "std")
	repriced := 0
	for _, r := range rows {
		if r.Price == 150 {
			repriced++
		}
	}
	if repriced != 2 {
		t.Fatalf("repriced rows = %d: %+v", repriced, rows)
	}
}

func TestDeleteDrainsRows(t *testing.T) {
	b := seeded(t)
	ctx := context.Background()
	b.BulkCreate(ctx, params("std", date(2025, time.June, 1), date(2025, time.June, 2), 100, 2))

	// Taking 1 off keeps the rows with reduced quantity.
	if _, err := b.Delete(ctx, params("std", date(2025, time.June, 1), date(2025, time.June, 2), 0, 1)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	span := dayspan.Span{From: date(2025, time.June, 1), To: date(2025, time.June, 2)}
	rows, _ := b.ByRange(ctx, span, "std")
	if len(rows) != 2 || rows[0].Quantity != 1 {
		t.Fatalf("rows after partial delete = %+v", rows)
	}

	// Draining to zero removes them.
	if _, err := b.Delete(ctx, params("std", date(2025, time.June, 1), date(2025, time.June, 2), 0, 1)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rows, _ = b.ByRange(ctx, span, "std")
	if len(rows) != 0 {
		t.Fatalf("rows not drained: %+v", rows)
	}
}
