package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hoteldesk/internal/domain/dayspan"
	"hoteldesk/internal/domain/room"
	"hoteldesk/internal/domain/stock"
)

// Backend is the in-memory implementation of the boundary ports, used for
// offline development and tests. Stock is kept as one row per calendar day,
// the same shape the real backend serves; the calendar engine's grouping
// pass is what folds those rows back into ranges.
type Backend struct {
	mu     sync.RWMutex
	rooms  map[string]room.Room
	stocks []stock.Entry
}

func NewBackend() *Backend {
	return &Backend{rooms: make(map[string]room.Room)}
}

// SeedRooms replaces the room set; fixtures go through here at startup.
func (b *Backend) SeedRooms(rooms []room.Room) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rooms = make(map[string]room.Room, len(rooms))
	for _, r := range rooms {
		b.rooms[r.ID] = r
	}
}

// List implements room.Directory.
func (b *Backend) List(ctx context.Context, filter room.Filter) ([]room.Room, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]room.Room, 0, len(b.rooms))
	for _, r := range b.rooms {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// ByID implements room.Directory.
func (b *Backend) ByID(ctx context.Context, id string) (room.Room, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.rooms[id]
	if !ok {
		return room.Room{}, room.ErrNotFound
	}
	return r, nil
}

// UpdateStatus implements room.Directory.
func (b *Backend) UpdateStatus(ctx context.Context, id string, status room.Status) error {
	if !status.Valid() {
		return room.ErrUnknownStatus
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.rooms[id]
	if !ok {
		return room.ErrNotFound
	}
	r.Status = status
	b.rooms[id] = r
	return nil
}

// totalRooms counts non-deleted rooms of the category; this is the inventory
// ceiling bulk create enforces. Callers hold the lock.
func (b *Backend) totalRooms(categoryID string) (int, string) {
	total := 0
	name := ""
	for _, r := range b.rooms {
		if r.CategoryID == categoryID && !r.Deleted {
			total++
			name = r.CategoryName
		}
	}
	return total, name
}

// ByRange implements stock.Inventory, returning the raw per-day rows that
// overlap the span.
func (b *Backend) ByRange(ctx context.Context, span dayspan.Span, categoryID string) ([]stock.Entry, error) {
	if err := span.Validate(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []stock.Entry
	for _, e := range b.stocks {
		if categoryID != "" && e.CategoryID != categoryID {
			continue
		}
		if e.Span.Overlaps(span) {
			out = append(out, e)
		}
	}
	return out, nil
}

// BulkCreate implements stock.Inventory. One row is created per day of the
// range. When the requested quantity would push any day past the category's
// room count, the whole request is rejected with the parseable inventory
// message and nothing is written.
func (b *Backend) BulkCreate(ctx context.Context, params stock.MutationParams) (int, error) {
	if err := params.ValidateFull(); err != nil {
		return 0, err
	}
	span, err := dayspan.New(params.From, params.To)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	total, name := b.totalRooms(params.CategoryID)
	worst := 0
	for day := span.From; !day.After(span.To); day = day.AddDate(0, 0, 1) {
		current := 0
		for _, e := range b.stocks {
			if e.CategoryID == params.CategoryID && e.Covers(day) {
				current += e.Quantity
			}
		}
		if current > worst {
			worst = current
		}
	}
	if worst+params.Quantity > total {
		return 0, fmt.Errorf("memory: insufficient inventory for category %s. Current stock: %d, Total rooms: %d", params.CategoryID, worst, total)
	}

	created := 0
	for day := span.From; !day.After(span.To); day = day.AddDate(0, 0, 1) {
		b.stocks = append(b.stocks, stock.Entry{
			CategoryID:   params.CategoryID,
			CategoryName: name,
			Span:         dayspan.Span{From: day, To: day},
			Price:        params.Price,
			Quantity:     params.Quantity,
		})
		created++
	}
	return created, nil
}

// UpdatePrice implements stock.Inventory, repricing every row that overlaps
// the span.
func (b *Backend) UpdatePrice(ctx context.Context, params stock.MutationParams) (int, error) {
	if err := params.ValidatePrice(); err != nil {
		return 0, err
	}
	span, err := dayspan.New(params.From, params.To)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	updated := 0
	for i, e := range b.stocks {
		if e.CategoryID != params.CategoryID || !e.Span.Overlaps(span) {
			continue
		}
		b.stocks[i].Price = params.Price
		updated++
	}
	return updated, nil
}

// Delete implements stock.Inventory, taking the requested quantity off sale
// for every overlapping row; rows drained to zero disappear.
func (b *Backend) Delete(ctx context.Context, params stock.MutationParams) (int, error) {
	if err := params.ValidateQuantity(); err != nil {
		return 0, err
	}
	span, err := dayspan.New(params.From, params.To)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	deleted := 0
	kept := b.stocks[:0]
	for _, e := range b.stocks {
		if e.CategoryID != params.CategoryID || !e.Span.Overlaps(span) {
			kept = append(kept, e)
			continue
		}
		deleted++
		e.Quantity -= params.Quantity
		if e.Quantity > 0 {
			kept = append(kept, e)
		}
	}
	b.stocks = kept
	return deleted, nil
}

var (
	_ stock.Inventory = (*Backend)(nil)
	_ room.Directory  = (*Backend)(nil)
)
