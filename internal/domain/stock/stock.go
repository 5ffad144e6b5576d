package stock

import (
	"context"
	"errors"
	"time"

	"hoteldesk/internal/domain/dayspan"
)

var (
	ErrCategoryRequired = errors.New("stock: category is required")
	ErrDatesRequired    = errors.New("stock: both dates are required")
	ErrInvalidSpan      = errors.New("stock: to date precedes from date")
	ErrNonPositivePrice = errors.New("stock: price must be positive")
	ErrNonPositiveQty   = errors.New("stock: quantity must be positive")
)

// Entry is a date-ranged record of available rooms and nightly price for one
// category. Bounds are inclusive calendar days.
type Entry struct {
	CategoryID   string
	CategoryName string
	Span         dayspan.Span
	Price        float64
	Quantity     int
}

// Normalize strips time-of-day from both bounds. Backend responses carry full
// timestamps; everything downstream assumes day granularity.
func (e Entry) Normalize() Entry {
	e.Span.From = dayspan.Day(e.Span.From)
	e.Span.To = dayspan.Day(e.Span.To)
	return e
}

// Duration is the entry's length in calendar days, inclusive.
func (e Entry) Duration() int {
	return e.Span.Days()
}

// Covers reports whether the entry is visible on the given day.
func (e Entry) Covers(t time.Time) bool {
	return e.Span.Contains(t)
}

// MutationParams carries the user-provided fields of a stock mutation. The
// same validation gate guards bulk create, price update and delete; an
// invalid mutation never reaches the backend port.
type MutationParams struct {
	CategoryID string
	From       time.Time
	To         time.Time
	Price      float64
	Quantity   int
}

// Validate checks the fields every mutation needs: category, ordered dates.
func (p MutationParams) Validate() error {
	if p.CategoryID == "" {
		return ErrCategoryRequired
	}
	if p.From.IsZero() || p.To.IsZero() {
		return ErrDatesRequired
	}
	if dayspan.Day(p.To).Before(dayspan.Day(p.From)) {
		return ErrInvalidSpan
	}
	return nil
}

// ValidatePrice additionally requires a positive nightly price.
func (p MutationParams) ValidatePrice() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Price <= 0 {
		return ErrNonPositivePrice
	}
	return nil
}

// ValidateQuantity additionally requires a positive quantity, for the
// quantity-scoped delete.
func (p MutationParams) ValidateQuantity() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Quantity <= 0 {
		return ErrNonPositiveQty
	}
	return nil
}

// ValidateFull requires every field, for bulk create.
func (p MutationParams) ValidateFull() error {
	if err := p.ValidatePrice(); err != nil {
		return err
	}
	if p.Quantity <= 0 {
		return ErrNonPositiveQty
	}
	return nil
}

// Inventory is the authoritative stock backend. Implementations: remote HTTP
// client, in-memory backend, Mongo store.
type Inventory interface {
	ByRange(ctx context.Context, span dayspan.Span, categoryID string) ([]Entry, error)
	BulkCreate(ctx context.Context, params MutationParams) (created int, err error)
	UpdatePrice(ctx context.Context, params MutationParams) (updated int, err error)
	Delete(ctx context.Context, params MutationParams) (deleted int, err error)
}
