package event

import (
	"context"
	"time"
)

// Event is a fact about a confirmed state change, published after the
// authoritative backend acknowledged the mutation.
type Event interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Sink delivers events to whatever transport is configured. Publishing is
// best-effort: a failed publish must never fail the mutation that produced
// the event.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

type base struct {
	Aggregate string    `json:"aggregate_id"`
	At        time.Time `json:"occurred_at"`
}

func (b base) AggregateID() string   { return b.Aggregate }
func (b base) OccurredAt() time.Time { return b.At }

// RoomStatusChanged is published once a status transition is confirmed.
type RoomStatusChanged struct {
	base
	RoomID     string `json:"room_id"`
	RoomNumber string `json:"room_number"`
	From       string `json:"from"`
	To         string `json:"to"`
}

func NewRoomStatusChanged(roomID, number, from, to string, at time.Time) RoomStatusChanged {
	return RoomStatusChanged{base: base{Aggregate: roomID, At: at.UTC()}, RoomID: roomID, RoomNumber: number, From: from, To: to}
}

func (RoomStatusChanged) EventName() string { return "room.status_changed" }

// StockBatchCreated is published after a bulk create succeeded.
type StockBatchCreated struct {
	base
	CategoryID string    `json:"category_id"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Price      float64   `json:"price"`
	Quantity   int       `json:"quantity"`
	Created    int       `json:"created"`
}

func (StockBatchCreated) EventName() string { return "stock.batch_created" }

// StockPriceUpdated is published after a price update succeeded.
type StockPriceUpdated struct {
	base
	CategoryID string    `json:"category_id"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Price      float64   `json:"price"`
	Updated    int       `json:"updated"`
}

func (StockPriceUpdated) EventName() string { return "stock.price_updated" }

// StockReleased is published after a quantity-scoped delete succeeded.
type StockReleased struct {
	base
	CategoryID string    `json:"category_id"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Quantity   int       `json:"quantity"`
	Deleted    int       `json:"deleted"`
}

func (StockReleased) EventName() string { return "stock.released" }

// NewStockBatchCreated fills the aggregate from the category so all stock
// events for one category partition together.
func NewStockBatchCreated(categoryID string, from, to time.Time, price float64, qty, created int, at time.Time) StockBatchCreated {
	return StockBatchCreated{base: base{Aggregate: categoryID, At: at.UTC()}, CategoryID: categoryID, From: from, To: to, Price: price, Quantity: qty, Created: created}
}

func NewStockPriceUpdated(categoryID string, from, to time.Time, price float64, updated int, at time.Time) StockPriceUpdated {
	return StockPriceUpdated{base: base{Aggregate: categoryID, At: at.UTC()}, CategoryID: categoryID, From: from, To: to, Price: price, Updated: updated}
}

func NewStockReleased(categoryID string, from, to time.Time, qty, deleted int, at time.Time) StockReleased {
	return StockReleased{base: base{Aggregate: categoryID, At: at.UTC()}, CategoryID: categoryID, From: from, To: to, Quantity: qty, Deleted: deleted}
}
