package stocks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hoteldesk/internal/domain/calendar"
	"hoteldesk/internal/domain/dayspan"
	"hoteldesk/internal/domain/event"
	"hoteldesk/internal/domain/stock"
)

// Notifier mirrors the queue's notice surface for stock mutations.
type Notifier interface {
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}

// DayCell is one rendered calendar day with the entries visible on it,
// longest span first.
type DayCell struct {
	Date           time.Time
	InCurrentMonth bool
	Entries        []stock.Entry
}

// Page is a fully assembled calendar view.
type Page struct {
	Anchor     time.Time
	View       calendar.ViewMode
	Period     string
	NextAnchor time.Time
	PrevAnchor time.Time
	Days       []DayCell
}

// Service assembles calendar pages and guards stock mutations. All remote
// work goes through the Inventory port; validation failures never do.
type Service struct {
	inventory stock.Inventory
	sink      event.Sink
	notices   Notifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(inventory stock.Inventory, sink event.Sink, notices Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{inventory: inventory, sink: sink, notices: notices, logger: logger, now: time.Now}
}

// CalendarPage fetches the stock covering the grid, normalizes it to day
// granularity, merges continuous runs and distributes the result over the
// day cells.
func (s *Service) CalendarPage(ctx context.Context, anchor time.Time, mode calendar.ViewMode, categoryID string) (Page, error) {
	grid := calendar.BuildDayGrid(anchor, mode)
	span := dayspan.Span{From: grid[0].Date, To: grid[len(grid)-1].Date}

	entries, err := s.inventory.ByRange(ctx, span, categoryID)
	if err != nil {
		return Page{}, fmt.Errorf("stocks: fetch for calendar: %w", err)
	}
	grouped := s.prepare(entries)

	days := make([]DayCell, 0, len(grid))
	for _, cell := range grid {
		days = append(days, DayCell{
			Date:           cell.Date,
			InCurrentMonth: cell.InCurrentMonth,
			Entries:        stock.SortByDuration(stock.ForDay(cell.Date, grouped)),
		})
	}

	return Page{
		Anchor:     dayspan.Day(anchor),
		View:       mode,
		Period:     calendar.FormatPeriod(anchor, mode),
		NextAnchor: calendar.Next(anchor, mode),
		PrevAnchor: calendar.Prev(anchor, mode),
		Days:       days,
	}, nil
}

// Entries returns the grouped stock for an arbitrary range, for clients that
// render their own layout.
func (s *Service) Entries(ctx context.Context, from, to time.Time, categoryID string) ([]stock.Entry, error) {
	span, err := dayspan.New(from, to)
	if err != nil {
		return nil, fmt.Errorf("stocks: %w", err)
	}
	entries, err := s.inventory.ByRange(ctx, span, categoryID)
	if err != nil {
		return nil, fmt.Errorf("stocks: fetch: %w", err)
	}
	return s.prepare(entries), nil
}

func (s *Service) prepare(entries []stock.Entry) []stock.Entry {
	normalized := make([]stock.Entry, 0, len(entries))
	for _, e := range entries {
		normalized = append(normalized, e.Normalize())
	}
	return stock.GroupContinuous(normalized)
}

// BulkCreate puts quantity rooms on sale at the given nightly price for every
// day of the range. The validation gate runs first; the backend's inventory
// rejection is translated into a capacity error with the remaining count.
func (s *Service) BulkCreate(ctx context.Context, params stock.MutationParams) (int, error) {
	if err := params.ValidateFull(); err != nil {
		s.reportValidation(err)
		return 0, err
	}
	created, err := s.inventory.BulkCreate(ctx, params)
	if err != nil {
		if capErr, ok := parseCapacityError(err); ok {
			if s.notices != nil {
				s.notices.Error(fmt.Sprintf("Not enough rooms: only %d more can be put on sale for this range", capErr.Remaining()))
			}
			return 0, capErr
		}
		s.reportRemote("bulk create", err)
		return 0, fmt.Errorf("stocks: bulk create: %w", err)
	}
	if s.notices != nil {
		s.notices.Success(fmt.Sprintf("Created %d stock entries", created))
	}
	s.publish(ctx, event.NewStockBatchCreated(params.CategoryID, dayspan.Day(params.From), dayspan.Day(params.To), params.Price, params.Quantity, created, s.now()))
	return created, nil
}

// UpdatePrice reprices the sub-range. Quantity is not part of this
// operation and is ignored by the gate.
func (s *Service) UpdatePrice(ctx context.Context, params stock.MutationParams) (int, error) {
	if err := params.ValidatePrice(); err != nil {
		s.reportValidation(err)
		return 0, err
	}
	updated, err := s.inventory.UpdatePrice(ctx, params)
	if err != nil {
		s.reportRemote("price update", err)
		return 0, fmt.Errorf("stocks: price update: %w", err)
	}
	if s.notices != nil {
		s.notices.Success(fmt.Sprintf("Updated price on %d stock entries", updated))
	}
	s.publish(ctx, event.NewStockPriceUpdated(params.CategoryID, dayspan.Day(params.From), dayspan.Day(params.To), params.Price, updated, s.now()))
	return updated, nil
}

// Delete takes quantity rooms off sale for the range.
func (s *Service) Delete(ctx context.Context, params stock.MutationParams) (int, error) {
	if err := params.ValidateQuantity(); err != nil {
		s.reportValidation(err)
		return 0, err
	}
	deleted, err := s.inventory.Delete(ctx, params)
	if err != nil {
		s.reportRemote("delete", err)
		return 0, fmt.Errorf("stocks: delete: %w", err)
	}
	if s.notices != nil {
		s.notices.Success(fmt.Sprintf("Removed %d stock entries", deleted))
	}
	s.publish(ctx, event.NewStockReleased(params.CategoryID, dayspan.Day(params.From), dayspan.Day(params.To), params.Quantity, deleted, s.now()))
	return deleted, nil
}

func (s *Service) reportValidation(err error) {
	if s.notices != nil {
		s.notices.Warn(err.Error())
	}
}

func (s *Service) reportRemote(op string, err error) {
	s.logger.Error("stock mutation failed", "op", op, "error", err)
	if s.notices != nil {
		s.notices.Error(fmt.Sprintf("Stock %s failed, please retry", op))
	}
}

func (s *Service) publish(ctx context.Context, ev event.Event) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Publish(ctx, ev); err != nil {
		s.logger.Warn("event publish failed", "event", ev.EventName(), "error", err)
	}
}
