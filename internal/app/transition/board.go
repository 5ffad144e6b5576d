package transition

import (
	"context"
	"fmt"

	"hoteldesk/internal/domain/room"
)

// Column is one status lane of the room board. Rooms carry their effective
// status so a room with a pending transition already appears in its target
// column.
type Column struct {
	Status room.Status
	Rooms  []room.Room
}

// Board groups the filtered room list into status columns, preferring the
// pending optimistic status over the authoritative one.
func (q *Queue) Board(ctx context.Context, filter room.Filter) ([]Column, error) {
	rooms, err := q.rooms.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("transition: board listing: %w", err)
	}

	byStatus := make(map[room.Status][]room.Room, 4)
	for _, r := range rooms {
		eff := q.EffectiveStatus(r)
		r.Status = eff
		byStatus[eff] = append(byStatus[eff], r)
	}

	columns := make([]Column, 0, 4)
	for _, status := range room.Statuses() {
		columns = append(columns, Column{Status: status, Rooms: byStatus[status]})
	}
	return columns, nil
}

// DragStart records the room being dragged and the effective status column it
// left from.
func (q *Queue) DragStart(ctx context.Context, roomID string) error {
	r, err := q.rooms.ByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("transition: drag start: %w", err)
	}
	source := q.EffectiveStatus(r)
	q.mu.Lock()
	q.drag = &Drag{RoomID: roomID, Source: source}
	q.mu.Unlock()
	return nil
}

// Drop completes the gesture onto a status column. Dropping back onto the
// source column is the same-status no-op; any other target goes through
// Propose with all its preconditions. The drag state survives until DragEnd.
func (q *Queue) Drop(ctx context.Context, target room.Status) (Operation, bool, error) {
	q.mu.Lock()
	drag := q.drag
	q.mu.Unlock()
	if drag == nil {
		return Operation{}, false, ErrNoActiveDrag
	}
	if target == drag.Source {
		return Operation{}, false, nil
	}
	return q.Propose(ctx, drag.RoomID, target)
}

// DragEnd clears the gesture unconditionally, whether or not a drop happened.
func (q *Queue) DragEnd() {
	q.mu.Lock()
	q.drag = nil
	q.mu.Unlock()
}

// ActiveDrag exposes the gesture for rendering drop targets.
func (q *Queue) ActiveDrag() (Drag, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.drag == nil {
		return Drag{}, false
	}
	return *q.drag, true
}
