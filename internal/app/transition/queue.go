package transition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hoteldesk/internal/domain/event"
	"hoteldesk/internal/domain/room"
)

var (
	// ErrTooManyPending is the backpressure rejection: the configured number
	// of transitions is already awaiting confirmation.
	ErrTooManyPending = errors.New("transition: too many pending operations")
	ErrNoActiveDrag   = errors.New("transition: no drag in progress")
)

const (
	// DefaultCapacity bounds concurrent in-flight transitions. A policy
	// constant, not a hard limit.
	DefaultCapacity = 3
	// DefaultTimeout bounds a single confirmation round trip; expiry is
	// treated as failure so a hung call cannot hold a capacity slot forever.
	DefaultTimeout = 10 * time.Second
)

// State tracks an operation through its short life.
type State string

const (
	StatePending  State = "pending"
	StateInFlight State = "in_flight"
)

// Operation is one proposed status transition. Previous always holds the
// authoritative status observed when the room first entered the queue, so a
// failed confirmation reverts to server truth rather than to an intermediate
// optimistic value.
type Operation struct {
	ID         string
	RoomID     string
	RoomNumber string
	Previous   room.Status
	Next       room.Status
	CreatedAt  time.Time
	State      State
}

// Drag is the in-progress drag gesture: which room is being dragged and the
// effective status column it was picked up from.
type Drag struct {
	RoomID string
	Source room.Status
}

// RoomSource is the read side the queue works against: the cached room list
// plus an explicit refresh from the authoritative backend.
type RoomSource interface {
	ByID(ctx context.Context, id string) (room.Room, error)
	List(ctx context.Context, filter room.Filter) ([]room.Room, error)
	Refresh(ctx context.Context) error
}

// Notifier surfaces user-visible notices. All queue outcomes degrade to a
// notice; nothing here is fatal.
type Notifier interface {
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}

// Queue owns the optimistic transition state. The pending map and drag state
// are mutated only through its methods; capacity is derived from the map size
// so the two can never drift apart.
type Queue struct {
	directory room.Directory
	rooms     RoomSource
	notices   Notifier
	sink      event.Sink
	logger    *slog.Logger
	capacity  int
	timeout   time.Duration
	now       func() time.Time
	newID     func() string

	mu      sync.Mutex
	pending map[string]Operation
	drag    *Drag
	wg      sync.WaitGroup
}

// Config wires a Queue. Directory and Rooms are required; everything else
// has a default.
type Config struct {
	Directory room.Directory
	Rooms     RoomSource
	Notices   Notifier
	Events    event.Sink
	Logger    *slog.Logger
	Capacity  int
	Timeout   time.Duration
	Now       func() time.Time
	NewID     func() string
}

func New(cfg Config) *Queue {
	q := &Queue{
		directory: cfg.Directory,
		rooms:     cfg.Rooms,
		notices:   cfg.Notices,
		sink:      cfg.Events,
		logger:    cfg.Logger,
		capacity:  cfg.Capacity,
		timeout:   cfg.Timeout,
		now:       cfg.Now,
		newID:     cfg.NewID,
		pending:   make(map[string]Operation),
	}
	if q.capacity <= 0 {
		q.capacity = DefaultCapacity
	}
	if q.timeout <= 0 {
		q.timeout = DefaultTimeout
	}
	if q.now == nil {
		q.now = time.Now
	}
	if q.newID == nil {
		q.newID = uuid.NewString
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	return q
}

// Propose records an optimistic transition for the room and submits the
// confirmation round trip asynchronously. The boolean reports whether an
// operation was actually queued: proposing the room's current effective
// status is a no-op, not an error.
func (q *Queue) Propose(ctx context.Context, roomID string, target room.Status) (Operation, bool, error) {
	if !target.Valid() {
		return Operation{}, false, fmt.Errorf("%w: %q", room.ErrUnknownStatus, string(target))
	}
	r, err := q.rooms.ByID(ctx, roomID)
	if err != nil {
		return Operation{}, false, fmt.Errorf("transition: room lookup: %w", err)
	}

	q.mu.Lock()
	current, supersedes := q.pending[roomID]

	effective := r.Status
	if supersedes {
		effective = current.Next
	}
	if effective == target {
		q.mu.Unlock()
		return Operation{}, false, nil
	}
	// A re-proposal for a room already in the queue replaces its slot
	// instead of consuming a new one.
	if !supersedes && len(q.pending) >= q.capacity {
		q.mu.Unlock()
		if q.notices != nil {
			q.notices.Warn("Too many pending operations, wait for the current ones to finish")
		}
		return Operation{}, false, ErrTooManyPending
	}

	previous := r.Status
	if supersedes {
		previous = current.Previous
	}
	op := Operation{
		ID:         q.newID(),
		RoomID:     roomID,
		RoomNumber: r.Number,
		Previous:   previous,
		Next:       target,
		CreatedAt:  q.now(),
		State:      StatePending,
	}
	q.pending[roomID] = op
	q.wg.Add(1)
	q.mu.Unlock()

	go q.submit(op)
	return op, true, nil
}

// submit runs the confirmation round trip. The request context is detached
// from the caller: the optimistic update already happened, so the outcome
// must be reconciled even if the proposing request has gone away.
func (q *Queue) submit(op Operation) {
	defer q.wg.Done()

	q.mu.Lock()
	if cur, ok := q.pending[op.RoomID]; ok && cur.ID == op.ID {
		cur.State = StateInFlight
		q.pending[op.RoomID] = cur
	}
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	err := q.directory.UpdateStatus(ctx, op.RoomID, op.Next)

	q.mu.Lock()
	cur, ok := q.pending[op.RoomID]
	if !ok || cur.ID != op.ID {
		// A later proposal took over this room's slot; its own round trip
		// owns the reconciliation now.
		q.mu.Unlock()
		q.logger.Info("transition superseded", "room_id", op.RoomID, "op_id", op.ID)
		return
	}
	delete(q.pending, op.RoomID)
	q.mu.Unlock()

	if err != nil {
		q.logger.Error("status update failed", "room_id", op.RoomID, "room", op.RoomNumber, "to", op.Next, "error", err)
		if q.notices != nil {
			q.notices.Error(fmt.Sprintf("Could not move room %s to %s", op.RoomNumber, op.Next))
		}
		q.forceRefresh()
		return
	}

	if q.notices != nil {
		q.notices.Success(fmt.Sprintf("Room %s moved to %s", op.RoomNumber, op.Next))
	}
	q.publishConfirmed(op)
	q.backgroundRefresh()
}

// forceRefresh reconciles the local room list with server truth after a
// failed transition.
func (q *Queue) forceRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if err := q.rooms.Refresh(ctx); err != nil {
		q.logger.Error("room refresh after failure", "error", err)
	}
}

// backgroundRefresh runs after a confirmed transition. A failure here does
// not revert anything — the server already accepted the change — it only
// surfaces a sync notice.
func (q *Queue) backgroundRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if err := q.rooms.Refresh(ctx); err != nil {
		q.logger.Warn("room list sync failed", "error", err)
		if q.notices != nil {
			q.notices.Warn("Status saved, but the room list could not be refreshed")
		}
	}
}

func (q *Queue) publishConfirmed(op Operation) {
	if q.sink == nil {
		return
	}
	ev := event.NewRoomStatusChanged(op.RoomID, op.RoomNumber, string(op.Previous), string(op.Next), q.now())
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if err := q.sink.Publish(ctx, ev); err != nil {
		q.logger.Warn("event publish failed", "event", ev.EventName(), "error", err)
	}
}

// EffectiveStatus prefers the pending optimistic status over the
// authoritative one, which is what the board renders.
func (q *Queue) EffectiveStatus(r room.Room) room.Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	if op, ok := q.pending[r.ID]; ok {
		return op.Next
	}
	return r.Status
}

// PendingOperations snapshots the queue in creation order.
func (q *Queue) PendingOperations() []Operation {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Operation, 0, len(q.pending))
	for _, op := range q.pending {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// PendingCount is the number of capacity slots in use.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain blocks until every submitted round trip has been reconciled. Used at
// shutdown and by tests.
func (q *Queue) Drain() {
	q.wg.Wait()
}
