package transition

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"hoteldesk/internal/domain/event"
	"hoteldesk/internal/domain/room"
)

type stubDirectory struct {
	mu      sync.Mutex
	updates []room.Status
	err     error
	gate    chan struct{} // when set, UpdateStatus blocks until it is closed
}

func (d *stubDirectory) List(ctx context.Context, filter room.Filter) ([]room.Room, error) {
	return nil, nil
}

func (d *stubDirectory) ByID(ctx context.Context, id string) (room.Room, error) {
	return room.Room{}, room.ErrNotFound
}

func (d *stubDirectory) UpdateStatus(ctx context.Context, id string, status room.Status) error {
	if d.gate != nil {
		<-d.gate
	}
	d.mu.Lock()
	d.updates = append(d.updates, status)
	d.mu.Unlock()
	return d.err
}

func (d *stubDirectory) updateCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.updates)
}

type stubRooms struct {
	mu         sync.Mutex
	rooms      map[string]room.Room
	refreshes  int
	refreshErr error
}

func newStubRooms(rs ...room.Room) *stubRooms {
	s := &stubRooms{rooms: make(map[string]room.Room, len(rs))}
	for _, r := range rs {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *stubRooms) ByID(ctx context.Context, id string) (room.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return room.Room{}, room.ErrNotFound
	}
	return r, nil
}

func (s *stubRooms) List(ctx context.Context, filter room.Filter) ([]room.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]room.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRooms) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	return s.refreshErr
}

func (s *stubRooms) refreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

type stubNotices struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newStubNotices() *stubNotices {
	return &stubNotices{messages: make(map[string][]string)}
}

func (n *stubNotices) record(level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[level] = append(n.messages[level], msg)
}

func (n *stubNotices) Success(msg string) { n.record("success", msg) }
func (n *stubNotices) Warn(msg string)    { n.record("warn", msg) }
func (n *stubNotices) Error(msg string)   { n.record("error", msg) }

func (n *stubNotices) count(level string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages[level])
}

func (n *stubNotices) contains(level, substr string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.messages[level] {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

type stubSink struct {
	mu     sync.Mutex
	events []event.Event
}

func (s *stubSink) Publish(ctx context.Context, ev event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *stubSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.EventName())
	}
	return out
}

func testRoom(id, number string, status room.Status) room.Room {
	return room.Room{ID: id, Number: number, Status: status}
}

func TestProposeConfirmsAndNotifies(t *testing.T) {
	dir := &stubDirectory{}
	src := newStubRooms(testRoom("r1", "101", room.StatusAvailable))
	notes := newStubNotices()
	sink := &stubSink{}
	q := New(Config{Directory: dir, Rooms: src, Notices: notes, Events: sink})

	op, accepted, err := q.Propose(context.Background(), "r1", room.StatusCleaning)
	if err != nil || !accepted {
		t.Fatalf("Propose: accepted=%v err=%v", accepted, err)
	}
	if op.Previous != room.StatusAvailable || op.Next != room.StatusCleaning {
		t.Fatalf("op = %+v", op)
	}
	q.Drain()

	if dir.updateCount() != 1 {
		t.Fatalf("directory updates = %d, want 1", dir.updateCount())
	}
	if q.PendingCount() != 0 {
		t.Fatalf("pending = %d after drain", q.PendingCount())
	}
	if !notes.contains("success", "Room 101 moved to Cleaning") {
		t.Fatalf("success notice missing: %v", notes.messages)
	}
	if src.refreshCount() != 1 {
		t.Fatalf("refreshes = %d, want 1", src.refreshCount())
	}
	names := sink.names()
	if len(names) != 1 || names[0] != "room.status_changed" {
		t.Fatalf("events = %v", names)
	}
}

func TestProposeSameStatusIsNoOp(t *testing.T) {
	dir := &stubDirectory{}
	src := newStubRooms(testRoom("r1", "101", room.StatusAvailable))
	q := New(Config{Directory: dir, Rooms: src})

	_, accepted, err := q.Propose(context.Background(), "r1", room.StatusAvailable)
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if accepted {
		t.Fatal("same-status proposal was queued")
	}
	q.Drain()
	if dir.updateCount() != 0 {
		t.Fatal("no-op proposal reached the directory")
	}
}

func TestProposeInvalidStatus(t *testing.T) {
	q := New(Config{Directory: &stubDirectory{}, Rooms: newStubRooms()})
	_, _, err := q.Propose(context.Background(), "r1", room.Status("occupied"))
	if !errors.Is(err, room.ErrUnknownStatus) {
		t.Fatalf("err = %v, want ErrUnknownStatus", err)
	}
}

func TestProposeUnknownRoom(t *testing.T) {
	q := New(Config{Directory: &stubDirectory{}, Rooms: newStubRooms()})
	_, _, err := q.Propose(context.Background(), "ghost", room.StatusCleaning)
	if !errors.Is(err, room.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCapacityBound(t *testing.T) {
	gate := make(chan struct{})
	dir := &stubDirectory{gate: gate}
	src := newStubRooms(
		testRoom("r1", "101", room.StatusAvailable),
		testRoom("r2", "102", room.StatusAvailable),
		testRoom("r3", "103", room.StatusAvailable),
		testRoom("r4", "104", room.StatusAvailable),
	)
	notes := newStubNotices()
	q := New(Config{Directory: dir, Rooms: src, Notices: notes, Capacity: 3})

	for _, id := range []string{"r1", "r2", "r3"} {
		if _, accepted, err := q.Propose(context.Background(), id, room.StatusCleaning); err != nil || !accepted {
			t.Fatalf("Propose(%s): accepted=%v err=%v", id, accepted, err)
		}
	}
	if q.PendingCount() != 3 {
		t.Fatalf("pending = %d, want 3", q.PendingCount())
	}

	_, _, err := q.Propose(context.Background(), "r4", room.StatusCleaning)
	if !errors.Is(err, ErrTooManyPending) {
		t.Fatalf("4th proposal err = %v, want ErrTooManyPending", err)
	}
	if !notes.contains("warn", "Too many pending operations") {
		t.Fatal("backpressure warning missing")
	}

	close(gate)
	q.Drain()
	if q.PendingCount() != 0 {
		t.Fatalf("pending = %d after drain", q.PendingCount())
	}
}

func TestReProposalReplacesSlot(t *testing.T) {
	gate := make(chan struct{})
	dir := &stubDirectory{gate: gate}
	src := newStubRooms(testRoom("r1", "101", room.StatusAvailable))
	notes := newStubNotices()
	q := New(Config{Directory: dir, Rooms: src, Notices: notes, Capacity: 1})

	first, accepted, err := q.Propose(context.Background(), "r1", room.StatusCleaning)
	if err != nil || !accepted {
		t.Fatalf("first Propose: accepted=%v err=%v", accepted, err)
	}

	// Re-proposing the same room must not hit the capacity limit even at
	// capacity 1, and must keep the original authoritative status as the
	// revert point.
	second, accepted, err := q.Propose(context.Background(), "r1", room.StatusMaintenance)
	if err != nil || !accepted {
		t.Fatalf("second Propose: accepted=%v err=%v", accepted, err)
	}
	if second.ID == first.ID {
		t.Fatal("re-proposal reused the operation id")
	}
	if second.Previous != room.StatusAvailable {
		t.Fatalf("second.Previous = %s, want Available", second.Previous)
	}
	if q.PendingCount() != 1 {
		t.Fatalf("pending = %d, want 1", q.PendingCount())
	}
	if got := q.EffectiveStatus(testRoom("r1", "101", room.StatusAvailable)); got != room.StatusMaintenance {
		t.Fatalf("effective status = %s, want Maintenance", got)
	}

	close(gate)
	q.Drain()

	// Only the superseding operation may notify; the stale completion is
	// dropped silently.
	if n := notes.count("success"); n != 1 {
		t.Fatalf("success notices = %d, want 1 (%v)", n, notes.messages)
	}
	if !notes.contains("success", "Maintenance") {
		t.Fatalf("final notice should be for Maintenance: %v", notes.messages)
	}
}

func TestReProposalBackToCurrentIsNoOp(t *testing.T) {
	gate := make(chan struct{})
	dir := &stubDirectory{gate: gate}
	src := newStubRooms(testRoom("r1", "101", room.StatusAvailable))
	q := New(Config{Directory: dir, Rooms: src})

	if _, accepted, _ := q.Propose(context.Background(), "r1", room.StatusCleaning); !accepted {
		t.Fatal("first proposal rejected")
	}
	// The optimistic status is now Cleaning, so proposing Cleaning again is
	// the no-op, not Available.
	_, accepted, err := q.Propose(context.Background(), "r1", room.StatusCleaning)
	if err != nil || accepted {
		t.Fatalf("re-proposing pending target: accepted=%v err=%v", accepted, err)
	}

	close(gate)
	q.Drain()
}

func TestFailedConfirmationRevertsAndRefreshes(t *testing.T) {
	dir := &stubDirectory{err: errors.New("backend down")}
	src := newStubRooms(testRoom("r1", "101", room.StatusAvailable))
	notes := newStubNotices()
	q := New(Config{Directory: dir, Rooms: src, Notices: notes})

	if _, accepted, err := q.Propose(context.Background(), "r1", room.StatusCleaning); err != nil || !accepted {
		t.Fatalf("Propose: accepted=%v err=%v", accepted, err)
	}
	q.Drain()

	if q.PendingCount() != 0 {
		t.Fatal("failed operation still pending")
	}
	if got := q.EffectiveStatus(testRoom("r1", "101", room.StatusAvailable)); got != room.StatusAvailable {
		t.Fatalf("effective status after failure = %s, want authoritative Available", got)
	}
	if !notes.contains("error", "Could not move room 101 to Cleaning") {
		t.Fatalf("failure notice missing: %v", notes.messages)
	}
	if notes.count("success") != 0 {
		t.Fatal("failure produced a success notice")
	}
	if src.refreshCount() != 1 {
		t.Fatalf("forced refresh count = %d, want 1", src.refreshCount())
	}
}

func TestRefreshFailureAfterSuccessWarns(t *testing.T) {
	dir := &stubDirectory{}
	src := newStubRooms(testRoom("r1", "101", room.StatusAvailable))
	src.refreshErr = errors.New("list unavailable")
	notes := newStubNotices()
	q := New(Config{Directory: dir, Rooms: src, Notices: notes})

	q.Propose(context.Background(), "r1", room.StatusCleaning)
	q.Drain()

	if notes.count("success") != 1 {
		t.Fatalf("success notices = %d, want 1", notes.count("success"))
	}
	if !notes.contains("warn", "Status saved, but the room list could not be refreshed") {
		t.Fatalf("sync warning missing: %v", notes.messages)
	}
}

func TestEffectiveStatusPrefersPending(t *testing.T) {
	gate := make(chan struct{})
	dir := &stubDirectory{gate: gate}
	r := testRoom("r1", "101", room.StatusAvailable)
	src := newStubRooms(r)
	q := New(Config{Directory: dir, Rooms: src})

	if got := q.EffectiveStatus(r); got != room.StatusAvailable {
		t.Fatalf("effective status with empty queue = %s", got)
	}
	q.Propose(context.Background(), "r1", room.StatusUnavailable)
	if got := q.EffectiveStatus(r); got != room.StatusUnavailable {
		t.Fatalf("effective status while pending = %s, want Unavailable", got)
	}

	close(gate)
	q.Drain()
	if got := q.EffectiveStatus(r); got != room.StatusAvailable {
		t.Fatalf("effective status after drain = %s, want the passed room's status", got)
	}
}

func TestPendingOperationsOrderedByCreation(t *testing.T) {
	gate := make(chan struct{})
	dir := &stubDirectory{gate: gate}
	src := newStubRooms(
		testRoom("r1", "101", room.StatusAvailable),
		testRoom("r2", "102", room.StatusAvailable),
		testRoom("r3", "103", room.StatusAvailable),
	)
	clock := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	q := New(Config{Directory: dir, Rooms: src, Now: func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}})

	for _, id := range []string{"r3", "r1", "r2"} {
		q.Propose(context.Background(), id, room.StatusCleaning)
	}
	ops := q.PendingOperations()
	if len(ops) != 3 {
		t.Fatalf("pending ops = %d", len(ops))
	}
	want := []string{"r3", "r1", "r2"}
	for i, id := range want {
		if ops[i].RoomID != id {
			t.Fatalf("ops[%d].RoomID = %s, want %s", i, ops[i].RoomID, id)
		}
	}

	close(gate)
	q.Drain()
}
