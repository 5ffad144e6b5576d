package rooms

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hoteldesk/internal/domain/room"
)

// Service is a read-through cache over the room directory. The transition
// queue and the board read from here; Refresh is the only way new
// authoritative state comes in.
type Service struct {
	directory room.Directory
	logger    *slog.Logger

	mu          sync.RWMutex
	cache       []room.Room
	refreshedAt time.Time
}

func NewService(directory room.Directory, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{directory: directory, logger: logger}
}

// Refresh replaces the cache with the authoritative room list, including
// soft-deleted rooms so filters can opt into them later.
func (s *Service) Refresh(ctx context.Context) error {
	list, err := s.directory.List(ctx, room.Filter{IncludeDeleted: true})
	if err != nil {
		return fmt.Errorf("rooms: refresh: %w", err)
	}
	s.mu.Lock()
	s.cache = list
	s.refreshedAt = time.Now().UTC()
	s.mu.Unlock()
	s.logger.Debug("room cache refreshed", "rooms", len(list))
	return nil
}

// List applies the filter against the cache, loading it on first use.
func (s *Service) List(ctx context.Context, filter room.Filter) ([]room.Room, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]room.Room, 0, len(s.cache))
	for _, r := range s.cache {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ByID resolves a room from the cache, falling back to one refresh when the
// id is unknown — the room may have been created since the last sync.
func (s *Service) ByID(ctx context.Context, id string) (room.Room, error) {
	if err := s.ensure(ctx); err != nil {
		return room.Room{}, err
	}
	if r, ok := s.lookup(id); ok {
		return r, nil
	}
	if err := s.Refresh(ctx); err != nil {
		return room.Room{}, err
	}
	if r, ok := s.lookup(id); ok {
		return r, nil
	}
	return room.Room{}, fmt.Errorf("rooms: %w: %s", room.ErrNotFound, id)
}

// RefreshedAt reports when the cache last synced, for readiness reporting.
func (s *Service) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

func (s *Service) lookup(id string) (room.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.cache {
		if r.ID == id {
			return r, true
		}
	}
	return room.Room{}, false
}

func (s *Service) ensure(ctx context.Context) error {
	s.mu.RLock()
	loaded := !s.refreshedAt.IsZero()
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Refresh(ctx)
}
