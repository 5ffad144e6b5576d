package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"hoteldesk/internal/app/notices"
	"hoteldesk/internal/app/rooms"
)

// Scheduler runs the service's background jobs: keeping the room cache warm
// and pruning stale notices.
type Scheduler struct {
	cron      *cron.Cron
	rooms     *rooms.Service
	notices   *notices.Center
	logger    *slog.Logger
	refresh   string
	noticeTTL time.Duration
}

type Config struct {
	Rooms       *rooms.Service
	Notices     *notices.Center
	Logger      *slog.Logger
	RefreshSpec string        // cron spec for the room cache refresh, e.g. "@every 5m"
	NoticeTTL   time.Duration // notices older than this are pruned hourly
}

func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	spec := cfg.RefreshSpec
	if spec == "" {
		spec = "@every 5m"
	}
	ttl := cfg.NoticeTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Scheduler{
		cron:      cron.New(),
		rooms:     cfg.Rooms,
		notices:   cfg.Notices,
		logger:    logger,
		refresh:   spec,
		noticeTTL: ttl,
	}
}

func (s *Scheduler) Start() error {
	if s.rooms != nil {
		if _, err := s.cron.AddFunc(s.refresh, s.refreshRooms); err != nil {
			return err
		}
	}
	if s.notices != nil {
		if _, err := s.cron.AddFunc("@hourly", s.pruneNotices); err != nil {
			return err
		}
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "refresh", s.refresh)
	return nil
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) refreshRooms() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.rooms.Refresh(ctx); err != nil {
		s.logger.Warn("scheduled room refresh failed", "error", err)
	}
}

func (s *Scheduler) pruneNotices() {
	if dropped := s.notices.Prune(s.noticeTTL); dropped > 0 {
		s.logger.Debug("notices pruned", "dropped", dropped)
	}
}
