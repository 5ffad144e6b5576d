package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hoteldesk/internal/app/notices"
	"hoteldesk/internal/app/rooms"
	"hoteldesk/internal/app/schedule"
	"hoteldesk/internal/app/stocks"
	"hoteldesk/internal/app/transition"
	"hoteldesk/internal/domain/event"
	"hoteldesk/internal/domain/room"
	"hoteldesk/internal/domain/stock"
	"hoteldesk/internal/infra/backend"
	"hoteldesk/internal/infra/broker/kafka"
	"hoteldesk/internal/infra/config"
	"hoteldesk/internal/infra/db/mongo"
	ginserver "hoteldesk/internal/infra/http/gin"
	"hoteldesk/internal/infra/obs"
	"hoteldesk/internal/infra/storage/memory"
	"hoteldesk/internal/infra/storage/s3"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev").Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if err := app.scheduler.Start(); err != nil {
		logger.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}
	defer app.scheduler.Stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "backend_mode", cfg.BackendMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}

	app.queue.Drain()
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers  ginserver.Handlers
	queue     *transition.Queue
	scheduler *schedule.Scheduler
	ready     func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	directory, inventory, ready, err := buildBackend(ctx, cfg, logger, &cleanups)
	if err != nil {
		cleanup()
		return application{}, nil, err
	}

	sink, err := buildEventSink(cfg, logger, &cleanups)
	if err != nil {
		cleanup()
		return application{}, nil, err
	}

	center := notices.NewCenter()
	roomCache := rooms.NewService(directory, logger)
	stockService := stocks.NewService(inventory, sink, center, logger)

	queue := transition.New(transition.Config{
		Directory: directory,
		Rooms:     roomCache,
		Notices:   center,
		Events:    sink,
		Logger:    logger,
		Capacity:  cfg.TransitionCapacity,
		Timeout:   cfg.TransitionTimeout,
	})

	scheduler := schedule.New(schedule.Config{
		Rooms:       roomCache,
		Notices:     center,
		Logger:      logger,
		RefreshSpec: cfg.RoomRefreshSpec,
		NoticeTTL:   cfg.NoticeTTL,
	})

	uploader := buildUploader(cfg, logger)

	if err := roomCache.Refresh(ctx); err != nil {
		logger.Warn("initial room refresh failed", "error", err)
	}

	app := application{
		handlers: ginserver.Handlers{
			Calendar: ginserver.CalendarHandler{Stocks: stockService},
			Stocks:   ginserver.StockHandler{Stocks: stockService},
			Rooms:    ginserver.RoomHandler{Rooms: roomCache, Uploader: uploader},
			Board:    ginserver.BoardHandler{Queue: queue, NoticeCenter: center},
		},
		queue:     queue,
		scheduler: scheduler,
		ready:     ready,
	}
	return app, cleanup, nil
}

func buildBackend(ctx context.Context, cfg config.Config, logger *slog.Logger, cleanups *[]func()) (room.Directory, stock.Inventory, func() error, error) {
	switch cfg.BackendMode {
	case config.BackendRemote:
		client, err := backend.NewClient(backend.Options{
			BaseURL:     cfg.BackendBaseURL,
			Credentials: backendCredentials(cfg),
			Timeout:     cfg.BackendTimeout,
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return client, client, func() error { return nil }, nil

	case config.BackendMongo:
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, nil, err
		}
		*cleanups = append(*cleanups, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				logger.Error("mongo close failed", "error", err)
			}
		})
		if err := client.Ping(ctx); err != nil {
			return nil, nil, nil, fmt.Errorf("mongo ping: %w", err)
		}
		store := mongo.NewStore(client.DB)
		if fixtures, err := loadRoomFixtures(cfg.FixturesPath, logger); err != nil {
			logger.Warn("room fixtures load failed", "error", err)
		} else if len(fixtures) > 0 {
			if err := store.SeedRooms(ctx, fixtures); err != nil {
				logger.Warn("room fixtures seed failed", "error", err)
			}
		}
		return store, store, func() error { return client.Ping(context.Background()) }, nil

	default:
		be := memory.NewBackend()
		fixtures, err := loadRoomFixtures(cfg.FixturesPath, logger)
		if err != nil {
			logger.Warn("room fixtures load failed", "error", err)
		}
		if len(fixtures) == 0 {
			fixtures = defaultRooms()
		}
		be.SeedRooms(fixtures)
		logger.Info("memory backend seeded", "rooms", len(fixtures))
		return be, be, func() error { return nil }, nil
	}
}

func backendCredentials(cfg config.Config) backend.CredentialsProvider {
	switch {
	case cfg.BackendTokenFile != "":
		return &backend.FileCredentials{Path: cfg.BackendTokenFile}
	case cfg.BackendToken != "":
		return backend.StaticCredentials(cfg.BackendToken)
	default:
		return backend.AnonymousCredentials{}
	}
}

func buildEventSink(cfg config.Config, logger *slog.Logger, cleanups *[]func()) (event.Sink, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return obs.EventLog{Logger: logger}, nil
	}
	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, nil)
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}
	*cleanups = append(*cleanups, func() {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka close failed", "error", err)
		}
	})
	return publisher, nil
}

func buildUploader(cfg config.Config, logger *slog.Logger) s3.Uploader {
	client, err := s3.NewClient(s3.Options{
		Endpoint:       cfg.S3Endpoint,
		PublicEndpoint: cfg.S3PublicEndpoint,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Bucket:         cfg.S3Bucket,
		UseSSL:         cfg.S3UseSSL,
		Logger:         logger,
	})
	if err != nil {
		logger.Warn("object storage unavailable, photo uploads disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

type roomFixture struct {
	ID           string `json:"id"`
	Number       string `json:"number"`
	Floor        string `json:"floor"`
	Capacity     int    `json:"capacity"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	PhotoURL     string `json:"photo_url"`
	Status       string `json:"status"`
}

func loadRoomFixtures(path string, logger *slog.Logger) ([]room.Room, error) {
	if path == "" {
		path = filepath.Join("data", "rooms.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("room fixtures file not found, skipping", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []roomFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	out := make([]room.Room, 0, len(fixtures))
	for _, fx := range fixtures {
		status, err := room.ParseStatus(fx.Status)
		if err != nil {
			logger.Error("fixture room has unknown status", "room_id", fx.ID, "status", fx.Status)
			continue
		}
		out = append(out, room.Room{
			ID:           fx.ID,
			Number:       fx.Number,
			Floor:        fx.Floor,
			Capacity:     fx.Capacity,
			CategoryID:   fx.CategoryID,
			CategoryName: fx.CategoryName,
			PhotoURL:     fx.PhotoURL,
			Status:       status,
		})
	}
	return out, nil
}

// defaultRooms keeps the memory-mode demo usable with no fixtures file.
func defaultRooms() []room.Room {
	categories := []struct {
		id, name string
		capacity int
	}{
		{"std", "Standard", 2},
		{"dlx", "Deluxe", 3},
		{"ste", "Suite", 4},
	}
	statuses := room.Statuses()
	var out []room.Room
	n := 0
	for floor := 1; floor <= 3; floor++ {
		for i := 1; i <= 4; i++ {
			cat := categories[(n/4)%len(categories)]
			out = append(out, room.Room{
				ID:           fmt.Sprintf("room-%d%02d", floor, i),
				Number:       fmt.Sprintf("%d%02d", floor, i),
				Floor:        strconv.Itoa(floor),
				Capacity:     cat.capacity,
				CategoryID:   cat.id,
				CategoryName: cat.name,
				Status:       statuses[n%len(statuses)],
			})
			n++
		}
	}
	return out
}
