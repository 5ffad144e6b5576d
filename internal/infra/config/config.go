package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend modes select which implementation of the room/stock ports is wired.
const (
	BackendRemote = "remote"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string

	BackendMode      string
	BackendBaseURL   string
	BackendToken     string
	BackendTokenFile string
	BackendTimeout   time.Duration

	TransitionCapacity int
	TransitionTimeout  time.Duration

	RoomRefreshSpec string
	NoticeTTL       time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	MongoURI string
	MongoDB  string

	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool

	FixturesPath string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		BackendMode:      strings.ToLower(getEnv("BACKEND_MODE", BackendMemory)),
		BackendBaseURL:   getEnv("BACKEND_BASE_URL", ""),
		BackendToken:     os.Getenv("BACKEND_TOKEN"),
		BackendTokenFile: os.Getenv("BACKEND_TOKEN_FILE"),
		RoomRefreshSpec:  getEnv("ROOM_REFRESH_SPEC", "@every 5m"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "hoteldesk"),
		S3Endpoint:       getEnv("S3_ENDPOINT", "http://localhost:9000"),
		S3PublicEndpoint: getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:      getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:         getEnv("S3_BUCKET", "hoteldesk-photos"),
		FixturesPath:     getEnv("FIXTURES_PATH", ""),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	backendTimeout, err := parseDurationEnv("BACKEND_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.BackendTimeout = backendTimeout

	transitionTimeout, err := parseDurationEnv("TRANSITION_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.TransitionTimeout = transitionTimeout

	capacity, err := parseIntEnv("TRANSITION_CAPACITY", 3)
	if err != nil {
		return Config{}, err
	}
	cfg.TransitionCapacity = capacity

	noticeTTL, err := parseDurationEnv("NOTICE_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.NoticeTTL = noticeTTL

	useSSL, err := parseBoolEnv("S3_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg.S3UseSSL = useSSL
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}

	switch cfg.BackendMode {
	case BackendRemote:
		if cfg.BackendBaseURL == "" {
			return Config{}, fmt.Errorf("BACKEND_BASE_URL is required in remote mode")
		}
	case BackendMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required in mongo mode")
		}
	case BackendMemory:
	default:
		return Config{}, fmt.Errorf("unknown BACKEND_MODE %q", cfg.BackendMode)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
