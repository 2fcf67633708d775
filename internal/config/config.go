package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Remote    RemoteConfig
	Engine    EngineConfig
	Draft     DraftConfig
	WebSocket WebSocketConfig
	CORS      CORSConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

// RemoteConfig selects the remote persistence backend. "http" speaks
// the project API directly; "couchdb" persists snapshots into a
// CouchDB database.
type RemoteConfig struct {
	Backend string
	BaseURL string

	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type EngineConfig struct {
	HistoryLimit    int
	HistoryDebounce time.Duration
	SaveDebounce    time.Duration
	OpTimeout       time.Duration
}

type DraftConfig struct {
	Path      string
	Retention int
	Interval  time.Duration
}

type WebSocketConfig struct {
	WriteWait     time.Duration
	PongWait      time.Duration
	PingPeriod    time.Duration
	MaxConnPerDoc int
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	godotenv.Load()

	historyDebounce, err := getEnvAsDuration("HISTORY_DEBOUNCE", "500ms")
	if err != nil {
		return nil, err
	}
	saveDebounce, err := getEnvAsDuration("SAVE_DEBOUNCE", "2s")
	if err != nil {
		return nil, err
	}
	opTimeout, err := getEnvAsDuration("SYNC_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	draftInterval, err := getEnvAsDuration("DRAFT_INTERVAL", "30s")
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Remote: RemoteConfig{
			Backend:  getEnv("REMOTE_BACKEND", "couchdb"),
			BaseURL:  getEnv("REMOTE_BASE_URL", "http://localhost:3000/api"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5984"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "synoptic"),
		},
		Engine: EngineConfig{
			HistoryLimit:    getEnvAsInt("HISTORY_LIMIT", 50),
			HistoryDebounce: historyDebounce,
			SaveDebounce:    saveDebounce,
			OpTimeout:       opTimeout,
		},
		Draft: DraftConfig{
			Path:      getEnv("DRAFT_DB_PATH", "drafts.db"),
			Retention: getEnvAsInt("DRAFT_RETENTION", 10),
			Interval:  draftInterval,
		},
		WebSocket: WebSocketConfig{
			WriteWait:     10 * time.Second,
			PongWait:      60 * time.Second,
			PingPeriod:    54 * time.Second,
			MaxConnPerDoc: getEnvAsInt("WS_MAX_CONN_PER_DOC", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PATCH,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
