// Package config loads client settings from environment variables, with a
// .env file honored by the entrypoint.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pyittinehtaung/pth-client/internal/store"
)

// Config aggregates every tunable of the client.
type Config struct {
	Backend BackendConfig
	Send    SendConfig
	Store   store.Config
}

// BackendConfig describes how to reach the assistant backend.
type BackendConfig struct {
	BaseURL     string
	APIPrefix   string
	Timeout     time.Duration
	IdleTimeout time.Duration
	StreamWSURL string
	LangHint    string
	AllowAI     bool
}

// SendConfig tunes the send pipeline.
type SendConfig struct {
	Streaming       bool
	DuplicateWindow time.Duration
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	backend, err := loadBackendConfig()
	if err != nil {
		return nil, err
	}

	send, err := loadSendConfig()
	if err != nil {
		return nil, err
	}

	st, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Backend: backend, Send: send, Store: st}, nil
}

func loadBackendConfig() (BackendConfig, error) {
	timeout, err := parseSecondsEnv("PTH_TIMEOUT", 30)
	if err != nil {
		return BackendConfig{}, err
	}
	idle, err := parseSecondsEnv("PTH_IDLE_TIMEOUT", 30)
	if err != nil {
		return BackendConfig{}, err
	}
	allowAI, err := parseBoolEnv("PTH_ALLOW_AI_FALLBACK", true)
	if err != nil {
		return BackendConfig{}, err
	}

	lang := strings.TrimSpace(os.Getenv("PTH_LANG"))
	if lang != "" && lang != "en" && lang != "my" {
		return BackendConfig{}, fmt.Errorf("invalid PTH_LANG value %q: want en or my", lang)
	}

	return BackendConfig{
		BaseURL:     getEnvOrDefault("PTH_BASE_URL", "http://localhost:8000"),
		APIPrefix:   getEnvOrDefault("PTH_API_PREFIX", "/api"),
		Timeout:     timeout,
		IdleTimeout: idle,
		StreamWSURL: strings.TrimSpace(os.Getenv("PTH_STREAM_WS_URL")),
		LangHint:    lang,
		AllowAI:     allowAI,
	}, nil
}

func loadSendConfig() (SendConfig, error) {
	streaming, err := parseBoolEnv("PTH_STREAM", true)
	if err != nil {
		return SendConfig{}, err
	}
	windowMS, err := parseOptionalIntEnv("PTH_DUPLICATE_WINDOW_MS")
	if err != nil {
		return SendConfig{}, err
	}

	var window time.Duration
	if windowMS != nil {
		window = time.Duration(*windowMS) * time.Millisecond
	}
	return SendConfig{Streaming: streaming, DuplicateWindow: window}, nil
}

func loadStoreConfig() (store.Config, error) {
	db, err := parseOptionalIntEnv("PTH_REDIS_DB")
	if err != nil {
		return store.Config{}, err
	}
	redisDB := 0
	if db != nil {
		redisDB = *db
	}

	return store.Config{
		Driver:        getEnvOrDefault("PTH_STORE", "file"),
		Path:          getEnvOrDefault("PTH_STATE_PATH", defaultStatePath()),
		RedisAddr:     getEnvOrDefault("PTH_REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("PTH_REDIS_PASSWORD"),
		RedisDB:       redisDB,
	}, nil
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pth-state.json"
	}
	return filepath.Join(home, ".pth", "state.json")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseSecondsEnv(key string, defaultSeconds int) (time.Duration, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return time.Duration(defaultSeconds) * time.Second, nil
	}
	if *val <= 0 {
		return 0, fmt.Errorf("invalid %s value %d: must be positive", key, *val)
	}
	return time.Duration(*val) * time.Second, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
