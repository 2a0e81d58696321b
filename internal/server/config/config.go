package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the room server.
type Config struct {
	Addr      string
	Env       string
	DBPath    string
	UploadDir string
	// RedisURL включает рассылку событий между экземплярами сервера
	RedisURL string

	MaxUploadMB int64

	// Ограничение частоты запросов к /api/*
	RateLimit  int
	RateWindow time.Duration

	ShutdownTimeout time.Duration
}

// Load reads configuration: .env file (if present), then environment
// variables, then command line flags which take precedence.
func Load(args []string) (*Config, error) {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Addr:            getEnv("STUDYROOM_ADDR", ":5000"),
		Env:             getEnv("STUDYROOM_ENV", "development"),
		DBPath:          getEnv("STUDYROOM_DB", "studyroom.db"),
		UploadDir:       getEnv("STUDYROOM_UPLOAD_DIR", "uploads"),
		RedisURL:        os.Getenv("STUDYROOM_REDIS_URL"),
		RateWindow:      time.Minute,
		ShutdownTimeout: 30 * time.Second,
	}

	var err error
	if cfg.MaxUploadMB, err = getEnvInt("STUDYROOM_MAX_UPLOAD_MB", 50); err != nil {
		return nil, err
	}
	rate, err := getEnvInt("STUDYROOM_RATE_LIMIT", 120)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit = int(rate)

	fs := flag.NewFlagSet("studyroom-server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.Env, "env", cfg.Env, "Environment: development or production")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	fs.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "Directory for uploaded PDFs")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for multi-instance broadcast (optional)")
	fs.Int64Var(&cfg.MaxUploadMB, "max-upload-mb", cfg.MaxUploadMB, "Maximum PDF size in megabytes")
	fs.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Requests per minute per client to /api, 0 disables")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("listen address is required")
	}
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	if c.UploadDir == "" {
		return errors.New("upload directory is required")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadMB)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimit)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// MaxUploadBytes максимальный размер загрузки в байтах
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
