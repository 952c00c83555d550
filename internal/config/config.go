// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Sweep schedulers.
const (
	SchedulerRiver  = "river"
	SchedulerTicker = "ticker"
	SchedulerOff    = "off"
)

// Config holds every setting outside of OpenTelemetry, which reads its own
// OTEL_* variables.
type Config struct {
	Env          string `validate:"required"`
	Port         string `validate:"required,numeric"`
	DatabasePath string `validate:"required"`

	SweepInterval       time.Duration `validate:"gte=0"`
	SweepScheduler      string        `validate:"oneof=river ticker off"`
	ValidateConcurrency int           `validate:"gte=1,lte=256"`

	IdentityRPS   float64 `validate:"gte=0"`
	IdentityBurst int     `validate:"gte=1"`

	RedisAddr     string `validate:"omitempty,hostname_port"`
	RedisPassword string
	RedisDB       int           `validate:"gte=0"`
	InvalidSetTTL time.Duration `validate:"gte=0"`
}

// Load reads an optional .env file, then the environment, and validates the
// result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	var errs []error
	cfg := Config{
		Env:                 envOrDefault("APP_ENV", "development"),
		Port:                envOrDefault("PORT", "8080"),
		DatabasePath:        envOrDefault("DATABASE_PATH", "leadrecon.db"),
		SweepInterval:       durationEnv("SWEEP_INTERVAL", 5*time.Minute, &errs),
		SweepScheduler:      strings.ToLower(envOrDefault("SWEEP_SCHEDULER", SchedulerRiver)),
		ValidateConcurrency: intEnv("VALIDATE_CONCURRENCY", 8, &errs),
		IdentityRPS:         floatEnv("IDENTITY_RPS", 20, &errs),
		IdentityBurst:       intEnv("IDENTITY_BURST", 5, &errs),
		RedisAddr:           envOrDefault("REDIS_ADDR", ""),
		RedisPassword:       envOrDefault("REDIS_PASSWORD", ""),
		RedisDB:             intEnv("REDIS_DB", 0, &errs),
		InvalidSetTTL:       durationEnv("INVALID_SET_TTL", 24*time.Hour, &errs),
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the process runs in a development environment.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// NewLogger builds the process logger: text at debug level in development,
// JSON at info level otherwise.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if c.IsDevelopment() {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return d
}

func intEnv(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return n
}

func floatEnv(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return f
}
