package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"secretwheel/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Wheel   WheelConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Env  string `env:"ENV" envDefault:"development"` // "development" or "production"
}

// WheelConfig holds wheel and spin configuration
type WheelConfig struct {
	MinRotations   int           `env:"SPIN_MIN_ROTATIONS" envDefault:"2"`
	MaxRotations   int           `env:"SPIN_MAX_ROTATIONS" envDefault:"4"`
	SpinDuration   time.Duration `env:"SPIN_DURATION" envDefault:"4s"`
	SpinTimeout    time.Duration `env:"SPIN_TIMEOUT" envDefault:"30s"` // 0 disables the watchdog
	Seed           uint64        `env:"SPIN_SEED"`                     // 0 seeds from crypto/rand
	MaxSegments    int           `env:"MAX_SEGMENTS" envDefault:"64"`
	MaxLabelLength int           `env:"MAX_LABEL_LENGTH" envDefault:"80"`
	HistorySize    int           `env:"SPIN_HISTORY_SIZE" envDefault:"20"`
	RoomCodeLength int           `env:"ROOM_CODE_LENGTH" envDefault:"6"`
	StaleTimeout   time.Duration `env:"STALE_WHEEL_TIMEOUT" envDefault:"2h"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	w := c.Wheel
	if w.MinRotations < 0 {
		errs = append(errs, fmt.Errorf("SPIN_MIN_ROTATIONS must be >= 0, got %d", w.MinRotations))
	}
	if w.MaxRotations < w.MinRotations {
		errs = append(errs, fmt.Errorf("SPIN_MAX_ROTATIONS (%d) must be >= SPIN_MIN_ROTATIONS (%d)", w.MaxRotations, w.MinRotations))
	}
	if w.SpinDuration <= 0 {
		errs = append(errs, fmt.Errorf("SPIN_DURATION must be positive, got %s", w.SpinDuration))
	}
	if w.SpinTimeout < 0 {
		errs = append(errs, fmt.Errorf("SPIN_TIMEOUT must be >= 0, got %s", w.SpinTimeout))
	}
	if w.SpinTimeout > 0 && w.SpinTimeout < w.SpinDuration {
		errs = append(errs, fmt.Errorf("SPIN_TIMEOUT (%s) must not be shorter than SPIN_DURATION (%s)", w.SpinTimeout, w.SpinDuration))
	}
	if w.MaxSegments < 1 {
		errs = append(errs, fmt.Errorf("MAX_SEGMENTS must be >= 1, got %d", w.MaxSegments))
	}
	if w.MaxLabelLength < 1 {
		errs = append(errs, fmt.Errorf("MAX_LABEL_LENGTH must be >= 1, got %d", w.MaxLabelLength))
	}
	if w.RoomCodeLength < 4 {
		errs = append(errs, fmt.Errorf("ROOM_CODE_LENGTH must be >= 4, got %d", w.RoomCodeLength))
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// WheelSettings converts the wheel configuration into domain settings
func (w WheelConfig) WheelSettings() domain.WheelSettings {
	return domain.WheelSettings{
		Spin: domain.SpinSettings{
			MinRotations: w.MinRotations,
			MaxRotations: w.MaxRotations,
			Duration:     w.SpinDuration,
		},
		MaxSegments:    w.MaxSegments,
		MaxLabelLength: w.MaxLabelLength,
		HistorySize:    w.HistorySize,
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}
