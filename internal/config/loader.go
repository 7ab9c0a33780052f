package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/lock"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/validation"
)

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, in that order, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	loadEnvironmentVariables(cfg)

	if err := cfg.decodePresets(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// loadEnvironmentVariables overlays environment variables on the configuration.
func loadEnvironmentVariables(cfg *Config) {
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Server.Address = getEnv("SEATING_ADDR", cfg.Server.Address)
	cfg.Server.ShutdownTimeout = getEnvDuration("SEATING_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	if val := os.Getenv("SEATING_ALLOWED_ORIGINS"); val != "" {
		cfg.Server.AllowedOrigins = splitList(val)
	}

	cfg.Storage.Driver = getEnv("SEATING_STORAGE", cfg.Storage.Driver)
	cfg.Storage.Path = getEnv("DB_PATH", cfg.Storage.Path)

	cfg.Breaker.Enabled = getEnvBool("SEATING_BREAKER_ENABLED", cfg.Breaker.Enabled)

	cfg.Lock.Policy = lock.Policy(getEnv("SEATING_LOCK_POLICY", string(cfg.Lock.Policy)))
	cfg.Lock.RedisAddr = getEnv("REDIS_ADDR", cfg.Lock.RedisAddr)
	cfg.Lock.TTL = getEnvDuration("SEATING_LOCK_TTL", cfg.Lock.TTL)

	cfg.Engine.RunTimeout = getEnvDuration("SEATING_RUN_TIMEOUT", cfg.Engine.RunTimeout)
}

// decodePresets turns the raw preset maps into validated constraints.
func (c *Config) decodePresets() error {
	c.presets = make(map[string]models.Constraints, len(c.Presets))

	var errs []error
	for name, raw := range c.Presets {
		p := models.DefaultConstraints()
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			ErrorUnused: true,
			Result:      &p,
		})
		if err != nil {
			return fmt.Errorf("failed to create preset decoder: %w", err)
		}
		if err := dec.Decode(raw); err != nil {
			errs = append(errs, fmt.Errorf("preset %q: %w", name, err))
			continue
		}
		if err := validation.Struct(p); err != nil {
			errs = append(errs, fmt.Errorf("preset %q: %w", name, err))
			continue
		}
		c.presets[name] = p
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
