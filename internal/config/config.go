// Package config holds the runtime configuration of the seating service.
//
// Values are layered: defaults, then an optional YAML file, then environment
// variables. Constraint presets are declared in the YAML file and decoded into
// models.Constraints on load.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/arrangement"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/lock"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the complete service configuration.
type Config struct {
	LogLevel string  `yaml:"log_level"`
	Server   Server  `yaml:"server"`
	Storage  Storage `yaml:"storage"`
	Breaker  Breaker `yaml:"breaker"`
	Lock     Lock    `yaml:"lock"`
	Engine   Engine  `yaml:"engine"`

	// Presets maps a preset name to constraint overrides applied on top of
	// models.DefaultConstraints.
	Presets map[string]map[string]any `yaml:"presets"`

	presets map[string]models.Constraints
}

// Server configures the HTTP listener.
type Server struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// Storage selects the guest and table directory backend.
type Storage struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Breaker configures the circuit breaker in front of the store.
type Breaker struct {
	Enabled          bool          `yaml:"enabled"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failure_threshold"`
	MinRequests      uint32        `yaml:"min_requests"`
}

// Lock configures per-event serialization.
type Lock struct {
	Policy    lock.Policy   `yaml:"policy"`
	RedisAddr string        `yaml:"redis_addr"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// Engine configures arrangement runs.
type Engine struct {
	RunTimeout time.Duration       `yaml:"run_timeout"`
	Weights    arrangement.Weights `yaml:"weights"`
}

// MinLockTTL is the shortest distributed lock lease accepted.
const MinLockTTL = time.Second

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: Server{
			Address:         ":8080",
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Storage: Storage{
			Driver: DriverSQLite,
			Path:   "./data/seating.db",
		},
		Breaker: Breaker{
			Enabled:          true,
			Timeout:          30 * time.Second,
			FailureThreshold: 0.6,
			MinRequests:      5,
		},
		Lock: Lock{
			Policy:    lock.PolicyReject,
			KeyPrefix: "seating:",
			TTL:       time.Minute,
		},
		Engine: Engine{
			RunTimeout: 30 * time.Second,
			Weights:    arrangement.DefaultWeights(),
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q, got %q", DriverSQLite, DriverMemory, c.Storage.Driver))
	}

	if c.Breaker.Enabled {
		if c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1 {
			errs = append(errs, errors.New("breaker.failure_threshold must be in (0, 1]"))
		}
		if c.Breaker.Timeout <= 0 {
			errs = append(errs, errors.New("breaker.timeout must be positive"))
		}
	}

	if !c.Lock.Policy.Valid() {
		errs = append(errs, fmt.Errorf("lock.policy must be %q or %q, got %q", lock.PolicyReject, lock.PolicyWait, c.Lock.Policy))
	}
	if c.Lock.RedisAddr != "" && c.Lock.TTL < MinLockTTL {
		errs = append(errs, fmt.Errorf("lock.ttl must be at least %s when redis is configured, got %s", MinLockTTL, c.Lock.TTL))
	}

	if c.Engine.RunTimeout <= 0 {
		errs = append(errs, errors.New("engine.run_timeout must be positive"))
	}
	w := c.Engine.Weights
	if w.Purity < 0 || w.Fill < 0 || w.Capacity < 0 {
		errs = append(errs, errors.New("engine.weights must not be negative"))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// Preset returns the named constraint preset. The empty name and "default"
// resolve to models.DefaultConstraints unless the file overrides "default".
func (c *Config) Preset(name string) (models.Constraints, bool) {
	if name == "" {
		name = "default"
	}
	if p, ok := c.presets[name]; ok {
		return p, true
	}
	if name == "default" {
		return models.DefaultConstraints(), true
	}
	return models.Constraints{}, false
}

// PresetMap returns every decoded preset by name.
func (c *Config) PresetMap() map[string]models.Constraints {
	out := make(map[string]models.Constraints, len(c.presets)+1)
	out["default"] = models.DefaultConstraints()
	for name, p := range c.presets {
		out[name] = p
	}
	return out
}
