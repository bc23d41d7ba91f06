package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/Himess/delreg/internal/core"
	"github.com/Himess/delreg/internal/validation"
)

type Config struct {
	Registry  RegistryConfig   `yaml:"registry"`
	Store     StoreConfig      `yaml:"store"`
	Directory DirectoryConfig  `yaml:"directory"`
	Guards    []core.GuardRule `yaml:"guards"`
	Audit     AuditConfig      `yaml:"audit"`
	Sweep     SweepConfig      `yaml:"sweep"`
	Admin     AdminConfig      `yaml:"admin"`
}

// RegistryConfig holds the delegation policy constants.
type RegistryConfig struct {
	// UnitLength is the length of one duration unit (e.g. "24h").
	UnitLength time.Duration `yaml:"unit_length"`

	// MaxDuration is the largest number of units a grant may span.
	MaxDuration int `yaml:"max_duration"`
}

// StoreConfig selects the delegation store backend.
type StoreConfig struct {
	// Type is "memory" (default) or "sqlite".
	Type string `yaml:"type"`

	// Path is the database file, required for type "sqlite".
	Path string `yaml:"path"`
}

// DirectoryConfig holds configuration for the owner directory.
type DirectoryConfig struct {
	Type   string         `yaml:"type"`    // e.g., "static", "memory"
	Config map[string]any `yaml:",inline"` // Capture remaining fields
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"
}

// SweepConfig controls the background purge of expired records.
type SweepConfig struct {
	// Interval between sweeps. Zero disables the periodic sweep;
	// the task can still be triggered manually.
	Interval time.Duration `yaml:"interval"`
}

// AdminConfig holds the admin API settings.
type AdminConfig struct {
	// SigningKey verifies admin bearer tokens (HMAC).
	SigningKey string `yaml:"signing_key"`
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Registry.UnitLength < 0 {
		return fmt.Errorf("registry.unit_length must not be negative")
	}
	if c.Registry.MaxDuration < 0 {
		return fmt.Errorf("registry.max_duration must not be negative")
	}

	switch c.Store.Type {
	case "", "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store type 'sqlite' requires store.path")
		}
	default:
		return fmt.Errorf("unknown store type %q", c.Store.Type)
	}

	switch c.Directory.Type {
	case "", "static", "memory":
	default:
		return fmt.Errorf("unknown directory type %q", c.Directory.Type)
	}

	if c.Audit.Enabled && c.Audit.Type == "file" && c.Audit.Path == "" {
		return fmt.Errorf("audit type 'file' requires audit.path")
	}

	if c.Sweep.Interval < 0 {
		return fmt.Errorf("sweep.interval must not be negative")
	}

	validGuards, err := validation.ValidateGuards(c.Guards)
	if err != nil {
		return fmt.Errorf("validating guards: %w", err)
	}
	c.Guards = validGuards

	return nil
}
