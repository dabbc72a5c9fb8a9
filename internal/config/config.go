package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	AppName = "fstate"

	// DefaultDatabaseFile is the snapshot kept at the top of a reference dir.
	DefaultDatabaseFile = ".file_db.json"

	// GenerationLayout names generation backup directories.
	GenerationLayout = "2006-01-02.150405"

	ConfigEnv = "FSTATE_CONFIG"
)

// Config holds the tunables shared by every command. Flags override it.
type Config struct {
	DatabaseFile   string   `json:"database_file"`
	GenerationsDir string   `json:"generations_dir"`
	IgnoreFile     string   `json:"ignore_file"`
	Ignore         []string `json:"ignore"`
	CleanFirst     bool     `json:"clean_first"`
	DisableDedup   bool     `json:"disable_dedup"`
	EagerHash      bool     `json:"eager_hash"`
	HashWorkers    int      `json:"hash_workers"`
	MetricsFile    string   `json:"metrics_file"`
	LogLevel       string   `json:"log_level"`
	LogFormat      string   `json:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DatabaseFile: DefaultDatabaseFile,
		EagerHash:    true,
		HashWorkers:  1,
		LogLevel:     "warn",
		LogFormat:    "console",
	}
}

// ResolvePath returns the config file location: $FSTATE_CONFIG, or
// $XDG_CONFIG_HOME/fstate/config.json (~/.config on most systems).
func ResolvePath() string {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, "config.json")
}

// Load reads defaults, then the JSON file at path (a missing file is not an
// error), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %q: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from FSTATE_* environment variables.
func (c *Config) ApplyEnv() error {
	c.LogLevel = envOr("FSTATE_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("FSTATE_LOG_FORMAT", c.LogFormat)
	c.GenerationsDir = envOr("FSTATE_GENERATIONS", c.GenerationsDir)
	c.MetricsFile = envOr("FSTATE_METRICS_FILE", c.MetricsFile)

	if v := os.Getenv("FSTATE_HASH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FSTATE_HASH_WORKERS: %w", err)
		}
		c.HashWorkers = n
	}
	return nil
}

// Validate rejects values no command can work with.
func (c *Config) Validate() error {
	if c.HashWorkers < 0 {
		return fmt.Errorf("hash_workers must not be negative, got %d", c.HashWorkers)
	}
	if strings.ContainsRune(c.DatabaseFile, os.PathSeparator) && !filepath.IsAbs(c.DatabaseFile) {
		return fmt.Errorf("database_file %q must be a bare name or an absolute path", c.DatabaseFile)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}

// DatabasePath resolves the snapshot file for a reference directory.
func (c *Config) DatabasePath(referenceDir string) string {
	if filepath.IsAbs(c.DatabaseFile) || referenceDir == "" {
		return c.DatabaseFile
	}
	return filepath.Join(referenceDir, c.DatabaseFile)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
