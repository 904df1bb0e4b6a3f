// Package config loads the timecard configuration file and resolves where
// tracker data lives.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"

	EnvBackend = "TIMECARD_BACKEND"
	EnvDataDir = "TIMECARD_DATA_DIR"
)

// Config represents the top-level application configuration.
type Config struct {
	// Backend selects the store: "sqlite" or "json".
	Backend string `yaml:"backend"`

	// DataDir holds the database or the JSON state and records files.
	DataDir string `yaml:"data_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
}

func Default() Config {
	return Config{
		Backend:  BackendSQLite,
		DataDir:  "~/.local/share/timecard",
		LogLevel: "info",
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "timecard", "config.yaml"), nil
}

// Load reads the config at path, or the default path when path is empty.
// A missing file yields the defaults. Environment overrides are applied last.
// The result is not validated; callers apply their own overrides first.
func Load(path string) (Config, error) {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	cfg.Backend = NormalizeBackend(cfg.Backend)

	return cfg, nil
}

func NormalizeBackend(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendJSON)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ResolvedDataDir expands a leading "~/" and creates the directory.
func (c Config) ResolvedDataDir() (string, error) {
	dir, err := ResolvePath(c.DataDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return dir, nil
}

func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path, fmt.Errorf("could not get user home directory to resolve path '%s': %w", path, err)
	}

	return filepath.Join(homeDir, path[2:]), nil
}
