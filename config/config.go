// ABOUTME: Configuration for the dealerdesk CLI, server and store
// ABOUTME: JSON file at the XDG config path with .env and DEALERDESK_* overrides

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const (
	// AppName names the XDG directories.
	AppName = "dealerdesk"

	// ConfigFileName is where we store local config.
	ConfigFileName = "config.json"

	DefaultRemoteURL = "http://localhost:8080"
	DefaultPort      = 8080
	DefaultTimeout   = 15 * time.Second
	DefaultLogLevel  = "info"
)

// Config holds every tunable setting.
type Config struct {
	// RemoteURL is the base URL of the dealer and activity resources.
	RemoteURL string `json:"remote_url,omitempty"`

	// Offline skips the remote entirely and works from the local fallback.
	Offline bool `json:"offline,omitempty"`

	// FallbackDir holds the Badger store with the local slots.
	FallbackDir string `json:"fallback_dir,omitempty"`

	// DataDir holds the server's dealer file and activity database.
	DataDir string `json:"data_dir,omitempty"`

	Port     int           `json:"port,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
	LogLevel string        `json:"log_level,omitempty"`

	// LogFile receives log output when set; stderr otherwise.
	LogFile string `json:"log_file,omitempty"`
}

// DefaultConfig returns a new config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RemoteURL:   DefaultRemoteURL,
		FallbackDir: filepath.Join(xdg.DataHome, AppName, "fallback"),
		DataDir:     filepath.Join(xdg.DataHome, AppName, "server"),
		Port:        DefaultPort,
		Timeout:     DefaultTimeout,
		LogLevel:    DefaultLogLevel,
	}
}

// DefaultLogFile is where interactive front ends log, keeping the terminal clean.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// ConfigPath returns the XDG-compliant config file location.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// Load reads .env from the working directory if present, then the config
// file, then applies environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.FallbackDir == "" {
		c.FallbackDir = d.FallbackDir
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// applyEnvOverrides applies:
// - DEALERDESK_REMOTE_URL
// - DEALERDESK_OFFLINE
// - DEALERDESK_FALLBACK_DIR
// - DEALERDESK_DATA_DIR
// - DEALERDESK_PORT
// - DEALERDESK_TIMEOUT (Go duration, e.g. 5s)
// - DEALERDESK_LOG_LEVEL
// - DEALERDESK_LOG_FILE
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DEALERDESK_REMOTE_URL"); v != "" {
		cfg.RemoteURL = v
	}
	if v := os.Getenv("DEALERDESK_OFFLINE"); v != "" {
		cfg.Offline = v == "true" || v == "1"
	}
	if v := os.Getenv("DEALERDESK_FALLBACK_DIR"); v != "" {
		cfg.FallbackDir = v
	}
	if v := os.Getenv("DEALERDESK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DEALERDESK_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DEALERDESK_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DEALERDESK_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DEALERDESK_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = timeout
	}
	if v := os.Getenv("DEALERDESK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DEALERDESK_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	return nil
}

// SaveTo writes the config to path with restricted permissions.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Save persists the config at the XDG path.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}
