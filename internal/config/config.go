// internal/config/config.go
//
// This package handles configuration and the .swiftcart data directory.
// Every user running swiftcart gets a .swiftcart/ folder in their home
// directory holding the config file, persisted state and logs.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/swiftcart/internal/currency"
)

const (
	// SwiftcartDir is the name of the directory we create in the home dir.
	SwiftcartDir = ".swiftcart"

	// EnvAPIURL overrides the catalog origin without editing the file.
	EnvAPIURL = "SWIFTCART_API_URL"

	defaultBaseURL        = "https://fakestoreapi.com"
	defaultTimeoutSeconds = 10
	defaultNoticeSeconds  = 3
)

const defaultConfigYAML = `# swiftcart configuration
version: 1

api:
  # Origin of the product catalog service.
  base_url: https://fakestoreapi.com
  # Per-request timeout in seconds.
  timeout_seconds: 10

display:
  # Price rendering: usd or inr.
  currency: usd
  # How long transient notices stay on screen, in seconds.
  notice_seconds: 3
`

// APIConfig models the api section of config.yaml.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DisplayConfig models the display section of config.yaml.
type DisplayConfig struct {
	Currency      string `yaml:"currency"`
	NoticeSeconds int    `yaml:"notice_seconds"`
}

// FileConfig models .swiftcart/config.yaml.
type FileConfig struct {
	Version int           `yaml:"version"`
	API     APIConfig     `yaml:"api"`
	Display DisplayConfig `yaml:"display"`
}

// Config holds the runtime configuration for swiftcart.
type Config struct {
	// HomeDir is the directory holding the .swiftcart folder.
	HomeDir string

	// DataDir is HomeDir/.swiftcart.
	DataDir string

	File FileConfig
}

// InitDataDir creates the .swiftcart directory structure and materializes
// the default config file on first run.
//
// Structure created:
// .swiftcart/
// ├── logs/    <- logbook output
// └── state/   <- persisted cart snapshot and session token
func InitDataDir(homeDir string) error {
	dataDir := filepath.Join(homeDir, SwiftcartDir)
	dirs := []string{
		filepath.Join(dataDir, "logs"),
		filepath.Join(dataDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureConfigFile(filepath.Join(dataDir, "config.yaml"))
}

// NewConfig creates a Config populated from the user's config file, with
// environment overrides applied.
func NewConfig(homeDir string) (*Config, error) {
	if strings.TrimSpace(homeDir) == "" {
		return nil, fmt.Errorf("config: home directory is required")
	}
	cfg := &Config{
		HomeDir: homeDir,
		DataDir: filepath.Join(homeDir, SwiftcartDir),
		File:    defaultFileConfig(),
	}
	if err := cfg.loadFileConfig(); err != nil {
		return nil, err
	}
	if override := strings.TrimSpace(os.Getenv(EnvAPIURL)); override != "" {
		cfg.File.API.BaseURL = strings.TrimRight(override, "/")
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location for the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.DataDir, "config.yaml")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// LogPath returns the logbook file path.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "swiftcart.log")
}

// StateDir returns the path to the persisted-state directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.DataDir, "state")
}

// CartPath returns the persisted cart snapshot path.
func (c *Config) CartPath() string {
	return filepath.Join(c.StateDir(), "cart.json")
}

// TokenPath returns the persisted session token path.
func (c *Config) TokenPath() string {
	return filepath.Join(c.StateDir(), "session.token")
}

// BaseURL returns the catalog origin.
func (c *Config) BaseURL() string {
	return c.File.API.BaseURL
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.File.API.TimeoutSeconds) * time.Second
}

// CurrencyStyle returns the configured price rendering style.
func (c *Config) CurrencyStyle() currency.Style {
	return currency.Style(c.File.Display.Currency)
}

// NoticeDuration returns how long transient notices stay visible.
func (c *Config) NoticeDuration() time.Duration {
	return time.Duration(c.File.Display.NoticeSeconds) * time.Second
}

func (c *Config) loadFileConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.File = parsed
	return nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		API: APIConfig{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Display: DisplayConfig{
			Currency:      string(currency.StyleUSD),
			NoticeSeconds: defaultNoticeSeconds,
		},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if strings.TrimSpace(fc.API.BaseURL) == "" {
		fc.API.BaseURL = defaultBaseURL
	}
	if fc.API.TimeoutSeconds == 0 {
		fc.API.TimeoutSeconds = defaultTimeoutSeconds
	}
	if strings.TrimSpace(fc.Display.Currency) == "" {
		fc.Display.Currency = string(currency.StyleUSD)
	}
	if fc.Display.NoticeSeconds == 0 {
		fc.Display.NoticeSeconds = defaultNoticeSeconds
	}
}

func (fc *FileConfig) normalize() {
	fc.API.BaseURL = strings.TrimRight(strings.TrimSpace(fc.API.BaseURL), "/")
	fc.Display.Currency = strings.ToLower(strings.TrimSpace(fc.Display.Currency))
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if !strings.HasPrefix(fc.API.BaseURL, "http://") && !strings.HasPrefix(fc.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) origin")
	}
	if fc.API.TimeoutSeconds < 1 {
		return fmt.Errorf("api.timeout_seconds must be >= 1")
	}
	if !currency.Style(fc.Display.Currency).Valid() {
		return fmt.Errorf("display.currency must be 'usd' or 'inr'")
	}
	if fc.Display.NoticeSeconds < 1 {
		return fmt.Errorf("display.notice_seconds must be >= 1")
	}
	return nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
