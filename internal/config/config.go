// Package config loads and saves the mealradar configuration file, which
// also persists the user's goals and theme choice.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/mealradar/internal/model"
)

// Config holds all mealradar configuration.
type Config struct {
	Goals      *GoalsConfig     `toml:"goals,omitempty"`
	Appearance AppearanceConfig `toml:"appearance"`
	Vision     VisionConfig     `toml:"vision"`
	FoodFacts  FoodFactsConfig  `toml:"foodfacts"`
	Server     ServerConfig     `toml:"server"`
	TUI        TUIConfig        `toml:"tui"`
}

// GoalsConfig holds the saved daily goals. A nil section means the user has
// never saved goals.
type GoalsConfig = model.DailyGoals

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme,omitempty"`
}

// VisionConfig holds Gemini settings.
type VisionConfig struct {
	APIKey string `toml:"api_key,omitempty"`
	Model  string `toml:"model,omitempty"`
}

// FoodFactsConfig holds barcode database settings.
type FoodFactsConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
}

// ServerConfig holds settings for the HTTP service.
type ServerConfig struct {
	Addr          string   `toml:"addr"`
	InboxDir      string   `toml:"inbox_dir,omitempty"`
	AllowedOrigin []string `toml:"allowed_origins,omitempty"`
}

// TUIConfig holds interactive dashboard settings.
type TUIConfig struct {
	PortionStep int  `toml:"portion_step"`
	Animate     bool `toml:"animate"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Vision: VisionConfig{
			Model: "gemini-2.5-flash",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8917",
		},
		TUI: TUIConfig{
			PortionStep: 5,
			Animate:     true,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mealradar")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mealradar")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't
// exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's config file
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is the user's config file
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// GetVisionAPIKey returns the Gemini key from env var or config, in that order.
func GetVisionAPIKey(cfg Config) string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	if key := os.Getenv("API_KEY"); key != "" {
		return key
	}
	return cfg.Vision.APIKey
}

// GetFoodFactsURL returns the barcode database URL from env var or config.
func GetFoodFactsURL(cfg Config) string {
	if u := os.Getenv("MEALRADAR_FOODFACTS_URL"); u != "" {
		return u
	}
	return cfg.FoodFacts.BaseURL
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
