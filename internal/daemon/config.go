// Package daemon wires the Papaléguas services together and runs the
// local API server.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration, loaded from ~/.papaleguas/config.toml.
type Config struct {
	API     APIConfig     `toml:"api"`
	Driver  DriverConfig  `toml:"driver"`
	Timers  TimersConfig  `toml:"timers"`
	Storage StorageConfig `toml:"storage"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// DriverConfig seeds the driver profile.
type DriverConfig struct {
	OpeningBalance float64 `toml:"opening_balance"`
	MaxDistance    float64 `toml:"max_distance"`
	MinPrice       float64 `toml:"min_price"`
	AutoAccept     bool    `toml:"auto_accept"`
}

// TimersConfig tunes the simulation pacing. Durations use Go syntax ("7s").
type TimersConfig struct {
	GenerationDelay string `toml:"generation_delay"`
	OrderReadyDelay string `toml:"order_ready_delay"`
	AutoAcceptDelay string `toml:"auto_accept_delay"`
	AlertSeconds    int    `toml:"alert_seconds"`
}

// StorageConfig locates the on-device database.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    7710,
			Metrics: true,
		},
		Driver: DriverConfig{
			OpeningBalance: 142.50,
			MaxDistance:    15,
			MinPrice:       0,
			AutoAccept:     false,
		},
		Timers: TimersConfig{
			GenerationDelay: "7s",
			OrderReadyDelay: "10s",
			AutoAcceptDelay: "1500ms",
			AlertSeconds:    30,
		},
		Storage: StorageConfig{
			Dir: defaultStorageDir(),
		},
	}
}

// Load reads the config file at path, falling back to defaults for any
// missing key. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".papaleguas", "config.toml")
}

// Addr returns the host:port the API listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// parseDuration parses a duration string, falling back when empty or invalid.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".papaleguas"
	}
	return filepath.Join(home, ".papaleguas")
}
