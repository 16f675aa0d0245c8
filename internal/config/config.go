package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Duration is a time.Duration written as a Go duration string ("100ms").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// bare numbers are milliseconds
		var ms int64
		if err := json.Unmarshal(b, &ms); err != nil {
			return fmt.Errorf("duration %s: %w", b, err)
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// ServerConfig configures the relay and how editors reach it.
type ServerConfig struct {
	Addr string `json:"addr,omitempty"`
	URL  string `json:"url,omitempty"`
}

// EditorConfig stores editor preferences
type EditorConfig struct {
	PollInterval   Duration `json:"pollInterval,omitempty"`
	SeedBars       int      `json:"seedBars,omitempty"`
	WindowWidth    int      `json:"windowWidth,omitempty"`
	WindowHeight   int      `json:"windowHeight,omitempty"`
	ScrollDebounce Duration `json:"scrollDebounce,omitempty"`
}

type LogConfig struct {
	Level string `json:"level,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Server ServerConfig `json:"server"`
	Editor EditorConfig `json:"editor"`
	Log    LogConfig    `json:"log"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
			URL:  "http://localhost:8080",
		},
		Editor: EditorConfig{
			PollInterval:   Duration(100 * time.Millisecond),
			SeedBars:       20,
			WindowWidth:    1000,
			WindowHeight:   800,
			ScrollDebounce: Duration(80 * time.Millisecond),
		},
		Log: LogConfig{Level: "INFO"},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "staffline"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if
// there is none.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Keys missing from the file keep
// their defaults; a missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
