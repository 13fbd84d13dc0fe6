// Package config loads the menu's settings from config.json in the user's
// config directory, with a .env file and environment variables on top.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/micha/aeonium-menu/hotkey"
)

const (
	configFileName = "config.json"
	envFileName    = ".env"
	appDirName     = "aeonium-menu"

	DefaultTimeoutMs       = 1000
	DefaultCheckIntervalMs = 100
	DefaultSeat            = "seat0"
)

var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	// Timeout is the idle timeout in milliseconds.
	Timeout int `json:"timeout"`
	// CheckInterval is how often, in milliseconds, the idle timeout is
	// checked. Clamped to Timeout.
	CheckInterval int      `json:"check_interval"`
	Seat          string   `json:"seat"`
	Modifiers     []string `json:"modifiers"`
	UpKey         string   `json:"up_key"`
	DownKey       string   `json:"down_key"`
	// Renderer is the renderer executable. Empty means look it up.
	Renderer string `json:"renderer,omitempty"`
}

func Default() Config {
	return Config{
		Timeout:       DefaultTimeoutMs,
		CheckInterval: DefaultCheckIntervalMs,
		Seat:          DefaultSeat,
		Modifiers:     []string{"KEY_LEFTCTRL", "KEY_LEFTSHIFT"},
		UpKey:         "KEY_F10",
		DownKey:       "KEY_F9",
	}
}

// DefaultDir returns $XDG_CONFIG_HOME/aeonium-menu.
func DefaultDir() (string, error) {
	if xdg.ConfigHome == "" {
		return "", errors.New("no config directory")
	}
	return filepath.Join(xdg.ConfigHome, appDirName), nil
}

// StateDir returns $XDG_STATE_HOME/aeonium-menu. Logs go here.
func StateDir() (string, error) {
	if xdg.StateHome == "" {
		return "", errors.New("no state directory")
	}
	return filepath.Join(xdg.StateHome, appDirName), nil
}

// Path returns the config file inside dir.
func Path(dir string) string {
	return filepath.Join(dir, configFileName)
}

// Load reads dir/config.json, writing the defaults there first if the file
// does not exist. Keys missing from the file keep their defaults; unknown
// keys are an error. dir/.env and the AEONIUM_* variables are applied on
// top and the result is validated.
func Load(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	path := Path(dir)
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("[config] %s not found, writing defaults", path)
		if err := Save(dir, &cfg); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
		}
	}

	if err := loadEnvFile(filepath.Join(dir, envFileName)); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile sets variables from path that are not already set.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("AEONIUM_TIMEOUT"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: AEONIUM_TIMEOUT=%q is not a number of milliseconds", ErrInvalid, v)
		}
		c.Timeout = ms
	}
	if v := os.Getenv("AEONIUM_SEAT"); v != "" {
		c.Seat = v
	}
	if v := os.Getenv("AEONIUM_RENDERER"); v != "" {
		c.Renderer = v
	}
	return nil
}

// Save writes cfg to dir/config.json.
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(Path(dir), append(data, '\n'), 0o644)
}

// Validate checks ranges and key names and clamps CheckInterval to
// Timeout.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %d", ErrInvalid, c.Timeout)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check_interval must be positive, got %d", ErrInvalid, c.CheckInterval)
	}
	if c.CheckInterval > c.Timeout {
		c.CheckInterval = c.Timeout
	}
	if c.Seat == "" {
		return fmt.Errorf("%w: seat is empty", ErrInvalid)
	}
	_, err := c.Binding()
	return err
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

func (c *Config) CheckEvery() time.Duration {
	return time.Duration(c.CheckInterval) * time.Millisecond
}

// Binding parses the key names into a hotkey binding.
func (c *Config) Binding() (hotkey.Binding, error) {
	var b hotkey.Binding
	for _, name := range c.Modifiers {
		k, err := hotkey.ParseKeyCode(name)
		if err != nil {
			return hotkey.Binding{}, fmt.Errorf("%w: modifiers: %w", ErrInvalid, err)
		}
		b.Modifiers = append(b.Modifiers, k)
	}

	var err error
	if b.Up, err = hotkey.ParseKeyCode(c.UpKey); err != nil {
		return hotkey.Binding{}, fmt.Errorf("%w: up_key: %w", ErrInvalid, err)
	}
	if b.Down, err = hotkey.ParseKeyCode(c.DownKey); err != nil {
		return hotkey.Binding{}, fmt.Errorf("%w: down_key: %w", ErrInvalid, err)
	}
	if b.Up == b.Down {
		return hotkey.Binding{}, fmt.Errorf("%w: up_key and down_key are both %s", ErrInvalid, b.Up)
	}
	return b, nil
}
