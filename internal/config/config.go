// Package config loads medannot's JSON configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sprite-ai/medannot/internal/history"
	"github.com/sprite-ai/medannot/internal/model"
)

// Storage configures the local annotation store.
type Storage struct {
	Directory string `json:"directory"`
}

// Server configures `medannot serve`.
type Server struct {
	Addr      string `json:"addr"`
	Port      int    `json:"port"`
	Advertise bool   `json:"advertise"` // announce over mDNS
}

// Editor holds drawing defaults.
type Editor struct {
	DefaultColor    string   `json:"defaultColor"`
	Palette         []string `json:"palette"`
	HistoryCapacity int      `json:"historyCapacity"`
}

// Backend points at a remote medannot server. When URL is set it replaces
// the local store.
type Backend struct {
	URL string `json:"url"`
}

// Config is the whole file.
type Config struct {
	Storage  Storage `json:"storage"`
	Server   Server  `json:"server"`
	Editor   Editor  `json:"editor"`
	Backend  Backend `json:"backend"`
	LogLevel string  `json:"logLevel"`
}

// DefaultPort is where `serve` listens unless told otherwise.
const DefaultPort = 7420

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: Storage{Directory: defaultStorageDir()},
		Server:  Server{Addr: "127.0.0.1", Port: DefaultPort},
		Editor: Editor{
			DefaultColor:    model.DefaultColor,
			Palette:         append([]string(nil), model.DefaultPalette...),
			HistoryCapacity: history.DefaultCapacity,
		},
		LogLevel: "warn",
	}
}

func defaultStorageDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".local", "share", "medannot")
	}
	return "medannot-data"
}

// Path is the default config file location.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "medannot", "config.json")
}

// Load reads path. A missing file yields the defaults; anything else that
// cannot be read or parsed is an error. The result is always validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Validate()
	return cfg, nil
}

// Validate replaces invalid values with defaults.
func (c *Config) Validate() {
	defaults := Default()

	if c.Storage.Directory == "" || strings.Contains(c.Storage.Directory, "..") {
		c.Storage.Directory = defaults.Storage.Directory
	}
	c.Storage.Directory = expandHome(c.Storage.Directory)

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}

	if !model.IsHexColor(c.Editor.DefaultColor) {
		c.Editor.DefaultColor = defaults.Editor.DefaultColor
	}
	palette := c.Editor.Palette[:0]
	for _, col := range c.Editor.Palette {
		if model.IsHexColor(col) {
			palette = append(palette, strings.ToLower(col))
		}
	}
	if len(palette) == 0 {
		palette = defaults.Editor.Palette
	}
	c.Editor.Palette = palette
	if c.Editor.HistoryCapacity < 1 {
		c.Editor.HistoryCapacity = defaults.Editor.HistoryCapacity
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = defaults.LogLevel
	}
	c.Backend.URL = strings.TrimRight(c.Backend.URL, "/")
}

// Save writes c to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ListenAddr is host:port for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Addr, c.Server.Port)
}

func expandHome(dir string) string {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, dir[1:])
		}
	}
	return dir
}
