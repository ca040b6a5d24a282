// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"teraview/internal/httputil"
	"teraview/internal/media"
	"teraview/internal/terabox"
)

// Players lists the supported media players.
var Players = []string{"mpv", "vlc", "iina", "celluloid"}

// Config holds all application configuration.
type Config struct {
	Endpoint      string `toml:"endpoint"`
	Player        string `toml:"player"`
	DownloadDir   string `toml:"download_dir"`
	Filename      string `toml:"filename"`
	NotifySeconds int    `toml:"notify_seconds"`
	Listen        string `toml:"listen"`
	Debug         bool   `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Endpoint:      terabox.DefaultEndpoint,
		Player:        "mpv",
		DownloadDir:   "~/Downloads",
		Filename:      media.DefaultFilename,
		NotifySeconds: 5,
		Listen:        "127.0.0.1:8787",
		Debug:         false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "teraview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "teraview"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if !lo.Contains(Players, strings.ToLower(c.Player)) {
		return fmt.Errorf("unsupported player %q (valid: %s)", c.Player, strings.Join(Players, ", "))
	}

	if err := httputil.ValidateURL(c.Endpoint); err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}

	if strings.TrimSpace(c.Filename) == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if c.NotifySeconds <= 0 {
		return fmt.Errorf("notify_seconds must be positive, got %d", c.NotifySeconds)
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	return nil
}

// NotifyDuration is how long an error notification stays visible.
func (c *Config) NotifyDuration() time.Duration {
	return time.Duration(c.NotifySeconds) * time.Second
}

// ExpandDownloadDir resolves ~ in the download directory path.
func (c *Config) ExpandDownloadDir() (string, error) {
	dir := c.DownloadDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// LogPath returns the path of the log file used while the TUI owns the terminal.
func LogPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "teraview", "teraview.log"), nil
}
