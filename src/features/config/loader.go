package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrStartup marks configuration problems that must abort the process.
var ErrStartup = errors.New("startup error")

// Option adjusts a loaded configuration before it is normalized and validated.
type Option func(*Config)

// WithRoot overrides the watched root, typically from a command line flag.
func WithRoot(root string) Option {
	return func(c *Config) {
		if strings.TrimSpace(root) != "" {
			c.Root = root
		}
	}
}

// WithLogLevel overrides the configured log level.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		if strings.TrimSpace(level) != "" {
			c.Logger.Level = strings.ToLower(strings.TrimSpace(level))
		}
	}
}

// Load reads a YAML (or TOML, for *.toml paths) file and returns a new Manager.
// An empty path means DefaultConfigFile. If the file doesn't exist, the default
// configuration is written there and used.
func Load(path string, opts ...Option) (*Manager, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	resolved, err := ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStartup, err)
	}

	var cfg *Config
	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", resolved)
		cfg = createDefaultConfig()
		if err := saveConfig(resolved, cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to create default config: %v", ErrStartup, err)
		}
	} else {
		f, err := os.Open(resolved)
		if err != nil {
			return nil, fmt.Errorf("%w: open config: %v", ErrStartup, err)
		}
		defer f.Close()
		cfg, err = decode(f, resolved)
		if err != nil {
			return nil, fmt.Errorf("%w: parse config %s: %v", ErrStartup, resolved, err)
		}
	}

	// Override with environment variables if set
	if root := os.Getenv("DOWNSORT_ROOT"); root != "" {
		cfg.Root = root
	}
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStartup, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStartup, err)
	}

	manager := NewManager(cfg)
	manager.path = resolved
	return manager, nil
}

// decode starts from the defaults so that a partial file only overrides the
// keys it sets.
func decode(r io.Reader, path string) (*Config, error) {
	cfg := createDefaultConfig()
	// Lists replace rather than merge.
	cfg.Categories = nil
	cfg.Watch.Ignore = nil

	if isTOML(path) {
		if err := toml.NewDecoder(r).Decode(cfg); err != nil {
			return nil, err
		}
	} else {
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}

	if cfg.Watch.Ignore == nil {
		cfg.Watch.Ignore = DefaultIgnorePatterns()
	}
	return cfg, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func (c *Config) normalize() error {
	var err error
	if c.Root, err = ExpandPath(c.Root); err != nil {
		return fmt.Errorf("root: %w", err)
	}
	if c.History.Path, err = ExpandPath(c.History.Path); err != nil {
		return fmt.Errorf("history path: %w", err)
	}
	if c.Jobs.LogPath, err = ExpandPath(c.Jobs.LogPath); err != nil {
		return fmt.Errorf("jobs log path: %w", err)
	}
	c.Organize.Collision = strings.ToLower(strings.TrimSpace(c.Organize.Collision))
	if c.Organize.Collision == "" {
		c.Organize.Collision = "rename"
	}
	if c.Watch.Workers == 0 {
		c.Watch.Workers = 1
	}
	c.Logger.Level = strings.ToLower(strings.TrimSpace(c.Logger.Level))
	c.Logger.Format = strings.ToLower(strings.TrimSpace(c.Logger.Format))
	return nil
}

// Validate checks struct constraints and that the category table can be built.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := c.Table(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading "~" to the user's home directory and returns
// an absolute, cleaned path. Empty input stays empty.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// saveConfig writes cfg to path in the format implied by its extension.
func saveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if isTOML(path) {
		if err := toml.NewEncoder(file).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
	} else {
		encoder := yaml.NewEncoder(file)
		encoder.SetIndent(2)
		if err := encoder.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to flush config: %w", err)
		}
	}
	slog.Info("Configuration saved", "path", path)
	return nil
}
