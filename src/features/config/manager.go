package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	path   string
}

// NewManager creates a new ConfigManager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Path returns the file the configuration was loaded from, if any.
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// Update updates the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"root_changed", oldConfig.Root != config.Root,
			"collision_changed", oldConfig.Organize.Collision != config.Organize.Collision,
			"telegram_enabled_changed", oldConfig.Telegram.Enabled != config.Telegram.Enabled,
		)
	}
}

// Save writes the current configuration to the specified file path.
func (m *Manager) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := saveConfig(path, m.config); err != nil {
		slog.Error("failed to save config", "path", path, "error", err)
		return err
	}
	return nil
}

// EnsureDirectories creates the watched root and one folder per category. It
// fails when the root exists but is not a directory.
func (m *Manager) EnsureDirectories() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	table, err := cfg.Table()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}

	if info, err := os.Stat(cfg.Root); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: watched root %s is not a directory", ErrStartup, cfg.Root)
	}
	if err := os.MkdirAll(cfg.Root, 0755); err != nil {
		return fmt.Errorf("%w: failed to create watched root %s: %v", ErrStartup, cfg.Root, err)
	}

	for _, name := range table.Names() {
		dir := filepath.Join(cfg.Root, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: failed to create category folder %s: %v", ErrStartup, dir, err)
		}
	}

	slog.Info("Required directories created/verified", "root", cfg.Root, "categories", len(table.Names()))
	return nil
}

// redactedCfg gets a redacted copy of the Config
func (m *Manager) redactedCfg() Config {
	var cfgCpy = *m.config
	if cfgCpy.Telegram.Token != "" {
		cfgCpy.Telegram.Token = "<redacted>"
	}
	return cfgCpy
}

// GetJSON returns the current configuration as a JSON string.
func (m *Manager) GetJSON() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jsonBytes, err := json.MarshalIndent(m.redactedCfg(), "", "  ")
	if err != nil {
		slog.Error("failed to marshal config to JSON", "error", err)
		return err.Error()
	}
	return string(jsonBytes)
}

// GetYAML returns the current configuration as a YAML string.
func (m *Manager) GetYAML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	yamlBytes, err := yaml.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
