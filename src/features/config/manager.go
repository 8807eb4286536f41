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
}

// NewManager creates a new Manager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update replaces the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"source_path_changed", oldConfig.SourcePath != config.SourcePath,
			"library_path_changed", oldConfig.LibraryPath != config.LibraryPath,
			"template_changed", oldConfig.Template != config.Template,
			"workers_changed", oldConfig.Organize.Workers != config.Organize.Workers,
		)
	}
}

// Save writes the current configuration to the specified file path.
func (m *Manager) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := writeConfig(path, m.config); err != nil {
		slog.Error("failed to save config", "path", path, "error", err)
		return err
	}
	slog.Info("Configuration saved successfully", "path", path)
	return nil
}

// EnsureDirectories creates the source, library, session and journal
// directories if they don't exist.
func (m *Manager) EnsureDirectories() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if err := os.MkdirAll(cfg.SourcePath, 0755); err != nil {
		return fmt.Errorf("failed to create source directory %s: %w", cfg.SourcePath, err)
	}
	if err := os.MkdirAll(cfg.LibraryPath, 0755); err != nil {
		return fmt.Errorf("failed to create library directory %s: %w", cfg.LibraryPath, err)
	}
	if cfg.Session.SavePath != "" {
		if err := os.MkdirAll(cfg.Session.SavePath, 0755); err != nil {
			return fmt.Errorf("failed to create session log directory %s: %w", cfg.Session.SavePath, err)
		}
	}
	if cfg.Journal.Enabled && cfg.Journal.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Journal.Path), 0755); err != nil {
			return fmt.Errorf("failed to create journal directory %s: %w", filepath.Dir(cfg.Journal.Path), err)
		}
	}

	slog.Info("Required directories created/verified", "source", cfg.SourcePath, "library", cfg.LibraryPath)
	return nil
}

// GetJSON returns the current configuration as a JSON string.
func (m *Manager) GetJSON() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jsonBytes, err := json.MarshalIndent(m.config, "", "  ")
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
	yamlBytes, err := yaml.Marshal(m.config)
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
