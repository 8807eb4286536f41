package config

import (
	"fmt"
	"log/slog"
	"os"

	"cratekeeper/src/music"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file from the given path and returns a new Manager.
// If the file doesn't exist, a default configuration is written there
// first.
func Load(path string) (*Manager, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		cfg := defaultConfig
		if err := writeConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		manager := NewManager(&cfg)
		if err := manager.EnsureDirectories(); err != nil {
			return nil, err
		}
		return manager, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := music.ParseTemplate(cfg.Template); err != nil {
		return nil, fmt.Errorf("config template invalid: %w", err)
	}
	normalize(&cfg)

	// Override with environment variables if set
	if v := os.Getenv("CRATEKEEPER_SOURCE"); v != "" {
		cfg.SourcePath = v
	}
	if v := os.Getenv("CRATEKEEPER_LIBRARY"); v != "" {
		cfg.LibraryPath = v
	}

	manager := NewManager(&cfg)
	if err := manager.EnsureDirectories(); err != nil {
		return nil, err
	}
	return manager, nil
}

// CreateDefault writes the default configuration file to path.
func CreateDefault(path string) error {
	cfg := defaultConfig
	return writeConfig(path, &cfg)
}

// normalize fills the few numeric fields a hand-written config may
// leave at zero.
func normalize(cfg *Config) {
	if cfg.Organize.Workers < 1 {
		cfg.Organize.Workers = 1
	}
	if cfg.Watch.DebounceSeconds < 1 {
		cfg.Watch.DebounceSeconds = defaultConfig.Watch.DebounceSeconds
	}
	if cfg.Artwork.Filename == "" {
		cfg.Artwork.Filename = defaultConfig.Artwork.Filename
	}
	if cfg.Session.SavePath == "" {
		cfg.Session.SavePath = defaultConfig.Session.SavePath
	}
	if cfg.Journal.Enabled && cfg.Journal.Path == "" {
		cfg.Journal.Path = defaultConfig.Journal.Path
	}
}

// writeConfig saves a configuration to the specified file path.
func writeConfig(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
