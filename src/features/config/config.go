package config

// Config holds the application configuration.
type Config struct {
	SourcePath  string   `yaml:"sourcePath" validate:"required"`
	LibraryPath string   `yaml:"libraryPath" validate:"required"`
	Template    string   `yaml:"template" validate:"required"`
	Formats     []string `yaml:"formats" validate:"required,min=1"`
	Logger      Logger   `yaml:"logger"`
	Organize    Organize `yaml:"organize"`
	Watch       Watch    `yaml:"watch"`
	Artwork     Artwork  `yaml:"artwork"`
	Journal     Journal  `yaml:"journal"`
	Session     Session  `yaml:"session"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Organize holds the knobs of the reorder pipeline.
type Organize struct {
	Workers int `yaml:"workers"`
	// FailureThreshold pauses the run once the failure count exceeds
	// it. Zero disables the breaker.
	FailureThreshold int  `yaml:"failure_threshold"`
	DryRun           bool `yaml:"dry_run"`
	Asciify          bool `yaml:"asciify"`
}

// Watch holds the configuration for source directory watching.
type Watch struct {
	Enabled         bool `yaml:"enabled"`
	DebounceSeconds int  `yaml:"debounce_seconds"`
}

// Artwork holds configuration for cover export into the library.
type Artwork struct {
	Export   bool   `yaml:"export"`
	Filename string `yaml:"filename"`
	MaxSize  int    `yaml:"max_size"`
}

// Journal holds the configuration for the move journal database.
type Journal struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Session holds the configuration for session log persistence.
type Session struct {
	SavePath string `yaml:"save_path"`
}
