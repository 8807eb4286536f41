package config

var defaultConfig = Config{
	SourcePath:  "./incoming",
	LibraryPath: "./music",
	Template:    "{ALBUMARTIST}/{ALBUM}/{TRACKNUMBER}. {TITLE}",
	Formats:     []string{"opus", "ogg", "flac", "mp3", "m4a"},
	Logger: Logger{
		Enabled: true,
		Level:   "info",
		Format:  "text",
	},
	Organize: Organize{
		Workers:          1,
		FailureThreshold: 10,
		DryRun:           false,
		Asciify:          false,
	},
	Watch: Watch{
		Enabled:         false,
		DebounceSeconds: 5,
	},
	Artwork: Artwork{
		Export:   false,
		Filename: "cover.jpg",
		MaxSize:  1000,
	},
	Journal: Journal{
		Enabled: true,
		Path:    "./cratekeeper.db",
	},
	Session: Session{
		SavePath: "./logs",
	},
}
