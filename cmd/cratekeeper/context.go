package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"cratekeeper/src/features/config"
	"cratekeeper/src/features/logging"
	"cratekeeper/src/features/organizing"
	"cratekeeper/src/features/session"
	"cratekeeper/src/infra/artwork"
	"cratekeeper/src/infra/database"
	"cratekeeper/src/infra/files"
	"cratekeeper/src/infra/tag"
)

const defaultConfigFile = "cratekeeper.yaml"

// commandContext wires configuration, logging and the session log once
// and hands them to every subcommand.
type commandContext struct {
	configFlag *string

	once   sync.Once
	config *config.Manager
	log    *session.Log
	err    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// configPath resolves the configuration file location: the --config
// flag wins, then CRATEKEEPER_CONFIG, then ./cratekeeper.yaml.
func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			return path
		}
	}
	if path := os.Getenv("CRATEKEEPER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigFile
}

func (c *commandContext) ensure() (*config.Manager, *session.Log, error) {
	c.once.Do(func() {
		manager, err := config.Load(c.configPath())
		if err != nil {
			c.err = err
			return
		}
		slog.SetDefault(logging.SetupLogger(manager))
		c.config = manager
		c.log = session.NewLog()
	})
	return c.config, c.log, c.err
}

// serviceBuilder assembles the adapters once and returns a factory
// that binds them to a decider. The cleanup closes the journal.
func (c *commandContext) serviceBuilder() (func(organizing.Decider) *organizing.Service, func(), error) {
	manager, log, err := c.ensure()
	if err != nil {
		return nil, nil, err
	}
	cfg := manager.Get()

	var journal organizing.Journal
	cleanup := func() {}
	if cfg.Journal.Enabled {
		j, jerr := database.NewSqliteJournal(cfg.Journal.Path)
		if jerr != nil {
			return nil, nil, jerr
		}
		journal = j
		cleanup = func() { j.Close() }
	}

	var exporter organizing.ArtworkExporter
	if cfg.Artwork.Export {
		exporter = artwork.NewExporter(manager)
	}

	build := func(decider organizing.Decider) *organizing.Service {
		return organizing.NewService(
			manager,
			log,
			files.NewScanner(manager, log),
			tag.NewReader(),
			files.NewTemplateFormatter(manager),
			files.NewRenamer(log),
			journal,
			exporter,
			decider,
		)
	}
	return build, cleanup, nil
}

func (c *commandContext) buildService(decider organizing.Decider) (*organizing.Service, func(), error) {
	build, cleanup, err := c.serviceBuilder()
	if err != nil {
		return nil, nil, err
	}
	return build(decider), cleanup, nil
}
