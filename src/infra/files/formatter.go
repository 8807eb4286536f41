package files

import (
	"fmt"
	"sync"

	"github.com/gosimple/unidecode"

	"cratekeeper/src/features/config"
	"cratekeeper/src/music"
)

// TemplateFormatter renders library-relative destination paths from
// the configured name template. The parsed template is cached and
// reparsed only when the configured string changes.
type TemplateFormatter struct {
	config *config.Manager

	mu  sync.Mutex
	raw string
	tpl music.NameTemplate
}

// NewTemplateFormatter creates a new TemplateFormatter.
func NewTemplateFormatter(cfg *config.Manager) *TemplateFormatter {
	return &TemplateFormatter{config: cfg}
}

// Format renders the destination path for a tagged file, relative to
// the library root. The entry's extension is appended so the rendered
// name keeps the original format.
func (f *TemplateFormatter) Format(record *music.TagRecord, entry music.FileEntry) (string, error) {
	cfg := f.config.Get()
	tpl, err := f.template(cfg.Template)
	if err != nil {
		return "", err
	}
	var transform func(string) string
	if cfg.Organize.Asciify {
		transform = unidecode.Unidecode
	}
	rendered := tpl.Render(record, transform)
	if entry.Ext != "" {
		rendered += "." + entry.Ext
	}
	return rendered, nil
}

func (f *TemplateFormatter) template(raw string) (music.NameTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if raw == f.raw && f.raw != "" {
		return f.tpl, nil
	}
	tpl, err := music.ParseTemplate(raw)
	if err != nil {
		return music.NameTemplate{}, fmt.Errorf("parse template: %w", err)
	}
	f.raw, f.tpl = raw, tpl
	return tpl, nil
}
