package files

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cratekeeper/src/features/config"
	"cratekeeper/src/features/session"
	"cratekeeper/src/music"
)

// Scanner lists a source tree into file entries, depth first, parents
// before children. Only regular files whose extension is in the
// configured format list are inducted as audio; everything else is
// counted as skipped.
type Scanner struct {
	config *config.Manager
	log    *session.Log
}

// NewScanner creates a new Scanner.
func NewScanner(cfg *config.Manager, log *session.Log) *Scanner {
	return &Scanner{config: cfg, log: log}
}

// Induct walks root and returns its entries plus the number of
// unsupported files it passed over. An unlistable root is an error;
// an unlistable subdirectory is recorded on the session log and the
// walk moves on.
func (s *Scanner) Induct(ctx context.Context, root string) ([]music.FileEntry, int, error) {
	formats := s.supported()
	var entries []music.FileEntry
	var skipped int
	if err := s.scan(ctx, root, formats, &entries, &skipped, true); err != nil {
		return nil, 0, err
	}
	return entries, skipped, nil
}

func (s *Scanner) scan(ctx context.Context, dir string, formats map[string]struct{}, out *[]music.FileEntry, skipped *int, top bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	listing, err := os.ReadDir(dir)
	if err != nil {
		if top {
			return music.NewFault(music.ErrInvalidDirectory, dir, "list directory", err)
		}
		fault := music.NewFault(music.ErrInvalidDirectory, dir, "list subdirectory", err)
		s.log.Fail(fault)
		slog.Warn("Skipping unreadable subdirectory", "path", dir, "error", err)
		return nil
	}
	for _, entry := range listing {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			*out = append(*out, music.FileEntry{
				Path: path,
				Name: entry.Name() + string(os.PathSeparator),
				Kind: music.EntryDirectory,
			})
			if err := s.scan(ctx, path, formats, out, skipped, false); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			*skipped++
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Name())), ".")
		if _, ok := formats[ext]; !ok {
			*skipped++
			continue
		}
		*out = append(*out, music.FileEntry{
			Path: path,
			Name: entry.Name(),
			Ext:  ext,
			Kind: music.EntryAudio,
		})
	}
	return nil
}

func (s *Scanner) supported() map[string]struct{} {
	cfg := s.config.Get()
	set := make(map[string]struct{}, len(cfg.Formats))
	for _, format := range cfg.Formats {
		set[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))] = struct{}{}
	}
	return set
}
