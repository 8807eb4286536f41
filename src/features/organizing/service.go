package organizing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cratekeeper/src/features/config"
	"cratekeeper/src/features/session"
	"cratekeeper/src/music"
)

// Stats contains the counters of one reorder run.
type Stats struct {
	Processed int           `json:"processed"`
	Moved     int           `json:"moved"`
	Skipped   int           `json:"skipped"`
	Failures  int           `json:"failures"`
	DryRun    bool          `json:"dryRun"`
	Elapsed   time.Duration `json:"elapsed"`
}

type outcome int

const (
	outcomeMoved outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Service is the domain service for the organizing feature.
type Service struct {
	config    *config.Manager
	log       *session.Log
	inducter  Inducter
	tagReader TagReader
	formatter Formatter
	renamer   Renamer
	journal   Journal
	artwork   ArtworkExporter
	decider   Decider

	runMu    sync.Mutex
	progress func(done, total int, name string)
}

// NewService creates a new organizing service.
func NewService(cfg *config.Manager, log *session.Log, inducter Inducter, tagReader TagReader, formatter Formatter, renamer Renamer, journal Journal, artwork ArtworkExporter, decider Decider) *Service {
	return &Service{
		config:    cfg,
		log:       log,
		inducter:  inducter,
		tagReader: tagReader,
		formatter: formatter,
		renamer:   renamer,
		journal:   journal,
		artwork:   artwork,
		decider:   decider,
	}
}

// OnProgress registers a callback invoked after each processed file.
// It must be set before a run starts and be safe for concurrent use.
func (s *Service) OnProgress(fn func(done, total int, name string)) {
	s.progress = fn
}

// Scan lists a source tree without touching anything. An empty root
// means the configured source path.
func (s *Service) Scan(ctx context.Context, root string) ([]music.FileEntry, int, error) {
	if root == "" {
		root = s.config.Get().SourcePath
	}
	return s.inducter.Induct(ctx, root)
}

// ReadTags reads the tag record of a single file.
func (s *Service) ReadTags(ctx context.Context, filePath string) (*music.TagRecord, error) {
	return s.tagReader.Read(ctx, filePath)
}

// Preview renders the destination a file would move to, without
// touching it.
func (s *Service) Preview(ctx context.Context, filePath string) (string, error) {
	record, err := s.tagReader.Read(ctx, filePath)
	if err != nil {
		return "", err
	}
	entry := music.FileEntry{
		Path: filePath,
		Name: filepath.Base(filePath),
		Ext:  strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), "."),
		Kind: music.EntryAudio,
	}
	rel, err := s.formatter.Format(record, entry)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.config.Get().LibraryPath, rel), nil
}

// Reorder inducts source and pipes every audio file through tag
// reading, formatting and renaming into the configured library root.
// Per-file failures are logged and counted, never fatal; once the
// failure count exceeds the configured threshold the run pauses and
// the decider is asked whether to resume, abort or show the errors.
// An empty source means the configured source path.
func (s *Service) Reorder(ctx context.Context, source string) (Stats, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	cfg := s.config.Get()
	if source == "" {
		source = cfg.SourcePath
	}
	workers := cfg.Organize.Workers
	if workers < 1 {
		workers = 1
	}
	dryRun := cfg.Organize.DryRun

	start := time.Now()
	stats := Stats{DryRun: dryRun}

	entries, unsupported, err := s.inducter.Induct(ctx, source)
	if err != nil {
		slog.Error("Service.Reorder: could not induct source", "path", source, "error", err)
		s.log.Fail(err)
		return stats, err
	}
	stats.Skipped += unsupported

	var audio []music.FileEntry
	for _, entry := range entries {
		if !entry.IsDir() {
			audio = append(audio, entry)
		}
	}
	total := len(audio)

	runID := uuid.New().String()
	slog.Info("Service.Reorder: starting run", "run", runID, "source", source, "files", total, "workers", workers, "dry_run", dryRun)
	s.log.Eventf("Reorder started: %d files in %s", total, source)
	if dryRun {
		s.log.Event("Dry run: no files will be moved")
	}
	if s.journal != nil && cfg.Journal.Enabled && !dryRun {
		if err := s.journal.BeginRun(ctx, runID, source); err != nil {
			slog.Warn("Service.Reorder: could not journal run start", "error", err)
		}
	}

	breaker := NewBreaker(cfg.Organize.FailureThreshold)
	pause := newGate()
	var done, moved, skipped, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, entry := range audio {
		entry := entry
		g.Go(func() error {
			if err := pause.Wait(gctx); err != nil {
				return err
			}
			result := s.processFile(gctx, entry, runID, dryRun)
			switch result {
			case outcomeMoved:
				moved.Add(1)
			case outcomeSkipped:
				skipped.Add(1)
			case outcomeFailed:
				failed.Add(1)
			}
			d := done.Add(1)
			if s.progress != nil {
				s.progress(int(d), total, entry.Name)
			}
			if result == outcomeFailed && breaker.Record() {
				pause.Pause()
				defer pause.Resume()
				if err := s.consult(gctx, breaker); err != nil {
					return err
				}
			}
			return nil
		})
	}
	runErr := g.Wait()

	stats.Processed = int(done.Load())
	stats.Moved = int(moved.Load())
	stats.Skipped += int(skipped.Load())
	stats.Failures = int(failed.Load())
	stats.Elapsed = time.Since(start)

	if s.journal != nil && cfg.Journal.Enabled && !dryRun {
		if err := s.journal.FinishRun(ctx, runID, stats.Moved, stats.Failures); err != nil {
			slog.Warn("Service.Reorder: could not journal run finish", "error", err)
		}
	}

	s.log.Eventf("Reorder finished: %d processed, %d moved, %d skipped, %d failed in %s",
		stats.Processed, stats.Moved, stats.Skipped, stats.Failures, music.HumanDuration(int(stats.Elapsed.Seconds())))
	slog.Info("Service.Reorder: run finished", "run", runID, "stats", stats)

	return stats, runErr
}

// processFile runs one file through the pipeline. Failures land on the
// session log; the caller does the counting.
func (s *Service) processFile(ctx context.Context, entry music.FileEntry, runID string, dryRun bool) outcome {
	record, err := s.tagReader.Read(ctx, entry.Path)
	if err != nil {
		slog.Warn("Service.Reorder: could not read tags", "path", entry.Path, "error", err)
		s.log.Fail(err)
		return outcomeFailed
	}

	rel, err := s.formatter.Format(record, entry)
	if err != nil {
		slog.Warn("Service.Reorder: could not format destination", "path", entry.Path, "error", err)
		s.log.Fail(err)
		return outcomeFailed
	}
	cfg := s.config.Get()
	destination := filepath.Join(cfg.LibraryPath, rel)

	if dryRun {
		s.log.Eventf("Would move %q to %q", entry.Path, destination)
		return outcomeMoved
	}

	final, didMove, err := s.renamer.Rename(ctx, entry.Path, destination)
	if err != nil {
		slog.Warn("Service.Reorder: could not move file", "path", entry.Path, "error", err)
		s.log.Fail(err)
		return outcomeFailed
	}
	if !didMove {
		return outcomeSkipped
	}
	s.log.Eventf("Moved %q to %q", entry.Path, final)

	if s.journal != nil && cfg.Journal.Enabled {
		move := Move{RunID: runID, Source: entry.Path, Destination: final, At: time.Now()}
		if err := s.journal.RecordMove(ctx, move); err != nil {
			slog.Warn("Service.Reorder: could not journal move", "error", err, "path", final)
		}
	}
	if s.artwork != nil && cfg.Artwork.Export {
		written, err := s.artwork.Export(ctx, final, filepath.Dir(final))
		if err != nil {
			slog.Warn("Service.Reorder: could not export artwork", "error", err, "path", final)
		} else if written != "" {
			s.log.Eventf("Exported artwork to %q", written)
		}
	}
	return outcomeMoved
}

// consult asks the decider what to do about the failure count and
// loops until the answer is resume or abort.
func (s *Service) consult(ctx context.Context, breaker *Breaker) error {
	failures := breaker.Failures()
	if s.decider == nil {
		slog.Warn("Service.Reorder: failure threshold exceeded with no decider, resuming", "failures", failures)
		breaker.Reset()
		return nil
	}
	for {
		_, errs := s.log.Snapshot()
		decision, err := s.decider.Decide(ctx, failures, errs)
		if err != nil {
			return fmt.Errorf("breaker decision: %w", err)
		}
		switch decision {
		case DecisionResume:
			slog.Info("Service.Reorder: run resumed", "failures_cleared", failures)
			breaker.Reset()
			return nil
		case DecisionAbort:
			slog.Info("Service.Reorder: run aborted", "failures", failures)
			return fmt.Errorf("reorder stopped: %w", music.ErrUserAborted)
		case DecisionShowErrors:
			continue
		}
	}
}
