package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"cratekeeper/src/features/config"
)

// Watcher monitors the source path for new audio files and emits one
// notification per settle period, once the tree has gone quiet for the
// configured debounce interval.
type Watcher struct {
	config        *config.Manager
	watcher       *fsnotify.Watcher
	settled       chan string
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	running       bool
	stopChan      chan struct{}
}

// NewWatcher creates a new file system watcher.
func NewWatcher(cfg *config.Manager) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:   cfg,
		watcher:  fsWatcher,
		settled:  make(chan string, 1),
		stopChan: make(chan struct{}),
	}, nil
}

// Settled returns the channel carrying one source path per settle
// period.
func (w *Watcher) Settled() <-chan string {
	return w.settled
}

// Start begins watching the configured source path and all its
// subdirectories.
func (w *Watcher) Start(ctx context.Context) error {
	watchPath := w.config.Get().SourcePath
	slog.Info("Starting file watcher", "path", watchPath)

	err := filepath.WalkDir(watchPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.running = true

	go w.watchLoop(ctx)

	slog.Info("File watcher started successfully")
	return nil
}

// Stop stops the file watcher.
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping file watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent processes a single file system event. Created
// directories are added to the watch; created or written audio files
// reset the settle timer so a copy in progress keeps the run waiting.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				slog.Warn("Could not watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !w.isSupportedFile(event.Name) {
		return
	}

	slog.Debug("Detected activity on a supported file", "file", event.Name)
	w.resetDebounce()
}

// isSupportedFile checks if the file is a configured audio format
func (w *Watcher) isSupportedFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, format := range w.config.Get().Formats {
		if ext == "."+strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
			return true
		}
	}
	return false
}

func (w *Watcher) resetDebounce() {
	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	debounce := time.Duration(w.config.Get().Watch.DebounceSeconds) * time.Second
	if debounce <= 0 {
		debounce = 5 * time.Second
	}
	w.debounceTimer = time.AfterFunc(debounce, w.emitSettled)
}

// emitSettled notifies the consumer after the debounce period
func (w *Watcher) emitSettled() {
	source := w.config.Get().SourcePath

	select {
	case w.settled <- source:
		slog.Info("Source settled after debounce", "path", source)
	default:
		slog.Warn("Settle notification dropped, previous one still pending", "path", source)
	}
}
