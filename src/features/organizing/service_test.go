package organizing

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cratekeeper/src/features/config"
	"cratekeeper/src/features/session"
	"cratekeeper/src/music"
)

type fakeInducter struct {
	entries []music.FileEntry
	skipped int
	err     error
}

func (f *fakeInducter) Induct(ctx context.Context, root string) ([]music.FileEntry, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.entries, f.skipped, nil
}

type fakeTagReader struct {
	failing map[string]bool
}

func (f *fakeTagReader) Read(ctx context.Context, filePath string) (*music.TagRecord, error) {
	if f.failing[filePath] {
		return nil, music.NewFault(music.ErrUnreadableTag, filePath, "read tags", errors.New("bad header"))
	}
	record := music.NewTagRecord()
	record.Set(music.KeyArtist, "Artist")
	record.Set(music.KeyTitle, strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath)))
	return record, nil
}

type fakeFormatter struct {
	err error
}

func (f *fakeFormatter) Format(record *music.TagRecord, entry music.FileEntry) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	name := record.Get(music.KeyTitle)
	if entry.Ext != "" {
		name += "." + entry.Ext
	}
	return filepath.Join(record.Get(music.KeyArtist), name), nil
}

type fakeRenamer struct {
	mu      sync.Mutex
	moves   map[string]string
	inPlace bool
	err     error
}

func (f *fakeRenamer) Rename(ctx context.Context, source, destination string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	if f.inPlace {
		return destination, false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moves == nil {
		f.moves = make(map[string]string)
	}
	f.moves[source] = destination
	return destination, true, nil
}

func (f *fakeRenamer) moved() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moves)
}

type fakeJournal struct {
	mu       sync.Mutex
	begun    []string
	moves    []Move
	finished int
}

func (f *fakeJournal) BeginRun(ctx context.Context, id, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.begun = append(f.begun, source)
	return nil
}

func (f *fakeJournal) RecordMove(ctx context.Context, move Move) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, move)
	return nil
}

func (f *fakeJournal) FinishRun(ctx context.Context, id string, moved, failed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished++
	return nil
}

func (f *fakeJournal) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	return nil, nil
}

func (f *fakeJournal) RecentMoves(ctx context.Context, runID string, limit int) ([]Move, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Move(nil), f.moves...), nil
}

type fakeArtwork struct {
	mu      sync.Mutex
	destDir []string
	err     error
}

func (f *fakeArtwork) Export(ctx context.Context, audioPath, destDir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destDir = append(f.destDir, destDir)
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(destDir, "cover.jpg"), nil
}

type fakeDecider struct {
	mu       sync.Mutex
	queue    []Decision
	calls    int
	failures []int
	errsSeen []int
}

func (f *fakeDecider) Decide(ctx context.Context, failures int, errs []session.ErrorRecord) (Decision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.failures = append(f.failures, failures)
	f.errsSeen = append(f.errsSeen, len(errs))
	if len(f.queue) == 0 {
		return DecisionResume, nil
	}
	decision := f.queue[0]
	f.queue = f.queue[1:]
	return decision, nil
}

func (f *fakeDecider) asked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testConfig(workers, threshold int) *config.Manager {
	return config.NewManager(&config.Config{
		SourcePath:  "/incoming",
		LibraryPath: "/library",
		Template:    "{ARTIST}/{TITLE}",
		Formats:     []string{"flac", "mp3"},
		Organize:    config.Organize{Workers: workers, FailureThreshold: threshold},
		Journal:     config.Journal{Enabled: true},
	})
}

func audioEntries(n int) []music.FileEntry {
	entries := make([]music.FileEntry, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("track%02d.flac", i)
		entries = append(entries, music.FileEntry{
			Path: filepath.Join("/incoming", name),
			Name: name,
			Ext:  "flac",
			Kind: music.EntryAudio,
		})
	}
	return entries
}

func TestReorderMovesEverything(t *testing.T) {
	entries := append([]music.FileEntry{{Path: "/incoming/album", Name: "album/", Kind: music.EntryDirectory}}, audioEntries(3)...)
	inducter := &fakeInducter{entries: entries, skipped: 2}
	renamer := &fakeRenamer{}
	journal := &fakeJournal{}
	log := session.NewLog()

	service := NewService(testConfig(1, 10), log, inducter, &fakeTagReader{}, &fakeFormatter{}, renamer, journal, nil, &fakeDecider{})
	stats, err := service.Reorder(context.Background(), "")
	if err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}

	if stats.Processed != 3 || stats.Moved != 3 || stats.Failures != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.Skipped != 2 {
		t.Errorf("expected unsupported files counted as skipped, got %d", stats.Skipped)
	}
	if renamer.moved() != 3 {
		t.Errorf("expected 3 renames, got %d", renamer.moved())
	}
	if dst := renamer.moves["/incoming/track00.flac"]; dst != filepath.Join("/library", "Artist", "track00.flac") {
		t.Errorf("unexpected destination %q", dst)
	}
	if len(journal.begun) != 1 || journal.begun[0] != "/incoming" {
		t.Errorf("expected one journaled run for /incoming, got %v", journal.begun)
	}
	if len(journal.moves) != 3 || journal.finished != 1 {
		t.Errorf("expected 3 journaled moves and a finished run, got %d and %d", len(journal.moves), journal.finished)
	}
	if runs, errs := log.Counts(); runs < 2 || errs != 0 {
		t.Errorf("expected start and finish run events and no errors, got %d/%d", runs, errs)
	}
}

func TestReorderNeverAbortsEarlyOnFailures(t *testing.T) {
	files := audioEntries(12)
	failing := make(map[string]bool)
	for _, f := range files {
		failing[f.Path] = true
	}
	decider := &fakeDecider{}
	log := session.NewLog()

	service := NewService(testConfig(1, 0), log, &fakeInducter{entries: files}, &fakeTagReader{failing: failing}, &fakeFormatter{}, &fakeRenamer{}, nil, nil, decider)
	stats, err := service.Reorder(context.Background(), "")
	if err != nil {
		t.Fatalf("a run full of per-file failures must still finish: %v", err)
	}

	if stats.Processed != 12 || stats.Failures != 12 || stats.Moved != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if decider.asked() != 0 {
		t.Errorf("disabled breaker should never consult the decider, asked %d times", decider.asked())
	}
	if _, errs := log.Counts(); errs != 12 {
		t.Errorf("expected 12 error records, got %d", errs)
	}
}

func TestReorderBreakerAsksOncePerCrossing(t *testing.T) {
	files := audioEntries(5)
	failing := make(map[string]bool)
	for _, f := range files {
		failing[f.Path] = true
	}
	decider := &fakeDecider{queue: []Decision{DecisionResume}}

	service := NewService(testConfig(1, 3), session.NewLog(), &fakeInducter{entries: files}, &fakeTagReader{failing: failing}, &fakeFormatter{}, &fakeRenamer{}, nil, nil, decider)
	stats, err := service.Reorder(context.Background(), "")
	if err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}

	if decider.asked() != 1 {
		t.Errorf("expected exactly one consult for one crossing, got %d", decider.asked())
	}
	if decider.failures[0] != 4 {
		t.Errorf("expected the consult to report 4 failures, got %d", decider.failures[0])
	}
	if stats.Processed != 5 || stats.Failures != 5 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestReorderAbortStopsTheRun(t *testing.T) {
	files := audioEntries(5)
	failing := make(map[string]bool)
	for _, f := range files {
		failing[f.Path] = true
	}
	decider := &fakeDecider{queue: []Decision{DecisionAbort}}

	service := NewService(testConfig(1, 1), session.NewLog(), &fakeInducter{entries: files}, &fakeTagReader{failing: failing}, &fakeFormatter{}, &fakeRenamer{}, nil, nil, decider)
	stats, err := service.Reorder(context.Background(), "")
	if !errors.Is(err, music.ErrUserAborted) {
		t.Fatalf("expected ErrUserAborted, got %v", err)
	}

	if stats.Processed != 2 {
		t.Errorf("expected processing to stop after the aborting file, got %d processed", stats.Processed)
	}
	if decider.asked() != 1 {
		t.Errorf("expected one consult, got %d", decider.asked())
	}
}

func TestReorderShowErrorsAsksAgain(t *testing.T) {
	files := audioEntries(3)
	failing := make(map[string]bool)
	for _, f := range files {
		failing[f.Path] = true
	}
	decider := &fakeDecider{queue: []Decision{DecisionShowErrors, DecisionShowErrors, DecisionResume}}

	service := NewService(testConfig(1, 1), session.NewLog(), &fakeInducter{entries: files}, &fakeTagReader{failing: failing}, &fakeFormatter{}, &fakeRenamer{}, nil, nil, decider)
	stats, err := service.Reorder(context.Background(), "")
	if err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}

	if decider.asked() != 3 {
		t.Errorf("expected show-errors to re-ask until resume, got %d consults", decider.asked())
	}
	if decider.errsSeen[0] == 0 {
		t.Error("expected accumulated error records to be passed to the decider")
	}
	if stats.Processed != 3 {
		t.Errorf("expected the run to continue after resume, got %d processed", stats.Processed)
	}
}

func TestReorderDryRun(t *testing.T) {
	manager := testConfig(1, 10)
	cfg := *manager.Get()
	cfg.Organize.DryRun = true
	manager.Update(&cfg)

	renamer := &fakeRenamer{}
	journal := &fakeJournal{}
	log := session.NewLog()

	service := NewService(manager, log, &fakeInducter{entries: audioEntries(2)}, &fakeTagReader{}, &fakeFormatter{}, renamer, journal, nil, nil)
	stats, err := service.Reorder(context.Background(), "")
	if err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}

	if !stats.DryRun || stats.Moved != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if renamer.moved() != 0 {
		t.Error("dry run must not touch files")
	}
	if len(journal.begun) != 0 || len(journal.moves) != 0 {
		t.Error("dry run must not write the journal")
	}
	runs, _ := log.Snapshot()
	var planned int
	for _, r := range runs {
		if strings.Contains(r.Message, "Would move") {
			planned++
		}
	}
	if planned != 2 {
		t.Errorf("expected 2 planned-move events, got %d", planned)
	}
}

func TestReorderCountsInPlaceAsSkipped(t *testing.T) {
	service := NewService(testConfig(1, 10), session.NewLog(), &fakeInducter{entries: audioEntries(3)}, &fakeTagReader{}, &fakeFormatter{}, &fakeRenamer{inPlace: true}, nil, nil, nil)
	stats, err := service.Reorder(context.Background(), "")
	if err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}
	if stats.Skipped != 3 || stats.Moved != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestReorderParallelWorkers(t *testing.T) {
	files := audioEntries(20)
	failing := make(map[string]bool)
	for i, f := range files {
		if i%3 == 0 {
			failing[f.Path] = true
		}
	}
	renamer := &fakeRenamer{}

	service := NewService(testConfig(4, 0), session.NewLog(), &fakeInducter{entries: files}, &fakeTagReader{failing: failing}, &fakeFormatter{}, renamer, nil, nil, nil)
	stats, err := service.Reorder(context.Background(), "")
	if err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}

	wantFailed := 7
	if stats.Processed != 20 || stats.Failures != wantFailed || stats.Moved != 20-wantFailed {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if renamer.moved() != 20-wantFailed {
		t.Errorf("expected %d renames, got %d", 20-wantFailed, renamer.moved())
	}
}

func TestReorderInductFailure(t *testing.T) {
	fault := music.NewFault(music.ErrInvalidDirectory, "/incoming", "list directory", errors.New("no such file"))
	log := session.NewLog()

	service := NewService(testConfig(1, 10), log, &fakeInducter{err: fault}, &fakeTagReader{}, &fakeFormatter{}, &fakeRenamer{}, nil, nil, nil)
	_, err := service.Reorder(context.Background(), "")
	if !errors.Is(err, music.ErrInvalidDirectory) {
		t.Fatalf("expected ErrInvalidDirectory, got %v", err)
	}
	if _, errs := log.Counts(); errs != 1 {
		t.Errorf("expected the failure on the error stream, got %d records", errs)
	}
}

func TestReorderExportsArtwork(t *testing.T) {
	manager := testConfig(1, 10)
	cfg := *manager.Get()
	cfg.Artwork.Export = true
	manager.Update(&cfg)
	artwork := &fakeArtwork{}

	service := NewService(manager, session.NewLog(), &fakeInducter{entries: audioEntries(2)}, &fakeTagReader{}, &fakeFormatter{}, &fakeRenamer{}, nil, artwork, nil)
	stats, err := service.Reorder(context.Background(), "")
	if err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}
	if stats.Moved != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(artwork.destDir) != 2 {
		t.Fatalf("expected an export per moved file, got %d", len(artwork.destDir))
	}
	if artwork.destDir[0] != filepath.Join("/library", "Artist") {
		t.Errorf("unexpected export directory %q", artwork.destDir[0])
	}
}

func TestReorderArtworkFailureIsNotFatal(t *testing.T) {
	manager := testConfig(1, 10)
	cfg := *manager.Get()
	cfg.Artwork.Export = true
	manager.Update(&cfg)
	artwork := &fakeArtwork{err: errors.New("no cover")}

	service := NewService(manager, session.NewLog(), &fakeInducter{entries: audioEntries(1)}, &fakeTagReader{}, &fakeFormatter{}, &fakeRenamer{}, nil, artwork, nil)
	stats, err := service.Reorder(context.Background(), "")
	if err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}
	if stats.Moved != 1 || stats.Failures != 0 {
		t.Errorf("artwork trouble must not fail the file: %+v", stats)
	}
}

func TestReorderProgressCallback(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	total := -1

	service := NewService(testConfig(2, 0), session.NewLog(), &fakeInducter{entries: audioEntries(6)}, &fakeTagReader{}, &fakeFormatter{}, &fakeRenamer{}, nil, nil, nil)
	service.OnProgress(func(done, t int, name string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, done)
		total = t
	})

	if _, err := service.Reorder(context.Background(), ""); err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 6 || total != 6 {
		t.Errorf("expected 6 progress calls with total 6, got %d calls total %d", len(seen), total)
	}
}

func TestPreview(t *testing.T) {
	service := NewService(testConfig(1, 10), session.NewLog(), &fakeInducter{}, &fakeTagReader{}, &fakeFormatter{}, &fakeRenamer{}, nil, nil, nil)
	got, err := service.Preview(context.Background(), "/incoming/track01.flac")
	if err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}
	want := filepath.Join("/library", "Artist", "track01.flac")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

type fakeWatcher struct {
	settled chan string
	stopped bool
}

func (f *fakeWatcher) Start(ctx context.Context) error { return nil }
func (f *fakeWatcher) Settled() <-chan string          { return f.settled }
func (f *fakeWatcher) Stop()                           { f.stopped = true }

func TestWatchAndReorder(t *testing.T) {
	renamer := &fakeRenamer{}
	watcher := &fakeWatcher{settled: make(chan string, 1)}
	service := NewService(testConfig(1, 10), session.NewLog(), &fakeInducter{entries: audioEntries(2)}, &fakeTagReader{}, &fakeFormatter{}, renamer, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- service.WatchAndReorder(ctx, watcher)
	}()

	watcher.settled <- "/incoming"
	deadline := time.After(2 * time.Second)
	for renamer.moved() < 2 {
		select {
		case <-deadline:
			t.Fatal("reorder did not run after the settle notification")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WatchAndReorder did not stop on cancel")
	}
	if !watcher.stopped {
		t.Error("watcher should be stopped on the way out")
	}
}
