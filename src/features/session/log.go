// Package session keeps the user-facing record of one organizing
// session: a run stream of informational events and an error stream of
// structured failure records, both append-only and safe for concurrent
// use.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cratekeeper/src/music"
	"github.com/google/uuid"
)

const stampLayout = "2006-01-02 15:04:05"

// Record is one timestamped entry on the run stream.
type Record struct {
	Time    time.Time
	Message string
}

func (r Record) String() string {
	return fmt.Sprintf("[%s] %s", r.Time.Format(stampLayout), r.Message)
}

// ErrorRecord is a timestamped failure with zero or more nested causes,
// preserving the chain from pipeline stage down to the OS-level error.
type ErrorRecord struct {
	Time    time.Time
	Message string
	Causes  []ErrorRecord
}

// String renders the record with each nesting level indented four
// spaces.
func (r ErrorRecord) String() string {
	var b strings.Builder
	r.write(&b, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func (r ErrorRecord) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
	b.WriteString(fmt.Sprintf("[%s] %s\n", r.Time.Format(stampLayout), r.Message))
	for _, c := range r.Causes {
		c.write(b, depth+1)
	}
}

// Log owns the two streams of one session.
type Log struct {
	mu   sync.Mutex
	id   string
	runs []Record
	errs []ErrorRecord
	now  func() time.Time
}

// NewLog starts an empty session log with a fresh session ID.
func NewLog() *Log {
	return &Log{id: uuid.New().String(), now: time.Now}
}

// ID returns the session identifier.
func (l *Log) ID() string {
	return l.id
}

// Event appends a message to the run stream.
func (l *Log) Event(msg string) {
	rec := Record{Time: l.now(), Message: msg}
	l.mu.Lock()
	l.runs = append(l.runs, rec)
	l.mu.Unlock()
}

// Eventf appends a formatted message to the run stream.
func (l *Log) Eventf(format string, args ...any) {
	l.Event(fmt.Sprintf(format, args...))
}

// Fail converts err into an ErrorRecord and appends it to the error
// stream. Fault chains become nested causes.
func (l *Log) Fail(err error) {
	if err == nil {
		return
	}
	rec := recordFromError(err, l.now())
	l.mu.Lock()
	l.errs = append(l.errs, rec)
	l.mu.Unlock()
}

func recordFromError(err error, at time.Time) ErrorRecord {
	var f *music.Fault
	if errors.As(err, &f) && f != nil {
		rec := ErrorRecord{Time: at, Message: f.Headline()}
		if f.Err != nil {
			rec.Causes = append(rec.Causes, recordFromError(f.Err, at))
		}
		return rec
	}
	return ErrorRecord{Time: at, Message: err.Error()}
}

// Snapshot returns copies of both streams.
func (l *Log) Snapshot() ([]Record, []ErrorRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	runs := make([]Record, len(l.runs))
	copy(runs, l.runs)
	errs := make([]ErrorRecord, len(l.errs))
	copy(errs, l.errs)
	return runs, errs
}

// Counts returns the current stream lengths.
func (l *Log) Counts() (runs, errs int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.runs), len(l.errs)
}

// Reset clears both streams.
func (l *Log) Reset() {
	l.mu.Lock()
	l.runs = nil
	l.errs = nil
	l.mu.Unlock()
}

// Save writes both streams to "session <timestamp>.txt" under dir and
// returns the file path. The time part of the name uses dots so the
// name never needs sanitizing.
func (l *Log) Save(dir string) (string, error) {
	runs, errs := l.Snapshot()

	var b strings.Builder
	b.WriteString("#####\nrun_log\n#####\n")
	for _, r := range runs {
		b.WriteString(r.String())
		b.WriteString("\n")
	}
	b.WriteString("#####\nerr_log\n#####\n")
	for _, e := range errs {
		b.WriteString(e.String())
		b.WriteString("\n")
	}

	name := "session " + l.now().Format("2006-01-02 15.04.05") + ".txt"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("save session log: %w", err)
	}
	return path, nil
}
