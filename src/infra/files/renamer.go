package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"cratekeeper/src/features/session"
	"cratekeeper/src/music"
)

// Renamer moves audio files into place. Destination base names are
// sanitized, collisions resolve to an indexed sibling and claims are
// tracked per destination path so concurrent workers can never settle
// on the same final path.
type Renamer struct {
	log    *session.Log
	mu     sync.Mutex
	claims map[string]struct{}
}

// NewRenamer creates a new Renamer reporting to the given session log.
func NewRenamer(log *session.Log) *Renamer {
	return &Renamer{log: log, claims: make(map[string]struct{})}
}

// Rename moves source to destination and returns the path actually
// used. moved is false when the file already sat at its destination.
// An existing file is never overwritten; the first free indexed
// sibling is used instead.
func (r *Renamer) Rename(ctx context.Context, source, destination string) (final string, moved bool, err error) {
	info, err := os.Stat(source)
	if err != nil {
		return "", false, music.NewFault(music.ErrInvalidSource, source, "move file", err)
	}
	if !info.Mode().IsRegular() {
		return "", false, music.NewFault(music.ErrInvalidSource, source, "move file",
			fmt.Errorf("%s is not a regular file", source))
	}

	dir := filepath.Dir(destination)
	base := filepath.Base(destination)
	clean, subs := music.SanitizeBaseName(base)
	for _, sub := range subs {
		r.log.Eventf("Replaced %q at position %d in %q", string(sub.Old), sub.Position, base)
	}
	target := filepath.Join(dir, clean)

	if filepath.Clean(source) == target {
		r.log.Eventf("Already in place: %s", target)
		return target, false, nil
	}

	_, statErr := os.Stat(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", false, music.NewFault(music.ErrDirCreate, dir, "create directory", err)
	}
	if os.IsNotExist(statErr) {
		r.log.Eventf("Created directory: %s", dir)
	}

	final = r.claim(dir, clean)
	defer r.unclaim(final)

	if err := r.move(source, final); err != nil {
		return "", false, music.NewFault(music.ErrRenameFailed, source, "move file", err)
	}
	return final, true, nil
}

// claim picks the first destination that neither exists on disk nor is
// held by another in-flight rename, and holds it. Indexed candidates
// count up from 1. A candidate the OS refuses to stat is claimed as-is;
// the rename that follows surfaces the real error.
func (r *Renamer) claim(dir, base string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidate := filepath.Join(dir, base)
	for n := 1; ; n++ {
		_, held := r.claims[candidate]
		if !held {
			if _, err := os.Lstat(candidate); err != nil {
				r.claims[candidate] = struct{}{}
				return candidate
			}
		}
		candidate = filepath.Join(dir, music.CollisionCandidate(base, n))
	}
}

// unclaim releases a held destination. Once the rename has happened
// the file itself keeps the slot taken.
func (r *Renamer) unclaim(path string) {
	r.mu.Lock()
	delete(r.claims, path)
	r.mu.Unlock()
}

// move renames source to dst, falling back to copy-then-remove when
// the destination sits on another filesystem.
func (r *Renamer) move(source, dst string) error {
	err := os.Rename(source, dst)
	if err == nil {
		return nil
	}
	if !isCrossDeviceError(err) {
		return err
	}
	if err := copyFile(source, dst); err != nil {
		return err
	}
	return os.Remove(source)
}

// isCrossDeviceError checks if an error is due to moving across filesystems.
func isCrossDeviceError(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

func copyFile(src, dst string) error {
	sourceFileStat, err := os.Stat(src)
	if err != nil {
		return err
	}

	if !sourceFileStat.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()
	_, err = io.Copy(destination, source)
	return err
}
