package music

import (
	"errors"
	"fmt"
)

// Sentinel errors raised by the organizing pipeline. Callers match them
// with errors.Is through any number of wrapping layers.
var (
	// ErrInvalidDirectory marks a top-level source directory that
	// cannot be listed.
	ErrInvalidDirectory = errors.New("invalid directory")
	// ErrUnreadableTag marks a file whose tag container cannot be
	// opened or parsed.
	ErrUnreadableTag = errors.New("unreadable tags")
	// ErrInvalidSource marks a rename source that is not an existing
	// regular file.
	ErrInvalidSource = errors.New("invalid source file")
	// ErrDirCreate marks a destination directory that cannot be
	// created.
	ErrDirCreate = errors.New("directory creation failed")
	// ErrRenameFailed marks a failed rename or move.
	ErrRenameFailed = errors.New("rename failed")
	// ErrUserAborted marks a run stopped by the operator at a breaker
	// pause.
	ErrUserAborted = errors.New("aborted by user")
)

// Fault ties a pipeline failure to the path it concerns. It matches
// both its sentinel and its cause through errors.Is.
type Fault struct {
	Marker error
	Path   string
	Msg    string
	Err    error
}

// NewFault builds a Fault. marker should be one of the package
// sentinels; err may be nil when there is no underlying cause.
func NewFault(marker error, path, msg string, err error) *Fault {
	return &Fault{Marker: marker, Path: path, Msg: msg, Err: err}
}

// Headline is the fault's own message without the cause chain.
func (f *Fault) Headline() string {
	if f.Path == "" {
		return fmt.Sprintf("%s: %v", f.Msg, f.Marker)
	}
	return fmt.Sprintf("%s %q: %v", f.Msg, f.Path, f.Marker)
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return f.Headline()
	}
	return f.Headline() + ": " + f.Err.Error()
}

func (f *Fault) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Marker}
	}
	return []error{f.Marker, f.Err}
}
