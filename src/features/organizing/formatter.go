package organizing

import (
	"cratekeeper/src/music"
)

// Formatter renders the library-relative destination path for a tagged
// file.
type Formatter interface {
	Format(record *music.TagRecord, entry music.FileEntry) (string, error)
}
