package organizing

import (
	"context"

	"cratekeeper/src/music"
)

// Inducter lists a source tree into file entries, parents before
// children, and reports how many unsupported files it passed over.
type Inducter interface {
	Induct(ctx context.Context, root string) ([]music.FileEntry, int, error)
}
