package organizing

import (
	"context"

	"cratekeeper/src/music"
)

// TagReader is the interface for reading metadata from a music file.
type TagReader interface {
	Read(ctx context.Context, filePath string) (*music.TagRecord, error)
}
