package organizing

import (
	"context"
)

// ArtworkExporter writes the cover image embedded in an audio file
// next to it in the library. It returns the written path, or the empty
// string when the file carries no usable cover or one is already
// present.
type ArtworkExporter interface {
	Export(ctx context.Context, audioPath, destDir string) (string, error)
}
