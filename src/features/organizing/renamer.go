package organizing

import (
	"context"
)

// Renamer moves a file to its destination, sanitizing the base name
// and resolving collisions. It returns the path actually used; moved
// is false when the file already sat there.
type Renamer interface {
	Rename(ctx context.Context, source, destination string) (final string, moved bool, err error)
}
