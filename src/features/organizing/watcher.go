package organizing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cratekeeper/src/music"
)

// SettleWatcher notifies when the source tree has gone quiet after new
// files appeared.
type SettleWatcher interface {
	Start(ctx context.Context) error
	Settled() <-chan string
	Stop()
}

// WatchAndReorder runs a reorder after every settle notification until
// ctx is done or the operator aborts a run.
func (s *Service) WatchAndReorder(ctx context.Context, watcher SettleWatcher) error {
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Stop()

	s.log.Event("Watching source for new files")
	for {
		select {
		case source, ok := <-watcher.Settled():
			if !ok {
				return nil
			}
			if _, err := s.Reorder(ctx, source); err != nil {
				if errors.Is(err, music.ErrUserAborted) || ctx.Err() != nil {
					return err
				}
				slog.Error("Service.WatchAndReorder: reorder failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
