package clips

import (
	"context"
	"log/slog"
	"time"
)

const DefaultPollInterval = time.Second

// Follow polls the backend revision of the collection and publishes a "sync"
// event whenever it moves, so writes made by other processes reach this
// store's observers. Writes made through this store are seen again here;
// observers just reload once more. Follow returns when ctx is done.
func (s *Store) Follow(ctx context.Context, interval time.Duration) {
	if s.hub == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	last, err := s.backend.Revision(ctx, storageKey)
	if err != nil {
		slog.Debug("revision poll failed", "err", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		rev, err := s.backend.Revision(ctx, storageKey)
		if err != nil {
			slog.Debug("revision poll failed", "err", err)
			continue
		}
		if rev == last {
			continue
		}
		last = rev
		slog.Debug("clip collection changed elsewhere", "revision", rev)
		s.hub.Publish("sync")
	}
}
