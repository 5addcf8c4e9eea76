package capture

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
)

const DefaultWatchInterval = 500 * time.Millisecond

// ReadFunc reads the current clipboard text.
type ReadFunc func() (string, error)

// Watcher polls the system clipboard and turns every change into a copy
// signal. It has no page context, so captures carry empty provenance.
type Watcher struct {
	coord    *Coordinator
	interval time.Duration
	read     ReadFunc
	system   bool
}

// NewWatcher polls with atotto/clipboard when read is nil.
func NewWatcher(coord *Coordinator, interval time.Duration, read ReadFunc) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	w := &Watcher{coord: coord, interval: interval, read: read}
	if read == nil {
		w.read = clipboard.ReadAll
		w.system = true
	}
	return w
}

// Run polls until ctx is done. Whatever is on the clipboard when Run starts
// is treated as already seen.
func (w *Watcher) Run(ctx context.Context) error {
	if w.system && clipboard.Unsupported {
		return errors.New("system clipboard is not supported on this platform")
	}

	last, err := w.read()
	if err != nil {
		slog.Debug("initial clipboard read failed", "err", err)
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("watching system clipboard", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		text, err := w.read()
		if err != nil {
			slog.Debug("clipboard read failed", "err", err)
			continue
		}
		if text == last {
			continue
		}
		last = text
		w.coord.OnCopy(text, Page{})
	}
}
