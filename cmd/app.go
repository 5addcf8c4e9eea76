package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/user/contextclips/internal/capture"
	"github.com/user/contextclips/internal/clips"
	"github.com/user/contextclips/internal/db"
	"github.com/user/contextclips/internal/notify"
)

// app wires the store, hub and capture coordinator for one command.
type app struct {
	backend db.Backend
	hub     *notify.Hub
	store   *clips.Store
	coord   *capture.Coordinator
}

func openApp(ctx context.Context, opts ...capture.Option) (*app, error) {
	backend, err := db.Open(ctx, db.Options{
		Kind:        cfg.Storage.Backend,
		DataDir:     cfg.DataDir,
		PostgresDSN: cfg.Storage.PostgresDSN,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	hub := notify.New()
	store := clips.NewStore(backend, hub, clips.WithDuplicateWindow(cfg.Capture.DuplicateWindow))
	opts = append([]capture.Option{capture.WithDebounce(cfg.Capture.Debounce)}, opts...)

	slog.Debug("storage opened", "backend", cfg.Storage.Backend, "data_dir", cfg.DataDir)
	return &app{
		backend: backend,
		hub:     hub,
		store:   store,
		coord:   capture.New(store, opts...),
	}, nil
}

func (a *app) Close() {
	a.coord.Close()
	if err := a.backend.Close(); err != nil {
		slog.Warn("failed to close storage", "err", err)
	}
}

// background runs the revision poller, plus the clipboard watcher when watch
// is set, until stop is called. A watcher that can not run is logged and
// leaves the poller running.
func (a *app) background(ctx context.Context, watch bool) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.store.Follow(gctx, cfg.Storage.PollInterval)
		return nil
	})
	if watch {
		g.Go(func() error {
			if err := capture.NewWatcher(a.coord, cfg.Watch.Interval, nil).Run(gctx); err != nil {
				slog.Error("clipboard watcher stopped", "err", err)
			}
			return nil
		})
	}

	return func() {
		cancel()
		_ = g.Wait()
	}
}
