package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/mixtape/internal/editor"
	"github.com/desertthunder/mixtape/internal/history"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/notify"
	"github.com/desertthunder/mixtape/internal/pgstore"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/shared"
)

// mirrorStore is what every configured driver provides.
type mirrorStore interface {
	history.Store
	history.Loader
}

// session is an editor bound to the configured store, plus the resources to release afterwards.
type session struct {
	editor  *editor.Editor
	store   mirrorStore
	closers []func()
}

// Close releases the session's resources in reverse order of acquisition.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStore connects to the store selected by store.driver.
func (r *Runner) openStore(ctx context.Context) (mirrorStore, func(), error) {
	switch driver := r.config.Store.Driver; driver {
	case "", "memory":
		return history.NewMemoryStore(), func() {}, nil

	case "sqlite":
		db, err := shared.OpenMigrated(r.config.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return repositories.NewMirror(db), func() { db.Close() }, nil

	case "postgres":
		pool, err := pgstore.Connect(ctx, r.config.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pgstore.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pgstore.New(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown store driver %q", shared.ErrInvalidConfig, driver)
	}
}

// openSession builds an editor over the configured store and loads the most recent playlist.
//
// When publish is set and redis.addr is configured, every edit is also published to Redis.
func (r *Runner) openSession(ctx context.Context, publish bool) (*session, error) {
	mode, err := models.ParseMode(r.config.Playlist.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
	}

	store, closeStore, err := r.openStore(ctx)
	if err != nil {
		return nil, err
	}
	s := &session{store: store, closers: []func(){closeStore}}

	s.editor = editor.New(editor.Options{
		Title:        r.config.Playlist.Title,
		Mode:         mode,
		Capacity:     r.config.Playlist.CapacitySeconds,
		Store:        store,
		StoreTimeout: r.config.StoreTimeout(),
		Logger:       r.logger,
	})

	switch err := s.editor.Load(ctx, store); {
	case errors.Is(err, shared.ErrPlaylistNotFound):
		r.logger.Info("no stored playlist, starting a new one", "driver", r.config.Store.Driver)
	case err != nil:
		r.logger.Warn("failed to load stored playlist, starting a new one", "error", err)
	}

	if publish && r.config.Redis.Addr != "" {
		rdb, err := notify.Dial(ctx, r.config.Redis)
		if err != nil {
			r.logger.Warn("change notifications disabled", "error", err)
		} else {
			s.closers = append(s.closers, func() { rdb.Close() })
			s.editor.Subscribe(notify.New(rdb, r.config.Redis.Channel, r.logger).Notify)
			r.logger.Info("publishing changes", "addr", r.config.Redis.Addr, "channel", r.config.Redis.Channel)
		}
	}

	return s, nil
}
