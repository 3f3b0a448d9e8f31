package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Mirror runs store calls on behalf of commands: it applies the per-call timeout,
// wraps failures in [StoreError] and logs them.
//
// A Mirror with a nil store skips every call.
type Mirror struct {
	store   Store
	logger  *log.Logger
	timeout time.Duration
	onError func(error)
}

// MirrorOption configures a [Mirror].
type MirrorOption func(*Mirror)

// WithStoreTimeout bounds each store call. A call that exceeds it is treated as failed.
func WithStoreTimeout(d time.Duration) MirrorOption {
	return func(m *Mirror) { m.timeout = d }
}

// WithErrorHook registers a function that receives every [StoreError] after it is logged.
func WithErrorHook(fn func(error)) MirrorOption {
	return func(m *Mirror) { m.onError = fn }
}

// NewMirror creates a Mirror writing through to store. Store may be nil.
func NewMirror(store Store, logger *log.Logger, opts ...MirrorOption) *Mirror {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	m := &Mirror{store: store, logger: shared.WithLogger(logger, "component", "mirror")}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enabled reports whether there is a store to mirror to.
func (m *Mirror) Enabled() bool {
	return m != nil && m.store != nil
}

// Create persists track and returns its id; ok is false when the call was skipped or no id was assigned.
//
// A store may return an id together with an error when the row was written but follow-up
// bookkeeping failed. The error is reported and the id is still used.
func (m *Mirror) Create(ctx context.Context, playlistID string, track *models.Track, position int) (id string, ok bool) {
	if !m.Enabled() {
		return "", false
	}
	_ = m.call(ctx, "create", "", func(ctx context.Context) error {
		var err error
		id, err = m.store.Create(ctx, playlistID, track, position)
		return err
	})
	return id, id != ""
}

// CreatePlaylist asks the store for a new playlist record when it supports one.
// ok is false unless the store returned a non-empty id.
func (m *Mirror) CreatePlaylist(ctx context.Context, title string, mode models.Mode) (id string, ok bool) {
	if !m.Enabled() {
		return "", false
	}
	creator, supported := m.store.(PlaylistCreator)
	if !supported {
		return "", false
	}
	err := m.call(ctx, "create_playlist", "", func(ctx context.Context) error {
		var err error
		id, err = creator.CreatePlaylist(ctx, title, mode)
		return err
	})
	return id, err == nil && id != ""
}

// SoftDelete hides the persisted track id.
func (m *Mirror) SoftDelete(ctx context.Context, id string) {
	if m.Enabled() {
		_ = m.call(ctx, "soft_delete", id, func(ctx context.Context) error { return m.store.SoftDelete(ctx, id) })
	}
}

// Restore un-hides the persisted track id.
func (m *Mirror) Restore(ctx context.Context, id string) {
	if m.Enabled() {
		_ = m.call(ctx, "restore", id, func(ctx context.Context) error { return m.store.Restore(ctx, id) })
	}
}

// SoftDeleteAll hides every visible track of playlistID.
func (m *Mirror) SoftDeleteAll(ctx context.Context, playlistID string) {
	if m.Enabled() {
		_ = m.call(ctx, "soft_delete_all", playlistID, func(ctx context.Context) error {
			return m.store.SoftDeleteAll(ctx, playlistID)
		})
	}
}

// RestoreAll un-hides the tracks of playlistID hidden by the last bulk delete.
func (m *Mirror) RestoreAll(ctx context.Context, playlistID string) {
	if m.Enabled() {
		_ = m.call(ctx, "restore_all", playlistID, func(ctx context.Context) error {
			return m.store.RestoreAll(ctx, playlistID)
		})
	}
}

// call runs fn detached from the caller's cancellation, bounded by the mirror timeout.
func (m *Mirror) call(ctx context.Context, op, id string, fn func(context.Context) error) error {
	ctx = context.WithoutCancel(ctx)
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", shared.ErrTimeout, err)
	}

	storeErr := &StoreError{Op: op, ID: id, Err: err}
	m.logger.Warn("store call failed", "op", op, "id", id, "error", err)
	if m.onError != nil {
		m.onError(storeErr)
	}
	return storeErr
}
