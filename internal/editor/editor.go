// package editor is the entry point for playlist edits.
//
// An [Editor] owns one [playlist.State] and the [history.Manager] that mutates it.
// Every edit goes through a command so it can be undone, and capacity is checked
// under the manager's lock so concurrent adds cannot overshoot the budget.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/history"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/playlist"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Options configures a new [Editor].
type Options struct {
	Title        string
	Mode         models.Mode
	Capacity     int           // seconds; <= 0 uses the mode's capacity
	Store        history.Store // nil disables mirroring
	StoreTimeout time.Duration
	HistoryLimit int
	Logger       *log.Logger
}

// Snapshot is a read-only view of the playlist handed to subscribers.
type Snapshot struct {
	Title      string          `json:"title"`
	Mode       models.Mode     `json:"mode"`
	ModeLabel  string          `json:"modeLabel"`
	Tracks     []*models.Track `json:"tracks"`
	Total      int             `json:"total"`
	Capacity   int             `json:"capacity"`
	Remaining  int             `json:"remaining"`
	CanUndo    bool            `json:"canUndo"`
	CanRedo    bool            `json:"canRedo"`
	PlaylistID string          `json:"playlistId,omitempty"`
}

// Editor applies playlist edits through the command history.
type Editor struct {
	state   *playlist.State
	manager *history.Manager
	mirror  *history.Mirror
	logger  *log.Logger

	subMu sync.RWMutex
	subs  []func(Snapshot)
}

// New creates an Editor with an empty playlist.
func New(opts Options) *Editor {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Mode == "" {
		opts.Mode = models.ModeCD
	}

	e := &Editor{
		state:  playlist.New(opts.Title, opts.Mode, opts.Capacity),
		logger: shared.WithLogger(opts.Logger, "component", "editor"),
	}
	e.mirror = history.NewMirror(opts.Store, opts.Logger, history.WithStoreTimeout(opts.StoreTimeout))
	e.manager = history.NewManager(
		history.WithObserver(e.publish),
		history.WithLimit(opts.HistoryLimit),
		history.WithManagerLogger(opts.Logger),
	)
	return e
}

// AddTrack appends a copy of template and returns the copy.
//
// It returns an error wrapping [shared.ErrCapacityExceeded] when the track does not fit,
// or [shared.ErrInvalidInput] when the template is invalid. Neither changes the playlist.
func (e *Editor) AddTrack(ctx context.Context, template *models.Track) (*models.Track, error) {
	if template == nil {
		return nil, fmt.Errorf("%w: track is required", shared.ErrInvalidInput)
	}
	if err := template.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	track := template.Clone()
	err := e.manager.Submit(ctx, func() (history.Command, error) {
		if !e.state.CanAdd(track.DurationSeconds) {
			return nil, fmt.Errorf("%w: disc full, %s does not fit in the %s remaining",
				shared.ErrCapacityExceeded,
				shared.FormatDuration(track.DurationSeconds),
				shared.FormatDuration(e.state.Remaining()))
		}
		return history.NewAddTrack(e.state, e.mirror, track), nil
	})
	if err != nil {
		e.logger.Info("add rejected", "title", track.Title, "duration", track.DurationSeconds, "error", err)
		return nil, err
	}
	return track, nil
}

// AddRandomTrack appends a copy of a random track from the built-in pool.
func (e *Editor) AddRandomTrack(ctx context.Context) (*models.Track, error) {
	return e.AddTrack(ctx, services.RandomTrack())
}

// DeleteTrack removes the track at index. It returns an error wrapping
// [shared.ErrTrackNotFound] when index is out of range.
func (e *Editor) DeleteTrack(ctx context.Context, index int) error {
	return e.manager.Submit(ctx, func() (history.Command, error) {
		if index < 0 || index >= e.state.Len() {
			return nil, fmt.Errorf("%w: no track at position %d", shared.ErrTrackNotFound, index+1)
		}
		return history.NewDeleteTrack(e.state, e.mirror, e.state.At(index)), nil
	})
}

// ClearAll removes every track. Clearing an empty playlist records nothing.
func (e *Editor) ClearAll(ctx context.Context) error {
	return e.manager.Submit(ctx, func() (history.Command, error) {
		if e.state.Len() == 0 {
			return nil, nil
		}
		return history.NewClearAll(e.state, e.mirror), nil
	})
}

// Undo reverses the last edit and reports whether there was one.
func (e *Editor) Undo(ctx context.Context) bool { return e.manager.Undo(ctx) }

// Redo re-applies the last undone edit and reports whether there was one.
func (e *Editor) Redo(ctx context.Context) bool { return e.manager.Redo(ctx) }

// Load replaces the playlist with the most recent one from loader and clears the history.
//
// When the loader has no playlist the editor is left unchanged and the error
// wraps [shared.ErrPlaylistNotFound].
func (e *Editor) Load(ctx context.Context, loader history.Loader) error {
	p, err := loader.LatestPlaylist(ctx)
	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}
	tracks, err := loader.Tracks(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to load tracks for %s: %w", p.ID, err)
	}

	total := 0
	for _, t := range tracks {
		total += t.DurationSeconds
	}

	e.manager.Reset(func() {
		if p.Title != "" {
			e.state.Title = p.Title
		}
		e.state.ReplaceAll(tracks, total)
		e.state.SetPlaylistID(p.ID)
	})

	if total > e.state.Capacity() {
		e.logger.Warn("loaded playlist exceeds capacity", "id", p.ID, "total", total, "capacity", e.state.Capacity())
	}
	e.logger.Info("loaded playlist", "id", p.ID, "tracks", len(tracks), "total", total)
	return nil
}

// Snapshot returns the current playlist view.
func (e *Editor) Snapshot() Snapshot {
	var s Snapshot
	e.manager.View(func() { s = e.snapshot() })
	return s
}

// Subscribe registers fn to receive a snapshot after every completed edit.
//
// Subscribers run synchronously in registration order and must not call back into the editor.
func (e *Editor) Subscribe(fn func(Snapshot)) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	e.subs = append(e.subs, fn)
}

// IsCapacityExceeded reports whether err is a capacity rejection.
func IsCapacityExceeded(err error) bool {
	return errors.Is(err, shared.ErrCapacityExceeded)
}

func (e *Editor) publish() {
	e.subMu.RLock()
	subs := e.subs
	e.subMu.RUnlock()
	if len(subs) == 0 {
		return
	}

	s := e.snapshot()
	for _, fn := range subs {
		fn(s)
	}
}

// snapshot must run while the manager's lock is held.
func (e *Editor) snapshot() Snapshot {
	tracks := e.state.Tracks()
	for i, t := range tracks {
		c := *t
		tracks[i] = &c
	}
	id, _ := e.state.PlaylistID()
	return Snapshot{
		Title:      e.state.Title,
		Mode:       e.state.Mode,
		ModeLabel:  e.state.Mode.Label(),
		Tracks:     tracks,
		Total:      e.state.Total(),
		Capacity:   e.state.Capacity(),
		Remaining:  e.state.Remaining(),
		CanUndo:    e.manager.CanUndo(),
		CanRedo:    e.manager.CanRedo(),
		PlaylistID: id,
	}
}
