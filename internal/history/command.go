package history

import (
	"context"
	"fmt"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/playlist"
)

// Command is a reversible playlist mutation.
//
// Forward and Reverse must leave the state's running total equal to the sum of its tracks.
// Local mutation always happens; store failures are absorbed by the [Mirror].
type Command interface {
	Name() string
	Forward(ctx context.Context)
	Reverse(ctx context.Context)
}

// AddTrack appends a track.
type AddTrack struct {
	state  *playlist.State
	mirror *Mirror
	track  *models.Track
}

// NewAddTrack creates an AddTrack. The capacity check is the caller's responsibility
// and must happen under the same [Manager.Submit] call.
func NewAddTrack(state *playlist.State, mirror *Mirror, track *models.Track) *AddTrack {
	return &AddTrack{state: state, mirror: mirror, track: track}
}

func (c *AddTrack) Name() string { return "add_track" }

// Track returns the track this command appends.
func (c *AddTrack) Track() *models.Track { return c.track }

// Forward persists the track (or restores its existing row on redo) and then appends it.
func (c *AddTrack) Forward(ctx context.Context) {
	if id, ok := c.track.PersistedID(); ok {
		c.mirror.Restore(ctx, id)
	} else if c.mirror.Enabled() {
		playlistID := c.ensurePlaylist(ctx)
		if id, ok := c.mirror.Create(ctx, playlistID, c.track, c.state.Len()); ok {
			c.track.SetPersistedID(id)
		}
	}
	c.state.ApplyAdd(c.track)
}

// Reverse removes the track by identity and soft-deletes its row if it has one.
func (c *AddTrack) Reverse(ctx context.Context) {
	idx := c.state.IndexOf(c.track)
	if idx < 0 {
		panic(fmt.Sprintf("history: add_track reverse: track %q not in playlist", c.track.Title))
	}
	c.state.ApplyRemoveAt(idx)
	if id, ok := c.track.PersistedID(); ok {
		c.mirror.SoftDelete(ctx, id)
	}
}

func (c *AddTrack) ensurePlaylist(ctx context.Context) string {
	if id, ok := c.state.PlaylistID(); ok {
		return id
	}
	id, ok := c.mirror.CreatePlaylist(ctx, c.state.Title, c.state.Mode)
	if !ok {
		return ""
	}
	c.state.SetPlaylistID(id)
	return id
}

// DeleteTrack removes a track and remembers where it was.
type DeleteTrack struct {
	state  *playlist.State
	mirror *Mirror
	track  *models.Track
	index  int
}

// NewDeleteTrack creates a DeleteTrack for a track currently in state.
//
// The index is captured now; it panics if track is not present.
func NewDeleteTrack(state *playlist.State, mirror *Mirror, track *models.Track) *DeleteTrack {
	idx := state.IndexOf(track)
	if idx < 0 {
		panic(fmt.Sprintf("history: delete_track: track %q not in playlist", track.Title))
	}
	return &DeleteTrack{state: state, mirror: mirror, track: track, index: idx}
}

func (c *DeleteTrack) Name() string { return "delete_track" }

// Index returns the position captured at construction.
func (c *DeleteTrack) Index() int { return c.index }

// Forward removes the track at the captured index and soft-deletes its row.
func (c *DeleteTrack) Forward(ctx context.Context) {
	if c.index >= c.state.Len() || c.state.At(c.index) != c.track {
		panic(fmt.Sprintf("history: delete_track forward: track %q is no longer at index %d", c.track.Title, c.index))
	}
	c.state.ApplyRemoveAt(c.index)
	if id, ok := c.track.PersistedID(); ok {
		c.mirror.SoftDelete(ctx, id)
	}
}

// Reverse reinserts the track at the captured index and restores its row.
func (c *DeleteTrack) Reverse(ctx context.Context) {
	c.state.ApplyInsertAt(c.index, c.track)
	if id, ok := c.track.PersistedID(); ok {
		c.mirror.Restore(ctx, id)
	}
}

// ClearAll empties the playlist.
type ClearAll struct {
	state    *playlist.State
	mirror   *Mirror
	snapshot []*models.Track
	total    int
}

// NewClearAll creates a ClearAll, capturing the current tracks and total.
func NewClearAll(state *playlist.State, mirror *Mirror) *ClearAll {
	return &ClearAll{state: state, mirror: mirror, snapshot: state.Tracks(), total: state.Total()}
}

func (c *ClearAll) Name() string { return "clear_all" }

// Forward empties the list and bulk soft-deletes the playlist's rows.
func (c *ClearAll) Forward(ctx context.Context) {
	c.state.ReplaceAll(nil, 0)
	if id, ok := c.state.PlaylistID(); ok {
		c.mirror.SoftDeleteAll(ctx, id)
	}
}

// Reverse restores the captured snapshot verbatim and bulk restores the rows.
func (c *ClearAll) Reverse(ctx context.Context) {
	c.state.ReplaceAll(c.snapshot, c.total)
	if id, ok := c.state.PlaylistID(); ok {
		c.mirror.RestoreAll(ctx, id)
	}
}
