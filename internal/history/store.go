package history

import (
	"context"
	"fmt"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Store is the persistence mirror commands write through to.
type Store interface {
	// Create persists track as the row at position in playlistID and returns its id.
	Create(ctx context.Context, playlistID string, track *models.Track, position int) (string, error)
	// SoftDelete hides a persisted track without removing it.
	SoftDelete(ctx context.Context, id string) error
	// Restore makes a soft-deleted track visible again.
	Restore(ctx context.Context, id string) error
	// SoftDeleteAll hides every visible track of a playlist.
	SoftDeleteAll(ctx context.Context, playlistID string) error
	// RestoreAll makes visible the tracks hidden by the most recent SoftDeleteAll.
	RestoreAll(ctx context.Context, playlistID string) error
}

// PlaylistCreator is implemented by stores that can create the playlist record tracks belong to.
//
// [AddTrack] uses it the first time a track is persisted for a state without a playlist id.
type PlaylistCreator interface {
	CreatePlaylist(ctx context.Context, title string, mode models.Mode) (string, error)
}

// Loader is implemented by stores that can read a playlist back.
type Loader interface {
	// LatestPlaylist returns the most recently created playlist, or an error wrapping [shared.ErrPlaylistNotFound].
	LatestPlaylist(ctx context.Context) (*models.Playlist, error)
	// Tracks returns the visible tracks of a playlist ordered by position, with persisted ids set.
	Tracks(ctx context.Context, playlistID string) ([]*models.Track, error)
}

// StoreError wraps a failed store call made while running a command.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.ID, e.Err)
}

// Unwrap lets errors.Is match both [shared.ErrStore] and the underlying cause.
func (e *StoreError) Unwrap() []error {
	return []error{shared.ErrStore, e.Err}
}
