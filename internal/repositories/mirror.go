package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/mixtape/internal/history"
	"github.com/desertthunder/mixtape/internal/models"
)

var (
	_ history.Store           = (*Mirror)(nil)
	_ history.PlaylistCreator = (*Mirror)(nil)
	_ history.Loader          = (*Mirror)(nil)
)

// Mirror is the SQLite store the command history writes through to.
//
// Every track mutation also refreshes the owning playlist's total_duration.
type Mirror struct {
	playlists *PlaylistRepository
	tracks    *TrackRepository
}

// NewMirror creates a Mirror over a migrated database.
func NewMirror(db *sql.DB) *Mirror {
	return &Mirror{playlists: NewPlaylistRepository(db), tracks: NewTrackRepository(db)}
}

// Playlists returns the playlist repository.
func (m *Mirror) Playlists() *PlaylistRepository { return m.playlists }

// Tracks returns the visible tracks of playlistID.
func (m *Mirror) Tracks(ctx context.Context, playlistID string) ([]*models.Track, error) {
	return m.tracks.ListByPlaylist(ctx, playlistID)
}

// LatestPlaylist returns the most recently created playlist.
func (m *Mirror) LatestPlaylist(ctx context.Context) (*models.Playlist, error) {
	return m.playlists.Latest(ctx)
}

func (m *Mirror) CreatePlaylist(ctx context.Context, title string, mode models.Mode) (string, error) {
	p := &models.Playlist{Title: title, Mode: mode, Public: true}
	if err := m.playlists.Create(ctx, p); err != nil {
		return "", err
	}
	return p.ID, nil
}

func (m *Mirror) Create(ctx context.Context, playlistID string, track *models.Track, position int) (string, error) {
	if playlistID == "" {
		return "", fmt.Errorf("cannot persist track %q without a playlist", track.Title)
	}
	id, err := m.tracks.Create(ctx, playlistID, track, position)
	if err != nil {
		return "", err
	}
	return id, m.playlists.RefreshTotal(ctx, playlistID)
}

func (m *Mirror) SoftDelete(ctx context.Context, id string) error {
	if err := m.tracks.SoftDelete(ctx, id); err != nil {
		return err
	}
	return m.refreshFor(ctx, id)
}

func (m *Mirror) Restore(ctx context.Context, id string) error {
	if err := m.tracks.Restore(ctx, id); err != nil {
		return err
	}
	return m.refreshFor(ctx, id)
}

func (m *Mirror) SoftDeleteAll(ctx context.Context, playlistID string) error {
	if _, err := m.tracks.SoftDeleteAll(ctx, playlistID); err != nil {
		return err
	}
	return m.playlists.RefreshTotal(ctx, playlistID)
}

func (m *Mirror) RestoreAll(ctx context.Context, playlistID string) error {
	if _, err := m.tracks.RestoreAll(ctx, playlistID); err != nil {
		return err
	}
	return m.playlists.RefreshTotal(ctx, playlistID)
}

func (m *Mirror) refreshFor(ctx context.Context, trackID string) error {
	rec, err := m.tracks.Get(ctx, trackID)
	if err != nil {
		return err
	}
	return m.playlists.RefreshTotal(ctx, rec.PlaylistID)
}
