// Package pgstore mirrors playlists to Postgres through a pgx pool.
//
// [Store] implements history.Store, history.PlaylistCreator and history.Loader.
// Tracks are soft-deleted with is_deleted; bulk deletes are tagged with a
// delete_generation so that restoring all only brings back the latest batch.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/mixtape/internal/history"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ history.Store           = (*Store)(nil)
	_ history.PlaylistCreator = (*Store)(nil)
	_ history.Loader          = (*Store)(nil)
)

// DB is the subset of *pgxpool.Pool the store uses. It can be mocked for testing.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the Postgres mirror.
type Store struct {
	db DB
}

// New creates a Store over db.
func New(db DB) *Store {
	return &Store{db: db}
}

// Connect opens a pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is empty", shared.ErrMissingConfig)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", shared.ErrStoreUnavailable, err)
	}
	return pool, nil
}

func (s *Store) CreatePlaylist(ctx context.Context, title string, mode models.Mode) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `
		INSERT INTO playlists (title, mode)
		VALUES ($1, $2)
		RETURNING id::text
	`, title, string(mode)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert playlist: %w", err)
	}
	return id, nil
}

func (s *Store) Create(ctx context.Context, playlistID string, track *models.Track, position int) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `
		INSERT INTO tracks (playlist_id, title, artist, duration, service, thumbnail_url, source_id, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text
	`, playlistID, track.Title, track.Artist, track.DurationSeconds, string(track.Service),
		track.ThumbnailURL, track.SourceID, position).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert track: %w", err)
	}
	return id, s.refreshTotal(ctx, playlistID)
}

func (s *Store) SoftDelete(ctx context.Context, id string) error {
	return s.setDeleted(ctx, id, true)
}

func (s *Store) Restore(ctx context.Context, id string) error {
	return s.setDeleted(ctx, id, false)
}

// SoftDeleteAll pushes a new delete generation onto the playlist and hides its visible tracks
// under it. The generation is pushed even when nothing is visible.
func (s *Store) SoftDeleteAll(ctx context.Context, playlistID string) error {
	_, err := s.db.Exec(ctx, `
		WITH g AS (
			UPDATE playlists SET delete_generation = delete_generation + 1
			WHERE id = $1
			RETURNING delete_generation
		)
		UPDATE tracks
		SET is_deleted = TRUE, delete_generation = g.delete_generation, updated_at = now()
		FROM g
		WHERE tracks.playlist_id = $1 AND tracks.is_deleted = FALSE
	`, playlistID)
	if err != nil {
		return fmt.Errorf("soft delete tracks: %w", err)
	}
	return s.refreshTotal(ctx, playlistID)
}

// RestoreAll pops the playlist's latest delete generation and restores the tracks hidden under it.
func (s *Store) RestoreAll(ctx context.Context, playlistID string) error {
	_, err := s.db.Exec(ctx, `
		WITH g AS (
			UPDATE playlists SET delete_generation = delete_generation - 1
			WHERE id = $1 AND delete_generation > 0
			RETURNING delete_generation + 1 AS gen
		)
		UPDATE tracks
		SET is_deleted = FALSE, delete_generation = 0, updated_at = now()
		FROM g
		WHERE tracks.playlist_id = $1 AND tracks.is_deleted = TRUE AND tracks.delete_generation = g.gen
	`, playlistID)
	if err != nil {
		return fmt.Errorf("restore tracks: %w", err)
	}
	return s.refreshTotal(ctx, playlistID)
}

func (s *Store) LatestPlaylist(ctx context.Context) (*models.Playlist, error) {
	var (
		p    models.Playlist
		mode string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id::text, title, mode, total_duration, is_public, created_at, updated_at
		FROM playlists
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&p.ID, &p.Title, &mode, &p.TotalDuration, &p.Public, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest playlist: %w", err)
	}
	p.Mode = models.Mode(mode)
	return &p, nil
}

func (s *Store) Tracks(ctx context.Context, playlistID string) ([]*models.Track, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id::text, title, artist, duration, service, thumbnail_url, source_id
		FROM tracks
		WHERE playlist_id = $1 AND is_deleted = FALSE
		ORDER BY position ASC, created_at ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("select tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		var (
			id, service string
			t           models.Track
		)
		if err := rows.Scan(&id, &t.Title, &t.Artist, &t.DurationSeconds, &service, &t.ThumbnailURL, &t.SourceID); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		t.Service = models.Service(service)
		t.SetPersistedID(id)
		tracks = append(tracks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}
	return tracks, nil
}

func (s *Store) setDeleted(ctx context.Context, id string, deleted bool) error {
	var playlistID string
	err := s.db.QueryRow(ctx, `
		UPDATE tracks
		SET is_deleted = $2, delete_generation = 0, updated_at = now()
		WHERE id = $1
		RETURNING playlist_id::text
	`, id, deleted).Scan(&playlistID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("update track %s: %w", id, err)
	}
	return s.refreshTotal(ctx, playlistID)
}

func (s *Store) refreshTotal(ctx context.Context, playlistID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE playlists
		SET total_duration = (
			SELECT COALESCE(SUM(duration), 0) FROM tracks WHERE playlist_id = $1 AND is_deleted = FALSE
		), updated_at = now()
		WHERE id = $1
	`, playlistID)
	if err != nil {
		return fmt.Errorf("update playlist total: %w", err)
	}
	return nil
}
