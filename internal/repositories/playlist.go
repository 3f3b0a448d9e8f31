package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

const playlistColumns = `id, title, mode, total_duration, public, created_at, updated_at`

// PlaylistRepository persists playlist records.
//
// Handles playlist creation, lookup and soft delete, and keeps total_duration in step with the visible tracks.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if playlist.Title == "" {
		return fmt.Errorf("validation failed: title is required")
	}
	if playlist.Mode == "" {
		playlist.Mode = models.ModeCD
	}

	sequence, err := NextSequence(ctx, r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now().UTC()
	playlist.ID = shared.GenerateID()
	playlist.CreatedAt, playlist.UpdatedAt = now, now

	query := `
		INSERT INTO playlists (id, sequence, title, mode, total_duration, public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		playlist.ID,
		sequence,
		playlist.Title,
		string(playlist.Mode),
		playlist.TotalDuration,
		playlist.Public,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(ctx context.Context, id string) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

// Latest retrieves the most recently created playlist
func (r *PlaylistRepository) Latest(ctx context.Context) (*models.Playlist, error) {
	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, sequence DESC
		LIMIT 1
	`
	return r.scan(r.db.QueryRowContext(ctx, query))
}

// List retrieves all playlists in creation order, excluding soft-deleted playlists
func (r *PlaylistRepository) List(ctx context.Context) ([]*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE deleted_at IS NULL ORDER BY sequence ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		playlist, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// RefreshTotal recomputes total_duration from the playlist's visible tracks
func (r *PlaylistRepository) RefreshTotal(ctx context.Context, id string) error {
	query := `
		UPDATE playlists
		SET total_duration = (
			SELECT COALESCE(SUM(duration), 0) FROM tracks WHERE playlist_id = ? AND deleted_at IS NULL
		), updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update playlist total: %w", err)
	}
	return rowsAffected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id))
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return rowsAffected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id))
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads a single row into a [models.Playlist]
func (r *PlaylistRepository) scan(row scanner) (*models.Playlist, error) {
	var (
		p    models.Playlist
		mode string
	)

	err := row.Scan(&p.ID, &p.Title, &mode, &p.TotalDuration, &p.Public, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	p.Mode = models.Mode(mode)
	return &p, nil
}
