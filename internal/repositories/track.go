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

// TrackRecord is a track row including its bookkeeping columns.
type TrackRecord struct {
	ID         string
	PlaylistID string
	Position   int
	Generation int
	DeletedAt  *time.Time
	Track      *models.Track
}

// Deleted reports whether the row is soft-deleted.
func (r *TrackRecord) Deleted() bool { return r.DeletedAt != nil }

// TrackRepository persists the tracks of a playlist.
//
// Tracks are soft-deleted and restored rather than removed, so undo can bring back the same row.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts track at position in playlistID and returns the generated ID
func (r *TrackRepository) Create(ctx context.Context, playlistID string, track *models.Track, position int) (string, error) {
	if err := track.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "tracks")
	if err != nil {
		return "", fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	now := time.Now().UTC()

	query := `
		INSERT INTO tracks (id, sequence, playlist_id, title, artist, duration, service, thumbnail_url, source_id, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		id,
		sequence,
		playlistID,
		track.Title,
		track.Artist,
		track.DurationSeconds,
		string(track.Service),
		track.ThumbnailURL,
		track.SourceID,
		position,
		now,
		now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert track: %w", err)
	}

	return id, nil
}

// Get retrieves a track row by ID, including soft-deleted rows
func (r *TrackRepository) Get(ctx context.Context, id string) (*TrackRecord, error) {
	query := `
		SELECT id, playlist_id, title, artist, duration, service, thumbnail_url, source_id, position, delete_generation, deleted_at
		FROM tracks
		WHERE id = ?
	`

	rec, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	return rec, err
}

// ListByPlaylist retrieves the visible tracks of a playlist ordered by position, with persisted IDs set
func (r *TrackRepository) ListByPlaylist(ctx context.Context, playlistID string) ([]*models.Track, error) {
	query := `
		SELECT id, playlist_id, title, artist, duration, service, thumbnail_url, source_id, position, delete_generation, deleted_at
		FROM tracks
		WHERE playlist_id = ? AND deleted_at IS NULL
		ORDER BY position ASC, sequence ASC
	`

	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, rec.Track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// SoftDelete marks a track deleted. A single delete is never part of a bulk generation.
func (r *TrackRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now().UTC()
	query := `
		UPDATE tracks
		SET deleted_at = COALESCE(deleted_at, ?), delete_generation = 0, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	return rowsAffected(result, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id))
}

// Restore clears a track's soft delete
func (r *TrackRepository) Restore(ctx context.Context, id string) error {
	query := `
		UPDATE tracks
		SET deleted_at = NULL, delete_generation = 0, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to restore track: %w", err)
	}
	return rowsAffected(result, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id))
}

// SoftDeleteAll marks every visible track of a playlist deleted under a new generation and returns it.
//
// The generation is pushed onto the playlist even when no track was visible, so the matching
// RestoreAll never reaches an older batch.
func (r *TrackRepository) SoftDeleteAll(ctx context.Context, playlistID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE playlists SET delete_generation = delete_generation + 1 WHERE id = ?`,
		playlistID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to bump delete generation: %w", err)
	}
	if err := rowsAffected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)); err != nil {
		return 0, err
	}

	var generation int
	err = tx.QueryRowContext(ctx, `SELECT delete_generation FROM playlists WHERE id = ?`, playlistID).Scan(&generation)
	if err != nil {
		return 0, fmt.Errorf("failed to read delete generation: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE tracks
		SET deleted_at = ?, delete_generation = ?, updated_at = ?
		WHERE playlist_id = ? AND deleted_at IS NULL
	`
	if _, err := tx.ExecContext(ctx, query, now, generation, now, playlistID); err != nil {
		return 0, fmt.Errorf("failed to delete tracks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return generation, nil
}

// RestoreAll restores the tracks hidden by the playlist's most recent bulk delete, pops that
// generation and returns how many tracks came back
func (r *TrackRepository) RestoreAll(ctx context.Context, playlistID string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var generation int
	err = tx.QueryRowContext(ctx, `SELECT delete_generation FROM playlists WHERE id = ?`, playlistID).Scan(&generation)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && generation == 0) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read delete generation: %w", err)
	}

	query := `
		UPDATE tracks
		SET deleted_at = NULL, delete_generation = 0, updated_at = ?
		WHERE playlist_id = ? AND deleted_at IS NOT NULL AND delete_generation = ?
	`
	result, err := tx.ExecContext(ctx, query, time.Now().UTC(), playlistID, generation)
	if err != nil {
		return 0, fmt.Errorf("failed to restore tracks: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE playlists SET delete_generation = ? WHERE id = ?`,
		generation-1, playlistID,
	); err != nil {
		return 0, fmt.Errorf("failed to pop delete generation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit restore: %w", err)
	}
	return n, nil
}

// scan reads a single row into a [TrackRecord]
func (r *TrackRepository) scan(row scanner) (*TrackRecord, error) {
	var (
		rec       TrackRecord
		t         models.Track
		service   string
		deletedAt sql.NullTime
	)

	err := row.Scan(&rec.ID, &rec.PlaylistID, &t.Title, &t.Artist, &t.DurationSeconds, &service, &t.ThumbnailURL,
		&t.SourceID, &rec.Position, &rec.Generation, &deletedAt)
	if err != nil {
		return nil, err
	}

	t.Service = models.Service(service)
	t.SetPersistedID(rec.ID)
	rec.Track = &t
	if deletedAt.Valid {
		rec.DeletedAt = &deletedAt.Time
	}
	return &rec, nil
}
