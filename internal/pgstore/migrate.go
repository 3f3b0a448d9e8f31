package pgstore

import (
	"context"
	"fmt"
)

// Migrate creates the playlists and tracks tables if they do not exist.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS playlists (
			id             uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			title          TEXT NOT NULL,
			mode           TEXT NOT NULL DEFAULT 'cd',
			total_duration    INT NOT NULL DEFAULT 0,
			delete_generation INT NOT NULL DEFAULT 0,
			is_public      BOOLEAN NOT NULL DEFAULT TRUE,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("migrate playlists: %w", err)
	}

	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tracks (
			id                uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			playlist_id       uuid NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			title             TEXT NOT NULL,
			artist            TEXT NOT NULL DEFAULT '',
			duration          INT NOT NULL DEFAULT 0,
			service           TEXT NOT NULL DEFAULT '',
			thumbnail_url     TEXT NOT NULL DEFAULT '',
			source_id         TEXT NOT NULL DEFAULT '',
			position          INT NOT NULL DEFAULT 0,
			is_deleted        BOOLEAN NOT NULL DEFAULT FALSE,
			delete_generation INT NOT NULL DEFAULT 0,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("migrate tracks: %w", err)
	}

	if _, err := db.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_tracks_playlist ON tracks (playlist_id, position)
	`); err != nil {
		return fmt.Errorf("migrate tracks index: %w", err)
	}
	return nil
}
