// Package repositories implements SQLite persistence for playlists and their tracks.
//
// Each repository handles its table's operations with atomic sequence generation for stable ordering.
// Tracks are never removed: a soft delete sets deleted_at, and queries exclude deleted rows by default.
//
// Key Implementations:
//   - [PlaylistRepository] : Playlist records with a cached total duration
//   - [TrackRepository] : Track rows with single and bulk soft delete/restore
//   - [Mirror] : history.Store, history.PlaylistCreator and history.Loader over both repositories
//
// A bulk soft delete tags the rows it hides with a delete generation. Restoring all brings back only the
// newest generation, so a track deleted on its own before a clear stays deleted when the clear is undone.
//
// Sequence numbers provide stable ordering (e.g., playlist #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
