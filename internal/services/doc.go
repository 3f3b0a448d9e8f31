// Package services defines the [Catalog] interface for finding tracks to put on a mixtape and implements it
// for the YouTube Data API and a built-in mock database.
//
// # YouTube Catalog
//
// [YouTubeCatalog] runs a search request followed by a videos request, because search results carry no
// durations. Durations arrive as ISO-8601 (PT#H#M#S) and are parsed by [shared.ParseISO8601Duration].
// Both requests pass through a [rate.Limiter] so a burst of keystrokes cannot exhaust the API quota.
//
// # Mock Catalog
//
// [MockCatalog] serves a fixed set of tracks with a case-insensitive substring match on title or artist.
// An empty query returns the first five tracks as recommendations. [NewCatalog] falls back to it when
// no API key is configured.
//
// # Templates
//
// Catalog results are templates. Callers copy a result before adding it to a playlist, so picking the
// same result twice yields two distinct entries.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrServiceUnavailable] : the catalog is not configured
package services
