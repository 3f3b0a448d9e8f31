// Package tasks runs long playlist operations with real-time progress reporting.
//
// # Import
//
// [Importer.Import] turns a list of search queries (one per line, e.g. "Daft Punk - Get Lucky") into playlist entries:
//
//  1. Search : queries are resolved concurrently by a worker pool against a [services.Catalog].
//     A [rate.Limiter] paces requests so a remote catalog is not flooded.
//  2. Add : the first match of each query is added in input order, one edit per track, so every
//     imported track can be undone on its own. Tracks that do not fit are reported as rejected.
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
