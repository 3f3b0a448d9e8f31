// Package server exposes the playlist editor over HTTP.
//
// # Routes
//
// [Server.Router] builds a chi router:
//
//	GET    /health
//	GET    /playlist
//	POST   /playlist/tracks
//	POST   /playlist/tracks/random
//	DELETE /playlist/tracks/{index}
//	POST   /playlist/clear
//	POST   /playlist/undo
//	POST   /playlist/redo
//	GET    /catalog/search?q=
//
// Every playlist route responds with the editor snapshot as JSON. Errors are JSON objects with an
// "error" key. A track that does not fit returns 409 Conflict and leaves the playlist unchanged.
//
// # Middleware
//
// [Middleware] wraps handlers in the order given to [Server.Router], following the standard Go pattern.
// [RequestLogger] logs each request through charmbracelet/log.
//
// Track indexes are validated here, so the command layer never sees a position that does not exist.
package server
