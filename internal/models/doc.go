// Package models defines the value types shared by the playlist editor, its stores and its front ends.
//
//   - [Track] : one entry on the mixtape; identity is the pointer, not the field values
//   - [Playlist] : the persisted playlist record a set of tracks belongs to
//   - [Mode] : the physical medium (CD, cassette, focus timer) that fixes the duration budget
//   - [Service] : the tag naming where a track came from
//
// A Track's persisted id is tagged presence: [Track.PersistedID] reports whether a store has assigned one.
// Its absence means the track was never persisted.
package models
