package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Service tags the provider a track was found on.
type Service string

const (
	ServiceYouTube    Service = "YT"
	ServiceSpotify    Service = "SP"
	ServiceAppleMusic Service = "AM"
	ServiceSoundCloud Service = "SC"
	ServiceBandcamp   Service = "BC"
	ServiceMock       Service = "MOCK"
)

// ParseService normalizes a service tag, accepting the short tag or a provider name.
func ParseService(s string) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yt", "youtube":
		return ServiceYouTube, nil
	case "sp", "spotify":
		return ServiceSpotify, nil
	case "am", "apple", "applemusic":
		return ServiceAppleMusic, nil
	case "sc", "soundcloud":
		return ServiceSoundCloud, nil
	case "bc", "bandcamp":
		return ServiceBandcamp, nil
	case "", "mock":
		return ServiceMock, nil
	default:
		return "", fmt.Errorf("unknown service %q", s)
	}
}

// Track is a single entry on a playlist.
//
// Tracks are handled by pointer: two tracks with identical fields are distinct entries.
type Track struct {
	Title           string
	Artist          string
	DurationSeconds int
	Service         Service
	ThumbnailURL    string
	SourceID        string // provider-side id (e.g. a YouTube video id), never a store id

	id        string
	persisted bool
}

// NewTrack creates an unpersisted track.
func NewTrack(title, artist string, durationSeconds int, service Service) *Track {
	return &Track{
		Title:           title,
		Artist:          artist,
		DurationSeconds: durationSeconds,
		Service:         service,
	}
}

// PersistedID returns the store-assigned id and whether one has been assigned.
func (t *Track) PersistedID() (string, bool) {
	return t.id, t.persisted
}

// SetPersistedID records the id a store assigned to this track.
func (t *Track) SetPersistedID(id string) {
	t.id = id
	t.persisted = true
}

// Clone returns a new, unpersisted track with the same metadata.
//
// Catalog results are templates; each add must operate on its own copy.
func (t *Track) Clone() *Track {
	return &Track{
		Title:           t.Title,
		Artist:          t.Artist,
		DurationSeconds: t.DurationSeconds,
		Service:         t.Service,
		ThumbnailURL:    t.ThumbnailURL,
		SourceID:        t.SourceID,
	}
}

// Validate checks that the track can be placed on a playlist.
func (t *Track) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > 300 {
		return fmt.Errorf("title is too long")
	}
	if len(t.Artist) > 200 {
		return fmt.Errorf("artist is too long")
	}
	if t.DurationSeconds < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}

type trackJSON struct {
	ID              string  `json:"id,omitempty"`
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	DurationSeconds int     `json:"duration"`
	Service         Service `json:"service"`
	ThumbnailURL    string  `json:"thumbnailUrl,omitempty"`
	SourceID        string  `json:"sourceId,omitempty"`
}

// MarshalJSON includes the persisted id only when one is present.
func (t *Track) MarshalJSON() ([]byte, error) {
	v := trackJSON{
		Title:           t.Title,
		Artist:          t.Artist,
		DurationSeconds: t.DurationSeconds,
		Service:         t.Service,
		ThumbnailURL:    t.ThumbnailURL,
		SourceID:        t.SourceID,
	}
	if id, ok := t.PersistedID(); ok {
		v.ID = id
	}
	return json.Marshal(v)
}

// UnmarshalJSON reads the same shape MarshalJSON writes.
func (t *Track) UnmarshalJSON(data []byte) error {
	var v trackJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Track{
		Title:           v.Title,
		Artist:          v.Artist,
		DurationSeconds: v.DurationSeconds,
		Service:         v.Service,
		ThumbnailURL:    v.ThumbnailURL,
		SourceID:        v.SourceID,
	}
	if v.ID != "" {
		t.SetPersistedID(v.ID)
	}
	return nil
}
