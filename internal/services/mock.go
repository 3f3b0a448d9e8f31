package services

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/desertthunder/mixtape/internal/models"
)

const recommendationCount = 5

// randomPool backs the "add random track" action.
var randomPool = []models.Track{
	{Title: "Midnight City", Artist: "M83", DurationSeconds: 243, Service: models.ServiceYouTube},
	{Title: "Get Lucky", Artist: "Daft Punk", DurationSeconds: 369, Service: models.ServiceSpotify},
	{Title: "Video Games", Artist: "Lana Del Rey", DurationSeconds: 282, Service: models.ServiceAppleMusic},
	{Title: "Oblivion", Artist: "Grimes", DurationSeconds: 251, Service: models.ServiceSoundCloud},
	{Title: "Archangel", Artist: "Burial", DurationSeconds: 230, Service: models.ServiceBandcamp},
	{Title: "Instant Crush", Artist: "Daft Punk", DurationSeconds: 337, Service: models.ServiceSpotify},
	{Title: "Genesis", Artist: "Grimes", DurationSeconds: 255, Service: models.ServiceSoundCloud},
}

var mockDatabase = append(append([]models.Track{}, randomPool...),
	models.Track{Title: "Harder, Better, Faster, Stronger", Artist: "Daft Punk", DurationSeconds: 224, Service: models.ServiceSpotify},
	models.Track{Title: "Something About Us", Artist: "Daft Punk", DurationSeconds: 231, Service: models.ServiceSpotify},
	models.Track{Title: "Genesis", Artist: "Justice", DurationSeconds: 233, Service: models.ServiceYouTube},
	models.Track{Title: "D.A.N.C.E.", Artist: "Justice", DurationSeconds: 242, Service: models.ServiceYouTube},
	models.Track{Title: "Safe and Sound", Artist: "Justice", DurationSeconds: 346, Service: models.ServiceYouTube},
	models.Track{Title: "Teardrop", Artist: "Massive Attack", DurationSeconds: 331, Service: models.ServiceAppleMusic},
	models.Track{Title: "Unfinished Sympathy", Artist: "Massive Attack", DurationSeconds: 315, Service: models.ServiceAppleMusic},
	models.Track{Title: "Royals", Artist: "Lorde", DurationSeconds: 190, Service: models.ServiceSpotify},
	models.Track{Title: "Team", Artist: "Lorde", DurationSeconds: 193, Service: models.ServiceSpotify},
)

// RandomTrack returns a fresh copy of a random track from the built-in pool.
func RandomTrack() *models.Track {
	return randomPool[rand.IntN(len(randomPool))].Clone()
}

// MockCatalog searches the built-in track database.
type MockCatalog struct {
	tracks []models.Track
}

// NewMockCatalog creates a MockCatalog over the built-in database.
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{tracks: mockDatabase}
}

// Name returns the catalog name.
func (m *MockCatalog) Name() string { return "Mock" }

// Search matches query case-insensitively against title and artist.
func (m *MockCatalog) Search(ctx context.Context, query string) ([]*models.Track, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return copyTracks(m.tracks[:min(recommendationCount, len(m.tracks))]), nil
	}

	var matched []models.Track
	for _, t := range m.tracks {
		if strings.Contains(strings.ToLower(t.Title), query) || strings.Contains(strings.ToLower(t.Artist), query) {
			matched = append(matched, t)
		}
	}
	return copyTracks(matched), nil
}

func copyTracks(tracks []models.Track) []*models.Track {
	out := make([]*models.Track, len(tracks))
	for i := range tracks {
		out[i] = tracks[i].Clone()
	}
	return out
}
