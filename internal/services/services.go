// package services defines interface Catalog for searching music providers
//
// YouTube Data API, built-in mock
package services

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Catalog finds tracks that can be added to a playlist.
type Catalog interface {
	// Search returns tracks matching query. An empty query returns recommendations.
	Search(ctx context.Context, query string) ([]*models.Track, error)

	// Name returns the name of the catalog (e.g., "YouTube", "Mock")
	Name() string
}

// NewCatalog returns a [YouTubeCatalog] when an API key is configured and a [MockCatalog] otherwise.
func NewCatalog(cfg shared.YouTubeConfig, logger *log.Logger) Catalog {
	if cfg.APIKey == "" {
		if logger != nil {
			logger.Warn("no YouTube API key configured, using mock catalog")
		}
		return NewMockCatalog()
	}
	return NewYouTubeCatalog(cfg.APIKey, cfg.BaseURL, cfg.RequestsPerSecond)
}
