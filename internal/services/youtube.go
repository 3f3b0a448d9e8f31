// YouTube Data API [Catalog] implementation
//
// Search results come from /search; durations are filled in from /videos?part=contentDetails.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultYTBaseURL   string  = "https://www.googleapis.com/youtube/v3"
	defaultYTRateLimit float64 = 5
	maxSearchResults   int     = 10
)

// YouTubeThumbnail represents a thumbnail in YouTube Data API responses.
type YouTubeThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// YouTubeSearchItem represents one entry of a search response.
type YouTubeSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string                      `json:"title"`
		ChannelTitle string                      `json:"channelTitle"`
		Thumbnails   map[string]YouTubeThumbnail `json:"thumbnails"`
	} `json:"snippet"`
}

// YouTubeVideoItem represents one entry of a videos response.
type YouTubeVideoItem struct {
	ID             string `json:"id"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

// YouTubeCatalog implements the Catalog interface for the YouTube Data API.
type YouTubeCatalog struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewYouTubeCatalog creates a YouTube catalog. A non-positive rps uses the default rate.
func NewYouTubeCatalog(apiKey, baseURL string, rps float64) *YouTubeCatalog {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if rps <= 0 {
		rps = defaultYTRateLimit
	}

	return &YouTubeCatalog{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func (y *YouTubeCatalog) WithHTTPClient(c *http.Client) *YouTubeCatalog {
	y.httpClient = c
	return y
}

// Name returns the catalog name.
func (y *YouTubeCatalog) Name() string {
	return "YouTube"
}

// Search finds up to ten videos for query and resolves their durations.
//
// An empty query returns the built-in recommendations without calling the API.
func (y *YouTubeCatalog) Search(ctx context.Context, query string) ([]*models.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return NewMockCatalog().Search(ctx, "")
	}
	if y.apiKey == "" {
		return nil, fmt.Errorf("%w: youtube api key is not configured", shared.ErrServiceUnavailable)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", fmt.Sprint(maxSearchResults))
	params.Set("q", query)

	var search struct {
		Items []YouTubeSearchItem `json:"items"`
	}
	if err := y.doRequest(ctx, "/search", params, &search); err != nil {
		return nil, err
	}

	tracks := make([]*models.Track, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID == "" {
			continue
		}
		t := models.NewTrack(item.Snippet.Title, item.Snippet.ChannelTitle, 0, models.ServiceYouTube)
		t.SourceID = item.ID.VideoID
		if thumb, ok := item.Snippet.Thumbnails["default"]; ok {
			t.ThumbnailURL = thumb.URL
		}
		tracks = append(tracks, t)
	}

	if err := y.fillDurations(ctx, tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// fillDurations sets DurationSeconds on tracks from a single videos request.
func (y *YouTubeCatalog) fillDurations(ctx context.Context, tracks []*models.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	ids := make([]string, len(tracks))
	byID := make(map[string][]*models.Track, len(tracks))
	for i, t := range tracks {
		ids[i] = t.SourceID
		byID[t.SourceID] = append(byID[t.SourceID], t)
	}

	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var videos struct {
		Items []YouTubeVideoItem `json:"items"`
	}
	if err := y.doRequest(ctx, "/videos", params, &videos); err != nil {
		return fmt.Errorf("failed to fetch video details: %w", err)
	}

	for _, item := range videos.Items {
		seconds := shared.ParseISO8601Duration(item.ContentDetails.Duration)
		for _, t := range byID[item.ID] {
			t.DurationSeconds = seconds
		}
	}
	return nil
}

func (y *YouTubeCatalog) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("key", y.apiKey)
	apiURL := y.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("%w: youtube API error (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("%w: youtube API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
