// Package discovery aggregates trending tracks from the public discovery
// provider across a fixed set of category buckets.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"submerge/core/artwork"
	"submerge/logger"
	"submerge/model"
)

// Client talks to the trending-tracks discovery API.
type Client struct {
	baseURL    string
	appName    string
	httpClient *http.Client
}

// NewClient creates a discovery API client.
func NewClient(baseURL, appName string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		appName: appName,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBaseURL overrides the API base URL.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// StreamURL returns the playable audio URL for a track. The provider serves
// every track's stream at a fixed path, no lookup required.
func (c *Client) StreamURL(trackID string) string {
	return fmt.Sprintf("%s/v1/tracks/%s/stream", c.baseURL, url.PathEscape(trackID))
}

func (c *Client) categoryURL(cat Category) string {
	params := url.Values{}
	if cat.Time != "" {
		params.Set("time", cat.Time)
	}
	if cat.Genre != "" {
		params.Set("genre", cat.Genre)
	}
	if cat.Limit > 0 {
		params.Set("limit", strconv.Itoa(cat.Limit))
	}
	params.Set("app_name", c.appName)
	return c.baseURL + cat.Path + "?" + params.Encode()
}

// fetchCategory performs one category request and normalizes the response.
func (c *Client) fetchCategory(ctx context.Context, cat Category) ([]model.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.categoryURL(cat), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for category %s: %w", cat.Key, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed for category %s: %w", cat.Key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("category %s returned status %d", cat.Key, resp.StatusCode)
	}

	var result struct {
		Data []model.ProviderTrack `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response for category %s: %w", cat.Key, err)
	}

	// A missing data array is an empty bucket, not an error.
	tracks := make([]model.Track, 0, len(result.Data))
	for i := range result.Data {
		tracks = append(tracks, normalize(&result.Data[i], cat))
	}
	return tracks, nil
}

// FetchCategory fetches one category bucket. Network and parse failures are
// logged and yield an empty bucket; the call itself never fails so that one
// bad category cannot take down an aggregate fetch.
func (c *Client) FetchCategory(ctx context.Context, cat Category) []model.Track {
	tracks, err := c.fetchCategory(ctx, cat)
	if err != nil {
		logger.Warn("category fetch failed",
			logger.String("category", cat.Key),
			logger.ErrorField(err))
		return []model.Track{}
	}
	return tracks
}

// normalize turns a loosely-shaped provider record into a fully-typed Track.
// Optional provider fields must not leak past this boundary.
func normalize(pt *model.ProviderTrack, cat Category) model.Track {
	artist := "Unknown Artist"
	if pt.User != nil {
		if pt.User.Name != "" {
			artist = pt.User.Name
		} else if pt.User.Handle != "" {
			artist = pt.User.Handle
		}
	}
	genre := pt.Genre
	if genre == "" {
		genre = "Unknown"
	}
	return model.Track{
		ID:         pt.ID,
		Title:      pt.Title,
		ArtistName: artist,
		Artwork:    artwork.Resolve(pt),
		Genre:      genre,
		Category:   cat.Title,
	}
}
