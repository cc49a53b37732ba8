// Package search filters the aggregated track list by free-text query.
package search

import (
	"strings"

	"submerge/model"
)

// Filter returns the tracks whose title, artist or genre contains the query,
// case-insensitively. An empty or whitespace-only query returns an empty
// result so callers can show a prompt state instead of "no results".
func Filter(tracks []model.Track, query string) []model.Track {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []model.Track{}
	}

	matched := make([]model.Track, 0)
	for _, t := range tracks {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.ArtistName), q) ||
			strings.Contains(strings.ToLower(t.Genre), q) {
			matched = append(matched, t)
		}
	}
	return matched
}
