// Package artwork picks a usable cover image URL out of the loosely-shaped
// track records the discovery provider returns.
package artwork

import (
	"fmt"
	"net/url"
	"strings"

	"submerge/model"
)

const placeholderBase = "https://via.placeholder.com/150x150/00A6CB/FFFFFF"

// Resolve returns the first valid absolute URL among the track's candidate
// artwork fields, or a generated placeholder keyed by the title initials.
// The scan order deliberately prefers small track artwork, then provider
// cover art, then the uploader's avatar, with 1000px variants last.
// Never returns an empty string.
func Resolve(t *model.ProviderTrack) string {
	if t == nil {
		return Placeholder("")
	}

	candidates := make([]string, 0, 11)
	if t.Artwork != nil {
		candidates = append(candidates, t.Artwork.Small)
	}
	if t.CoverArtSizes != nil {
		candidates = append(candidates, t.CoverArtSizes.Small)
	}
	if t.Artwork != nil {
		candidates = append(candidates, t.Artwork.Medium)
	}
	if t.CoverArtSizes != nil {
		candidates = append(candidates, t.CoverArtSizes.Medium)
	}
	if t.User != nil && t.User.ProfilePictureSizes != nil {
		candidates = append(candidates,
			t.User.ProfilePictureSizes.Small,
			t.User.ProfilePictureSizes.Medium)
	}
	candidates = append(candidates, t.CoverArt)
	if t.User != nil {
		candidates = append(candidates, t.User.ProfilePicture)
	}
	if t.Artwork != nil {
		candidates = append(candidates, t.Artwork.Large)
	}
	if t.CoverArtSizes != nil {
		candidates = append(candidates, t.CoverArtSizes.Large)
	}
	if t.User != nil && t.User.ProfilePictureSizes != nil {
		candidates = append(candidates, t.User.ProfilePictureSizes.Large)
	}

	for _, c := range candidates {
		if isAbsoluteURL(c) {
			return c
		}
	}
	return Placeholder(t.Title)
}

// Placeholder builds the fallback image URL embedding the first two
// characters of the title, or "M" when the title is empty.
func Placeholder(title string) string {
	initials := "M"
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		runes := []rune(trimmed)
		if len(runes) > 2 {
			runes = runes[:2]
		}
		initials = string(runes)
	}
	return fmt.Sprintf("%s?text=%s", placeholderBase, url.QueryEscape(initials))
}

func isAbsoluteURL(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
