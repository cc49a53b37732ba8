package artwork

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"submerge/model"
)

func TestResolvePrefersSmallTrackArtwork(t *testing.T) {
	track := &model.ProviderTrack{
		Title:   "Deep Cut",
		Artwork: &model.ImageSizes{Small: "https://img.example/150.jpg", Large: "https://img.example/1000.jpg"},
		User: &model.ProviderUser{
			ProfilePictureSizes: &model.ImageSizes{Small: "https://img.example/avatar.jpg"},
		},
	}
	assert.Equal(t, "https://img.example/150.jpg", Resolve(track))
}

func TestResolveSkipsInvalidCandidates(t *testing.T) {
	track := &model.ProviderTrack{
		Title:         "Waves",
		Artwork:       &model.ImageSizes{Small: "   ", Medium: "not-a-url"},
		CoverArtSizes: &model.ImageSizes{Small: "ftp://img.example/cover.jpg"},
		CoverArt:      "http://img.example/flat.jpg",
	}
	assert.Equal(t, "http://img.example/flat.jpg", Resolve(track))
}

func TestResolveFallsBackToAvatar(t *testing.T) {
	track := &model.ProviderTrack{
		Title: "Waves",
		User: &model.ProviderUser{
			ProfilePictureSizes: &model.ImageSizes{Medium: "https://img.example/avatar480.jpg"},
		},
	}
	assert.Equal(t, "https://img.example/avatar480.jpg", Resolve(track))
}

func TestResolveSynthesizesPlaceholder(t *testing.T) {
	got := Resolve(&model.ProviderTrack{Title: "Submerge Sessions"})
	assert.True(t, strings.HasPrefix(got, "https://"))
	assert.Contains(t, got, "text=Su")
}

func TestResolveNeverEmpty(t *testing.T) {
	cases := []*model.ProviderTrack{
		nil,
		{},
		{Title: ""},
		{Title: "x"},
		{Artwork: &model.ImageSizes{}},
	}
	for _, tc := range cases {
		got := Resolve(tc)
		assert.NotEmpty(t, got)
		assert.True(t,
			strings.HasPrefix(got, "http://") || strings.HasPrefix(got, "https://"),
			"resolved artwork must be an absolute URL, got %q", got)
	}
}

func TestPlaceholderDefaultsToM(t *testing.T) {
	assert.Contains(t, Placeholder(""), "text=M")
	assert.Contains(t, Placeholder("   "), "text=M")
}
