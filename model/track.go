package model

// ImageSizes holds the resolution variants the discovery provider may attach
// to artwork, cover art and profile pictures. All fields are optional.
type ImageSizes struct {
	Small  string `json:"150x150"`
	Medium string `json:"480x480"`
	Large  string `json:"1000x1000"`
}

// ProviderUser is the uploader record nested inside a provider track.
type ProviderUser struct {
	Name                string      `json:"name"`
	Handle              string      `json:"handle"`
	ProfilePicture      string      `json:"profile_picture"`
	ProfilePictureSizes *ImageSizes `json:"profile_picture_sizes"`
}

// ProviderTrack is the loosely-shaped track record returned by the discovery
// API. Only the fields the app reads are declared; everything is optional.
type ProviderTrack struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Genre         string        `json:"genre"`
	Artwork       *ImageSizes   `json:"artwork"`
	CoverArtSizes *ImageSizes   `json:"cover_art_sizes"`
	CoverArt      string        `json:"cover_art"`
	User          *ProviderUser `json:"user"`
}

// Track is the fully-typed internal track record. Reconstructed on each
// aggregation fetch, never persisted.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ArtistName string `json:"artistName"`
	Artwork    string `json:"artwork"`
	Genre      string `json:"genre"`
	Category   string `json:"category,omitempty"` // bucket of first discovery, search context only
}
