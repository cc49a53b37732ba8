package storage

import (
	"context"
	"io"
)

// MediaStore adapts the MinIO-backed helpers to the uploader interface the
// post composer consumes.
type MediaStore struct{}

// NewMediaStore returns a MediaStore backed by the initialized MinIO client.
func NewMediaStore() *MediaStore {
	return &MediaStore{}
}

// UploadMedia stores a media asset under the timestamped media key and
// returns its public URL.
func (s *MediaStore) UploadMedia(ctx context.Context, mediaType, filename string, r io.Reader, size int64, contentType string) (string, error) {
	return UploadMedia(ctx, MediaObjectKey(mediaType, filename), r, size, contentType)
}
