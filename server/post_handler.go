package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"submerge/core/feed"
	"submerge/core/post"
	"submerge/logger"
	"submerge/model"
	"submerge/repository"
)

// maxUploadSize bounds post media uploads.
const maxUploadSize = 50 << 20 // 50MB

// CreatePostHandler creates a musician post. Accepts JSON for text posts and
// multipart form data when a media file is attached.
func (h *APIHandler) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var content string
	var media *post.MediaUpload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}
		content = r.FormValue("content")

		file, header, err := r.FormFile("media")
		if err == nil {
			defer file.Close()
			kind := model.PostType(r.FormValue("mediaType"))
			media = &post.MediaUpload{
				Kind:        kind,
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Reader:      file,
			}
		} else if err != http.ErrMissingFile {
			http.Error(w, "Invalid media file", http.StatusBadRequest)
			return
		}
	} else {
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		content = req.Content
	}

	created, err := h.composer.Create(r.Context(), sess, content, media)
	if err != nil {
		switch {
		case errors.Is(err, post.ErrNotMusician):
			http.Error(w, "Only musicians can create posts", http.StatusForbidden)
		case errors.Is(err, post.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, post.ErrUpload):
			http.Error(w, "Media upload failed", http.StatusBadGateway)
		default:
			logger.Error("post creation failed", logger.Int64("uid", sess.UID), logger.ErrorField(err))
			http.Error(w, "Failed to create post", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// ListPostsHandler returns a one-shot personalized feed view.
func (h *APIHandler) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	if h.feedSync.State() == feed.StateIdle {
		if err := h.feedSync.Refresh(r.Context()); err != nil {
			logger.Error("feed load failed", logger.ErrorField(err))
			http.Error(w, "Failed to load feed", http.StatusInternalServerError)
			return
		}
	}

	posts := h.feedSync.SnapshotFor(sess.FollowingMusicians)
	respondJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// LikePostHandler toggles the caller's like on a post.
func (h *APIHandler) LikePostHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	postID := mux.Vars(r)["id"]

	updated, err := h.composer.ToggleLike(r.Context(), postID, sess.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}
		logger.Error("like toggle failed",
			logger.String("post", postID),
			logger.Int64("uid", sess.UID),
			logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// UploadMediaHandler stores a media asset and returns its public URL.
// Musician only; the returned URL can be attached to a later post.
func (h *APIHandler) UploadMediaHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if !sess.IsMusician() {
		http.Error(w, "Only musicians can upload media", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		http.Error(w, "Media file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mediaType := r.FormValue("mediaType")
	switch model.PostType(mediaType) {
	case model.PostImage, model.PostVideo, model.PostAudio:
	default:
		http.Error(w, "mediaType must be image, video or audio", http.StatusBadRequest)
		return
	}

	url, err := h.media.UploadMedia(r.Context(), mediaType, header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		logger.Error("media upload failed",
			logger.Int64("uid", sess.UID),
			logger.String("filename", header.Filename),
			logger.ErrorField(err))
		http.Error(w, "Upload failed", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"url": url})
}
