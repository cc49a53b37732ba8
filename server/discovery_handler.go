package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"submerge/core/discovery"
	"submerge/core/search"
	"submerge/logger"
)

// TrendingHandler returns every discovery category with its tracks. Failed
// categories come back as empty lists.
func (h *APIHandler) TrendingHandler(w http.ResponseWriter, r *http.Request) {
	buckets := h.discovery.FetchAll(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": discovery.Categories,
		"tracks":     buckets,
	})
}

// TrendingCategoryHandler returns the tracks of a single category.
func (h *APIHandler) TrendingCategoryHandler(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["category"]
	cat, ok := discovery.CategoryByKey(key)
	if !ok {
		http.Error(w, "Unknown category", http.StatusNotFound)
		return
	}
	tracks := h.discovery.FetchCategory(r.Context(), cat)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"category": cat,
		"tracks":   tracks,
	})
}

// SearchHandler filters the deduplicated global track list by the q
// parameter. The global list is cached between searches.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	tracks, err := h.tracks.GetGlobal(r.Context())
	if err != nil {
		logger.Warn("failed to read cached track list", logger.ErrorField(err))
	}
	if tracks == nil {
		tracks = h.discovery.FetchGlobalUnique(r.Context())
		if err := h.tracks.SetGlobal(r.Context(), tracks); err != nil {
			logger.Warn("failed to cache track list", logger.ErrorField(err))
		}
	}

	results := search.Filter(tracks, query)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
	})
}

// StreamHandler redirects to the provider's stream URL for a track.
func (h *APIHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	trackID := mux.Vars(r)["id"]
	if trackID == "" {
		http.Error(w, "Track id is required", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, h.discovery.StreamURL(trackID), http.StatusFound)
}
