package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"submerge/core/follow"
	"submerge/logger"
	"submerge/repository"
)

// FollowHandler adds the musician to the caller's followed set.
func (h *APIHandler) FollowHandler(w http.ResponseWriter, r *http.Request) {
	h.handleFollow(w, r, true)
}

// UnfollowHandler removes the musician from the caller's followed set.
func (h *APIHandler) UnfollowHandler(w http.ResponseWriter, r *http.Request) {
	h.handleFollow(w, r, false)
}

func (h *APIHandler) handleFollow(w http.ResponseWriter, r *http.Request, following bool) {
	sess := sessionFromContext(r.Context())

	musicianID, err := strconv.ParseInt(mux.Vars(r)["musicianId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid musician id", http.StatusBadRequest)
		return
	}

	if following {
		err = h.follows.Follow(r.Context(), sess, musicianID)
	} else {
		err = h.follows.Unfollow(r.Context(), sess, musicianID)
	}
	if err != nil {
		switch {
		case errors.Is(err, follow.ErrNotRegularUser):
			http.Error(w, "Only regular users can follow musicians", http.StatusForbidden)
		case errors.Is(err, follow.ErrNotMusician):
			http.Error(w, "Musician not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		default:
			logger.Error("follow update failed",
				logger.Int64("uid", sess.UID),
				logger.Int64("musician", musicianID),
				logger.ErrorField(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	// The session caches the followed set; refresh it so the next feed view
	// reflects the change.
	if _, err := h.sessions.RefreshUserData(r.Context(), sess.UID); err != nil {
		logger.Warn("failed to refresh session after follow change",
			logger.Int64("uid", sess.UID),
			logger.ErrorField(err))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"musicianId": musicianID,
		"following":  following,
	})
}
