package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"submerge/cache"
	"submerge/config"
	"submerge/core/auth"
	"submerge/core/discovery"
	"submerge/core/feed"
	"submerge/core/follow"
	"submerge/core/playback"
	"submerge/core/post"
	"submerge/core/session"
	"submerge/model"
)

type contextKey string

const sessionContextKey contextKey = "session"

// APIHandler holds the wired services behind the HTTP surface.
type APIHandler struct {
	cfg       *config.Config
	tokens    *auth.TokenIssuer
	sessions  *session.Manager
	composer  *post.Composer
	follows   *follow.Service
	discovery *discovery.Client
	tracks    *cache.TrackCache
	feedSync  *feed.Synchronizer
	feedHub   *feed.Hub
	playback  *playback.Client
	media     post.Uploader
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(
	cfg *config.Config,
	tokens *auth.TokenIssuer,
	sessions *session.Manager,
	composer *post.Composer,
	follows *follow.Service,
	discoveryClient *discovery.Client,
	tracks *cache.TrackCache,
	feedSync *feed.Synchronizer,
	feedHub *feed.Hub,
	playbackClient *playback.Client,
	media post.Uploader,
) *APIHandler {
	return &APIHandler{
		cfg:       cfg,
		tokens:    tokens,
		sessions:  sessions,
		composer:  composer,
		follows:   follows,
		discovery: discoveryClient,
		tracks:    tracks,
		feedSync:  feedSync,
		feedHub:   feedHub,
		playback:  playbackClient,
		media:     media,
	}
}

// AuthMiddleware validates the bearer token and attaches the resolved
// session to the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := h.authenticate(w, r)
		if !ok {
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// authenticate parses the bearer token and resolves the session. On failure
// it writes the error response and returns false.
func (h *APIHandler) authenticate(w http.ResponseWriter, r *http.Request) (*model.Session, bool) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "Authorization header is required", http.StatusUnauthorized)
		return nil, false
	}

	claims, err := h.tokens.Parse(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return nil, false
	}

	sess, err := h.sessions.Resolve(r.Context(), claims)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

// bearerToken extracts the token from the Authorization header, falling back
// to the token query parameter for websocket clients.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// sessionFromContext returns the session attached by AuthMiddleware.
func sessionFromContext(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionContextKey).(*model.Session)
	return sess
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
