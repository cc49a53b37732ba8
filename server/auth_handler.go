package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"submerge/core/session"
	"submerge/logger"
	"submerge/model"
)

// RegisterRequest is the sign-up request body.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	UserType    string `json:"userType"`
	About       string `json:"about"`
}

// LoginRequest is the sign-in request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string         `json:"token"`
	User  *model.Session `json:"user"`
}

// RegisterHandler creates an account and returns a token with the session.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess, token, err := h.sessions.SignUp(r.Context(), session.SignUpParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		UserType:    model.UserType(req.UserType),
		About:       req.About,
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, session.ErrEmailInUse):
			http.Error(w, "Email already in use", http.StatusConflict)
		default:
			logger.Error("sign-up failed", logger.ErrorField(err))
			http.Error(w, "Failed to create account", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("account created",
		logger.Int64("uid", sess.UID),
		logger.String("userType", string(sess.UserType)))
	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: sess})
}

// LoginHandler checks credentials and returns a token with the session.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	sess, token, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			logger.Warn("failed sign-in attempt", logger.String("email", req.Email))
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		logger.Error("sign-in failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, User: sess})
}

// LogoutHandler clears the stored session.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := h.sessions.LogOut(r.Context(), sess.UID); err != nil {
		logger.Error("logout failed", logger.Int64("uid", sess.UID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// MeHandler returns the current session.
func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sessionFromContext(r.Context()))
}

// RefreshHandler re-reads the profile and merges it over the session.
func (h *APIHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	refreshed, err := h.sessions.RefreshUserData(r.Context(), sess.UID)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			http.Error(w, "No active session", http.StatusUnauthorized)
			return
		}
		logger.Error("session refresh failed", logger.Int64("uid", sess.UID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, refreshed)
}

// CompleteProfileHandler writes the role profile for a credential without
// one. Used when the profile write failed during sign-up.
func (h *APIHandler) CompleteProfileHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.sessions.CompleteProfile(r.Context(), sess.UID, session.SignUpParams{
		DisplayName: req.DisplayName,
		UserType:    model.UserType(req.UserType),
		About:       req.About,
	})
	if err != nil {
		if errors.Is(err, session.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("profile completion failed", logger.Int64("uid", sess.UID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}
