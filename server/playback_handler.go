package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"submerge/core/playback"
	"submerge/logger"
)

// PlaybackCommandHandler forwards a command to the remote player API and
// relays the raw response.
func (h *APIHandler) PlaybackCommandHandler(w http.ResponseWriter, r *http.Request) {
	if !h.playback.Enabled() {
		http.Error(w, "Playback control is not configured", http.StatusServiceUnavailable)
		return
	}

	command := mux.Vars(r)["command"]

	payload, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.playback.Command(r.Context(), command, json.RawMessage(payload))
	if err != nil {
		if errors.Is(err, playback.ErrUnknownCommand) {
			http.Error(w, "Unknown playback command", http.StatusNotFound)
			return
		}
		logger.Warn("playback command failed",
			logger.String("command", command),
			logger.ErrorField(err))
		http.Error(w, "Playback command failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(result)
}
