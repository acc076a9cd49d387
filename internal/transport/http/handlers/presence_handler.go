package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Preston-Miller/LibraryProject/internal/service"
	"github.com/Preston-Miller/LibraryProject/internal/transport/http/middleware"
)

type PresenceHandler struct {
	presence *service.PresenceService
}

func NewPresenceHandler(presence *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// GetStatus returns the caller's saved status, defaulting to absent.
func (h *PresenceHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	writeJSON(w, http.StatusOK, h.presence.LoadOwn(r.Context(), userID))
}

// SetStatus upserts the caller's status.
func (h *PresenceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		AtLibrary bool `json:"at_library"`
		Floor     *int `json:"floor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	rec, err := h.presence.SaveOwn(r.Context(), userID, input.AtLibrary, input.Floor)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFloor) {
			writeError(w, http.StatusBadRequest, "INVALID_FLOOR", "Floor must be between 1 and 5")
			return
		}
		log.Printf("ERROR save status: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
