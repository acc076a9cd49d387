package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/Preston-Miller/LibraryProject/internal/service"
	"github.com/Preston-Miller/LibraryProject/internal/transport/http/middleware"
)

type FriendHandler struct {
	friendships *service.FriendshipService
}

func NewFriendHandler(friendships *service.FriendshipService) *FriendHandler {
	return &FriendHandler{friendships: friendships}
}

// Overview returns the three-way classification: friends, pending received,
// pending sent.
func (h *FriendHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	overview, err := h.friendships.Overview(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR friends overview: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.Username == "" {
		writeError(w, http.StatusBadRequest, "MISSING_USERNAME", "Username is required")
		return
	}

	result, err := h.friendships.SendRequest(r.Context(), userID, input.Username)
	if err != nil {
		log.Printf("ERROR send friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	// Non-sent outcomes are expected cases, not errors; the client turns
	// them into messages ("that's you", "accept their request above", ...).
	if result.Outcome == service.OutcomeSent {
		writeJSON(w, http.StatusCreated, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	h.decideRequest(w, r, h.friendships.AcceptRequest, "accept")
}

func (h *FriendHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	h.decideRequest(w, r, h.friendships.DeclineRequest, "decline")
}

func (h *FriendHandler) decideRequest(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, selfID, friendshipID uuid.UUID) error, verb string) {
	userID := middleware.GetUserID(r.Context())
	friendshipID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid request ID")
		return
	}

	if err := action(r.Context(), userID, friendshipID); err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Request not found")
		case errors.Is(err, service.ErrNotRequestRecipient):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the recipient can "+verb+" this request")
		default:
			log.Printf("ERROR %s friend request: %v", verb, err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	friendID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.friendships.RemoveFriend(r.Context(), userID, friendID); err != nil {
		log.Printf("ERROR remove friend: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
