package ws

import (
	"encoding/json"
	"time"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
	"github.com/Preston-Miller/LibraryProject/internal/roster"
)

// Event types - Client → Server
const (
	EventTypeStatusSet = "status.set"
	EventTypePing      = "ping"
)

// Event types - Server → Client
const (
	EventTypeRosterUpdate   = "roster.update"
	EventTypeStatus         = "status"
	EventTypeFriendsChanged = "friends.changed"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type StatusSetPayload struct {
	AtLibrary bool `json:"at_library"`
	Floor     *int `json:"floor"`
}

// --- Server → Client payloads ---

type RosterPayload struct {
	Floors roster.FloorRoster `json:"floors"`
}

type StatusPayload struct {
	domain.PresenceRecord
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
