package ws

import (
	"github.com/google/uuid"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
	"github.com/Preston-Miller/LibraryProject/internal/roster"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyPresenceChanged(old, new *domain.PresenceRecord) {
	n.hub.BroadcastPresence(roster.ChangeEvent{
		Table: "library_status",
		New:   new,
		Old:   old,
	})
}

func (n *HubNotifier) NotifyFriendshipChanged(userA, userB uuid.UUID) {
	n.hub.NotifyFriendshipChanged(userA, userB)
}
