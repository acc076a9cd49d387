package ws

import (
	"log"

	"github.com/google/uuid"

	"github.com/Preston-Miller/LibraryProject/internal/roster"
)

// Hub manages all active WebSocket sessions and fans change events out to
// them. Presence changes go to every session: the transport is a broadcast
// primitive, and relevance filtering (self, non-friends) is each session
// tracker's job.
type Hub struct {
	// clients maps userID → client.
	clients map[uuid.UUID]*Client

	register    chan *Client
	unregister  chan *Client
	presence    chan roster.ChangeEvent
	friendships chan friendshipChange
}

type friendshipChange struct {
	userA uuid.UUID
	userB uuid.UUID
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		presence:    make(chan roster.ChangeEvent, 256),
		friendships: make(chan friendshipChange, 64),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.userID] = client
			log.Printf("ws hub: user %s connected (%d total)", client.userID, len(h.clients))

		case client := <-h.unregister:
			// Pointer compare: the same user may have reconnected already, and
			// the stale connection must not tear down the new one.
			if h.clients[client.userID] == client {
				delete(h.clients, client.userID)
				close(client.done)
				log.Printf("ws hub: user %s disconnected (%d total)", client.userID, len(h.clients))
			}

		case ev := <-h.presence:
			for _, client := range h.clients {
				select {
				case client.changes <- ev:
				default:
					// Client can't keep up with the event stream - disconnect.
					// Only done is ever closed; send stays open because the
					// client's pumps may still be draining queued events.
					delete(h.clients, client.userID)
					close(client.done)
				}
			}

		case change := <-h.friendships:
			h.signalRefresh(change.userA)
			h.signalRefresh(change.userB)
		}
	}
}

// BroadcastPresence fans a presence change event out to every session.
func (h *Hub) BroadcastPresence(ev roster.ChangeEvent) {
	h.presence <- ev
}

// NotifyFriendshipChanged tells both affected users' sessions (if connected)
// to rebuild their friend set and roster.
func (h *Hub) NotifyFriendshipChanged(userA, userB uuid.UUID) {
	h.friendships <- friendshipChange{userA: userA, userB: userB}
}

func (h *Hub) signalRefresh(userID uuid.UUID) {
	client, ok := h.clients[userID]
	if !ok {
		return
	}
	select {
	case client.refresh <- struct{}{}:
	default:
		// A refresh is already queued; one rebuild covers both signals.
	}
}
