package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// FriendshipEdge is one row of the friendships table. It is directional at
// creation (FromUserID sent the request); once accepted it is treated as an
// undirected edge between the two users.
type FriendshipEdge struct {
	ID         uuid.UUID `json:"id"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Other returns the endpoint that isn't userID.
func (e FriendshipEdge) Other(userID uuid.UUID) uuid.UUID {
	if e.FromUserID == userID {
		return e.ToUserID
	}
	return e.FromUserID
}

// Touches reports whether userID is either endpoint of the edge.
func (e FriendshipEdge) Touches(userID uuid.UUID) bool {
	return e.FromUserID == userID || e.ToUserID == userID
}

type FriendView struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type PendingReceived struct {
	ID           uuid.UUID `json:"id"` // requester's user id
	Username     string    `json:"username"`
	FriendshipID uuid.UUID `json:"friendship_id"`
}

type PendingSent struct {
	ID       uuid.UUID `json:"id"` // target's user id
	Username string    `json:"username"`
}

// Classification is the three-way view of all edges touching one user.
// Every edge lands in exactly one bucket.
type Classification struct {
	Friends         []FriendView      `json:"friends"`
	PendingReceived []PendingReceived `json:"pending_received"`
	PendingSent     []PendingSent     `json:"pending_sent"`
}
