package roster

import (
	"github.com/google/uuid"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
)

// ChangeEvent is one insert/update/delete of a presence row, as broadcast to
// every session. New is nil for deletes; Old is nil for inserts. Filtering
// down to relevant users is the tracker's job, not the transport's.
type ChangeEvent struct {
	Table string                 `json:"table"`
	New   *domain.PresenceRecord `json:"new"`
	Old   *domain.PresenceRecord `json:"old"`
}

// UserID returns the user the event is about, preferring the new record.
func (e ChangeEvent) UserID() (uuid.UUID, bool) {
	switch {
	case e.New != nil:
		return e.New.UserID, true
	case e.Old != nil:
		return e.Old.UserID, true
	default:
		return uuid.Nil, false
	}
}

// Tracker holds one session's view of the social graph: the friend set and
// the per-floor roster derived from it. The roster is rebuilt wholesale when
// the friend set changes and patched incrementally on presence events.
type Tracker struct {
	selfID  uuid.UUID
	friends map[uuid.UUID]domain.FriendView
	fr      FloorRoster
}

// NewTracker builds a tracker from the friend list and an initial presence
// snapshot.
func NewTracker(selfID uuid.UUID, friends []domain.FriendView, records map[uuid.UUID]domain.PresenceRecord) *Tracker {
	t := &Tracker{selfID: selfID}
	t.SetFriends(friends, records)
	return t
}

// SetFriends replaces the friend set and rebuilds the roster from a fresh
// presence snapshot.
func (t *Tracker) SetFriends(friends []domain.FriendView, records map[uuid.UUID]domain.PresenceRecord) {
	t.friends = make(map[uuid.UUID]domain.FriendView, len(friends))
	for _, f := range friends {
		t.friends[f.ID] = f
	}
	t.fr = Build(friends, records)
}

// Apply patches the roster with one change event and reports whether the
// roster was touched. Events about the session's own user are ignored (local
// state is authoritative for self), as are events about non-friends. The
// patch is a full remove-then-reinsert for the affected user, so applying
// the same event twice is a no-op the second time.
func (t *Tracker) Apply(ev ChangeEvent) bool {
	userID, ok := ev.UserID()
	if !ok || userID == t.selfID {
		return false
	}
	friend, ok := t.friends[userID]
	if !ok {
		return false
	}

	t.fr.remove(userID)
	if ev.New != nil {
		if floor, on := ev.New.OnFloor(); on {
			t.fr[floor] = append(t.fr[floor], Occupant{
				ID:       friend.ID,
				Username: friend.Username,
				Initials: Initials(friend.Username),
			})
		}
	}
	return true
}

// RemoveFriend drops a user from the friend set and from every floor.
func (t *Tracker) RemoveFriend(userID uuid.UUID) {
	delete(t.friends, userID)
	t.fr.remove(userID)
}

// IsFriend reports whether userID is in the tracked friend set.
func (t *Tracker) IsFriend(userID uuid.UUID) bool {
	_, ok := t.friends[userID]
	return ok
}

// Snapshot returns a copy of the roster for display: the stored roster plus,
// when the session's own status puts them on a floor, the user prepended to
// that floor. The overlay is computed here at read time and never stored, so
// it cannot conflict with Apply.
func (t *Tracker) Snapshot(selfUsername string, selfStatus domain.PresenceRecord) FloorRoster {
	out := t.fr.Clone()
	if floor, ok := selfStatus.OnFloor(); ok {
		me := Occupant{
			ID:       t.selfID,
			Username: selfUsername,
			Initials: Initials(selfUsername),
		}
		out[floor] = append([]Occupant{me}, out[floor]...)
	}
	return out
}
