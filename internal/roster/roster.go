// Package roster maintains the per-floor view of which friends are at the
// library. The roster is built once from a presence snapshot and then patched
// incrementally from change events; it is never re-fetched per event.
package roster

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
)

// Occupant is one avatar on a floor.
type Occupant struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Initials string    `json:"initials"`
}

// FloorRoster maps floor number (1..5) to the ordered list of occupants.
// All five floor keys always exist; empty floors hold empty slices.
type FloorRoster map[int][]Occupant

// NewFloorRoster returns an empty roster with every floor key present.
func NewFloorRoster() FloorRoster {
	fr := make(FloorRoster, domain.MaxFloor)
	for f := domain.MinFloor; f <= domain.MaxFloor; f++ {
		fr[f] = []Occupant{}
	}
	return fr
}

// Clone returns a deep copy of the roster.
func (fr FloorRoster) Clone() FloorRoster {
	out := make(FloorRoster, len(fr))
	for f, occ := range fr {
		out[f] = append([]Occupant{}, occ...)
	}
	return out
}

// remove drops userID from every floor. Safe when the user is absent.
func (fr FloorRoster) remove(userID uuid.UUID) {
	for f, occ := range fr {
		kept := occ[:0]
		for _, o := range occ {
			if o.ID != userID {
				kept = append(kept, o)
			}
		}
		fr[f] = kept
	}
}

// Build constructs the initial roster from the friend list and a snapshot of
// their presence records. Friends who aren't at the library (or report a
// floor outside the building) are omitted entirely.
func Build(friends []domain.FriendView, records map[uuid.UUID]domain.PresenceRecord) FloorRoster {
	fr := NewFloorRoster()
	for _, friend := range friends {
		rec, ok := records[friend.ID]
		if !ok {
			continue
		}
		floor, ok := rec.OnFloor()
		if !ok {
			continue
		}
		fr[floor] = append(fr[floor], Occupant{
			ID:       friend.ID,
			Username: friend.Username,
			Initials: Initials(friend.Username),
		})
	}
	return fr
}

// Initials returns the avatar initials for a username: "?" for blank input,
// the single character uppercased for one-character names, otherwise the
// first and last characters of the trimmed name uppercased.
func Initials(username string) string {
	s := strings.TrimSpace(username)
	if s == "" {
		return "?"
	}
	runes := []rune(s)
	if len(runes) == 1 {
		return strings.ToUpper(string(runes[0]))
	}
	return strings.ToUpper(string(runes[0]) + string(runes[len(runes)-1]))
}
