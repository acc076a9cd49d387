package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinFloor = 1
	MaxFloor = 5
)

// PresenceRecord is a user's self-reported library status. Floor is non-nil
// if and only if AtLibrary is true. The row is owned by its user: only that
// user writes it, everyone else gets snapshot reads.
type PresenceRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	AtLibrary bool      `json:"at_library"`
	Floor     *int      `json:"floor"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AbsentRecord is the default status when nothing is stored (or the store
// failed): not at the library.
func AbsentRecord(userID uuid.UUID) PresenceRecord {
	return PresenceRecord{UserID: userID, AtLibrary: false, Floor: nil}
}

// OnFloor reports whether the record places the user on a valid floor.
func (r PresenceRecord) OnFloor() (int, bool) {
	if !r.AtLibrary || r.Floor == nil {
		return 0, false
	}
	if *r.Floor < MinFloor || *r.Floor > MaxFloor {
		return 0, false
	}
	return *r.Floor, true
}

// ValidFloor reports whether f is a real floor of the building.
func ValidFloor(f int) bool {
	return f >= MinFloor && f <= MaxFloor
}
