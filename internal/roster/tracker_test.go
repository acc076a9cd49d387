package roster

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
)

func newTestTracker(selfID uuid.UUID, friends ...domain.FriendView) *Tracker {
	return NewTracker(selfID, friends, map[uuid.UUID]domain.PresenceRecord{})
}

func presentEvent(userID uuid.UUID, floor int) ChangeEvent {
	rec := record(userID, true, intPtr(floor))
	return ChangeEvent{Table: "library_status", New: &rec}
}

func absentEvent(userID uuid.UUID) ChangeEvent {
	rec := record(userID, false, nil)
	return ChangeEvent{Table: "library_status", New: &rec}
}

func occupantIDs(occ []Occupant) []uuid.UUID {
	ids := make([]uuid.UUID, len(occ))
	for i, o := range occ {
		ids[i] = o.ID
	}
	return ids
}

func TestApplyPlacesFriend(t *testing.T) {
	self := uuid.New()
	friend := uuid.New()
	tr := newTestTracker(self, domain.FriendView{ID: friend, Username: "pal"})

	applied := tr.Apply(presentEvent(friend, 2))

	require.True(t, applied)
	snap := tr.Snapshot("me", domain.AbsentRecord(self))
	require.Len(t, snap[2], 1)
	assert.Equal(t, friend, snap[2][0].ID)
}

func TestApplyIsIdempotent(t *testing.T) {
	self := uuid.New()
	friend := uuid.New()
	tr := newTestTracker(self, domain.FriendView{ID: friend, Username: "pal"})

	ev := presentEvent(friend, 4)
	tr.Apply(ev)
	once := tr.Snapshot("me", domain.AbsentRecord(self))
	tr.Apply(ev)
	twice := tr.Snapshot("me", domain.AbsentRecord(self))

	assert.Equal(t, once, twice)
	require.Len(t, twice[4], 1)
}

func TestApplyIgnoresSelf(t *testing.T) {
	self := uuid.New()
	friend := uuid.New()
	tr := newTestTracker(self, domain.FriendView{ID: friend, Username: "pal"})
	tr.Apply(presentEvent(friend, 1))

	before := tr.Snapshot("me", domain.AbsentRecord(self))
	applied := tr.Apply(presentEvent(self, 3))
	after := tr.Snapshot("me", domain.AbsentRecord(self))

	assert.False(t, applied)
	assert.Equal(t, before, after)
}

func TestApplyIgnoresNonFriends(t *testing.T) {
	self := uuid.New()
	stranger := uuid.New()
	tr := newTestTracker(self)

	applied := tr.Apply(presentEvent(stranger, 2))

	assert.False(t, applied)
	snap := tr.Snapshot("me", domain.AbsentRecord(self))
	for f := domain.MinFloor; f <= domain.MaxFloor; f++ {
		assert.Empty(t, snap[f])
	}
}

func TestApplyFloorMove(t *testing.T) {
	self := uuid.New()
	mover := uuid.New()
	stayer := uuid.New()
	tr := newTestTracker(self,
		domain.FriendView{ID: mover, Username: "mover"},
		domain.FriendView{ID: stayer, Username: "stayer"},
	)
	tr.Apply(presentEvent(mover, 2))
	tr.Apply(presentEvent(stayer, 2))

	tr.Apply(presentEvent(mover, 4))

	snap := tr.Snapshot("me", domain.AbsentRecord(self))
	assert.Equal(t, []uuid.UUID{stayer}, occupantIDs(snap[2]))
	assert.Equal(t, []uuid.UUID{mover}, occupantIDs(snap[4]))
	for _, f := range []int{1, 3, 5} {
		assert.Empty(t, snap[f])
	}
}

func TestApplyLeaveRemovesFromAllFloors(t *testing.T) {
	self := uuid.New()
	friend := uuid.New()
	tr := newTestTracker(self, domain.FriendView{ID: friend, Username: "pal"})
	tr.Apply(presentEvent(friend, 5))

	applied := tr.Apply(absentEvent(friend))

	require.True(t, applied)
	snap := tr.Snapshot("me", domain.AbsentRecord(self))
	for f := domain.MinFloor; f <= domain.MaxFloor; f++ {
		assert.Empty(t, snap[f])
	}
}

func TestApplyDeleteEvent(t *testing.T) {
	self := uuid.New()
	friend := uuid.New()
	tr := newTestTracker(self, domain.FriendView{ID: friend, Username: "pal"})
	tr.Apply(presentEvent(friend, 1))

	old := record(friend, true, intPtr(1))
	applied := tr.Apply(ChangeEvent{Table: "library_status", Old: &old})

	require.True(t, applied)
	snap := tr.Snapshot("me", domain.AbsentRecord(self))
	assert.Empty(t, snap[1])
}

func TestRemoveFriendClearsRosterAndFilter(t *testing.T) {
	self := uuid.New()
	friend := uuid.New()
	tr := newTestTracker(self, domain.FriendView{ID: friend, Username: "pal"})
	tr.Apply(presentEvent(friend, 3))

	tr.RemoveFriend(friend)

	snap := tr.Snapshot("me", domain.AbsentRecord(self))
	assert.Empty(t, snap[3])
	assert.False(t, tr.IsFriend(friend))

	// Later events for the removed user bounce off the friend filter.
	assert.False(t, tr.Apply(presentEvent(friend, 3)))
}

func TestSnapshotPrependsSelf(t *testing.T) {
	self := uuid.New()
	friend := uuid.New()
	tr := newTestTracker(self, domain.FriendView{ID: friend, Username: "pal"})
	tr.Apply(presentEvent(friend, 2))

	selfStatus := record(self, true, intPtr(2))
	snap := tr.Snapshot("millerpresto", selfStatus)

	require.Len(t, snap[2], 2)
	assert.Equal(t, self, snap[2][0].ID)
	assert.Equal(t, "MO", snap[2][0].Initials)
	assert.Equal(t, friend, snap[2][1].ID)
}

func TestSnapshotOverlayIsNotStored(t *testing.T) {
	self := uuid.New()
	tr := newTestTracker(self)

	selfStatus := record(self, true, intPtr(1))
	tr.Snapshot("me", selfStatus)

	// A later read without the overlay sees the stored roster untouched.
	snap := tr.Snapshot("me", domain.AbsentRecord(self))
	assert.Empty(t, snap[1])
}
