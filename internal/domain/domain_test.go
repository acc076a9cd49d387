package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDeriveDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		display string
		email   string
		want    string
	}{
		{"explicit name wins", "Kate M", "kate@example.com", "Kate M"},
		{"falls back to email local part", "", "kate@example.com", "kate"},
		{"whitespace name is empty", "   ", "kate@example.com", "kate"},
		{"no usable source", "", "", "someone"},
		{"email without at sign", "", "kate", "kate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveDisplayName(tt.display, tt.email))
		})
	}
}

func TestPresenceRecordOnFloor(t *testing.T) {
	floor := 3
	rec := PresenceRecord{AtLibrary: true, Floor: &floor}
	got, ok := rec.OnFloor()
	assert.True(t, ok)
	assert.Equal(t, 3, got)

	_, ok = PresenceRecord{AtLibrary: false}.OnFloor()
	assert.False(t, ok)

	// Inconsistent row: marked present but no floor recorded.
	_, ok = PresenceRecord{AtLibrary: true}.OnFloor()
	assert.False(t, ok)
}

func TestValidFloor(t *testing.T) {
	assert.False(t, ValidFloor(0))
	assert.True(t, ValidFloor(1))
	assert.True(t, ValidFloor(5))
	assert.False(t, ValidFloor(6))
}

func TestFriendshipEdgeOther(t *testing.T) {
	from, to := uuid.New(), uuid.New()
	edge := FriendshipEdge{FromUserID: from, ToUserID: to}

	assert.Equal(t, to, edge.Other(from))
	assert.Equal(t, from, edge.Other(to))
	assert.True(t, edge.Touches(from))
	assert.True(t, edge.Touches(to))
	assert.False(t, edge.Touches(uuid.New()))
}
