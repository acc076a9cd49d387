package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
	"github.com/Preston-Miller/LibraryProject/internal/roster"
	"github.com/Preston-Miller/LibraryProject/internal/service"
)

func testSession(selfID uuid.UUID, friends ...domain.FriendView) *service.Session {
	return &service.Session{
		UserID:    selfID,
		Username:  "me",
		OwnStatus: domain.AbsentRecord(selfID),
		Tracker:   roster.NewTracker(selfID, friends, nil),
	}
}

func friendEvent(userID uuid.UUID, floor int) roster.ChangeEvent {
	return roster.ChangeEvent{
		Table: "library_status",
		New:   &domain.PresenceRecord{UserID: userID, AtLibrary: true, Floor: &floor},
	}
}

func readEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg := <-c.send:
		var evt Event
		require.NoError(t, json.Unmarshal(msg, &evt))
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event sent")
		return Event{}
	}
}

func TestDisconnectWithQueuedEventDoesNotPanic(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	self := uuid.New()
	friend := uuid.New()
	client := NewClient(hub, nil, nil, self)
	client.setSession(testSession(self, domain.FriendView{ID: friend, Username: "pal"}))
	hub.register <- client

	// An event is still buffered when the hub drops the client.
	ev := friendEvent(friend, 2)
	client.changes <- ev
	hub.unregister <- client

	select {
	case <-client.done:
	case <-time.After(time.Second):
		t.Fatal("done not closed on unregister")
	}

	// ApplyPump may drain the buffered event after the disconnect; the
	// resulting roster push must land on the still-open send channel.
	client.applyChange(<-client.changes)

	evt := readEvent(t, client)
	assert.Equal(t, EventTypeRosterUpdate, evt.Type)
}

func TestUnregisterIgnoresReplacedClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	self := uuid.New()
	old := NewClient(hub, nil, nil, self)
	old.setSession(testSession(self))
	hub.register <- old

	// Same user reconnects; the stale connection unregisters afterwards.
	replacement := NewClient(hub, nil, nil, self)
	replacement.setSession(testSession(self))
	hub.register <- replacement
	hub.unregister <- old

	select {
	case <-old.done:
	case <-time.After(time.Second):
		t.Fatal("stale client's done not closed")
	}
	select {
	case <-replacement.done:
		t.Fatal("replacement client was torn down by the stale unregister")
	default:
	}
}

func TestEventsQueuedDuringBootstrapAreApplied(t *testing.T) {
	self := uuid.New()
	friend := uuid.New()
	client := NewClient(NewHub(), nil, nil, self)

	// The friend's event arrives while the snapshot read is still in flight,
	// before the session is installed.
	client.changes <- friendEvent(friend, 3)

	client.setSession(testSession(self, domain.FriendView{ID: friend, Username: "pal"}))
	go client.ApplyPump()
	defer close(client.done)

	evt := readEvent(t, client)
	require.Equal(t, EventTypeRosterUpdate, evt.Type)

	var p RosterPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &p))
	require.Len(t, p.Floors[3], 1)
	assert.Equal(t, friend, p.Floors[3][0].ID)
}
