package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
	"github.com/Preston-Miller/LibraryProject/internal/metrics"
	"github.com/Preston-Miller/LibraryProject/internal/roster"
	"github.com/Preston-Miller/LibraryProject/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
	changeBufSize  = 256
	bootstrapWait  = 15 * time.Second
)

// SessionLoader bootstraps and mutates per-session state.
type SessionLoader interface {
	StartSession(ctx context.Context, userID uuid.UUID) (*service.Session, error)
	SetOwnStatus(ctx context.Context, userID uuid.UUID, atLibrary bool, floor *int) (domain.PresenceRecord, error)
}

// Client represents a single WebSocket session. It owns the session's
// tracker: presence change events are applied to it serially by ApplyPump,
// and status toggles from ReadPump only touch the local overlay state, so
// the stored roster has a single writer.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	loader SessionLoader
	userID uuid.UUID

	// mu guards tracker, username and ownStatus.
	mu        sync.Mutex
	tracker   *roster.Tracker
	username  string
	ownStatus domain.PresenceRecord

	// send is never closed; shutdown is signalled through done alone, so the
	// non-blocking sends below stay safe on a client the hub has dropped.
	send    chan []byte
	changes chan roster.ChangeEvent
	refresh chan struct{}
	done    chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, loader SessionLoader, userID uuid.UUID) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		loader:  loader,
		userID:  userID,
		send:    make(chan []byte, sendBufSize),
		changes: make(chan roster.ChangeEvent, changeBufSize),
		refresh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// setSession installs the bootstrapped state. Called once before the pumps
// start; rebuild replaces the tracker afterwards under mu.
func (c *Client) setSession(sess *service.Session) {
	c.mu.Lock()
	c.tracker = sess.Tracker
	c.username = sess.Username
	c.ownStatus = sess.OwnStatus
	c.mu.Unlock()
}

// ReadPump reads messages from the WebSocket and handles them.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// ApplyPump consumes presence change events and friendship refresh signals.
// Events are applied at arrival rate; there is no reordering or replay.
func (c *Client) ApplyPump() {
	for {
		select {
		case ev := <-c.changes:
			c.applyChange(ev)

		case <-c.refresh:
			c.rebuild()

		case <-c.done:
			return
		}
	}
}

// applyChange routes one presence change event. The session's own events
// never touch the stored roster - local state is authoritative for self -
// but they do refresh the overlay so toggles made over HTTP show up here.
func (c *Client) applyChange(ev roster.ChangeEvent) {
	if userID, ok := ev.UserID(); ok && userID == c.userID {
		if ev.New != nil {
			c.mu.Lock()
			c.ownStatus = *ev.New
			c.mu.Unlock()
			c.sendRoster()
			c.sendOwnStatus()
		}
		return
	}

	c.mu.Lock()
	applied := c.tracker.Apply(ev)
	c.mu.Unlock()
	metrics.IncRosterEvent(applied)
	if applied {
		c.sendRoster()
	}
}

// rebuild reloads the whole session after a friendship change: the friend
// set is cheap to recompute wholesale, unlike the event-patched roster.
func (c *Client) rebuild() {
	ctx, cancel := context.WithTimeout(context.Background(), bootstrapWait)
	defer cancel()

	sess, err := c.loader.StartSession(ctx, c.userID)
	if err != nil {
		log.Printf("ws: rebuild session for %s: %v", c.userID, err)
		return
	}

	c.mu.Lock()
	c.tracker = sess.Tracker
	c.username = sess.Username
	c.mu.Unlock()

	c.sendEvent(EventTypeFriendsChanged, nil)
	c.sendRoster()
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeStatusSet:
		var p StatusSetPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid status.set payload")
			return
		}
		c.setStatus(p)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) setStatus(p StatusSetPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()

	rec, err := c.loader.SetOwnStatus(ctx, c.userID, p.AtLibrary, p.Floor)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFloor) {
			c.sendError("INVALID_FLOOR", "floor must be between 1 and 5")
			return
		}
		log.Printf("ws: save status for %s: %v", c.userID, err)
		c.sendError("SAVE_FAILED", "could not save your status")
		return
	}

	// Merge locally right away; our own broadcast copy is ignored by Apply.
	c.mu.Lock()
	c.ownStatus = rec
	c.mu.Unlock()
	c.sendOwnStatus()
	c.sendRoster()
}

// SendSnapshot pushes the current status and roster, used right after
// registration so the client starts from a complete view.
func (c *Client) SendSnapshot() {
	c.sendOwnStatus()
	c.sendRoster()
}

func (c *Client) sendRoster() {
	c.mu.Lock()
	snap := c.tracker.Snapshot(c.username, c.ownStatus)
	c.mu.Unlock()
	c.sendEvent(EventTypeRosterUpdate, RosterPayload{Floors: snap})
}

func (c *Client) sendOwnStatus() {
	c.mu.Lock()
	status := c.ownStatus
	c.mu.Unlock()
	c.sendEvent(EventTypeStatus, StatusPayload{PresenceRecord: status})
}

func (c *Client) sendEvent(eventType string, payload any) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	c.sendEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
}
