package ws

import (
	"log"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// Auth is done via ?token=xxx query param (WebSocket can't send headers).
func ServeWS(hub *Hub, loader SessionLoader, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Extract token from query param
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		// Validate JWT
		userID, err := validateToken(tokenStr, jwtSecret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		// Accept WebSocket upgrade
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Allow any origin (dev mode)
		})
		if err != nil {
			log.Printf("ws: accept error: %v", err)
			return
		}

		// Register before the bootstrap reads: presence events broadcast while
		// the snapshot is in flight queue in the client's change buffer and
		// replay after it, which the remove-then-reinsert patch makes safe.
		client := NewClient(hub, conn, loader, userID)
		hub.register <- client

		sess, err := loader.StartSession(r.Context(), userID)
		if err != nil {
			log.Printf("ws: session bootstrap for %s: %v", userID, err)
			hub.unregister <- client
			conn.Close(websocket.StatusInternalError, "could not start session")
			return
		}
		client.setSession(sess)

		// ReadPump starts only after the bootstrap, so the session's own
		// status is loaded before any save can be issued on it.
		go client.WritePump()
		go client.ApplyPump()
		go client.ReadPump()
		client.SendSnapshot()
	}
}

func validateToken(tokenStr, secret string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(sub)
}
