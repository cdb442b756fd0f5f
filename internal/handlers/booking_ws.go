package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/theratreat/therabook-backend/internal/middleware"
	"github.com/theratreat/therabook-backend/internal/services"
)

var bookingUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// BookingUpdatesWS pushes booking lifecycle events to the connected user.
// Authentication is the regular session token (Authorization: Bearer <token>),
// with a token query parameter fallback for browser WebSocket clients.
func BookingUpdatesWS(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}
	}

	data, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	conn, err := bookingUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, unsubscribe := services.SubscribeBookingEvents(data.UserID)
	defer unsubscribe()

	// Writer goroutine: forward hub events to this connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for evt := range events {
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}()

	// Reader loop: the client sends nothing meaningful; we only detect
	// disconnects and answer pings to keep the connection alive.
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	}

	unsubscribe()
	<-done
}
