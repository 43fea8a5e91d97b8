package http

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/doorbell-dev/doorbell/pkg/utils/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 512,
	// The feed is public read-only data, any origin may subscribe
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveHandler upgrades the connection and streams roster updates: one
// full snapshot frame on attach, then per-field change frames. The read
// loop only watches for disconnection.
func (s *Server) liveHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		logging.From(ctx).Warn("websocket upgrade failed", "error", err.Error())
		return
	}

	id, messages := s.hub.Attach()
	logging.From(ctx).Debug("observer attached", "observer", id)

	go func() {
		for msg := range messages {
			if err := conn.WriteJSON(msg); err != nil {
				s.hub.Detach(id)
				_ = conn.Close() // ends the read loop below
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.hub.Detach(id)
	_ = conn.Close()
	logging.From(ctx).Debug("observer detached", "observer", id)
}
