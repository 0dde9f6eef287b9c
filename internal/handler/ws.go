package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/fieldtrack/fieldtrack/internal/events"
)

// LiveUpdates upgrades the connection to a websocket and subscribes it to
// location broadcasts. The hub sends the hello handshake as the first frame.
func (h *Handler) LiveUpdates(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error to the client.
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := events.NewClient(h.hub, conn, h.log)
	h.hub.Register(client)
	client.Start()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
