package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/NicoBaldowine/pickleplay/realtime"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows
// any origin.
func NewWebSocketHandler(hub *realtime.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || slices.Contains(allowedOrigins, "*") {
					return true
				}
				return slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// ServeGames streams GAMES_CHANGED notifications. Clients pass ?city= to
// follow one city; without it they receive changes everywhere.
func (h *WebSocketHandler) ServeGames(w http.ResponseWriter, r *http.Request) {
	room := realtime.RoomForCity(r.URL.Query().Get("city"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Warn("websocket upgrade failed", "room", room, "error", err)
		return
	}

	if !h.hub.Attach(conn, room) {
		h.logger.Warn("websocket hub stopped, connection dropped", "room", room)
		return
	}
	h.logger.Debug("websocket client attached", "room", room)
}
