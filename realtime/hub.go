// Package realtime pushes listing changes to connected clients over
// websockets. Clients join one room per city, or the all-games room.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// AllRoom receives every listing change regardless of city.
const AllRoom = "games"

const TypeGamesChanged = "GAMES_CHANGED"

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Room    string `json:"room,omitempty"`
}

// GamesChanged tells listing screens to reload.
type GamesChanged struct {
	Reason string `json:"reason"`
	GameID int    `json:"game_id,omitempty"`
	City   string `json:"city,omitempty"`
}

// RoomForCity maps a city name to its room; an empty city is AllRoom.
func RoomForCity(city string) string {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return AllRoom
	}
	return "city:" + city
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	room   string
	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, room string) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, sendBuffer), room: room}
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	rooms      map[string]map[*Client]struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		logger:     logger,
	}
}

// Run serves registrations until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]struct{})
			}
			h.rooms[client.room][client] = struct{}{}
			n := len(h.rooms[client.room])
			h.mu.Unlock()
			h.logger.Debug("websocket client joined", "room", client.room, "clients", n)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for _, clients := range h.rooms {
				for c := range clients {
					h.remove(c)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.room]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	client.mu.Lock()
	if !client.closed {
		close(client.send)
		client.closed = true
	}
	client.mu.Unlock()

	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}
	h.logger.Debug("websocket client left", "room", client.room, "clients", len(clients))
}

// Register adds c to its room. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Attach registers an upgraded connection in room and starts its pumps.
func (h *Hub) Attach(conn *websocket.Conn, room string) bool {
	c := NewClient(h, conn, room)
	if !h.Register(c) {
		conn.Close()
		return false
	}
	go c.WritePump()
	go c.ReadPump()
	return true
}

// RoomSize reports how many clients are in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastToRoom sends msg to every client in room. Slow clients whose
// buffer is full miss the message rather than block the sender.
func (h *Hub) BroadcastToRoom(room string, msg Message) {
	msg.Room = room
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", "room", room, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		client.deliver(data)
	}
}

// PublishGamesChanged notifies the city's room and AllRoom. With no city
// every room is notified.
func (h *Hub) PublishGamesChanged(ev GamesChanged) {
	msg := Message{Type: TypeGamesChanged, Payload: ev}
	if strings.TrimSpace(ev.City) == "" {
		h.mu.RLock()
		rooms := make([]string, 0, len(h.rooms))
		for room := range h.rooms {
			rooms = append(rooms, room)
		}
		h.mu.RUnlock()
		for _, room := range rooms {
			h.BroadcastToRoom(room, msg)
		}
		return
	}
	h.BroadcastToRoom(RoomForCity(ev.City), msg)
	h.BroadcastToRoom(AllRoom, msg)
}

func (c *Client) deliver(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("websocket client send buffer full, dropping message", "room", c.room)
	}
}

// ReadPump drains incoming frames so that pongs and closes are processed.
// Clients never send anything meaningful.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", "room", c.room, "error", err)
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Debug("websocket write failed", "room", c.room, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
