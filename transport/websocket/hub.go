package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Events pushed to spectators
const (
	EventMove     = "move"
	EventFinished = "match_finished"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is one update for the watchers of a match
type Message struct {
	MatchID string      `json:"match_id"`
	Event   string      `json:"event"`
	Data    interface{} `json:"data,omitempty"`
}

// Client is one websocket connection watching a match
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	matchID string
}

// Hub maintains the set of watchers per match and fans out updates.
// All map access happens on the Run goroutine.
type Hub struct {
	// Registered clients by match ID
	matches map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	count      chan countRequest

	done   chan struct{}
	logger *zap.Logger
}

type countRequest struct {
	matchID string
	reply   chan int
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		matches:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop and blocks until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for _, clients := range h.matches {
			for client := range clients {
				close(client.send)
			}
		}
		h.matches = make(map[string]map[*Client]bool)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case req := <-h.count:
			req.reply <- len(h.matches[req.matchID])
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to a match
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, matchID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		matchID: matchID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Broadcast queues an event for every watcher of a match.
// It never blocks the caller on slow clients; it returns false once the hub has stopped.
func (h *Hub) Broadcast(matchID, event string, data interface{}) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.broadcast <- &Message{MatchID: matchID, Event: event, Data: data}:
		return true
	case <-h.done:
		return false
	}
}

// ClientCount returns how many connections watch a match
func (h *Hub) ClientCount(matchID string) int {
	req := countRequest{matchID: matchID, reply: make(chan int, 1)}
	select {
	case h.count <- req:
		return <-req.reply
	case <-h.done:
		return 0
	}
}

// registerClient adds a client to a match
func (h *Hub) registerClient(client *Client) {
	if h.matches[client.matchID] == nil {
		h.matches[client.matchID] = make(map[*Client]bool)
	}
	h.matches[client.matchID][client] = true

	h.logger.Debug("watcher registered",
		zap.String("match_id", client.matchID),
		zap.Int("clients", len(h.matches[client.matchID])))
}

// unregisterClient removes a client from a match
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.matches[client.matchID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.matches, client.matchID)
			}

			h.logger.Debug("watcher unregistered",
				zap.String("match_id", client.matchID),
				zap.Int("clients", len(clients)))
		}
	}
}

// broadcastMessage sends a message to all clients of a match
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.matches[message.MatchID]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", zap.String("match_id", message.MatchID), zap.Error(err))
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// slow consumer
			h.unregisterClient(client)
		}
	}
}

// readPump drains the connection so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// watchers are read-only; incoming frames are discarded
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket closed", zap.String("match_id", c.matchID), zap.Error(err))
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
