package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types sent over WebSocket.
const (
	EventMatchUpdated = "match_updated"
	EventMatchEnded   = "match_ended"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
	Data    any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action  string `json:"action"` // "subscribe" or "unsubscribe"
	MatchID string `json:"match_id"`
}

// WSConn wraps a WebSocket connection with its user and subscriptions.
type WSConn struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub manages WebSocket connections and match-channel subscriptions.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	matches     map[string]map[*WSConn]bool // matchID -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		matches:     make(map[string]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, c)
	for matchID, conns := range h.matches {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.matches, matchID)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a match channel.
func (h *Hub) Subscribe(c *WSConn, matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.matches[matchID] == nil {
		h.matches[matchID] = make(map[*WSConn]bool)
	}
	h.matches[matchID][c] = true
}

// Unsubscribe removes a connection from a match channel.
func (h *Hub) Unsubscribe(c *WSConn, matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.matches[matchID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.matches, matchID)
		}
	}
}

// BroadcastToMatch sends an event to all connections subscribed to a match.
func (h *Hub) BroadcastToMatch(matchID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("matchId", matchID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.matches[matchID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("userId", c.userID).Str("matchId", matchID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// BroadcastToUser sends an event to a specific user across all their connections.
func (h *Hub) BroadcastToUser(userID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections {
		if c.userID == userID {
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// MatchSubscriberCount returns the number of connections subscribed to a match.
func (h *Hub) MatchSubscriberCount(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.matches[matchID])
}
