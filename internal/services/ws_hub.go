package services

import (
	"encoding/json"
	"sync"

	"github.com/SLAWWWW/CommunityCompass/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// historyLimit caps the per-group replay buffer sent to new connections
const historyLimit = 50

// WSMessage represents a WebSocket envelope sent to chat listeners
type WSMessage struct {
	Type     string            `json:"type"`
	Data     *models.Message   `json:"data,omitempty"`
	Messages []*models.Message `json:"messages,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// WSHub manages live chat listeners per group. It is a best-effort push
// channel layered over the polling contract, never a replacement for it.
type WSHub struct {
	mu          sync.Mutex
	connections map[string]map[*websocket.Conn]struct{}
	history     map[string][]*models.Message
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]map[*websocket.Conn]struct{}),
		history:     make(map[string][]*models.Message),
	}
}

// Register adds a connection to a group's listener set and replays the
// recent message history to it.
func (h *WSHub) Register(groupID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[groupID] == nil {
		h.connections[groupID] = make(map[*websocket.Conn]struct{})
	}
	h.connections[groupID][conn] = struct{}{}

	log.Info().Str("group_id", groupID).Msg("WebSocket listener registered")

	if history := h.history[groupID]; len(history) > 0 {
		h.send(groupID, conn, WSMessage{Type: "history", Messages: history})
	}
}

// Unregister removes a connection from a group's listener set
func (h *WSHub) Unregister(groupID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.connections[groupID]; ok {
		if _, exists := conns[conn]; exists {
			conn.Close()
			delete(conns, conn)
			log.Info().Str("group_id", groupID).Msg("WebSocket listener unregistered")
		}
		if len(conns) == 0 {
			delete(h.connections, groupID)
		}
	}
}

// BroadcastMessage pushes a freshly appended message to every listener of
// the group and records it in the replay buffer.
func (h *WSHub) BroadcastMessage(groupID string, msg *models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.history[groupID] = append(h.history[groupID], msg)
	if len(h.history[groupID]) > historyLimit {
		h.history[groupID] = h.history[groupID][len(h.history[groupID])-historyLimit:]
	}

	for conn := range h.connections[groupID] {
		h.send(groupID, conn, WSMessage{Type: "message", Data: msg})
	}
}

// send writes an envelope to one connection, dropping the connection on error.
// Callers must hold h.mu.
func (h *WSHub) send(groupID string, conn *websocket.Conn, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("Failed to marshal WebSocket message")
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("Failed to push message, dropping listener")
		conn.Close()
		delete(h.connections[groupID], conn)
	}
}
