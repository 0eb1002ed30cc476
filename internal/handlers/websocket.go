package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/SLAWWWW/CommunityCompass/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for MVP
	},
}

// WebSocketHandler handles live group-chat connections
type WebSocketHandler struct {
	hub               *services.WSHub
	userService       *services.UserService
	membershipService *services.MembershipService
	chatService       *services.ChatFeedService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	userService *services.UserService,
	membershipService *services.MembershipService,
	chatService *services.ChatFeedService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		userService:       userService,
		membershipService: membershipService,
		chatService:       chatService,
	}
}

// incomingMessage is what a connected client sends to post into the chat
type incomingMessage struct {
	Message string `json:"message"`
}

// HandleWebSocket handles GET /ws/groups/{group_id}. The caller identifies
// itself with a token or user_id query parameter; posting through the
// socket goes through the same membership checks as the REST endpoint.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	groupID := chi.URLParam(r, "group_id")

	userID := ""
	if token := r.URL.Query().Get("token"); token != "" {
		id, err := h.userService.ValidateJWT(token)
		if err != nil {
			respondError(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID = id
	} else {
		userID = r.URL.Query().Get("user_id")
	}
	if userID == "" {
		respondError(w, "token or user_id required", http.StatusUnauthorized)
		return
	}

	if _, err := h.membershipService.Get(ctx, groupID); err != nil {
		respondServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(groupID, conn)
	defer h.hub.Unregister(groupID, conn)

	log.Info().
		Str("user_id", userID).
		Str("group_id", groupID).
		Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg incomingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(conn, "Invalid message format")
			continue
		}

		// The post itself broadcasts to every listener, this one included.
		if _, err := h.chatService.Post(ctx, groupID, userID, msg.Message); err != nil {
			h.sendError(conn, err.Error())
		}
	}
}

// sendError sends an error envelope to the WebSocket connection
func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	msg := services.WSMessage{
		Type:    "error",
		Message: message,
	}
	data, _ := json.Marshal(msg)
	conn.WriteMessage(websocket.TextMessage, data)
}
