package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/middleware"
	"github.com/SLAWWWW/CommunityCompass/internal/models"
	"github.com/SLAWWWW/CommunityCompass/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatService *services.ChatFeedService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatFeedService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ListMessages handles GET /api/v1/groups/{group_id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "group_id")

	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			respondError(w, "Query parameter \"since\" must be an RFC 3339 timestamp", http.StatusBadRequest)
			return
		}
		since = &t
	}

	messages, err := h.chatService.List(r.Context(), groupID, since)
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("Failed to list messages")
		respondServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	respondJSON(w, http.StatusOK, messages)
}

// PostMessageRequest represents the request body for posting a message
type PostMessageRequest struct {
	Message string `json:"message"`
}

// PostMessage handles POST /api/v1/groups/{group_id}/messages
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	senderID := middleware.GetUserID(ctx)
	groupID := chi.URLParam(r, "group_id")

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.chatService.Post(ctx, groupID, senderID, req.Message)
	if err != nil {
		log.Error().
			Err(err).
			Str("sender_id", senderID).
			Str("group_id", groupID).
			Msg("Failed to post message")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("message_id", msg.ID).
		Str("sender_id", senderID).
		Str("group_id", groupID).
		Msg("Message posted")

	respondJSON(w, http.StatusCreated, msg)
}
