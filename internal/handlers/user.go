package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/SLAWWWW/CommunityCompass/internal/middleware"
	"github.com/SLAWWWW/CommunityCompass/internal/models"
	"github.com/SLAWWWW/CommunityCompass/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService   *services.UserService
	avatarService *services.AvatarService
}

// NewUserHandler creates a new user handler. avatarService may be nil when
// no object storage is configured.
func NewUserHandler(userService *services.UserService, avatarService *services.AvatarService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		avatarService: avatarService,
	}
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input services.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Create(ctx, input)
	if err != nil {
		log.Error().Err(err).Str("email", input.Email).Msg("Failed to create user")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("name", user.Name).
		Msg("User created")

	respondJSON(w, http.StatusCreated, user)
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respondServiceError(w, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/v1/users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// LikeUser handles POST /api/v1/users/{user_id}/like
func (h *UserHandler) LikeUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetUserID(ctx)
	targetID := chi.URLParam(r, "user_id")

	user, err := h.userService.Like(ctx, targetID, callerID)
	if err != nil {
		log.Error().
			Err(err).
			Str("caller_id", callerID).
			Str("target_id", targetID).
			Msg("Failed to like user")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("caller_id", callerID).
		Str("target_id", targetID).
		Msg("User liked")

	respondJSON(w, http.StatusOK, user)
}

// UnlikeUser handles POST /api/v1/users/{user_id}/unlike
func (h *UserHandler) UnlikeUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetUserID(ctx)
	targetID := chi.URLParam(r, "user_id")

	user, err := h.userService.Unlike(ctx, targetID, callerID)
	if err != nil {
		log.Error().
			Err(err).
			Str("caller_id", callerID).
			Str("target_id", targetID).
			Msg("Failed to unlike user")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// AvatarUploadRequest represents the request body for an avatar upload
type AvatarUploadRequest struct {
	ContentType string `json:"content_type"`
}

// AvatarUpload handles POST /api/v1/users/avatar-upload
func (h *UserHandler) AvatarUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if h.avatarService == nil {
		respondError(w, "Avatar storage is not configured", http.StatusServiceUnavailable)
		return
	}

	var req AvatarUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	resp, err := h.avatarService.GetUploadURL(ctx, userID, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create avatar upload URL")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
