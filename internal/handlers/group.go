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

// GroupHandler handles group-related HTTP requests
type GroupHandler struct {
	membershipService *services.MembershipService
	recommendService  *services.RecommendationService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(
	membershipService *services.MembershipService,
	recommendService *services.RecommendationService,
) *GroupHandler {
	return &GroupHandler{
		membershipService: membershipService,
		recommendService:  recommendService,
	}
}

// CreateGroup handles POST /api/v1/groups
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	adminID := middleware.GetUserID(ctx)

	var input services.CreateGroupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	group, err := h.membershipService.Create(ctx, adminID, input)
	if err != nil {
		log.Error().Err(err).Str("admin_id", adminID).Msg("Failed to create group")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("group_id", group.ID).
		Str("admin_id", adminID).
		Int("max_members", group.MaxMembers).
		Msg("Group created")

	respondJSON(w, http.StatusCreated, group)
}

// ListGroups handles GET /api/v1/groups
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.membershipService.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list groups")
		respondServiceError(w, err)
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}
	respondJSON(w, http.StatusOK, groups)
}

// GetGroup handles GET /api/v1/groups/{group_id}
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "group_id")

	group, err := h.membershipService.Get(r.Context(), groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// JoinGroup handles POST /api/v1/groups/{group_id}/join
func (h *GroupHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	groupID := chi.URLParam(r, "group_id")

	group, err := h.membershipService.Join(ctx, groupID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("group_id", groupID).
			Msg("Failed to join group")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("group_id", groupID).
		Int("members", len(group.Members)).
		Msg("User joined group")

	respondJSON(w, http.StatusOK, group)
}

// LeaveGroup handles POST /api/v1/groups/{group_id}/leave
func (h *GroupHandler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	groupID := chi.URLParam(r, "group_id")

	group, err := h.membershipService.Leave(ctx, groupID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("group_id", groupID).
			Msg("Failed to leave group")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("group_id", groupID).
		Msg("User left group")

	respondJSON(w, http.StatusOK, group)
}

// Recommended handles GET /api/v1/groups/recommended
func (h *GroupHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	recommendations, err := h.recommendService.Recommendations(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch recommendations")
		respondError(w, "Recommendation engine unavailable", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, recommendations)
}
