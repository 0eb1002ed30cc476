package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SLAWWWW/CommunityCompass/internal/middleware"
	"github.com/SLAWWWW/CommunityCompass/internal/models"
	"github.com/SLAWWWW/CommunityCompass/internal/repository/memory"
	"github.com/SLAWWWW/CommunityCompass/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// bootstrapServer wires the API routes over in-memory stores, seeded with
// two users and a two-seat group administered by alice.
func bootstrapServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	users := memory.NewUserStore()
	groups := memory.NewGroupStore()
	messages := memory.NewMessageStore()

	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{ID: "alice", Name: "Alice", Email: "alice@example.com", LikedBy: []string{}}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "bob", Name: "Bob", Email: "bob@example.com", LikedBy: []string{}}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "carol", Name: "Carol", Email: "carol@example.com", LikedBy: []string{}}))

	userService := services.NewUserService(users, "test-secret")
	membershipService := services.NewMembershipService(groups, users)
	chatService := services.NewChatFeedService(messages, groups, users, nil)

	group, err := membershipService.Create(ctx, "alice", services.CreateGroupInput{Name: "Hikers", MaxMembers: 2})
	require.NoError(t, err)

	userHandler := NewUserHandler(userService, nil)
	groupHandler := NewGroupHandler(membershipService, services.NewRecommendationService(""))
	chatHandler := NewChatHandler(chatService)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", userHandler.CreateUser)
		r.Get("/users", userHandler.ListUsers)
		r.Get("/users/{user_id}", userHandler.GetUser)
		r.Get("/groups", groupHandler.ListGroups)
		r.Get("/groups/{group_id}", groupHandler.GetGroup)
		r.Get("/groups/{group_id}/messages", chatHandler.ListMessages)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity(userService))
			r.Post("/groups", groupHandler.CreateGroup)
			r.Post("/groups/{group_id}/join", groupHandler.JoinGroup)
			r.Post("/groups/{group_id}/leave", groupHandler.LeaveGroup)
			r.Post("/groups/{group_id}/messages", chatHandler.PostMessage)
			r.Post("/users/{user_id}/like", userHandler.LikeUser)
			r.Post("/users/{user_id}/unlike", userHandler.UnlikeUser)
			r.Post("/users/avatar-upload", userHandler.AvatarUpload)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, group.ID
}

func doRequest(t *testing.T, method, url, userID string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}

	req, err := http.NewRequest(method, url, &reqBody)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	return resp, buf.Bytes()
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	return errResp.Error
}

func TestJoinFullGroupReturnsConflict(t *testing.T) {
	req := require.New(t)
	srv, groupID := bootstrapServer(t)

	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/v1/groups/"+groupID+"/join", "bob", nil)
	req.Equal(http.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/api/v1/groups/"+groupID+"/join", "carol", nil)
	req.Equal(http.StatusConflict, resp.StatusCode)
	req.Equal("group is full", errorMessage(t, body))
}

func TestJoinTwiceReturnsConflict(t *testing.T) {
	req := require.New(t)
	srv, groupID := bootstrapServer(t)

	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/v1/groups/"+groupID+"/join", "bob", nil)
	req.Equal(http.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/api/v1/groups/"+groupID+"/join", "bob", nil)
	req.Equal(http.StatusConflict, resp.StatusCode)
	req.Equal("user already in group", errorMessage(t, body))
}

func TestAdminLeaveReturnsForbidden(t *testing.T) {
	req := require.New(t)
	srv, groupID := bootstrapServer(t)

	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/v1/groups/"+groupID+"/leave", "alice", nil)
	req.Equal(http.StatusForbidden, resp.StatusCode)
}

func TestPostMessageStatusCodes(t *testing.T) {
	req := require.New(t)
	srv, groupID := bootstrapServer(t)
	base := srv.URL + "/api/v1/groups/" + groupID + "/messages"

	// member posts
	resp, body := doRequest(t, http.MethodPost, base, "alice", map[string]string{"message": "hello"})
	req.Equal(http.StatusCreated, resp.StatusCode)
	var msg models.Message
	req.NoError(json.Unmarshal(body, &msg))
	req.Equal("hello", msg.Body)
	req.Equal("Alice", msg.SenderName)

	// blank body
	resp, _ = doRequest(t, http.MethodPost, base, "alice", map[string]string{"message": "   "})
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	// non-member
	resp, _ = doRequest(t, http.MethodPost, base, "carol", map[string]string{"message": "hi"})
	req.Equal(http.StatusForbidden, resp.StatusCode)

	// no identity at all
	resp, _ = doRequest(t, http.MethodPost, base, "", map[string]string{"message": "hi"})
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestListMessagesRejectsBadSince(t *testing.T) {
	req := require.New(t)
	srv, groupID := bootstrapServer(t)

	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/v1/groups/"+groupID+"/messages?since=yesterday", "", nil)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestGetUnknownGroupReturnsNotFound(t *testing.T) {
	req := require.New(t)
	srv, _ := bootstrapServer(t)

	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/v1/groups/no-such-group", "", nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestCreateUserAndDuplicateEmail(t *testing.T) {
	req := require.New(t)
	srv, _ := bootstrapServer(t)

	input := map[string]interface{}{
		"name":      "Dana",
		"email":     "dana@example.com",
		"location":  "Singapore",
		"interests": []string{"coffee"},
	}
	resp, body := doRequest(t, http.MethodPost, srv.URL+"/api/v1/users", "", input)
	req.Equal(http.StatusCreated, resp.StatusCode)

	var user models.User
	req.NoError(json.Unmarshal(body, &user))
	req.NotEmpty(user.ID)
	req.NotEmpty(user.Token)

	resp, _ = doRequest(t, http.MethodPost, srv.URL+"/api/v1/users", "", input)
	req.Equal(http.StatusConflict, resp.StatusCode)
}

func TestCreateGroupRequiresIdentity(t *testing.T) {
	req := require.New(t)
	srv, _ := bootstrapServer(t)

	input := map[string]interface{}{"name": "New Group", "max_members": 5}
	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/v1/groups", "", input)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/api/v1/groups", "bob", input)
	req.Equal(http.StatusCreated, resp.StatusCode)

	var group models.Group
	req.NoError(json.Unmarshal(body, &group))
	req.Equal("bob", group.AdminID)
	req.Equal([]string{"bob"}, group.Members)
}

func TestBearerTokenIdentity(t *testing.T) {
	req := require.New(t)
	srv, groupID := bootstrapServer(t)

	// mint a token through the public signup endpoint
	resp, body := doRequest(t, http.MethodPost, srv.URL+"/api/v1/users", "", map[string]string{
		"name":  "Eve",
		"email": "eve@example.com",
	})
	req.Equal(http.StatusCreated, resp.StatusCode)
	var user models.User
	req.NoError(json.Unmarshal(body, &user))

	httpReq, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/groups/"+groupID+"/join", nil)
	req.NoError(err)
	httpReq.Header.Set("Authorization", "Bearer "+user.Token)

	httpResp, err := http.DefaultClient.Do(httpReq)
	req.NoError(err)
	defer httpResp.Body.Close()
	req.Equal(http.StatusOK, httpResp.StatusCode)

	var group models.Group
	req.NoError(json.NewDecoder(httpResp.Body).Decode(&group))
	req.Contains(group.Members, user.ID)
}

func TestLikeUnlikeEndpoints(t *testing.T) {
	req := require.New(t)
	srv, _ := bootstrapServer(t)

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/api/v1/users/alice/like", "bob", nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var user models.User
	req.NoError(json.Unmarshal(body, &user))
	req.Equal([]string{"bob"}, user.LikedBy)

	resp, body = doRequest(t, http.MethodPost, srv.URL+"/api/v1/users/alice/unlike", "bob", nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.NoError(json.Unmarshal(body, &user))
	req.Empty(user.LikedBy)
}

func TestAvatarUploadUnconfigured(t *testing.T) {
	req := require.New(t)
	srv, _ := bootstrapServer(t)

	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/v1/users/avatar-upload", "alice", map[string]string{"content_type": "image/png"})
	req.Equal(http.StatusServiceUnavailable, resp.StatusCode)
}
