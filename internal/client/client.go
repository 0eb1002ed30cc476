// Package client is the Go counterpart of the browser front end: a typed
// REST client over the /api/v1 surface plus the waiting-room view that
// keeps itself fresh through the polling agent.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
)

// APIError is a non-2xx response decoded from the server's error body
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Client calls the CommunityCompass REST API on behalf of one user.
// The caller identity travels on every request; there is no ambient
// current-user singleton.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// New creates a client acting as the given user
func New(baseURL, userID string) *Client {
	return &Client{
		baseURL: baseURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-User-ID", c.userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil || errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// GetGroup fetches one group record
func (c *Client) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var group models.Group
	if err := c.do(ctx, http.MethodGet, "/groups/"+groupID, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListGroups fetches all groups
func (c *Client) ListGroups(ctx context.Context) ([]*models.Group, error) {
	var groups []*models.Group
	if err := c.do(ctx, http.MethodGet, "/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListUsers fetches all user profiles
func (c *Client) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one user profile
func (c *Client) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+userID, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListMessages fetches a group's feed, optionally only messages created at
// or after since.
func (c *Client) ListMessages(ctx context.Context, groupID string, since *time.Time) ([]*models.Message, error) {
	path := "/groups/" + groupID + "/messages"
	if since != nil {
		path += "?since=" + url.QueryEscape(since.Format(time.RFC3339Nano))
	}
	var messages []*models.Message
	if err := c.do(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// PostMessage sends a chat message to a group
func (c *Client) PostMessage(ctx context.Context, groupID, body string) (*models.Message, error) {
	req := map[string]string{"message": body}
	var msg models.Message
	if err := c.do(ctx, http.MethodPost, "/groups/"+groupID+"/messages", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// JoinGroup joins a group as the client's user
func (c *Client) JoinGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var group models.Group
	if err := c.do(ctx, http.MethodPost, "/groups/"+groupID+"/join", nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// LeaveGroup leaves a group as the client's user
func (c *Client) LeaveGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var group models.Group
	if err := c.do(ctx, http.MethodPost, "/groups/"+groupID+"/leave", nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// LikeUser likes another user's profile
func (c *Client) LikeUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/users/"+userID+"/like", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UnlikeUser removes a like from another user's profile
func (c *Client) UnlikeUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/users/"+userID+"/unlike", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
