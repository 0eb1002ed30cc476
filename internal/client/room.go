package client

import (
	"context"

	"github.com/SLAWWWW/CommunityCompass/internal/poll"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
	"github.com/samber/lo"
)

// groupView pulls the authoritative waiting-room state for one group:
// the group record, the profiles of its members and the full message feed,
// the same trio the web client fetches per poll.
type groupView struct {
	api     *Client
	groupID string
}

// Pull fetches one wholesale snapshot of the view
func (v *groupView) Pull(ctx context.Context) (*poll.Snapshot, error) {
	group, err := v.api.GetGroup(ctx, v.groupID)
	if err != nil {
		return nil, err
	}

	users, err := v.api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	messages, err := v.api.ListMessages(ctx, v.groupID, nil)
	if err != nil {
		return nil, err
	}

	members := lo.Filter(users, func(u *models.User, _ int) bool {
		return lo.Contains(group.Members, u.ID)
	})

	return &poll.Snapshot{
		Group:    group,
		Members:  members,
		Messages: messages,
	}, nil
}

// Room is an open waiting-room view: group details plus its chat feed,
// kept fresh by the polling agent until Close.
type Room struct {
	api     *Client
	groupID string
	agent   *poll.Agent
}

// OpenRoom activates a waiting-room view for a group. The agent pulls once
// immediately and then on every tick until Close.
func OpenRoom(api *Client, groupID string, opts poll.Options) *Room {
	return &Room{
		api:     api,
		groupID: groupID,
		agent:   poll.Start(&groupView{api: api, groupID: groupID}, opts),
	}
}

// Snapshot returns the latest authoritative view, or nil before the first
// successful pull.
func (r *Room) Snapshot() *poll.Snapshot {
	return r.agent.Latest()
}

// Send posts a message and, on success, triggers an immediate re-pull so
// the view shows the message without waiting for the next tick. On failure
// the local view is left untouched and the error is returned.
func (r *Room) Send(ctx context.Context, body string) (*models.Message, error) {
	msg, err := r.api.PostMessage(ctx, r.groupID, body)
	if err != nil {
		return nil, err
	}
	r.agent.Refresh()
	return msg, nil
}

// Join joins the group and refreshes the view on success
func (r *Room) Join(ctx context.Context) (*models.Group, error) {
	group, err := r.api.JoinGroup(ctx, r.groupID)
	if err != nil {
		return nil, err
	}
	r.agent.Refresh()
	return group, nil
}

// Leave leaves the group and refreshes the view on success
func (r *Room) Leave(ctx context.Context) (*models.Group, error) {
	group, err := r.api.LeaveGroup(ctx, r.groupID)
	if err != nil {
		return nil, err
	}
	r.agent.Refresh()
	return group, nil
}

// Close releases the view. No snapshot update happens after Close returns.
func (r *Room) Close() {
	r.agent.Stop()
}
