package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
	"github.com/SLAWWWW/CommunityCompass/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Broadcaster pushes a freshly appended message to live listeners.
// Delivery is best effort and never affects the append itself.
type Broadcaster interface {
	BroadcastMessage(groupID string, msg *models.Message)
}

// ChatFeedService accepts and serves messages scoped to a group.
// Membership is re-checked on every post, not cached.
type ChatFeedService struct {
	messages    repository.MessageStore
	groups      repository.GroupStore
	users       repository.UserStore
	broadcaster Broadcaster
}

// NewChatFeedService creates a new chat feed service. broadcaster may be nil.
func NewChatFeedService(
	messages repository.MessageStore,
	groups repository.GroupStore,
	users repository.UserStore,
	broadcaster Broadcaster,
) *ChatFeedService {
	return &ChatFeedService{
		messages:    messages,
		groups:      groups,
		users:       users,
		broadcaster: broadcaster,
	}
}

// Post validates and appends a message to the group's feed. The sender's
// current display name is denormalized into the message at write time so the
// feed survives later profile changes. The store assigns the timestamp and
// sequence number at append time, so the feed position of concurrent posts
// is decided by commit order. Nothing is stored if any check fails.
func (s *ChatFeedService) Post(ctx context.Context, groupID, senderID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get sender: %w", err)
	}

	if !lo.Contains(group.Members, senderID) {
		return nil, ErrNotMember
	}

	msg := &models.Message{
		ID:         uuid.New().String(),
		GroupID:    groupID,
		SenderID:   senderID,
		SenderName: sender.Name,
		Body:       body,
	}

	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage(groupID, msg)
	}

	return msg, nil
}

// List returns the group's messages in ascending (CreatedAt, Seq) order.
// A non-nil since limits the result to messages created at or after it,
// which supports incremental pulls without re-transferring history.
// An unknown group yields an empty feed rather than an error.
func (s *ChatFeedService) List(ctx context.Context, groupID string, since *time.Time) ([]*models.Message, error) {
	messages, err := s.messages.ListByGroup(ctx, groupID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}
