package repository

import (
	"context"
	"errors"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
)

// ErrNotFound is returned by every store when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UserStore handles persistence of user profiles and the liked-by relation
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLikedBy(ctx context.Context, userID string, likedBy []string) error
	UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error
}

// GroupStore owns the canonical group records and their membership sets
type GroupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	List(ctx context.Context) ([]*models.Group, error)
	// ReplaceMembers persists the full ordered member list for a group.
	// Callers are responsible for serializing conflicting updates per group.
	ReplaceMembers(ctx context.Context, groupID string, members []string) error
}

// MessageStore is the append-only per-group message log
type MessageStore interface {
	// Append stores the message, assigning its sequence number and creation
	// timestamp, so the feed position of concurrent appends is decided at
	// commit time.
	Append(ctx context.Context, msg *models.Message) error
	// ListByGroup returns messages in ascending (CreatedAt, Seq) order.
	// A non-nil since limits the result to messages created at or after it.
	ListByGroup(ctx context.Context, groupID string, since *time.Time) ([]*models.Message, error)
}
