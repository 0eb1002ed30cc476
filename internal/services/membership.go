package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
	"github.com/SLAWWWW/CommunityCompass/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MembershipService mutates group membership under capacity and admin
// constraints. Join and leave for the same group are serialized through a
// per-group mutex so that a check-then-append race can never overrun
// MaxMembers; operations on different groups never block each other.
type MembershipService struct {
	groups repository.GroupStore
	users  repository.UserStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMembershipService creates a new membership service
func NewMembershipService(groups repository.GroupStore, users repository.UserStore) *MembershipService {
	return &MembershipService{
		groups: groups,
		users:  users,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockGroup returns the mutex serializing membership updates for one group
func (s *MembershipService) lockGroup(groupID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[groupID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[groupID] = l
	}
	return l
}

// CreateGroupInput holds the caller-supplied fields for a new group
type CreateGroupInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Location    string   `json:"location"`
	AgeGroup    string   `json:"age_group"`
	MaxMembers  int      `json:"max_members"`
}

// Create creates a new group. The creator becomes the admin and the first member.
func (s *MembershipService) Create(ctx context.Context, adminID string, input CreateGroupInput) (*models.Group, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("group name is required")
	}
	if input.MaxMembers < 1 {
		return nil, fmt.Errorf("max_members must be a positive integer")
	}

	if _, err := s.users.GetByID(ctx, adminID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	group := &models.Group{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Tags:        input.Tags,
		Location:    input.Location,
		AgeGroup:    input.AgeGroup,
		AdminID:     adminID,
		MaxMembers:  input.MaxMembers,
		Members:     []string{adminID},
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// Get retrieves a group by ID
func (s *MembershipService) Get(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// List retrieves all groups
func (s *MembershipService) List(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// Join adds a user to the end of a group's member list. It fails with
// ErrAlreadyMember or ErrGroupFull without touching the member list.
func (s *MembershipService) Join(ctx context.Context, groupID, userID string) (*models.Group, error) {
	lock := s.lockGroup(groupID)
	lock.Lock()
	defer lock.Unlock()

	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if lo.Contains(group.Members, userID) {
		return nil, ErrAlreadyMember
	}
	if len(group.Members) >= group.MaxMembers {
		return nil, ErrGroupFull
	}

	group.Members = append(group.Members, userID)
	if err := s.groups.ReplaceMembers(ctx, groupID, group.Members); err != nil {
		return nil, fmt.Errorf("failed to persist members: %w", err)
	}

	return group, nil
}

// Leave removes a user from a group's member list. The admin can never
// leave; adminship is not transferable here.
func (s *MembershipService) Leave(ctx context.Context, groupID, userID string) (*models.Group, error) {
	lock := s.lockGroup(groupID)
	lock.Lock()
	defer lock.Unlock()

	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !lo.Contains(group.Members, userID) {
		return nil, ErrNotMember
	}
	if userID == group.AdminID {
		return nil, ErrAdminCannotLeave
	}

	group.Members = lo.Without(group.Members, userID)
	if err := s.groups.ReplaceMembers(ctx, groupID, group.Members); err != nil {
		return nil, fmt.Errorf("failed to persist members: %w", err)
	}

	return group, nil
}
