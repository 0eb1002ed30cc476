package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
	"github.com/SLAWWWW/CommunityCompass/internal/repository"
)

// GroupStore is an in-memory repository.GroupStore
type GroupStore struct {
	mu     sync.RWMutex
	groups map[string]*models.Group
}

// NewGroupStore creates an empty in-memory group store
func NewGroupStore() *GroupStore {
	return &GroupStore{groups: make(map[string]*models.Group)}
}

// Create stores a new group
func (s *GroupStore) Create(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[group.ID] = cloneGroup(group)
	return nil
}

// GetByID retrieves a group by ID
func (s *GroupStore) GetByID(ctx context.Context, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneGroup(group), nil
}

// List retrieves all groups ordered by creation time
func (s *GroupStore) List(ctx context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]*models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, cloneGroup(g))
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CreatedAt.Equal(groups[j].CreatedAt) {
			return groups[i].ID < groups[j].ID
		}
		return groups[i].CreatedAt.Before(groups[j].CreatedAt)
	})
	return groups, nil
}

// ReplaceMembers persists the full ordered member list for a group
func (s *GroupStore) ReplaceMembers(ctx context.Context, groupID string, members []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.groups[groupID]
	if !ok {
		return repository.ErrNotFound
	}
	group.Members = append([]string(nil), members...)
	return nil
}
