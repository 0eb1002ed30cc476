package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
)

// MessageStore is an in-memory repository.MessageStore
type MessageStore struct {
	mu       sync.Mutex
	messages map[string][]*models.Message
	seq      map[string]int64
}

// NewMessageStore creates an empty in-memory message store
func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[string][]*models.Message),
		seq:      make(map[string]int64),
	}
}

// Append stores a message, assigning its per-group sequence number and,
// when unset, its creation timestamp. Both are assigned under the store
// lock, so the per-group (CreatedAt, Seq) order of concurrent appends is
// decided at commit time and never runs backwards.
func (s *MessageStore) Append(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[msg.GroupID]++
	msg.Seq = s.seq[msg.GroupID]
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.messages[msg.GroupID] = append(s.messages[msg.GroupID], cloneMessage(msg))
	return nil
}

// ListByGroup retrieves messages for a group in ascending (CreatedAt, Seq) order.
// A non-nil since limits the result to messages created at or after it.
func (s *MessageStore) ListByGroup(ctx context.Context, groupID string, since *time.Time) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var messages []*models.Message
	for _, m := range s.messages[groupID] {
		if since != nil && m.CreatedAt.Before(*since) {
			continue
		}
		messages = append(messages, cloneMessage(m))
	}
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].Seq < messages[j].Seq
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}
