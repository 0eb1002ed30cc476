package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
	"github.com/SLAWWWW/CommunityCompass/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	calls []*models.Message
}

func (b *recordingBroadcaster) BroadcastMessage(groupID string, msg *models.Message) {
	b.calls = append(b.calls, msg)
}

func bootstrapChat(t *testing.T) (*ChatFeedService, *recordingBroadcaster, string) {
	t.Helper()

	users := memory.NewUserStore()
	groups := memory.NewGroupStore()
	messages := memory.NewMessageStore()

	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{ID: "alice", Name: "Alice", Email: "alice@example.com"}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "bob", Name: "Bob", Email: "bob@example.com"}))

	membership := NewMembershipService(groups, users)
	group, err := membership.Create(ctx, "alice", CreateGroupInput{Name: "Hikers", MaxMembers: 5})
	require.NoError(t, err)

	broadcaster := &recordingBroadcaster{}
	return NewChatFeedService(messages, groups, users, broadcaster), broadcaster, group.ID
}

func TestPostAppendsInOrder(t *testing.T) {
	req := require.New(t)
	svc, _, groupID := bootstrapChat(t)
	ctx := context.Background()

	first, err := svc.Post(ctx, groupID, "alice", "morning everyone")
	req.NoError(err)
	req.Equal("Alice", first.SenderName)
	req.NotEmpty(first.ID)

	second, err := svc.Post(ctx, groupID, "alice", "trail starts at 8am")
	req.NoError(err)
	req.Greater(second.Seq, first.Seq)

	feed, err := svc.List(ctx, groupID, nil)
	req.NoError(err)
	req.Len(feed, 2)
	req.Equal(first.ID, feed[0].ID)
	req.Equal(second.ID, feed[1].ID)
}

func TestPostRejectsBlankBody(t *testing.T) {
	req := require.New(t)
	svc, broadcaster, groupID := bootstrapChat(t)
	ctx := context.Background()

	for _, body := range []string{"", "   ", "\n\t "} {
		_, err := svc.Post(ctx, groupID, "alice", body)
		req.ErrorIs(err, ErrEmptyMessage)
	}

	feed, err := svc.List(ctx, groupID, nil)
	req.NoError(err)
	req.Empty(feed)
	req.Empty(broadcaster.calls)
}

func TestPostTrimsBody(t *testing.T) {
	req := require.New(t)
	svc, _, groupID := bootstrapChat(t)

	msg, err := svc.Post(context.Background(), groupID, "alice", "  hello  ")
	req.NoError(err)
	req.Equal("hello", msg.Body)
}

func TestPostRequiresMembership(t *testing.T) {
	req := require.New(t)
	svc, broadcaster, groupID := bootstrapChat(t)
	ctx := context.Background()

	// bob never joined the group
	_, err := svc.Post(ctx, groupID, "bob", "can I come too?")
	req.ErrorIs(err, ErrNotMember)

	feed, err := svc.List(ctx, groupID, nil)
	req.NoError(err)
	req.Empty(feed)
	req.Empty(broadcaster.calls)
}

func TestPostUnknownGroupAndSender(t *testing.T) {
	req := require.New(t)
	svc, _, groupID := bootstrapChat(t)
	ctx := context.Background()

	_, err := svc.Post(ctx, "no-such-group", "alice", "hello")
	req.ErrorIs(err, ErrGroupNotFound)

	_, err = svc.Post(ctx, groupID, "ghost", "hello")
	req.ErrorIs(err, ErrUserNotFound)
}

func TestPostBroadcastsOnSuccessOnly(t *testing.T) {
	req := require.New(t)
	svc, broadcaster, groupID := bootstrapChat(t)
	ctx := context.Background()

	msg, err := svc.Post(ctx, groupID, "alice", "live update")
	req.NoError(err)
	req.Len(broadcaster.calls, 1)
	req.Equal(msg.ID, broadcaster.calls[0].ID)

	_, err = svc.Post(ctx, groupID, "bob", "blocked")
	req.ErrorIs(err, ErrNotMember)
	req.Len(broadcaster.calls, 1)
}

func TestConcurrentPostsKeepFeedOrdered(t *testing.T) {
	req := require.New(t)
	svc, _, groupID := bootstrapChat(t)
	ctx := context.Background()

	const posts = 20
	errs := make(chan error, posts)
	var wg sync.WaitGroup
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Post(ctx, groupID, "alice", fmt.Sprintf("message %d", n))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	feed, err := svc.List(ctx, groupID, nil)
	req.NoError(err)
	req.Len(feed, posts)

	seen := make(map[int64]bool)
	for i, m := range feed {
		req.False(seen[m.Seq], "duplicate seq %d", m.Seq)
		seen[m.Seq] = true
		if i == 0 {
			continue
		}
		prev := feed[i-1]
		req.False(m.CreatedAt.Before(prev.CreatedAt),
			"feed not in non-decreasing timestamp order: %s before %s", prev.Body, m.Body)
		if m.CreatedAt.Equal(prev.CreatedAt) {
			req.Greater(m.Seq, prev.Seq)
		}
	}
}

func TestListSinceReturnsTail(t *testing.T) {
	req := require.New(t)
	svc, _, groupID := bootstrapChat(t)
	ctx := context.Background()

	_, err := svc.Post(ctx, groupID, "alice", "one")
	req.NoError(err)
	second, err := svc.Post(ctx, groupID, "alice", "two")
	req.NoError(err)

	// since is inclusive, so the boundary message always comes back
	feed, err := svc.List(ctx, groupID, &second.CreatedAt)
	req.NoError(err)
	req.NotEmpty(feed)
	req.Equal("two", feed[len(feed)-1].Body)
	for _, m := range feed {
		req.False(m.CreatedAt.Before(second.CreatedAt))
	}
}

func TestListUnknownGroupIsEmpty(t *testing.T) {
	req := require.New(t)
	svc, _, _ := bootstrapChat(t)

	feed, err := svc.List(context.Background(), "no-such-group", nil)
	req.NoError(err)
	req.Empty(feed)
}
