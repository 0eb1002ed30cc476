package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/models"

	"github.com/stretchr/testify/require"
)

// fakeSource serves a swappable snapshot and counts pulls. An optional
// delay simulates a slow server; the delay deliberately ignores ctx so
// tests can observe what the agent does with a result that arrives after
// Stop.
type fakeSource struct {
	mu       sync.Mutex
	snapshot *Snapshot
	err      error
	delay    time.Duration

	pulls    atomic.Int32
	inFlight atomic.Int32
	overlap  atomic.Bool
	started  chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		snapshot: &Snapshot{Group: &models.Group{ID: "group-1", Name: "Hikers"}},
		started:  make(chan struct{}, 16),
	}
}

func (s *fakeSource) Pull(ctx context.Context) (*Snapshot, error) {
	if s.inFlight.Add(1) > 1 {
		s.overlap.Store(true)
	}
	defer s.inFlight.Add(-1)

	s.pulls.Add(1)
	select {
	case s.started <- struct{}{}:
	default:
	}

	s.mu.Lock()
	snapshot, err, delay := s.snapshot, s.err, s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *fakeSource) set(snapshot *Snapshot, err error) {
	s.mu.Lock()
	s.snapshot, s.err = snapshot, err
	s.mu.Unlock()
}

func TestStartPullsImmediately(t *testing.T) {
	req := require.New(t)
	source := newFakeSource()

	updates := make(chan *Snapshot, 1)
	agent := Start(source, Options{
		Interval: time.Hour,
		OnUpdate: func(s *Snapshot) { updates <- s },
	})
	defer agent.Stop()

	// the first pull must not wait for the first tick
	select {
	case snapshot := <-updates:
		req.Equal("group-1", snapshot.Group.ID)
	case <-time.After(time.Second):
		t.Fatal("no update after start")
	}

	req.NotNil(agent.Latest())
	req.Equal(int32(1), source.pulls.Load())
}

func TestRefreshPullsWithoutWaitingForTick(t *testing.T) {
	req := require.New(t)
	source := newFakeSource()

	updates := make(chan *Snapshot, 4)
	agent := Start(source, Options{
		Interval: time.Hour,
		OnUpdate: func(s *Snapshot) { updates <- s },
	})
	defer agent.Stop()

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("no initial update")
	}

	next := &Snapshot{
		Group:    &models.Group{ID: "group-1", Name: "Hikers"},
		Messages: []*models.Message{{ID: "msg-1", Body: "just sent"}},
	}
	source.set(next, nil)
	agent.Refresh()

	select {
	case snapshot := <-updates:
		req.Len(snapshot.Messages, 1)
		req.Equal("msg-1", snapshot.Messages[0].ID)
	case <-time.After(time.Second):
		t.Fatal("refresh did not trigger a pull")
	}

	// view is replaced wholesale, not merged
	req.Same(next, agent.Latest())
}

func TestRefreshCoalesces(t *testing.T) {
	req := require.New(t)
	source := newFakeSource()
	source.delay = 50 * time.Millisecond

	agent := Start(source, Options{Interval: time.Hour})

	for i := 0; i < 10; i++ {
		agent.Refresh()
	}
	time.Sleep(300 * time.Millisecond)
	agent.Stop()

	// initial pull plus at most a couple of coalesced refreshes
	req.LessOrEqual(source.pulls.Load(), int32(3))
}

func TestStopSilencesCallbacks(t *testing.T) {
	req := require.New(t)
	source := newFakeSource()

	var updates atomic.Int32
	agent := Start(source, Options{
		Interval: 10 * time.Millisecond,
		OnUpdate: func(*Snapshot) { updates.Add(1) },
	})

	time.Sleep(50 * time.Millisecond)
	agent.Stop()
	seen := updates.Load()
	req.Greater(seen, int32(0))

	time.Sleep(50 * time.Millisecond)
	req.Equal(seen, updates.Load())

	// Stop is idempotent
	agent.Stop()
}

func TestStopDiscardsInFlightResult(t *testing.T) {
	req := require.New(t)
	source := newFakeSource()
	source.delay = 100 * time.Millisecond

	var updates atomic.Int32
	agent := Start(source, Options{
		Interval:    time.Hour,
		PullTimeout: time.Hour,
		OnUpdate:    func(*Snapshot) { updates.Add(1) },
	})

	// wait until the initial pull is in flight, then stop underneath it
	select {
	case <-source.started:
	case <-time.After(time.Second):
		t.Fatal("pull never started")
	}
	agent.Stop()

	req.Equal(int32(0), updates.Load())
	req.Nil(agent.Latest())
}

func TestPullErrorsAreReportedAndNonFatal(t *testing.T) {
	req := require.New(t)
	source := newFakeSource()
	pullErr := errors.New("server unreachable")
	source.set(nil, pullErr)

	errs := make(chan error, 4)
	updates := make(chan *Snapshot, 4)
	agent := Start(source, Options{
		Interval: time.Hour,
		OnUpdate: func(s *Snapshot) { updates <- s },
		OnError:  func(err error) { errs <- err },
	})
	defer agent.Stop()

	select {
	case err := <-errs:
		req.ErrorIs(err, pullErr)
	case <-time.After(time.Second):
		t.Fatal("error never reported")
	}
	req.Nil(agent.Latest())

	// recovery: next pull succeeds and the loop is still alive
	source.set(&Snapshot{Group: &models.Group{ID: "group-1"}}, nil)
	agent.Refresh()

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("agent did not recover after a failed pull")
	}
}

func TestPullsNeverOverlap(t *testing.T) {
	req := require.New(t)
	source := newFakeSource()
	source.delay = 30 * time.Millisecond

	agent := Start(source, Options{Interval: 10 * time.Millisecond})
	for i := 0; i < 5; i++ {
		agent.Refresh()
		time.Sleep(20 * time.Millisecond)
	}
	agent.Stop()

	req.False(source.overlap.Load())
}
