// Package poll implements the client-side polling loop that keeps a
// waiting-room view in sync with the server without a persistent
// connection. Each pull replaces the local snapshot wholesale; the local
// view is a disposable cache with no authority of its own.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
)

// DefaultInterval is the cadence the web client polls at
const DefaultInterval = 2 * time.Second

// Snapshot is one authoritative view of a group: its record, the profiles
// of its current members and the full message feed.
type Snapshot struct {
	Group    *models.Group
	Members  []*models.User
	Messages []*models.Message
}

// Source produces the authoritative snapshot for one view
type Source interface {
	Pull(ctx context.Context) (*Snapshot, error)
}

// Options configures an Agent. OnUpdate receives every successful pull's
// snapshot; OnError receives every failed pull's error. A failed pull is
// never fatal: the agent simply waits for the next tick.
type Options struct {
	Interval    time.Duration
	PullTimeout time.Duration
	OnUpdate    func(*Snapshot)
	OnError     func(error)
}

// Agent runs the polling loop for one open view. All pulls happen on a
// single goroutine, so pulls for the same view never overlap. Stop cancels
// the loop deterministically: once it returns, no callback fires and an
// in-flight pull's result is discarded.
type Agent struct {
	source  Source
	opts    Options
	ctx     context.Context
	cancel  context.CancelFunc
	refresh chan struct{}
	done    chan struct{}
	stop    sync.Once

	mu     sync.RWMutex
	latest *Snapshot
}

// Start activates the agent: one immediate pull, then one pull per interval
// until Stop is called.
func Start(source Source, opts Options) *Agent {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.PullTimeout <= 0 {
		opts.PullTimeout = opts.Interval
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &Agent{
		source:  source,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		refresh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	go a.run()

	return a
}

// Refresh schedules an out-of-band immediate pull. Callers invoke it after
// a successful mutation so the view reflects the user's own action without
// waiting for the next scheduled tick. Pending refreshes coalesce.
func (a *Agent) Refresh() {
	select {
	case a.refresh <- struct{}{}:
	default:
	}
}

// Latest returns the most recent snapshot, or nil before the first
// successful pull.
func (a *Agent) Latest() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// Stop cancels the polling loop and waits for it to exit. Safe to call
// more than once.
func (a *Agent) Stop() {
	a.stop.Do(func() {
		a.cancel()
		<-a.done
	})
}

func (a *Agent) run() {
	defer close(a.done)

	ticker := time.NewTicker(a.opts.Interval)
	defer ticker.Stop()

	a.pull()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.refresh:
			a.pull()
		case <-ticker.C:
			a.pull()
		}
	}
}

// pull fetches one snapshot and replaces the view. A pull outliving Stop
// has its result dropped before any callback is invoked.
func (a *Agent) pull() {
	ctx, cancel := context.WithTimeout(a.ctx, a.opts.PullTimeout)
	defer cancel()

	snapshot, err := a.source.Pull(ctx)

	if a.ctx.Err() != nil {
		return
	}

	if err != nil {
		if a.opts.OnError != nil {
			a.opts.OnError(err)
		}
		return
	}

	a.mu.Lock()
	a.latest = snapshot
	a.mu.Unlock()

	if a.opts.OnUpdate != nil {
		a.opts.OnUpdate(snapshot)
	}
}
