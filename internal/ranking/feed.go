package ranking

import (
	"context"
	"sync"
)

// Feed holds the latest published result of a session. Each pass takes a
// ticket; only the newest ticket may publish, so a slow stale pass can never
// overwrite a newer one. Starting a pass cancels the one before it.
type Feed struct {
	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	current    Result
}

// Ticket identifies one pass of a feed.
type Ticket struct {
	generation uint64
}

// NewFeed creates an idle feed.
func NewFeed() *Feed {
	return &Feed{current: Result{Status: StatusIdle, Products: []*Product{}}}
}

// Begin starts a new pass. The returned context is cancelled when a newer pass
// begins or the feed is closed. Previously published products stay visible
// while the feed reports loading.
func (f *Feed) Begin(parent context.Context) (context.Context, Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
	}
	f.generation++

	ctx, cancel := context.WithCancel(parent)
	f.cancel = cancel
	f.current.Status = StatusLoading

	return ctx, Ticket{generation: f.generation}
}

// Publish stores r if t is still the newest ticket. It reports whether r was kept.
func (f *Feed) Publish(t Ticket, r *Result) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t.generation != f.generation {
		return false
	}
	f.current = *r
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	return true
}

// Abandon marks a pass that ended without a result. The feed leaves the
// loading state only if t is still the newest ticket.
func (f *Feed) Abandon(t Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t.generation != f.generation {
		return
	}
	if f.current.Status == StatusLoading {
		f.current.Status = StatusIdle
		if len(f.current.Products) > 0 {
			f.current.Status = StatusReady
		}
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// Current returns the latest result.
func (f *Feed) Current() Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Close cancels any in-flight pass and rejects its publication.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.generation++
}
