package watch

import (
	"context"
	"iter"
	"sync"
)

// Subscription is one subscriber's handle on a watched path. Events arrive on
// a buffered channel that is closed when the subscription ends.
type Subscription struct {
	path string
	id   string
	reg  *Registry

	mu     sync.Mutex
	events chan ChangeEvent
	closed bool
}

func newSubscription(reg *Registry, path, id string, size int) *Subscription {
	return &Subscription{
		path:   path,
		id:     id,
		reg:    reg,
		events: make(chan ChangeEvent, size),
	}
}

// Path returns the resolved watched path.
func (s *Subscription) Path() string { return s.path }

// ID returns the subscriber id.
func (s *Subscription) ID() string { return s.id }

// Events yields change events until the subscription is closed.
func (s *Subscription) Events() <-chan ChangeEvent {
	return s.events
}

// Seq yields change events until the subscription is closed or ctx is done.
func (s *Subscription) Seq(ctx context.Context) iter.Seq[ChangeEvent] {
	return func(yield func(ChangeEvent) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-s.events:
				if !ok || !yield(ev) {
					return
				}
			}
		}
	}
}

// Close leaves the watched path. It is safe to call more than once.
func (s *Subscription) Close() {
	s.reg.release(s)
}

// deliver hands ev to the subscriber without blocking. It reports false when
// the buffer was full and the event was dropped.
func (s *Subscription) deliver(ev ChangeEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}
