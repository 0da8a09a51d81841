package watch

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrStreamClosed = errors.New("stream closed")

// Stream is the set of watches held by one client connection. It owns only
// its subscription handles; the registry owns the watchers behind them.
type Stream struct {
	id  string
	reg *Registry

	mu     sync.Mutex
	subs   map[string]*Subscription
	closed bool
}

// NewStream creates a stream with a fresh subscriber id.
func NewStream(reg *Registry) *Stream {
	return &Stream{
		id:   uuid.NewString(),
		reg:  reg,
		subs: make(map[string]*Subscription),
	}
}

func (s *Stream) ID() string {
	return s.id
}

// Watch subscribes to path. A previous subscription of this stream to the
// same resolved path is released first, so a stream never holds two
// subscriptions for one path.
func (s *Stream) Watch(path string) (*Subscription, error) {
	key := s.reg.Resolve(path)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStreamClosed
	}

	if old, ok := s.subs[key]; ok {
		delete(s.subs, key)
		old.Close()
	}

	sub, err := s.reg.Subscribe(key, s.id)
	if err != nil {
		return nil, err
	}
	s.subs[key] = sub
	return sub, nil
}

// Unwatch releases the subscription to path, if any.
func (s *Stream) Unwatch(path string) {
	key := s.reg.Resolve(path)

	s.mu.Lock()
	sub, ok := s.subs[key]
	delete(s.subs, key)
	s.mu.Unlock()

	if ok {
		sub.Close()
	}
}

// Paths returns the resolved paths currently watched.
func (s *Stream) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.subs))
	for p := range s.subs {
		paths = append(paths, p)
	}
	return paths
}

// Close releases every subscription. Later calls do nothing.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}
