package watch

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"xide/metrics"
)

const DefaultBufferSize = 256

// Options configures a Registry.
type Options struct {
	// BufferSize is the number of undelivered events kept per subscriber
	// before new ones are dropped for that subscriber.
	BufferSize int
	// Resolve normalizes watched paths. Defaults to filepath.Abs.
	Resolve func(string) string
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Stats is a snapshot of registry counters.
type Stats struct {
	ActiveWatchers    int   `json:"activeWatchers"`
	WatchersCreated   int64 `json:"watchersCreated"`
	WatchersDestroyed int64 `json:"watchersDestroyed"`
	EventsDelivered   int64 `json:"eventsDelivered"`
	EventsDropped     int64 `json:"eventsDropped"`
}

// Registry shares one Source per watched path among all its subscribers and
// closes the source when the last subscriber leaves.
//
// mu guards only the map. Opening and closing sources happens under the
// per-path lock, so work on different paths never waits on each other.
type Registry struct {
	open       Opener
	bufferSize int
	resolve    func(string) string
	logger     *zap.Logger
	metrics    *metrics.Metrics

	mu      sync.Mutex
	watches map[string]*watcher

	created   atomic.Int64
	destroyed atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
}

type watcher struct {
	path string

	mu     sync.Mutex
	subs   map[string]*Subscription
	source Source
	closed bool
}

func NewRegistry(open Opener, opts Options) *Registry {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Resolve == nil {
		opts.Resolve = absPath
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Registry{
		open:       open,
		bufferSize: opts.BufferSize,
		resolve:    opts.Resolve,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		watches:    make(map[string]*watcher),
	}
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// Resolve returns the key path is watched under.
func (r *Registry) Resolve(path string) string {
	return r.resolve(path)
}

// Subscribe adds subscriberID to the watchers of path, starting the watcher
// if it is the first one. The watcher is running when Subscribe returns.
// Subscribing again with the same id replaces the earlier subscription.
func (r *Registry) Subscribe(path, subscriberID string) (*Subscription, error) {
	path = r.resolve(path)

	for {
		w := r.lookupOrCreate(path)

		w.mu.Lock()
		if w.closed {
			// Torn down between lookup and lock; retry with a fresh entry.
			w.mu.Unlock()
			continue
		}

		if w.source == nil {
			src, err := r.open(path, func(ev ChangeEvent) { r.fanout(w, ev) })
			if err != nil {
				w.closed = true
				w.mu.Unlock()
				r.forget(w)
				r.logger.Info("failed to start watcher", zap.String("path", path), zap.Error(err))
				return nil, err
			}
			w.source = src
			r.created.Add(1)
			r.metrics.WatcherOpened()
			r.logger.Debug("watcher started", zap.String("path", path))
		}

		sub := newSubscription(r, path, subscriberID, r.bufferSize)
		old := w.subs[subscriberID]
		w.subs[subscriberID] = sub
		w.mu.Unlock()

		if old != nil {
			old.close()
		}
		return sub, nil
	}
}

// Unsubscribe removes subscriberID from path. Unknown pairs are ignored.
func (r *Registry) Unsubscribe(path, subscriberID string) {
	r.remove(r.resolve(path), subscriberID, nil)
}

func (r *Registry) release(sub *Subscription) {
	r.remove(sub.path, sub.id, sub)
}

// remove drops the subscription of id on path and destroys the watcher once
// it has no subscribers. A non-nil want only matches that exact handle.
func (r *Registry) remove(path, id string, want *Subscription) {
	r.mu.Lock()
	w := r.watches[path]
	r.mu.Unlock()
	if w == nil {
		if want != nil {
			want.close()
		}
		return
	}

	w.mu.Lock()
	sub, ok := w.subs[id]
	if !ok || (want != nil && sub != want) {
		w.mu.Unlock()
		if want != nil {
			want.close()
		}
		return
	}
	delete(w.subs, id)

	var src Source
	if len(w.subs) == 0 && !w.closed {
		w.closed = true
		src = w.source
		r.forget(w)
	}
	w.mu.Unlock()

	sub.close()
	if src != nil {
		r.closeSource(path, src)
	}
}

// Close tears down every watcher and ends all subscriptions.
func (r *Registry) Close() {
	r.mu.Lock()
	watches := make([]*watcher, 0, len(r.watches))
	for _, w := range r.watches {
		watches = append(watches, w)
	}
	r.watches = make(map[string]*watcher)
	r.mu.Unlock()

	for _, w := range watches {
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			continue
		}
		w.closed = true
		subs := w.subs
		w.subs = make(map[string]*Subscription)
		src := w.source
		w.mu.Unlock()

		for _, sub := range subs {
			sub.close()
		}
		if src != nil {
			r.closeSource(w.path, src)
		}
	}
}

// Stats returns a snapshot of the registry counters.
func (r *Registry) Stats() Stats {
	created, destroyed := r.created.Load(), r.destroyed.Load()
	return Stats{
		ActiveWatchers:    int(created - destroyed),
		WatchersCreated:   created,
		WatchersDestroyed: destroyed,
		EventsDelivered:   r.delivered.Load(),
		EventsDropped:     r.dropped.Load(),
	}
}

// SubscriberCount returns the number of subscribers on path.
func (r *Registry) SubscriberCount(path string) int {
	r.mu.Lock()
	w := r.watches[r.resolve(path)]
	r.mu.Unlock()
	if w == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

func (r *Registry) lookupOrCreate(path string) *watcher {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.watches[path]
	if !ok {
		w = &watcher{path: path, subs: make(map[string]*Subscription)}
		r.watches[path] = w
	}
	return w
}

func (r *Registry) forget(w *watcher) {
	r.mu.Lock()
	if r.watches[w.path] == w {
		delete(r.watches, w.path)
	}
	r.mu.Unlock()
}

func (r *Registry) closeSource(path string, src Source) {
	if err := src.Close(); err != nil {
		r.logger.Debug("error closing watcher", zap.String("path", path), zap.Error(err))
	}
	r.destroyed.Add(1)
	r.metrics.WatcherClosed()
	r.logger.Debug("watcher stopped", zap.String("path", path))
}

// fanout delivers ev to every current subscriber of w.
func (r *Registry) fanout(w *watcher, ev ChangeEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sub := range w.subs {
		if sub.deliver(ev) {
			r.delivered.Add(1)
			r.metrics.EventDelivered()
			continue
		}
		r.dropped.Add(1)
		r.metrics.EventDropped()
		r.logger.Warn("subscriber buffer full, dropping event",
			zap.String("path", w.path),
			zap.String("subscriber", sub.id),
			zap.String("event", ev.Path))
	}
}
