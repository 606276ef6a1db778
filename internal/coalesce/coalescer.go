// ABOUTME: Keyed write coalescer with a trailing debounce window
// ABOUTME: Merges rapid updates per key into one flush; Close always drains
package coalesce

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Schedule after Close.
var ErrClosed = errors.New("coalesce: scheduler closed")

// Coalescer batches rapid updates to the same key into a single flush.
// The first update to a key starts its window; later updates merge into the
// pending value without resetting the timer, so a steady stream still
// flushes once per window rather than being deferred indefinitely.
// Keys are independent: a hot key never delays another key's flush.
//
// Flush errors go to the onError callback so the producing side can react
// without blocking. A Coalescer must be Closed when the producer finishes;
// Close drains every pending value exactly once.
type Coalescer[K comparable, V any] struct {
	window  time.Duration
	merge   func(old, next V) V
	flush   func(key K, value V) error
	onError func(key K, err error)

	mu      sync.Mutex
	pending map[K]V
	timers  map[K]*time.Timer
	closed  bool
}

// New creates a coalescer. merge folds a newer update into the pending value
// for the key; flush persists the merged value once the window closes.
// onError may be nil.
func New[K comparable, V any](
	window time.Duration,
	merge func(old, next V) V,
	flush func(key K, value V) error,
	onError func(key K, err error),
) *Coalescer[K, V] {
	if onError == nil {
		onError = func(K, error) {}
	}
	return &Coalescer[K, V]{
		window:  window,
		merge:   merge,
		flush:   flush,
		onError: onError,
		pending: make(map[K]V),
		timers:  make(map[K]*time.Timer),
	}
}

// Schedule records an update for key. If an update is already pending the two
// are merged and the existing window keeps running, so a steady stream of
// updates produces one flush per window rather than one per update.
func (c *Coalescer[K, V]) Schedule(key K, value V) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if old, ok := c.pending[key]; ok {
		c.pending[key] = c.merge(old, value)
		c.mu.Unlock()
		return nil
	}
	c.pending[key] = value
	c.timers[key] = time.AfterFunc(c.window, func() {
		if err := c.Flush(key); err != nil {
			c.onError(key, err)
		}
	})
	c.mu.Unlock()
	return nil
}

// Flush synchronously writes the pending value for key, if any. Flushing a
// key with nothing pending is a no-op.
func (c *Coalescer[K, V]) Flush(key K) error {
	value, ok := c.take(key)
	if !ok {
		return nil
	}
	return c.flush(key, value)
}

// FlushAll synchronously drains every pending key. The first flush error is
// returned after all keys have been attempted; per-key errors also reach the
// onError callback via Flush callers, but FlushAll reports them directly.
func (c *Coalescer[K, V]) FlushAll() error {
	var firstErr error
	for {
		key, value, ok := c.takeAny()
		if !ok {
			break
		}
		if err := c.flush(key, value); err != nil {
			c.onError(key, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Close stops accepting updates and drains everything still pending. Safe to
// call more than once.
func (c *Coalescer[K, V]) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.FlushAll()
}

// Pending reports how many keys currently have an undelivered update.
func (c *Coalescer[K, V]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Coalescer[K, V]) take(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.pending[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(c.pending, key)
	if t, ok := c.timers[key]; ok {
		t.Stop()
		delete(c.timers, key)
	}
	return value, true
}

func (c *Coalescer[K, V]) takeAny() (K, V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, value := range c.pending {
		delete(c.pending, key)
		if t, ok := c.timers[key]; ok {
			t.Stop()
			delete(c.timers, key)
		}
		return key, value, true
	}
	var zeroK K
	var zeroV V
	return zeroK, zeroV, false
}
