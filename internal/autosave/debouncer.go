// Package autosave batches rapid successive saves of the same record
// into one write after a quiet period, mirroring the autosave behavior
// of the feedback editor.
package autosave

import (
	"sync"
	"time"
)

// Debouncer delays a save callback until quiet time has passed without
// another Queue call for the same key. Later values replace earlier
// ones, so only the latest value per key is ever saved.
type Debouncer[K comparable, V any] struct {
	quiet time.Duration
	save  func(key K, value V)

	mu      sync.Mutex
	pending map[K]*pendingSave[V]
	closed  bool
}

type pendingSave[V any] struct {
	value V
	timer *time.Timer
}

// New creates a debouncer that calls save after quiet time has elapsed
// since the last Queue for a key
func New[K comparable, V any](quiet time.Duration, save func(key K, value V)) *Debouncer[K, V] {
	return &Debouncer[K, V]{
		quiet:   quiet,
		save:    save,
		pending: make(map[K]*pendingSave[V]),
	}
}

// Queue schedules value to be saved under key once the quiet period
// passes. Re-queueing the same key replaces the value and restarts the
// period. Queue is a no-op after Close.
func (d *Debouncer[K, V]) Queue(key K, value V) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if p, ok := d.pending[key]; ok {
		p.value = value
		p.timer.Reset(d.quiet)
		return
	}

	p := &pendingSave[V]{value: value}
	p.timer = time.AfterFunc(d.quiet, func() {
		d.fire(key)
	})
	d.pending[key] = p
}

// fire runs the save for a key if it is still pending
func (d *Debouncer[K, V]) fire(key K) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if ok {
		d.save(key, p.value)
	}
}

// Flush saves all pending values immediately
func (d *Debouncer[K, V]) Flush() {
	d.mu.Lock()
	pending := d.pending
	d.pending = make(map[K]*pendingSave[V])
	for _, p := range pending {
		p.timer.Stop()
	}
	d.mu.Unlock()

	for key, p := range pending {
		d.save(key, p.value)
	}
}

// Close flushes pending values and rejects further Queue calls
func (d *Debouncer[K, V]) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.Flush()
}
