package cache

import "sync"

// Deferred loads a value once on first access, deduplicating concurrent
// requests into a single loader call, with an explicit Reset to force a
// reload (spec §4.I "Deferred value").
type Deferred[T any] struct {
	loader func() (T, error)

	mu       sync.Mutex
	loaded   bool
	value    T
	err      error
	inflight chan struct{}
}

// NewDeferred builds a Deferred around loader.
func NewDeferred[T any](loader func() (T, error)) *Deferred[T] {
	return &Deferred[T]{loader: loader}
}

// Get returns the loaded value, running loader on the first call (or the
// first call after a Reset) and joining any in-flight load otherwise.
func (d *Deferred[T]) Get() (T, error) {
	d.mu.Lock()
	if d.loaded {
		v, err := d.value, d.err
		d.mu.Unlock()
		return v, err
	}
	if d.inflight != nil {
		ch := d.inflight
		d.mu.Unlock()
		<-ch
		d.mu.Lock()
		v, err := d.value, d.err
		d.mu.Unlock()
		return v, err
	}
	ch := make(chan struct{})
	d.inflight = ch
	d.mu.Unlock()

	v, err := d.loader()

	d.mu.Lock()
	d.value, d.err, d.loaded = v, err, true
	d.inflight = nil
	d.mu.Unlock()
	close(ch)
	return v, err
}

// Reset invalidates the loaded value so the next Get reloads it.
func (d *Deferred[T]) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	d.loaded = false
	d.value = zero
	d.err = nil
}
