package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// BatchLoadFunc resolves a batch of keys in one call.
type BatchLoadFunc[K comparable, V any] func(keys []K) (map[K]V, error)

type batchResult[V any] struct {
	v   V
	err error
}

// BatchLoader collects keys requested within a short window and resolves
// them with a single loader call, honouring a max batch size; a key
// missing from the loader's result rejects only that request (spec §4.I
// "Batch loader").
type BatchLoader[K comparable, V any] struct {
	loadFn   BatchLoadFunc[K, V]
	window   time.Duration
	maxBatch int

	mu      sync.Mutex
	pending map[K][]chan batchResult[V]
	timer   *time.Timer
}

// NewBatchLoader builds a BatchLoader flushing after window or once
// maxBatch distinct keys are pending, whichever comes first.
func NewBatchLoader[K comparable, V any](loadFn BatchLoadFunc[K, V], window time.Duration, maxBatch int) *BatchLoader[K, V] {
	if maxBatch <= 0 {
		maxBatch = 1 << 30
	}
	return &BatchLoader[K, V]{loadFn: loadFn, window: window, maxBatch: maxBatch}
}

// Load enqueues key into the current batch window and blocks for its
// result, or until ctx is cancelled.
func (b *BatchLoader[K, V]) Load(ctx context.Context, key K) (V, error) {
	ch := make(chan batchResult[V], 1)

	b.mu.Lock()
	if b.pending == nil {
		b.pending = make(map[K][]chan batchResult[V])
	}
	b.pending[key] = append(b.pending[key], ch)
	shouldFlushNow := len(b.pending) >= b.maxBatch
	if shouldFlushNow {
		if b.timer != nil {
			b.timer.Stop()
			b.timer = nil
		}
	} else if b.timer == nil {
		b.timer = time.AfterFunc(b.window, b.flush)
	}
	b.mu.Unlock()

	if shouldFlushNow {
		go b.flush()
	}

	var zero V
	select {
	case res := <-ch:
		return res.v, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (b *BatchLoader[K, V]) flush() {
	b.mu.Lock()
	groups := b.pending
	b.pending = nil
	b.timer = nil
	b.mu.Unlock()

	if len(groups) == 0 {
		return
	}

	keys := make([]K, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	values, err := b.loadFn(keys)
	for k, chans := range groups {
		var res batchResult[V]
		if err != nil {
			res = batchResult[V]{err: err}
		} else if v, ok := values[k]; ok {
			res = batchResult[V]{v: v}
		} else {
			res = batchResult[V]{err: fmt.Errorf("batch loader: key %v missing from result", k)}
		}
		for _, ch := range chans {
			ch <- res
		}
	}
}
