package cache

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ChunkFunc processes one chunk of items.
type ChunkFunc[T any] func(ctx context.Context, chunk []T) error

// StreamProcessor chunks a slice and processes the chunks with a bounded
// concurrency (spec §4.I "Stream processor"), the engine's one sanctioned
// internal-parallelism suspension point alongside BatchLoader's window
// timer (spec §5).
type StreamProcessor[T any] struct {
	chunkSize   int
	concurrency int
}

// NewStreamProcessor builds a processor chunking into groups of chunkSize,
// run with at most concurrency chunks in flight.
func NewStreamProcessor[T any](chunkSize, concurrency int) *StreamProcessor[T] {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &StreamProcessor[T]{chunkSize: chunkSize, concurrency: concurrency}
}

// Process splits items into chunks and runs fn over them with bounded
// concurrency, returning the first error encountered (remaining in-flight
// chunks are cancelled via ctx).
func (s *StreamProcessor[T]) Process(ctx context.Context, items []T, fn ChunkFunc[T]) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for start := 0; start < len(items); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]
		g.Go(func() error {
			return fn(gctx, chunk)
		})
	}
	return g.Wait()
}
