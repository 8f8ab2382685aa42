// Package batcher groups items into rate limited writes.
package batcher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// Batcher buffers items and hands them to the flush callback in chunks of flushSize, or
// sooner when flushInterval has passed since the last flush. Flushes run on the caller's
// goroutine so their errors reach the caller. A failed chunk stays buffered for the next
// Add or Flush.
type Batcher[T any] struct {
	mu            sync.Mutex
	flushCallback func(context.Context, []T) error
	buf           []T
	flushSize     int
	flushInterval time.Duration
	lastFlush     time.Time
	rl            ratelimit.Limiter
	logger        *zap.Logger
	now           func() time.Time
}

// New constructs a Batcher. rps bounds flushes per second.
func New[T any](logger *zap.Logger, flushCallback func(context.Context, []T) error, flushSize int, flushInterval time.Duration, rps int) *Batcher[T] {
	if flushSize < 1 {
		flushSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batcher[T]{
		logger:        logger,
		flushCallback: flushCallback,
		buf:           make([]T, 0, flushSize),
		flushSize:     flushSize,
		flushInterval: flushInterval,
		lastFlush:     time.Now(),
		rl:            ratelimit.New(rps),
		now:           time.Now,
	}
}

// Add buffers items and flushes every full chunk.
func (b *Batcher[T]) Add(ctx context.Context, items ...T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, items...)
	for len(b.buf) >= b.flushSize {
		if err := b.flush(ctx, b.flushSize); err != nil {
			return err
		}
	}
	if b.flushInterval > 0 && len(b.buf) > 0 && b.now().Sub(b.lastFlush) >= b.flushInterval {
		return b.flush(ctx, len(b.buf))
	}
	return nil
}

// Flush writes everything still buffered.
func (b *Batcher[T]) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.buf) > 0 {
		n := len(b.buf)
		if n > b.flushSize {
			n = b.flushSize
		}
		if err := b.flush(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of buffered items.
func (b *Batcher[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

func (b *Batcher[T]) flush(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.rl.Take()
	chunk := b.buf[:n:n]
	if err := b.flushCallback(ctx, chunk); err != nil {
		b.logger.Error("batch not flushed", zap.Int("size", n), zap.Error(err))
		return err
	}
	b.logger.Debug("batch flushed", zap.Int("size", n))

	rest := make([]T, len(b.buf)-n, b.flushSize+len(b.buf)-n)
	copy(rest, b.buf[n:])
	b.buf = rest
	b.lastFlush = b.now()
	return nil
}
