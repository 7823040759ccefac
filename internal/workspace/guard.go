package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

// ErrPanicked is returned for a guarded call whose function panicked
var ErrPanicked = errors.New("guarded call panicked")

// Guard serializes access to shared workspace state and runs the work on a
// bounded pool of worker goroutines so blocking store calls never run on the
// caller's goroutine.
//
// A panic inside guarded work poisons the guard. Poisoning is recoverable:
// later callers log a warning and proceed against possibly stale state.
type Guard struct {
	mu       sync.Mutex
	pool     *ants.Pool
	poisoned atomic.Bool
	logger   *slog.Logger
}

// NewGuard creates a guard backed by a pool of size workers.
// A size below 1 defaults to runtime.NumCPU().
func NewGuard(size int, logger *slog.Logger) (*Guard, error) {
	if size < 1 {
		size = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Guard{pool: pool, logger: logger}, nil
}

// Do runs fn under the guard's lock on a pool worker and waits for it.
// A context that is already done fails fast; once submitted, the work
// always runs to completion so fn never outlives the call.
func (g *Guard) Do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	err := g.pool.Submit(func() {
		done <- g.run(fn)
	})
	if err != nil {
		return fmt.Errorf("failed to submit guarded work: %w", err)
	}

	return <-done
}

func (g *Guard) run(fn func() error) (err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.poisoned.Load() {
		g.logger.Warn("workspace guard poisoned by earlier panic, proceeding")
	}

	defer func() {
		if r := recover(); r != nil {
			g.poisoned.Store(true)
			g.logger.Error("panic in guarded work", slog.Any("panic", r))
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()

	return fn()
}

// Poisoned reports whether some guarded call has panicked
func (g *Guard) Poisoned() bool {
	return g.poisoned.Load()
}

// Release stops the worker pool. Do fails after Release.
func (g *Guard) Release() {
	g.pool.Release()
}
