// Package signal ties the root context to SIGINT/SIGTERM and lets critical
// sections defer that cancellation until they finish.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	// mu guards depth and pending.
	mu sync.Mutex
	// depth counts nested critical sections.
	depth int
	// pending is the cancellation held back by an open critical section.
	pending context.CancelFunc
)

// WithSignalCancel returns a context that is cancelled on SIGINT or SIGTERM.
// The returned cancel function releases the signal handler.
func WithSignalCancel(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			mu.Lock()
			if depth > 0 {
				pending = cancel
				mu.Unlock()
				return
			}
			mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// Critical runs fn with signal cancellation deferred. A signal received while
// fn runs cancels the root context once the outermost critical section returns.
// fn should use a context that is not derived from the signal context.
func Critical(fn func() error) error {
	mu.Lock()
	depth++
	mu.Unlock()

	defer func() {
		mu.Lock()
		defer mu.Unlock()
		depth--
		if depth == 0 && pending != nil {
			pending()
			pending = nil
		}
	}()

	return fn()
}
