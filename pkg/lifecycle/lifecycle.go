// Package lifecycle coordinates startup, drain, and shutdown of long-lived subsystems.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator manages startup, drain, and shutdown hooks for the application.
//
// Shutdown runs in two phases. Drain hooks run first, sequentially and in
// registration order, while the coordinator context is still live; they are
// where in-flight work is flushed to subsystems that have not yet closed.
// The context is then cancelled and shutdown hooks run concurrently.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	ready      atomic.Bool

	drainMu sync.Mutex
	drains  []func(context.Context)
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context, cancelled once draining completes.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnDrain registers a function to run before the context is cancelled.
// The supplied context carries the remaining shutdown deadline.
func (c *Coordinator) OnDrain(fn func(ctx context.Context)) {
	c.drainMu.Lock()
	c.drains = append(c.drains, fn)
	c.drainMu.Unlock()
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// Ready returns true after all startup hooks have completed.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// WaitForStartup blocks until all startup hooks have completed and sets the ready flag.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.ready.Store(true)
}

// Shutdown drains, cancels the context, and waits for shutdown hooks,
// all within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c.drainMu.Lock()
	drains := c.drains
	c.drains = nil
	c.drainMu.Unlock()

	for _, fn := range drains {
		fn(ctx)
	}

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
