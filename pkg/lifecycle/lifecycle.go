// Package lifecycle coordinates the lifetime of a single batch run:
// startup hooks that must finish before work begins, an abortable run
// context, and shutdown hooks that drain once the run ends.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"
)

// Coordinator manages startup and shutdown hooks for one run.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelCauseFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	stopSignal func()
}

// ErrAborted is the cancellation cause recorded when the operator aborts.
var ErrAborted = errors.New("run aborted by operator")

// New creates a Coordinator whose context derives from parent.
func New(parent context.Context) *Coordinator {
	ctx, cancel := context.WithCancelCause(parent)
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the run context, cancelled on abort or shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// AbortOn cancels the run context with ErrAborted when any of the given
// signals arrives. Only the first signal is handled; a second one falls
// through to the default handler so the operator can force-quit.
func (c *Coordinator) AbortOn(sig ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sig...)

	done := make(chan struct{})
	c.stopSignal = sync.OnceFunc(func() {
		signal.Stop(ch)
		close(done)
	})

	go func() {
		select {
		case <-ch:
			c.cancel(ErrAborted)
			signal.Stop(ch)
		case <-done:
		}
	}()
}

// Abort cancels the run context with ErrAborted.
func (c *Coordinator) Abort() {
	c.cancel(ErrAborted)
}

// Aborted reports whether the run was cancelled by the operator.
func (c *Coordinator) Aborted() bool {
	return context.Cause(c.ctx) == ErrAborted
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown registers a function to run concurrently during shutdown.
// Hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// WaitForStartup blocks until all startup hooks have completed.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
}

// Shutdown cancels the context, releases signal handling, and waits for
// shutdown hooks within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel(context.Canceled)
	if c.stopSignal != nil {
		c.stopSignal()
	}

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
