package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/auditor/pkg/lifecycle"
)

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New(context.Background())

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() {
			count.Add(1)
		})
	}

	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
}

func TestShutdownHooksExecute(t *testing.T) {
	lc := lifecycle.New(context.Background())

	var cleaned atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New(context.Background())

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestAbort(t *testing.T) {
	lc := lifecycle.New(context.Background())

	if lc.Aborted() {
		t.Fatal("fresh coordinator reports aborted")
	}

	lc.Abort()

	select {
	case <-lc.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after Abort")
	}

	if !lc.Aborted() {
		t.Error("Aborted() = false after Abort")
	}
	if !errors.Is(context.Cause(lc.Context()), lifecycle.ErrAborted) {
		t.Errorf("cause = %v, want ErrAborted", context.Cause(lc.Context()))
	}
}

func TestShutdownIsNotAbort(t *testing.T) {
	lc := lifecycle.New(context.Background())

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if lc.Aborted() {
		t.Error("normal shutdown reported as abort")
	}
}
