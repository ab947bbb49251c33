package lifecycle_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/proctor/pkg/lifecycle"
)

func TestReadiness(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}

	lc.WaitForStartup()
	if !lc.Ready() {
		t.Error("should be ready after WaitForStartup")
	}

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if lc.Ready() {
		t.Error("should not be ready after Shutdown")
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

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

func TestDrainRunsBeforeShutdownHooks(t *testing.T) {
	lc := lifecycle.New()

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		record("close")
	})
	lc.OnDrain(func(ctx context.Context) {
		if lc.Context().Err() != nil {
			t.Error("context cancelled before drain")
		}
		if _, ok := ctx.Deadline(); !ok {
			t.Error("drain context has no deadline")
		}
		record("drain-1")
	})
	lc.OnDrain(func(context.Context) {
		record("drain-2")
	})

	lc.WaitForStartup()
	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	want := []string{"drain-1", "drain-2", "close"}
	if !slices.Equal(order, want) {
		t.Errorf("order: got %v, want %v", order, want)
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestContextCancelledOnShutdown(t *testing.T) {
	lc := lifecycle.New()
	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	select {
	case <-lc.Context().Done():
	default:
		t.Error("context should be cancelled after shutdown")
	}
}
