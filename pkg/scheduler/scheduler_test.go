package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func startLoop(t *testing.T, opts ...Option) (*Loop, context.CancelFunc) {
	t.Helper()
	l := NewLoop(opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l, cancel
}

func TestLoop_RunsTasksInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 50; i++ {
		i := i
		if err := l.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Post failed: %v", err)
		}
	}

	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 50 {
		t.Fatalf("Expected 50 tasks, got %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("Task %d ran at position %d", v, i)
		}
	}
}

func TestLoop_RenderAfterDirtyBatch(t *testing.T) {
	var renders atomic.Int32
	l, _ := startLoop(t, WithRender(func() { renders.Add(1) }))

	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatal(err)
	}
	if renders.Load() != 0 {
		t.Errorf("Expected no render for a clean batch, got %d", renders.Load())
	}

	if err := l.Do(context.Background(), l.MarkDirty); err != nil {
		t.Fatal(err)
	}
	// the render runs after the batch that dirtied it
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatal(err)
	}
	if renders.Load() != 1 {
		t.Errorf("Expected 1 render, got %d", renders.Load())
	}
}

func TestLoop_FrameCallback(t *testing.T) {
	var frames atomic.Int32
	l, _ := startLoop(t,
		WithFrameInterval(time.Millisecond),
		WithFrame(func() { frames.Add(1) }))

	deadline := time.Now().Add(2 * time.Second)
	for frames.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if frames.Load() < 3 {
		t.Errorf("Expected at least 3 frames, got %d", frames.Load())
	}
	if l.Frames() == 0 {
		t.Error("Frames counter not advanced")
	}
}

func TestLoop_PanicRecovery(t *testing.T) {
	var handled atomic.Int32
	l, _ := startLoop(t, WithErrorHandler(func(err interface{}) bool {
		handled.Add(1)
		return true
	}))

	_ = l.Post(func() { panic("boom") })
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Loop should survive a panic: %v", err)
	}
	if handled.Load() != 1 {
		t.Errorf("Expected 1 handled panic, got %d", handled.Load())
	}
}

func TestLoop_ErrorHandlerStops(t *testing.T) {
	l, _ := startLoop(t, WithErrorHandler(func(err interface{}) bool { return false }))

	_ = l.Post(func() { panic("fatal") })

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Loop did not stop")
	}
	if err := l.Post(func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("Expected ErrStopped, got %v", err)
	}
}

func TestLoop_StopsOnCancel(t *testing.T) {
	l, cancel := startLoop(t)
	cancel()

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Loop did not stop on cancel")
	}
	if l.IsRunning() {
		t.Error("Loop still reports running")
	}
}

func TestLoop_RunTwice(t *testing.T) {
	l, _ := startLoop(t)
	// wait until the first Run has started
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatal(err)
	}
	if err := l.Run(context.Background()); err == nil {
		t.Error("Expected second Run to fail")
	}
}
