package watch

import (
	"context"
	"testing"
	"time"
)

func TestQueuePushPopFIFOOrder(t *testing.T) {
	t.Parallel()

	q := NewQueue[int]()
	for _, v := range []int{1, 2, 3} {
		if err := q.Push(v); err != nil {
			t.Fatalf("Push(%d): %v", v, err)
		}
	}

	ctx := context.Background()
	for _, want := range []int{1, 2, 3} {
		got, ok := q.Pop(ctx)
		if !ok {
			t.Fatalf("Pop: ok = false, want true")
		}
		if got != want {
			t.Fatalf("Pop = %d, want %d", got, want)
		}
	}
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	t.Parallel()

	q := NewQueue[string]()
	ctx := context.Background()

	type result struct {
		v  string
		ok bool
	}
	done := make(chan result, 1)
	go func() {
		v, ok := q.Pop(ctx)
		done <- result{v, ok}
	}()

	select {
	case <-done:
		t.Fatal("Pop returned before any Push")
	case <-time.After(50 * time.Millisecond):
	}

	if err := q.Push("hello"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	select {
	case r := <-done:
		if !r.ok || r.v != "hello" {
			t.Fatalf("Pop = (%q, %v), want (\"hello\", true)", r.v, r.ok)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop never unblocked after Push")
	}
}

func TestQueueCloseDrainsAndWakesPop(t *testing.T) {
	t.Parallel()

	q := NewQueue[int]()
	if err := q.Push(1); err != nil {
		t.Fatalf("Push: %v", err)
	}

	remaining := q.Close()
	if len(remaining) != 1 || remaining[0] != 1 {
		t.Fatalf("Close drained = %v, want [1]", remaining)
	}

	_, ok := q.Pop(context.Background())
	if ok {
		t.Fatal("Pop succeeded on a closed, drained queue")
	}

	if err := q.Push(2); err != ErrQueueClosed {
		t.Fatalf("Push after Close: err = %v, want ErrQueueClosed", err)
	}
}

func TestQueueCloseWakesBlockedPop(t *testing.T) {
	t.Parallel()

	q := NewQueue[int]()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop(context.Background())
		done <- ok
	}()

	time.Sleep(50 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("Pop reported ok = true on close with no items")
		}
	case <-time.After(time.Second):
		t.Fatal("blocked Pop was not woken by Close")
	}
}

func TestQueuePushAndWaitUntilPoppedBlocksUntilPopped(t *testing.T) {
	t.Parallel()

	q := NewQueue[int]()
	done := make(chan error, 1)
	go func() {
		done <- q.PushAndWaitUntilPopped(context.Background(), 99)
	}()

	select {
	case <-done:
		t.Fatal("PushAndWaitUntilPopped returned before Pop")
	case <-time.After(50 * time.Millisecond):
	}

	v, ok := q.Pop(context.Background())
	if !ok || v != 99 {
		t.Fatalf("Pop = (%d, %v), want (99, true)", v, ok)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("PushAndWaitUntilPopped: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("PushAndWaitUntilPopped never unblocked after Pop")
	}
}

func TestQueuePushAndWaitUntilPoppedRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	q := NewQueue[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := q.PushAndWaitUntilPopped(ctx, 1)
	if err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
}
