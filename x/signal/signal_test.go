package signal

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestFlagSetTake(t *testing.T) {
	f := NewFlag()
	if f.Take() {
		t.Fatal("fresh flag reported set")
	}
	notify := f.Notifier()
	notify()
	if !f.IsSet() {
		t.Fatal("IsSet false after Set")
	}
	if !f.Take() {
		t.Fatal("Take false after Set")
	}
	if f.Take() {
		t.Fatal("Take must clear the flag")
	}
	if f.Sets() != 1 {
		t.Fatalf("Sets = %d, want 1", f.Sets())
	}
}

func TestFlagPublishesWritesBeforeSet(t *testing.T) {
	f := NewFlag()
	buf := make([]byte, 4096)

	go func() {
		for i := range buf {
			buf[i] = byte(i)
		}
		f.Set()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !f.Take() {
		t.Fatal("flag not set after Wait")
	}
	for i := range buf {
		if buf[i] != byte(i) {
			t.Fatalf("buf[%d] = %d before write observed", i, buf[i])
		}
	}
}

func TestFlagWaitCancelled(t *testing.T) {
	f := NewFlag()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := f.Wait(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestQueueOverflowIsCounted(t *testing.T) {
	q := NewQueue[int](1)
	if !q.PostFromISR(1) {
		t.Fatal("first post rejected")
	}
	if q.PostFromISR(2) {
		t.Fatal("second post accepted by full queue")
	}
	if q.Post(3) {
		t.Fatal("task post accepted by full queue")
	}
	if q.Drops() != 2 {
		t.Fatalf("Drops = %d, want 2", q.Drops())
	}

	v, ok, err := q.Receive(context.Background(), 0)
	if err != nil || !ok || v != 1 {
		t.Fatalf("Receive = %d %v %v", v, ok, err)
	}
}

func TestQueueReceiveTimeout(t *testing.T) {
	q := NewQueue[string](1)
	_, ok, err := q.Receive(context.Background(), 5*time.Millisecond)
	if ok || err != nil {
		t.Fatalf("expected plain timeout, got ok=%v err=%v", ok, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := q.Receive(ctx, time.Second); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestQueueConcurrentPostersNeverBlock(t *testing.T) {
	q := NewQueue[int](1)
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			post := q.ISRPoster(p)
			for i := 0; i < 1000; i++ {
				post()
			}
		}(p)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("posters blocked")
	}
	if got := uint32(q.Len()) + q.Drops(); got != 4000 {
		t.Fatalf("queued+dropped = %d, want 4000", got)
	}
}
