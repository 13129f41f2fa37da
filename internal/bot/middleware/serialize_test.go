package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	chat "copperx-bot/internal/chat/domain"
)

func TestSerialize_SameIdentityNeverOverlaps(t *testing.T) {
	var inFlight, maxInFlight int32
	slow := chat.HandlerFunc(func(ctx context.Context, ev chat.Event) []chat.Reply {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})
	h := Serialize()(slow)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Handle(context.Background(), chat.Event{Identity: 1, Payload: chat.TextInput{Text: "x"}})
		}()
	}
	wg.Wait()
	if maxInFlight != 1 {
		t.Errorf("max concurrent handlers for one identity = %d, want 1", maxInFlight)
	}
}

func TestSerialize_DifferentIdentitiesRunConcurrently(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan int64, 2)
	blocking := chat.HandlerFunc(func(ctx context.Context, ev chat.Event) []chat.Reply {
		entered <- ev.Identity
		<-release
		return nil
	})
	h := Serialize()(blocking)

	var wg sync.WaitGroup
	for _, id := range []int64{1, 2} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			h.Handle(context.Background(), chat.Event{Identity: id, Payload: chat.TextInput{Text: "x"}})
		}(id)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-entered:
		case <-time.After(2 * time.Second):
			t.Fatal("second identity was blocked by the first")
		}
	}
	close(release)
	wg.Wait()
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	km := &keyedMutex{locks: make(map[int64]*refMutex)}
	m := km.lock(3)
	km.unlock(3, m)
	if len(km.locks) != 0 {
		t.Errorf("locks = %d, want 0 after unlock", len(km.locks))
	}
}
