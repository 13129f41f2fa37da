package middleware

import (
	"context"
	"sync"

	chat "copperx-bot/internal/chat/domain"
)

// keyedMutex hands out one mutex per identity and drops it once no event holds or waits on it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(id int64) *refMutex {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &refMutex{}
		k.locks[id] = m
	}
	m.refs++
	k.mu.Unlock()
	m.Lock()
	return m
}

func (k *keyedMutex) unlock(id int64, m *refMutex) {
	m.Unlock()
	k.mu.Lock()
	m.refs--
	if m.refs == 0 {
		delete(k.locks, id)
	}
	k.mu.Unlock()
}

// Serialize processes events of the same identity one at a time, in arrival order of lock acquisition.
// Events of different identities run concurrently.
func Serialize() chat.Middleware {
	km := &keyedMutex{locks: make(map[int64]*refMutex)}
	return func(next chat.Handler) chat.Handler {
		return chat.HandlerFunc(func(ctx context.Context, ev chat.Event) []chat.Reply {
			m := km.lock(ev.Identity)
			defer km.unlock(ev.Identity, m)
			return next.Handle(ctx, ev)
		})
	}
}
