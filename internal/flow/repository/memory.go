package repository

import (
	"context"
	"sync"

	"copperx-bot/internal/flow/domain"
)

// MemoryRepository is the in-process Repository. Stale states live until overwritten or removed.
type MemoryRepository struct {
	mu sync.RWMutex
	m  map[int64]*domain.State
}

// NewMemoryRepository returns an empty in-memory flow store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{m: make(map[int64]*domain.State)}
}

// Save replaces the state for identity with a copy of st.
func (r *MemoryRepository) Save(ctx context.Context, identity int64, st *domain.State) {
	if st == nil {
		return
	}
	c := st.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[identity] = c
}

// Get returns a deep copy of the state for identity.
func (r *MemoryRepository) Get(ctx context.Context, identity int64) (*domain.State, bool) {
	r.mu.RLock()
	st, ok := r.m[identity]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return st.Clone(), true
}

// Remove deletes the state for identity. No-op when absent.
func (r *MemoryRepository) Remove(ctx context.Context, identity int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, identity)
}
