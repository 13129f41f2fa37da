package repository

import (
	"context"
	"sync"
	"time"

	"copperx-bot/internal/session/domain"
)

// MemoryRepository is the in-process Repository. Expired sessions are kept until overwritten or removed.
type MemoryRepository struct {
	mu   sync.RWMutex
	m    map[int64]domain.Session
	nowF func() time.Time
}

// NewMemoryRepository returns an empty in-memory session store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		m:    make(map[int64]domain.Session),
		nowF: time.Now,
	}
}

// NewMemoryRepositoryWithClock is like NewMemoryRepository but uses nowF for liveness checks.
func NewMemoryRepositoryWithClock(nowF func() time.Time) *MemoryRepository {
	r := NewMemoryRepository()
	if nowF != nil {
		r.nowF = nowF
	}
	return r
}

// Save overwrites any session for identity.
func (r *MemoryRepository) Save(ctx context.Context, identity int64, s *domain.Session) {
	if s == nil {
		return
	}
	rec := *s
	rec.Identity = identity
	s.Identity = identity
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[identity] = rec
}

// Get returns a copy of the session for identity.
func (r *MemoryRepository) Get(ctx context.Context, identity int64) (*domain.Session, bool) {
	r.mu.RLock()
	rec, ok := r.m[identity]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return &rec, true
}

// Remove deletes the session for identity.
func (r *MemoryRepository) Remove(ctx context.Context, identity int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, identity)
}

// IsLive reports whether a session exists for identity and has not expired.
func (r *MemoryRepository) IsLive(ctx context.Context, identity int64) bool {
	r.mu.RLock()
	rec, ok := r.m[identity]
	r.mu.RUnlock()
	return ok && rec.LiveAt(r.nowF())
}
