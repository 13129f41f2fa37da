package repository

import (
	"context"

	"copperx-bot/internal/session/domain"
)

// Repository holds at most one Session per identity.
// All operations are total: absence is reported through the ok result, never as an error.
type Repository interface {
	// Save overwrites any session for identity and stamps s.Identity.
	Save(ctx context.Context, identity int64, s *domain.Session)
	// Get returns a copy of the stored session, or ok false when absent.
	Get(ctx context.Context, identity int64) (s *domain.Session, ok bool)
	// Remove deletes the session for identity. No-op when absent.
	Remove(ctx context.Context, identity int64)
	// IsLive is false when absent, otherwise now < ExpiresAt.
	IsLive(ctx context.Context, identity int64) bool
}
