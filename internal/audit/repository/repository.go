package repository

import (
	"context"

	"copperx-bot/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListByIdentity(ctx context.Context, identity int64, limit int) ([]*domain.AuditLog, error)
}
