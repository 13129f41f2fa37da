package repository

import (
	"context"

	"copperx-bot/internal/flow/domain"
)

// Repository holds at most one flow State per identity.
// Callers read a full copy, mutate it, and Save the full record back; there is no field-level merge.
type Repository interface {
	Save(ctx context.Context, identity int64, st *domain.State)
	Get(ctx context.Context, identity int64) (st *domain.State, ok bool)
	Remove(ctx context.Context, identity int64)
}
