package repository

import (
	"context"

	"discount-code-service/internal/domain/model"
)

// CodeStatusCache stores point-in-time redemption snapshots keyed by code
// value, with a TTL. A nil status with nil error from Get means a miss.
// Callers treat the cache as best-effort: any error collapses to a miss.
type CodeStatusCache interface {
	Get(ctx context.Context, code string) (*model.CachedCodeStatus, error)
	Set(ctx context.Context, code string, status *model.CachedCodeStatus) error
}
