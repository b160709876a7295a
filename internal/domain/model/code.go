package model

import (
	"time"
)

// DiscountCode represents a single-use code persisted in the store.
// ID is store-assigned. UsedAt is nil until the code is redeemed; the
// transition to non-nil happens exactly once per code.
type DiscountCode struct {
	ID        int64
	Code      string
	Length    int
	CreatedAt time.Time
	UsedAt    *time.Time // Pointer to allow for NULL
	UsedBy    *string    // Reserved; not set by current logic
}

// Used reports whether the code has already been redeemed.
func (c *DiscountCode) Used() bool {
	return c.UsedAt != nil
}

// BulkInsertCode is the projection handed to the bulk inserter during
// generation.
type BulkInsertCode struct {
	Code      string
	Length    int
	CreatedAt time.Time
}

// CachedCodeStatus is the cache-resident snapshot of a code's redemption
// state. It is derived, expendable data: staleness is bounded only by TTL
// and it is never authoritative for a "not yet used" decision.
type CachedCodeStatus struct {
	IsUsed   bool      `json:"is_used"`
	Exists   bool      `json:"exists"`
	CachedAt time.Time `json:"cached_at"`
}
