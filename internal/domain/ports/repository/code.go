package repository

import (
	"context"
	"time"

	"discount-code-service/internal/domain/model"
)

// CodeRepository is the persistence port for discount codes. The backing
// store must enforce a case-insensitive uniqueness constraint on the code
// value; that constraint, not the engine, is the cross-instance authority
// for generation races.
type CodeRepository interface {
	// FindExisting returns the subset of candidates already present in the
	// store, compared case-insensitively.
	FindExisting(ctx context.Context, candidates []string) ([]string, error)

	// MarkUsed sets the redemption timestamp for code only if it is
	// currently unset, as a single atomic store-side operation, and
	// returns the number of rows affected (0 or 1).
	MarkUsed(ctx context.Context, code string, usedAt time.Time) (int64, error)

	// FindByCode returns the row for code or domain.ErrNotFound.
	FindByCode(ctx context.Context, code string) (*model.DiscountCode, error)
}

// BulkInserter performs an efficient multi-row insert of freshly generated
// codes. A uniqueness collision (a concurrent writer won the race for one
// of the codes) surfaces as domain.ErrUniqueViolation.
type BulkInserter interface {
	Insert(ctx context.Context, codes []model.BulkInsertCode) error
}
