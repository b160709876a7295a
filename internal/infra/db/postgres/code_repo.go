package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"discount-code-service/internal/domain"
	"discount-code-service/internal/domain/model"
	"discount-code-service/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CodeRepository = (*codeRepo)(nil)

type codeRepo struct {
	pool *pgxpool.Pool
}

func NewCodeRepo(pool *pgxpool.Pool) repository.CodeRepository {
	return &codeRepo{pool: pool}
}

// FindExisting returns the candidates already present in the store. The
// comparison runs against lower(code), matching the unique index, so the
// check is case-insensitive and can use it.
func (r *codeRepo) FindExisting(ctx context.Context, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
	}

	const q = `SELECT code FROM discount_codes WHERE lower(code) = ANY($1);`
	rows, err := r.pool.Query(ctx, q, lowered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, code)
	}
	return out, rows.Err()
}

// MarkUsed is the redemption compare-and-set: the WHERE clause makes the
// update fire only while used_at is still NULL, and Postgres evaluates and
// applies it as one atomic operation. Exactly one concurrent caller can see
// an affected count of 1.
func (r *codeRepo) MarkUsed(ctx context.Context, code string, usedAt time.Time) (int64, error) {
	const q = `
UPDATE discount_codes
   SET used_at = $2
 WHERE lower(code) = lower($1) AND used_at IS NULL;
`
	tag, err := r.pool.Exec(ctx, q, code, usedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FindByCode loads a single row regardless of redemption state.
func (r *codeRepo) FindByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	const q = `
SELECT id, code, length, created_at, used_at, used_by
  FROM discount_codes
 WHERE lower(code) = lower($1);
`
	var dc model.DiscountCode
	err := r.pool.QueryRow(ctx, q, code).Scan(
		&dc.ID, &dc.Code, &dc.Length, &dc.CreatedAt, &dc.UsedAt, &dc.UsedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &dc, nil
}
