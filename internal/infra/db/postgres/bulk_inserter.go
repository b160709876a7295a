package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"discount-code-service/internal/domain"
	"discount-code-service/internal/domain/model"
	"discount-code-service/internal/domain/ports/repository"
)

var _ repository.BulkInserter = (*copyBulkInserter)(nil)

// copyBulkInserter writes code batches with the COPY protocol (pgx
// CopyFrom), which is the fastest multi-row path Postgres offers. COPY does
// not support ON CONFLICT, so a batch that trips the unique index fails as
// a whole; the engine treats that as a retryable collision.
type copyBulkInserter struct {
	pool *pgxpool.Pool
}

func NewCopyBulkInserter(pool *pgxpool.Pool) repository.BulkInserter {
	return &copyBulkInserter{pool: pool}
}

func (b *copyBulkInserter) Insert(ctx context.Context, codes []model.BulkInsertCode) error {
	if len(codes) == 0 {
		return nil
	}

	_, err := b.pool.CopyFrom(
		ctx,
		pgx.Identifier{"discount_codes"},
		[]string{"code", "length", "created_at"},
		pgx.CopyFromSlice(len(codes), func(i int) ([]interface{}, error) {
			return []interface{}{codes[i].Code, codes[i].Length, codes[i].CreatedAt}, nil
		}),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("bulk insert: %w", domain.ErrUniqueViolation)
		}
		return err
	}
	return nil
}
