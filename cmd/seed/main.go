package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"discount-code-service/internal/config"
	"discount-code-service/internal/domain/model"
	"discount-code-service/internal/infra/codegen"
	pg "discount-code-service/internal/infra/db/postgres"
	"discount-code-service/internal/infra/logging"
	"discount-code-service/internal/usecase"
)

// Seeds the database with an initial pool of discount codes through the real
// generation engine. Applies the schema first when the table is missing.
const schema = `
CREATE TABLE IF NOT EXISTS discount_codes (
    id         BIGSERIAL PRIMARY KEY,
    code       TEXT        NOT NULL,
    length     INT         NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    used_at    TIMESTAMPTZ,
    used_by    TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS discount_codes_code_lower_key
    ON discount_codes (lower(code));
CREATE INDEX IF NOT EXISTS discount_codes_used_at_idx
    ON discount_codes (used_at) WHERE used_at IS NULL;
`

// Generation never touches the cache, so the seed tool runs without Redis.
type noStatusCache struct{}

func (noStatusCache) Get(context.Context, string) (*model.CachedCodeStatus, error) {
	return nil, nil
}
func (noStatusCache) Set(context.Context, string, *model.CachedCodeStatus) error { return nil }

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	count := flag.Int("count", 1000, "number of codes to seed")
	length := flag.Int("length", 8, "code length (7 or 8)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	engine := usecase.NewDiscountUseCase(
		codegen.New(),
		pg.NewCodeRepo(pool),
		pg.NewCopyBulkInserter(pool),
		noStatusCache{},
		usecase.Options{
			MaxPerRequest:          cfg.Codes.MaxPerRequest,
			BatchSize:              cfg.Codes.BatchSize,
			ExistenceChunk:         cfg.Codes.ExistenceChunk,
			MaxConsecutiveFailures: cfg.Codes.MaxConsecutiveFailures,
		},
		logger,
	)

	resp := engine.GenerateCodes(ctx, *count, *length)
	if !resp.Result {
		log.Fatalf("seeding failed: %s", resp.ErrorMessage)
	}
	fmt.Printf("seeded %d codes of length %d\n", *count, *length)
}
