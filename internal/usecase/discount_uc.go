// File: internal/usecase/discount_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"discount-code-service/internal/domain"
	"discount-code-service/internal/domain/model"
	"discount-code-service/internal/domain/ports/adapter"
	"discount-code-service/internal/domain/ports/repository"
	"discount-code-service/internal/infra/metrics"
)

const (
	// MaxGenerate bounds a single generation request.
	MaxGenerate = 2000
	// DefaultBatchSize bounds one generator/insert round.
	DefaultBatchSize = 500
	// defaultExistenceChunk bounds the IN (...) size of one existence query.
	defaultExistenceChunk = 200
	// defaultMaxConsecutiveFailures aborts the generation loop when the
	// store keeps rejecting whole batches.
	defaultMaxConsecutiveFailures = 3
)

// UseCodeResult enumerates redemption outcomes. The numeric values are part
// of the external surface and must stay stable.
type UseCodeResult int

const (
	UseCodeSuccess UseCodeResult = iota
	UseCodeNotFound
	UseCodeAlreadyUsed
	UseCodeInvalidFormat
	UseCodeUnknownError
)

func (r UseCodeResult) String() string {
	switch r {
	case UseCodeSuccess:
		return "success"
	case UseCodeNotFound:
		return "not_found"
	case UseCodeAlreadyUsed:
		return "already_used"
	case UseCodeInvalidFormat:
		return "invalid_format"
	default:
		return "unknown_error"
	}
}

// GenerateCodesResponse reports aggregate success only: callers never learn
// which codes were inserted, and a failure after partial progress carries
// just the outstanding count in the message.
type GenerateCodesResponse struct {
	Result       bool
	ErrorMessage string
}

// UseCodeResponse carries a redemption outcome and a short message.
type UseCodeResponse struct {
	ResultCode UseCodeResult
	Message    string
}

// Options tune the generation loop. Zero values fall back to the defaults
// above.
type Options struct {
	MaxPerRequest          int
	BatchSize              int
	ExistenceChunk         int
	MaxConsecutiveFailures int
}

func (o Options) withDefaults() Options {
	if o.MaxPerRequest <= 0 {
		o.MaxPerRequest = MaxGenerate
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.ExistenceChunk <= 0 {
		o.ExistenceChunk = defaultExistenceChunk
	}
	if o.MaxConsecutiveFailures <= 0 {
		o.MaxConsecutiveFailures = defaultMaxConsecutiveFailures
	}
	return o
}

// DiscountUseCase is the code-lifecycle engine: batched unique-code
// generation and at-most-once redemption. It holds no cross-call mutable
// state; any number of instances may run concurrently against the same
// store and cache.
type DiscountUseCase struct {
	generator adapter.CodeGenerator
	codeRepo  repository.CodeRepository
	inserter  repository.BulkInserter
	cache     repository.CodeStatusCache
	opts      Options
	log       *zerolog.Logger
}

func NewDiscountUseCase(
	generator adapter.CodeGenerator,
	codeRepo repository.CodeRepository,
	inserter repository.BulkInserter,
	cache repository.CodeStatusCache,
	opts Options,
	logger *zerolog.Logger,
) *DiscountUseCase {
	return &DiscountUseCase{
		generator: generator,
		codeRepo:  codeRepo,
		inserter:  inserter,
		cache:     cache,
		opts:      opts.withDefaults(),
		log:       logger,
	}
}

func validLength(length int) bool { return length == 7 || length == 8 }

// GenerateCodes creates count unique codes of the given length. Batches are
// deduplicated in-process, existence-checked against the store and bulk
// inserted; the store's uniqueness constraint remains the authority, so an
// insert that collides with a concurrent writer is retried until the
// consecutive-failure cap trips.
func (uc *DiscountUseCase) GenerateCodes(ctx context.Context, count, length int) GenerateCodesResponse {
	if count < 1 || count > uc.opts.MaxPerRequest {
		return GenerateCodesResponse{Result: false, ErrorMessage: fmt.Sprintf("Count must be between 1 and %d", uc.opts.MaxPerRequest)}
	}
	if !validLength(length) {
		return GenerateCodesResponse{Result: false, ErrorMessage: "Length must be 7 or 8"}
	}

	remaining := count
	consecutiveFailures := 0

	// Seen-set scoped to this call only: avoids re-submitting the same
	// candidate across batches within one request. Keys are upper-cased for
	// case-insensitive comparison.
	allGenerated := make(map[string]struct{})

	for remaining > 0 {
		if consecutiveFailures >= uc.opts.MaxConsecutiveFailures {
			uc.log.Error().Int("remaining", remaining).Msg("max consecutive generation failures reached")
			break
		}

		batchSize := uc.opts.BatchSize
		if remaining < batchSize {
			batchSize = remaining
		}

		batch, err := uc.generator.GenerateBatch(batchSize, length)
		if err != nil {
			uc.log.Error().Err(err).Msg("code generator failed")
			metrics.IncGenerationRequest("error")
			return GenerateCodesResponse{Result: false, ErrorMessage: "Internal error"}
		}

		candidates := make([]string, 0, len(batch))
		for _, c := range batch {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			key := strings.ToUpper(c)
			if _, dup := allGenerated[key]; dup {
				continue
			}
			allGenerated[key] = struct{}{}
			candidates = append(candidates, c)
		}

		if len(candidates) == 0 {
			uc.log.Warn().Msg("generator returned no unique candidates; aborting")
			break
		}

		existingSet, err := uc.findExisting(ctx, candidates)
		if err != nil {
			uc.log.Error().Err(err).Msg("existence check failed")
			metrics.IncGenerationRequest("error")
			return GenerateCodesResponse{Result: false, ErrorMessage: "Internal error"}
		}

		now := time.Now().UTC()
		toInsert := make([]model.BulkInsertCode, 0, len(candidates))
		for _, c := range candidates {
			if _, exists := existingSet[strings.ToUpper(c)]; exists {
				continue
			}
			toInsert = append(toInsert, model.BulkInsertCode{Code: c, Length: length, CreatedAt: now})
		}

		inserted := false
		if len(toInsert) > 0 {
			switch err := uc.inserter.Insert(ctx, toInsert); {
			case err == nil:
				inserted = true
			case errors.Is(err, domain.ErrUniqueViolation):
				// A concurrent generator won the race for one of the codes.
				// Retryable: let the loop produce fresh candidates.
				metrics.IncGenerationCollision()
				uc.log.Debug().Err(err).Msg("bulk insert collided with concurrent writes; retrying")
			default:
				uc.log.Error().Err(err).Msg("unexpected error during bulk insert")
				metrics.IncGenerationRequest("error")
				return GenerateCodesResponse{Result: false, ErrorMessage: "Internal error"}
			}
		}

		if inserted {
			remaining -= len(toInsert)
			consecutiveFailures = 0
			metrics.AddCodesGenerated(len(toInsert))
			// Free successfully inserted codes from the local set; the
			// store's unique index keeps them out of later batches.
			for _, c := range toInsert {
				delete(allGenerated, strings.ToUpper(c.Code))
			}
			uc.log.Info().Int("inserted", len(toInsert)).Int("remaining", remaining).Msg("inserted codes")
		} else {
			consecutiveFailures++
		}
	}

	if remaining == 0 {
		metrics.IncGenerationRequest("ok")
		return GenerateCodesResponse{Result: true}
	}
	metrics.IncGenerationRequest("exhausted")
	return GenerateCodesResponse{Result: false, ErrorMessage: fmt.Sprintf("Could not generate requested number. Remaining: %d", remaining)}
}

// findExisting chunks the candidate list to bound query size and folds the
// results into one upper-cased set.
func (uc *DiscountUseCase) findExisting(ctx context.Context, candidates []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	chunkSize := uc.opts.ExistenceChunk
	for i := 0; i < len(candidates); i += chunkSize {
		end := i + chunkSize
		if end > len(candidates) {
			end = len(candidates)
		}
		found, err := uc.codeRepo.FindExisting(ctx, candidates[i:end])
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			existing[strings.ToUpper(c)] = struct{}{}
		}
	}
	return existing, nil
}

// UseCode redeems a code at most once. The cache is a best-effort
// short-circuit; the store's conditional update is the correctness
// mechanism.
func (uc *DiscountUseCase) UseCode(ctx context.Context, code string) UseCodeResponse {
	code = strings.TrimSpace(code)
	if code == "" || !validLength(len(code)) {
		metrics.IncRedemption(UseCodeInvalidFormat.String())
		return UseCodeResponse{ResultCode: UseCodeInvalidFormat, Message: "Invalid code format"}
	}

	// Cache-aside read. Any cache failure (timeout, bad payload) collapses
	// to a miss and the store path decides.
	if cached, err := uc.cache.Get(ctx, code); err != nil {
		metrics.IncCacheRequest("code_status", "error")
		uc.log.Warn().Err(err).Str("code", code).Msg("cache read failed, continuing without cache")
	} else if cached != nil {
		metrics.IncCacheRequest("code_status", "hit")
		if cached.IsUsed {
			uc.log.Debug().Str("code", code).Msg("code found in cache as used")
			metrics.IncRedemption(UseCodeAlreadyUsed.String())
			return UseCodeResponse{ResultCode: UseCodeAlreadyUsed, Message: "Already used"}
		}
		if !cached.Exists {
			uc.log.Debug().Str("code", code).Msg("code found in cache as non-existent")
			metrics.IncRedemption(UseCodeNotFound.String())
			return UseCodeResponse{ResultCode: UseCodeNotFound, Message: "Not found"}
		}
		// Cached as existing-and-unused: never authoritative, fall through.
	} else {
		metrics.IncCacheRequest("code_status", "miss")
	}

	resp := uc.useCodeInStore(ctx, code)
	metrics.IncRedemption(resp.ResultCode.String())
	return resp
}

func (uc *DiscountUseCase) useCodeInStore(ctx context.Context, code string) UseCodeResponse {
	now := time.Now().UTC()

	// Single atomic compare-and-set: only one concurrent caller can observe
	// affected == 1 for a given code.
	affected, err := uc.codeRepo.MarkUsed(ctx, code, now)
	if err != nil {
		uc.log.Error().Err(err).Str("code", code).Msg("conditional update failed")
		return UseCodeResponse{ResultCode: UseCodeUnknownError, Message: "Unknown error"}
	}

	if affected == 1 {
		uc.cacheStatus(ctx, code, true, true)
		uc.log.Info().Str("code", code).Msg("code successfully used")
		return UseCodeResponse{ResultCode: UseCodeSuccess, Message: "OK"}
	}

	// affected == 0: disambiguate by reading the current row.
	existing, err := uc.codeRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.cacheStatus(ctx, code, false, false)
			uc.log.Debug().Str("code", code).Msg("code not found in store")
			return UseCodeResponse{ResultCode: UseCodeNotFound, Message: "Not found"}
		}
		uc.log.Error().Err(err).Str("code", code).Msg("lookup after failed update errored")
		return UseCodeResponse{ResultCode: UseCodeUnknownError, Message: "Unknown error"}
	}

	if existing.Used() {
		uc.cacheStatus(ctx, code, true, true)
		uc.log.Debug().Str("code", code).Time("used_at", *existing.UsedAt).Msg("code already used")
		return UseCodeResponse{ResultCode: UseCodeAlreadyUsed, Message: "Already used"}
	}

	// Row exists and looks unused, yet the conditional update touched
	// nothing. The store contract says this cannot happen.
	uc.log.Warn().Str("code", code).Msg("code exists but conditional update affected no rows")
	return UseCodeResponse{ResultCode: UseCodeUnknownError, Message: "Unknown error"}
}

// cacheStatus writes through the redemption snapshot. The store mutation is
// already durable at this point, so a failed cache write is logged and
// otherwise ignored.
func (uc *DiscountUseCase) cacheStatus(ctx context.Context, code string, isUsed, exists bool) {
	status := &model.CachedCodeStatus{IsUsed: isUsed, Exists: exists, CachedAt: time.Now().UTC()}
	if err := uc.cache.Set(ctx, code, status); err != nil {
		uc.log.Warn().Err(err).Str("code", code).Msg("failed to cache code status")
	}
}
