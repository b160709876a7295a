package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"discount-code-service/internal/domain/model"
	"discount-code-service/internal/domain/ports/repository"
)

const codeStatusKeyPrefix = "discount:code:"

var _ repository.CodeStatusCache = (*CodeStatusCache)(nil)

// CodeStatusCache stores CachedCodeStatus snapshots as JSON under a fixed
// key namespace. Every operation runs under a bounded timeout so a slow
// Redis degrades to a cache miss instead of stalling redemption.
type CodeStatusCache struct {
	client    RedisClient
	ttl       time.Duration
	opTimeout time.Duration
}

func NewCodeStatusCache(client RedisClient, ttl, opTimeout time.Duration) *CodeStatusCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if opTimeout <= 0 {
		opTimeout = 250 * time.Millisecond
	}
	return &CodeStatusCache{client: client, ttl: ttl, opTimeout: opTimeout}
}

func codeStatusKey(code string) string {
	return codeStatusKeyPrefix + strings.ToUpper(strings.TrimSpace(code))
}

// Get returns the cached snapshot, or (nil, nil) when the key is absent.
func (c *CodeStatusCache) Get(ctx context.Context, code string) (*model.CachedCodeStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, codeStatusKey(code))
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, err
	}

	var status model.CachedCodeStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *CodeStatusCache) Set(ctx context.Context, code string, status *model.CachedCodeStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.client.Set(ctx, codeStatusKey(code), data, c.ttl)
}
