// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"discount-code-service/internal/domain"
	"discount-code-service/internal/domain/model"
)

// memCodeRepo is a small in-memory code store used by unit tests. MarkUsed
// mimics the store's atomic compare-and-set under a mutex so concurrency
// tests are meaningful.
type memCodeRepo struct {
	mu     sync.Mutex
	rows   map[string]*model.DiscountCode // keyed by lower(code)
	nextID int64

	findExistingErr error
	markUsedErr     error
	markUsedNoop    bool // force affected == 0 to simulate a broken store contract

	findExistingCalls  int
	findExistingChunks []int
	markUsedCalls      int
	findByCodeCalls    int
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{rows: make(map[string]*model.DiscountCode)}
}

func (m *memCodeRepo) seed(code string, usedAt *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.rows[strings.ToLower(code)] = &model.DiscountCode{
		ID:        m.nextID,
		Code:      code,
		Length:    len(code),
		CreatedAt: time.Now().UTC(),
		UsedAt:    usedAt,
	}
}

func (m *memCodeRepo) storeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findExistingCalls + m.markUsedCalls + m.findByCodeCalls
}

func (m *memCodeRepo) FindExisting(ctx context.Context, candidates []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findExistingCalls++
	m.findExistingChunks = append(m.findExistingChunks, len(candidates))
	if m.findExistingErr != nil {
		return nil, m.findExistingErr
	}
	var out []string
	for _, c := range candidates {
		if row, ok := m.rows[strings.ToLower(c)]; ok {
			out = append(out, row.Code)
		}
	}
	return out, nil
}

func (m *memCodeRepo) MarkUsed(ctx context.Context, code string, usedAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markUsedCalls++
	if m.markUsedErr != nil {
		return 0, m.markUsedErr
	}
	if m.markUsedNoop {
		return 0, nil
	}
	row, ok := m.rows[strings.ToLower(code)]
	if !ok || row.UsedAt != nil {
		return 0, nil
	}
	ts := usedAt
	row.UsedAt = &ts
	return 1, nil
}

func (m *memCodeRepo) FindByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findByCodeCalls++
	row, ok := m.rows[strings.ToLower(code)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

// memBulkInserter lands inserts in a memCodeRepo and can be scripted to
// fail per call (nil entry = success).
type memBulkInserter struct {
	mu      sync.Mutex
	repo    *memCodeRepo
	errs    []error
	batches [][]model.BulkInsertCode
}

func newMemBulkInserter(repo *memCodeRepo) *memBulkInserter {
	return &memBulkInserter{repo: repo}
}

func (b *memBulkInserter) batchSizes() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	sizes := make([]int, len(b.batches))
	for i, batch := range b.batches {
		sizes[i] = len(batch)
	}
	return sizes
}

func (b *memBulkInserter) Insert(ctx context.Context, codes []model.BulkInsertCode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.errs) > 0 {
		err := b.errs[0]
		b.errs = b.errs[1:]
		if err != nil {
			return err
		}
	}

	b.repo.mu.Lock()
	defer b.repo.mu.Unlock()
	for _, c := range codes {
		if _, exists := b.repo.rows[strings.ToLower(c.Code)]; exists {
			return domain.ErrUniqueViolation
		}
	}
	for _, c := range codes {
		b.repo.nextID++
		b.repo.rows[strings.ToLower(c.Code)] = &model.DiscountCode{
			ID:        b.repo.nextID,
			Code:      c.Code,
			Length:    c.Length,
			CreatedAt: c.CreatedAt,
		}
	}
	b.batches = append(b.batches, codes)
	return nil
}

// memStatusCache is an in-memory CodeStatusCache with error hooks.
type memStatusCache struct {
	mu       sync.Mutex
	entries  map[string]model.CachedCodeStatus
	getErr   error
	setErr   error
	getCalls int
	setCalls int
}

func newMemStatusCache() *memStatusCache {
	return &memStatusCache{entries: make(map[string]model.CachedCodeStatus)}
}

func (c *memStatusCache) put(code string, status model.CachedCodeStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[strings.ToUpper(code)] = status
}

func (c *memStatusCache) get(code string) (model.CachedCodeStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[strings.ToUpper(code)]
	return s, ok
}

func (c *memStatusCache) Get(ctx context.Context, code string) (*model.CachedCodeStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getCalls++
	if c.getErr != nil {
		return nil, c.getErr
	}
	s, ok := c.entries[strings.ToUpper(code)]
	if !ok {
		return nil, nil
	}
	cp := s
	return &cp, nil
}

func (c *memStatusCache) Set(ctx context.Context, code string, status *model.CachedCodeStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalls++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[strings.ToUpper(code)] = *status
	return nil
}

// scriptedGenerator replays canned batches; after the script runs out it
// keeps returning the last batch, which the engine's seen-set then filters
// to nothing (generator exhaustion).
type scriptedGenerator struct {
	mu      sync.Mutex
	batches [][]string
	calls   int
}

func (g *scriptedGenerator) Generate(length int) (string, error) {
	return "", errors.New("single-code generation not scripted")
}

func (g *scriptedGenerator) GenerateBatch(count, length int) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	idx := g.calls - 1
	if idx >= len(g.batches) {
		idx = len(g.batches) - 1
	}
	batch := g.batches[idx]
	if len(batch) > count {
		batch = batch[:count]
	}
	out := make([]string, len(batch))
	copy(out, batch)
	return out, nil
}
