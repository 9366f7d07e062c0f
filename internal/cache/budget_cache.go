package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/budgetcast/internal/config"
	"github.com/andresuchdata/budgetcast/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	budgetKeyPrefix     = "budget:branch"
	budgetScanBatchSize = 100
)

// BudgetCache stores computed branch budgets keyed by branch and the
// configuration fingerprint, so a changed event placement misses cleanly.
type BudgetCache interface {
	GetBudget(ctx context.Context, branchID int64, fingerprint string) (*domain.BranchBudget, bool, error)
	SetBudget(ctx context.Context, branchID int64, fingerprint string, budget *domain.BranchBudget) error
	InvalidateBranch(ctx context.Context, branchID int64) error
	InvalidateAll(ctx context.Context) error
}

type redisBudgetCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopBudgetCache struct{}

func NewBudgetCache(cfg config.CacheConfig) (BudgetCache, error) {
	if !cfg.Enabled {
		return &noopBudgetCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisBudgetCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopBudgetCache() BudgetCache {
	return &noopBudgetCache{}
}

func (c *redisBudgetCache) GetBudget(ctx context.Context, branchID int64, fingerprint string) (*domain.BranchBudget, bool, error) {
	key := buildBudgetKey(branchID, fingerprint)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var budget domain.BranchBudget
	if err := json.Unmarshal(payload, &budget); err != nil {
		return nil, false, fmt.Errorf("decode branch budget cache: %w", err)
	}

	return &budget, true, nil
}

func (c *redisBudgetCache) SetBudget(ctx context.Context, branchID int64, fingerprint string, budget *domain.BranchBudget) error {
	key := buildBudgetKey(branchID, fingerprint)
	payload, err := json.Marshal(budget)
	if err != nil {
		return fmt.Errorf("encode branch budget cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisBudgetCache) InvalidateBranch(ctx context.Context, branchID int64) error {
	prefix := fmt.Sprintf("%s:%d:", budgetKeyPrefix, branchID)
	return deleteKeysWithPrefix(ctx, c.client, prefix, budgetScanBatchSize)
}

func (c *redisBudgetCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, budgetKeyPrefix, budgetScanBatchSize)
}

func (n *noopBudgetCache) GetBudget(ctx context.Context, branchID int64, fingerprint string) (*domain.BranchBudget, bool, error) {
	return nil, false, nil
}

func (n *noopBudgetCache) SetBudget(ctx context.Context, branchID int64, fingerprint string, budget *domain.BranchBudget) error {
	return nil
}

func (n *noopBudgetCache) InvalidateBranch(ctx context.Context, branchID int64) error {
	return nil
}

func (n *noopBudgetCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildBudgetKey(branchID int64, fingerprint string) string {
	return fmt.Sprintf("%s:%d:%s", budgetKeyPrefix, branchID, fingerprint)
}
