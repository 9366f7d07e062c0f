package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/budgetcast/internal/cache"
	"github.com/andresuchdata/budgetcast/internal/domain"
	"github.com/andresuchdata/budgetcast/internal/forecast"
	"github.com/andresuchdata/budgetcast/internal/repository"
	"github.com/andresuchdata/budgetcast/internal/storage"
)

// branchConcurrency caps how many branch budgets compute at once; each one
// pulls two years of that branch's ledger.
const branchConcurrency = 8

type BudgetService struct {
	repo          repository.SalesRepository
	cache         cache.BudgetCache
	archive       storage.ObjectStorage
	archivePrefix string
}

func NewBudgetService(repo repository.SalesRepository, cacheImpl cache.BudgetCache, archive storage.ObjectStorage, archivePrefix string) *BudgetService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopBudgetCache()
	}
	return &BudgetService{
		repo:          repo,
		cache:         cacheImpl,
		archive:       archive,
		archivePrefix: archivePrefix,
	}
}

func (s *BudgetService) GetBrands(ctx context.Context) ([]domain.Brand, error) {
	return s.repo.GetBrands(ctx)
}

func (s *BudgetService) GetBranches(ctx context.Context, brandIDs []int64) ([]domain.Branch, error) {
	return s.repo.GetBranches(ctx, brandIDs)
}

// Calculate builds the full budget worksheet for every branch of the
// requested brands (all brands when none given), branches in parallel.
func (s *BudgetService) Calculate(ctx context.Context, cfg forecast.Config, brandIDs []int64) ([]domain.BrandBudget, error) {
	engine, err := forecast.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	brands, err := s.repo.GetBrands(ctx)
	if err != nil {
		return nil, err
	}
	branches, err := s.repo.GetBranches(ctx, brandIDs)
	if err != nil {
		return nil, err
	}

	fingerprint := cfg.Fingerprint()
	results := make([]domain.BranchBudget, len(branches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(branchConcurrency)
	for i, branch := range branches {
		i, branch := i, branch
		g.Go(func() error {
			budget, err := s.branchBudget(gctx, engine, cfg, branch, fingerprint)
			if err != nil {
				return fmt.Errorf("branch %d (%s): %w", branch.ID, branch.Name, err)
			}
			results[i] = *budget
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	grouped := groupByBrand(brands, branches, results)
	s.archiveSnapshot(ctx, cfg, grouped)
	return grouped, nil
}

func (s *BudgetService) branchBudget(ctx context.Context, engine *forecast.Engine, cfg forecast.Config, branch domain.Branch, fingerprint string) (*domain.BranchBudget, error) {
	if cached, ok, err := s.cache.GetBudget(ctx, branch.ID, fingerprint); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Int64("branch_id", branch.ID).Msg("budget: cache get failed")
	}

	records, err := s.repo.GetSalesRecords(ctx, branch.ID, cfg.CompareYear-1, cfg.CompareYear)
	if err != nil {
		return nil, err
	}

	budget := &domain.BranchBudget{
		BranchID:   branch.ID,
		BranchName: branch.Name,
		Months:     engine.Calculate(records),
	}

	if err := s.cache.SetBudget(ctx, branch.ID, fingerprint, budget); err != nil {
		log.Warn().Err(err).Int64("branch_id", branch.ID).Msg("budget: cache set failed")
	}
	return budget, nil
}

// Breakdown returns the day-level estimation detail for one branch, event
// and month.
func (s *BudgetService) Breakdown(ctx context.Context, cfg forecast.Config, branchID int64, event string, month int) ([]domain.DayDetail, error) {
	engine, err := forecast.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	// The breakdown only needs daily totals, so load the slim fact rows.
	facts, err := s.repo.GetDailyFacts(ctx, branchID, cfg.CompareYear, cfg.CompareYear)
	if err != nil {
		return nil, err
	}
	return engine.DailyBreakdownLedger(forecast.NewDailyLedgerFromFacts(facts), event, month)
}

// InvalidateCache drops every cached budget, e.g. after a ledger reload.
func (s *BudgetService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// InvalidateCacheBranch drops the cached budgets of one branch, e.g. after a
// corrected POS export for that branch lands.
func (s *BudgetService) InvalidateCacheBranch(ctx context.Context, branchID int64) error {
	return s.cache.InvalidateBranch(ctx, branchID)
}

func groupByBrand(brands []domain.Brand, branches []domain.Branch, budgets []domain.BranchBudget) []domain.BrandBudget {
	brandOf := make(map[int64]int64, len(branches))
	for _, b := range branches {
		brandOf[b.ID] = b.BrandID
	}

	grouped := make([]domain.BrandBudget, 0, len(brands))
	for _, brand := range brands {
		bb := domain.BrandBudget{BrandID: brand.ID, BrandName: brand.Name}
		for _, budget := range budgets {
			if brandOf[budget.BranchID] == brand.ID {
				bb.Branches = append(bb.Branches, budget)
			}
		}
		if len(bb.Branches) > 0 {
			grouped = append(grouped, bb)
		}
	}
	return grouped
}

// archiveSnapshot writes the finished worksheet to object storage for audit.
// Failures only log; the response does not depend on the archive.
func (s *BudgetService) archiveSnapshot(ctx context.Context, cfg forecast.Config, budgets []domain.BrandBudget) {
	if s.archive == nil {
		return
	}

	payload, err := json.Marshal(struct {
		GeneratedAt time.Time            `json:"generated_at"`
		Config      forecast.Config      `json:"config"`
		Budgets     []domain.BrandBudget `json:"budgets"`
	}{
		GeneratedAt: time.Now().UTC(),
		Config:      cfg,
		Budgets:     budgets,
	})
	if err != nil {
		log.Warn().Err(err).Msg("budget: encode snapshot failed")
		return
	}

	key := fmt.Sprintf("%s/%d/%s.json",
		s.archivePrefix, cfg.BudgetYear(), time.Now().UTC().Format("20060102T150405"))
	if err := s.archive.UploadObject(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("budget: snapshot upload failed")
		return
	}
	log.Info().Str("key", key).Msg("Budget snapshot archived")
}
