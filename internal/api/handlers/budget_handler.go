package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/budgetcast/internal/forecast"
	"github.com/andresuchdata/budgetcast/internal/service"
)

type BudgetHandler struct {
	service *service.BudgetService
}

func NewBudgetHandler(service *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{service: service}
}

// EventWindowRequest places one lunar event in both years. Dates use the
// YYYY-MM-DD form the POS exports use.
type EventWindowRequest struct {
	CYStart string `json:"cy_start" binding:"required"`
	CYDays  int    `json:"cy_days" binding:"required"`
	BYStart string `json:"by_start" binding:"required"`
	BYDays  int    `json:"by_days" binding:"required"`
}

type EventDateRequest struct {
	CYStart string `json:"cy_start" binding:"required"`
	BYStart string `json:"by_start" binding:"required"`
}

type BudgetConfigRequest struct {
	CompareYear    int                `json:"compare_year" binding:"required"`
	Ramadan        EventWindowRequest `json:"ramadan" binding:"required"`
	Muharram       EventWindowRequest `json:"muharram" binding:"required"`
	EidAlAdha      EventDateRequest   `json:"eid_al_adha" binding:"required"`
	WrapYearSearch bool               `json:"wrap_year_search"`
}

type CalculateRequest struct {
	Config   BudgetConfigRequest `json:"config" binding:"required"`
	BrandIDs []int64             `json:"brand_ids"`
}

type BreakdownRequest struct {
	Config   BudgetConfigRequest `json:"config" binding:"required"`
	BranchID int64               `json:"branch_id" binding:"required"`
	Event    string              `json:"event" binding:"required"`
	Month    int                 `json:"month" binding:"required"`
}

func (r BudgetConfigRequest) toConfig() (forecast.Config, error) {
	parse := func(s string) (time.Time, error) {
		return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
	}

	var cfg forecast.Config
	var err error
	cfg.CompareYear = r.CompareYear
	if cfg.RamadanCYStart, err = parse(r.Ramadan.CYStart); err != nil {
		return cfg, err
	}
	if cfg.RamadanBYStart, err = parse(r.Ramadan.BYStart); err != nil {
		return cfg, err
	}
	if cfg.MuharramCYStart, err = parse(r.Muharram.CYStart); err != nil {
		return cfg, err
	}
	if cfg.MuharramBYStart, err = parse(r.Muharram.BYStart); err != nil {
		return cfg, err
	}
	if cfg.EidAlAdhaCYStart, err = parse(r.EidAlAdha.CYStart); err != nil {
		return cfg, err
	}
	if cfg.EidAlAdhaBYStart, err = parse(r.EidAlAdha.BYStart); err != nil {
		return cfg, err
	}
	cfg.RamadanCYDays = r.Ramadan.CYDays
	cfg.RamadanBYDays = r.Ramadan.BYDays
	cfg.MuharramCYDays = r.Muharram.CYDays
	cfg.MuharramBYDays = r.Muharram.BYDays
	cfg.Options.WrapYearSearch = r.WrapYearSearch
	return cfg, cfg.Validate()
}

// Calculate handles POST /budget/calculate.
func (h *BudgetHandler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := req.Config.toConfig()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budgets, err := h.service.Calculate(c.Request.Context(), cfg, req.BrandIDs)
	if err != nil {
		log.Error().Err(err).Msg("budget calculation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "budget calculation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"compare_year": cfg.CompareYear,
		"budget_year":  cfg.BudgetYear(),
		"brands":       budgets,
	})
}

// Breakdown handles POST /budget/breakdown.
func (h *BudgetHandler) Breakdown(c *gin.Context) {
	var req BreakdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := req.Config.toConfig()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := strings.ToLower(strings.TrimSpace(req.Event))
	switch event {
	case forecast.EventRamadan, forecast.EventMuharram, forecast.EventEidAlAdha:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event: " + req.Event})
		return
	}
	if req.Month < 1 || req.Month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be between 1 and 12"})
		return
	}

	days, err := h.service.Breakdown(c.Request.Context(), cfg, req.BranchID, event, req.Month)
	if err != nil {
		log.Error().Err(err).Msg("budget breakdown failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "budget breakdown failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"branch_id": req.BranchID,
		"event":     event,
		"month":     req.Month,
		"days":      days,
	})
}

// GetBrands handles GET /budget/brands.
func (h *BudgetHandler) GetBrands(c *gin.Context) {
	brands, err := h.service.GetBrands(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("fetch brands failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch brands failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// GetBranches handles GET /budget/branches?brand_ids=1,2.
func (h *BudgetHandler) GetBranches(c *gin.Context) {
	var brandIDs []int64
	if raw := strings.TrimSpace(c.Query("brand_ids")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				brandIDs = append(brandIDs, id)
			}
		}
	}

	branches, err := h.service.GetBranches(c.Request.Context(), brandIDs)
	if err != nil {
		log.Error().Err(err).Msg("fetch branches failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch branches failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"branches": branches})
}

// InvalidateCache handles POST /budget/cache/invalidate. Without a branch_id
// query parameter the whole cache is dropped; with one, only that branch.
func (h *BudgetHandler) InvalidateCache(c *gin.Context) {
	if raw := strings.TrimSpace(c.Query("branch_id")); raw != "" {
		branchID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "branch_id must be an integer"})
			return
		}
		if err := h.service.InvalidateCacheBranch(c.Request.Context(), branchID); err != nil {
			log.Error().Err(err).Int64("branch_id", branchID).Msg("cache invalidation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cache invalidation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "branch_id": branchID})
		return
	}

	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("cache invalidation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cache invalidation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
