package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gfdeals/api_deals/internal/config"
	"gfdeals/api_deals/internal/deals"
	"gfdeals/api_deals/internal/pipeline"
	"gfdeals/pkg/logging"
	"gfdeals/pkg/middleware"
)

const generatedAtLayout = deals.TimestampLayout + "Z"

type DealsHandler struct {
	runner  PipelineRunner
	store   DealStore
	logger  logging.Logger
	metrics *DealMetrics
	now     func() time.Time
}

func NewDealsHandler(runner PipelineRunner, store DealStore, logger logging.Logger, metrics *DealMetrics) *DealsHandler {
	return &DealsHandler{
		runner:  runner,
		store:   store,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

type dealsResponse struct {
	GeneratedAt string       `json:"generatedAt"`
	Count       int          `json:"count"`
	Deals       []deals.Deal `json:"deals"`
}

func newDealsResponse(at time.Time, ds []deals.Deal) dealsResponse {
	if ds == nil {
		ds = []deals.Deal{}
	}
	return dealsResponse{
		GeneratedAt: at.UTC().Format(generatedAtLayout),
		Count:       len(ds),
		Deals:       ds,
	}
}

// Register mounts the deal routes.
func (h *DealsHandler) Register(r gin.IRoutes) {
	r.GET("/api/deals/run", h.Run)
	r.POST("/api/deals/run", h.Run)
	r.GET("/api/deals", h.List)
	r.GET("/api/deals/analytics", h.Analytics)
}

// Run executes one pipeline run and returns the merged deal list.
func (h *DealsHandler) Run(c *gin.Context) {
	report, err := h.runner.Run(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		var missing *config.MissingCredentialsError
		switch {
		case errors.Is(err, pipeline.ErrRunInProgress):
			status = http.StatusConflict
			h.metrics.IncRequest("run", "conflict")
		case errors.As(err, &missing):
			h.metrics.IncRequest("run", "config_error")
		case errors.Is(err, pipeline.ErrNoResults):
			h.metrics.IncRequest("run", "no_results")
		default:
			h.metrics.IncRequest("run", "error")
		}
		middleware.Logger(c, h.logger).WithFields(logging.Fields{
			"status": status,
			"error":  err.Error(),
		}).Warn("Deal run request failed")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if report.PersistError != nil {
		middleware.Logger(c, h.logger).WithFields(logging.Fields{
			"run_id": report.RunID,
			"error":  report.PersistError.Error(),
		}).Warn("Deals returned without being persisted")
	}
	h.metrics.IncRequest("run", "success")
	c.JSON(http.StatusOK, newDealsResponse(report.GeneratedAt, report.Deals))
}

// List returns the persisted collection.
func (h *DealsHandler) List(c *gin.Context) {
	ds, ok := h.load(c, "list")
	if !ok {
		return
	}
	h.metrics.IncRequest("list", "success")
	c.JSON(http.StatusOK, newDealsResponse(h.now(), ds))
}

// Analytics summarises the persisted collection.
func (h *DealsHandler) Analytics(c *gin.Context) {
	ds, ok := h.load(c, "analytics")
	if !ok {
		return
	}
	h.metrics.IncRequest("analytics", "success")
	c.JSON(http.StatusOK, deals.Analyze(ds))
}

func (h *DealsHandler) load(c *gin.Context, endpoint string) ([]deals.Deal, bool) {
	ds, err := h.store.Load(c.Request.Context())
	if err != nil {
		h.metrics.IncRequest(endpoint, "error")
		middleware.Logger(c, h.logger).WithError(err).Error("Failed to load stored deals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stored deals"})
		return nil, false
	}
	return ds, true
}
