package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/middleware"
	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
	"github.com/noah-isme/reading-reports-api/pkg/response"
)

type jobService interface {
	jobTrigger
	Status(ctx context.Context) (*models.JobStatus, error)
	Runs(ctx context.Context, filter models.RunFilter) ([]models.CombineRun, *models.Pagination, error)
}

var runStatuses = map[models.RunStatus]struct{}{
	models.RunStatusQueued:   {},
	models.RunStatusRunning:  {},
	models.RunStatusFinished: {},
	models.RunStatusEmpty:    {},
	models.RunStatusFailed:   {},
}

// JobHandler exposes the scrape and combine job.
type JobHandler struct {
	jobs   jobService
	logger *zap.Logger
}

// NewJobHandler constructs handler.
func NewJobHandler(jobs jobService, logger *zap.Logger) *JobHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobHandler{jobs: jobs, logger: logger}
}

// Scrape godoc
// @Summary Start a scrape followed by a combine
// @Description Only one run may be active; a busy job answers 409 ALREADY_RUNNING
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /jobs/scrape [post]
func (h *JobHandler) Scrape(c *gin.Context) {
	run, err := h.jobs.Trigger(c.Request.Context(), models.RunTriggerManual)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("scrape requested", zap.String("run_id", run.ID), zap.String("operator", middleware.Operator(c)))
	response.Accepted(c, run)
}

// Status godoc
// @Summary Busy flag with the current and last run
// @Tags Jobs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	status, err := h.jobs.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Runs godoc
// @Summary Run history, newest first
// @Tags Jobs
// @Produce json
// @Param status query string false "QUEUED, RUNNING, FINISHED, EMPTY or FAILED"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /jobs/runs [get]
func (h *JobHandler) Runs(c *gin.Context) {
	var filter models.RunFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.RunStatus(strings.ToUpper(raw))
		if _, ok := runStatuses[status]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown run status"))
			return
		}
		filter.Status = status
	}
	filter.Page, filter.PageSize = pageParams(c)

	runs, pagination, err := h.jobs.Runs(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, pagination)
}
