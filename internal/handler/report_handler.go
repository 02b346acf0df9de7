package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/middleware"
	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/pkg/response"
)

type fileService interface {
	List(ctx context.Context, page, pageSize int) (*models.ReportListing, error)
	Latest(ctx context.Context) (*models.StoredReport, error)
	Link(ctx context.Context, filename string) (*models.DownloadLink, error)
	Resolve(ctx context.Context, token string) (*models.StoredReport, string, error)
	ZipContents(ctx context.Context) ([]string, error)
	WriteZip(ctx context.Context, w io.Writer) (int, error)
}

type jobTrigger interface {
	Trigger(ctx context.Context, trigger models.RunTrigger) (*models.CombineRun, error)
}

// ReportHandler exposes the reports directory and the combine trigger.
type ReportHandler struct {
	files  fileService
	jobs   jobTrigger
	logger *zap.Logger
	now    func() time.Time
}

// NewReportHandler constructs handler.
func NewReportHandler(files fileService, jobs jobTrigger, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{files: files, jobs: jobs, logger: logger, now: time.Now}
}

// List godoc
// @Summary List stored workbooks
// @Tags Reports
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	listing, err := h.files.List(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := listing.Pagination
	response.JSON(c, http.StatusOK, listing, &pagination)
}

// Latest godoc
// @Summary Newest combined workbook
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/latest [get]
func (h *ReportHandler) Latest(c *gin.Context) {
	latest, err := h.files.Latest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, latest, nil)
}

// Zip godoc
// @Summary Download every stored workbook as a zip archive
// @Tags Reports
// @Produce application/zip
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /reports/zip [get]
func (h *ReportHandler) Zip(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.files.ZipContents(ctx); err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("reports_%s.zip", h.now().Format("20060102_150405"))
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	// Headers are already sent, so a failure here can only be logged.
	if _, err := h.files.WriteZip(ctx, c.Writer); err != nil {
		h.logger.Error("zip stream interrupted", zap.Error(err))
	}
}

// Download godoc
// @Summary Download a workbook through a signed link
// @Tags Reports
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/download/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	report, path, err := h.files.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.FileAttachment(path, report.Name)
}

// Link godoc
// @Summary Create a signed download link
// @Tags Reports
// @Produce json
// @Param filename path string true "Workbook filename"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{filename}/link [post]
func (h *ReportHandler) Link(c *gin.Context) {
	link, err := h.files.Link(c.Request.Context(), c.Param("filename"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Combine godoc
// @Summary Combine the downloaded exports without scraping
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports/combine [post]
func (h *ReportHandler) Combine(c *gin.Context) {
	run, err := h.jobs.Trigger(c.Request.Context(), models.RunTriggerCombine)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("combine requested", zap.String("run_id", run.ID), zap.String("operator", middleware.Operator(c)))
	response.Accepted(c, run)
}
