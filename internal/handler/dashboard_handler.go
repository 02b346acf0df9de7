package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/reading-reports-api/internal/middleware"
	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
	"github.com/noah-isme/reading-reports-api/pkg/response"
)

type dashboardService interface {
	Overview(ctx context.Context) (*models.DashboardOverview, bool, error)
	ExportPDF(ctx context.Context) ([]byte, string, error)
	ExportCSV(ctx context.Context) ([]byte, string, error)
}

type summaryService interface {
	SchoolSummary() *models.SchoolSummary
	ClassroomSummaries() []models.ClassroomSummary
	ClassroomComparison() *models.ClassroomComparison
	ClassroomSkills() []models.ClassroomSkills
	SkillsSummary() *models.SkillsSummary
	TopReaders() []models.ClassroomTopReaders
	LevelUp() []models.ClassroomLevelUp
	Activity(t models.ReportType) *models.ActivityReport
}

// SkillsView pairs the school-wide skill statistics with the per-classroom
// breakdown.
type SkillsView struct {
	Summary    *models.SkillsSummary    `json:"summary"`
	Classrooms []models.ClassroomSkills `json:"classrooms"`
}

var activityTypes = map[string]models.ReportType{
	"assignment": models.ReportTypeAssignment,
	"assessment": models.ReportTypeAssessment,
}

// DashboardHandler wires the summary views to HTTP endpoints.
type DashboardHandler struct {
	service   dashboardService
	summaries summaryService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, summaries summaryService) *DashboardHandler {
	return &DashboardHandler{service: service, summaries: summaries}
}

// Overview godoc
// @Summary Dashboard overview
// @Description Every summary view plus period, institution and latest combined workbook
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	overview, cacheHit, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, overview, nil, meta)
}

// School godoc
// @Summary School totals
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/school [get]
func (h *DashboardHandler) School(c *gin.Context) {
	school := h.summaries.SchoolSummary()
	if school == nil {
		response.Error(c, noData("student usage"))
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// Classrooms godoc
// @Summary Per-classroom usage
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/classrooms [get]
func (h *DashboardHandler) Classrooms(c *gin.Context) {
	classrooms := h.summaries.ClassroomSummaries()
	if classrooms == nil {
		response.Error(c, noData("student usage"))
		return
	}
	response.JSON(c, http.StatusOK, classrooms, nil)
}

// Comparison godoc
// @Summary Classroom comparison chart series
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/comparison [get]
func (h *DashboardHandler) Comparison(c *gin.Context) {
	comparison := h.summaries.ClassroomComparison()
	if comparison == nil {
		response.Error(c, noData("student usage"))
		return
	}
	response.JSON(c, http.StatusOK, comparison, nil)
}

// Skills godoc
// @Summary Skill accuracy
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/skills [get]
func (h *DashboardHandler) Skills(c *gin.Context) {
	summary := h.summaries.SkillsSummary()
	if summary == nil {
		response.Error(c, noData("skill"))
		return
	}
	response.JSON(c, http.StatusOK, SkillsView{Summary: summary, Classrooms: h.summaries.ClassroomSkills()}, nil)
}

// TopReaders godoc
// @Summary Top three readers per classroom
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/top-readers [get]
func (h *DashboardHandler) TopReaders(c *gin.Context) {
	readers := h.summaries.TopReaders()
	if readers == nil {
		response.Error(c, noData("student usage"))
		return
	}
	response.JSON(c, http.StatusOK, readers, nil)
}

// LevelUp godoc
// @Summary Level up progress per classroom
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/level-up [get]
func (h *DashboardHandler) LevelUp(c *gin.Context) {
	levels := h.summaries.LevelUp()
	if levels == nil {
		response.Error(c, noData("level up progress"))
		return
	}
	response.JSON(c, http.StatusOK, levels, nil)
}

// Activity godoc
// @Summary Assignment or assessment activity per owner
// @Tags Dashboard
// @Produce json
// @Param type path string true "assignment or assessment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/activity/{type} [get]
func (h *DashboardHandler) Activity(c *gin.Context) {
	t, ok := activityTypes[strings.ToLower(c.Param("type"))]
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "type must be assignment or assessment"))
		return
	}
	report := h.summaries.Activity(t)
	if report == nil {
		response.Error(c, noData(strings.ToLower(string(t))))
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ExportPDF godoc
// @Summary School overview PDF
// @Tags Dashboard
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /dashboard/export/pdf [get]
func (h *DashboardHandler) ExportPDF(c *gin.Context) {
	data, filename, err := h.service.ExportPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, "application/pdf", data)
}

// ExportCSV godoc
// @Summary Classroom summary CSV
// @Tags Dashboard
// @Produce text/csv
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /dashboard/export/csv [get]
func (h *DashboardHandler) ExportCSV(c *gin.Context) {
	data, filename, err := h.service.ExportCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, "text/csv; charset=utf-8", data)
}

func noData(what string) error {
	return appErrors.Clone(appErrors.ErrNoData, "no "+what+" reports found")
}
