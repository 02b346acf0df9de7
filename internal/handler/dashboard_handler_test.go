package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/reading-reports-api/internal/middleware"
	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

type fakeDashboardSrv struct {
	overview *models.DashboardOverview
	hit      bool
	err      error
	pdf      []byte
}

func (f *fakeDashboardSrv) Overview(context.Context) (*models.DashboardOverview, bool, error) {
	return f.overview, f.hit, f.err
}

func (f *fakeDashboardSrv) ExportPDF(context.Context) ([]byte, string, error) {
	if f.pdf == nil {
		return nil, "", appErrors.ErrNoData
	}
	return f.pdf, "school_overview_20240315_103000.pdf", nil
}

func (f *fakeDashboardSrv) ExportCSV(context.Context) ([]byte, string, error) {
	return []byte("Classroom\nClassA\n"), "classroom_summary_20240315_103000.csv", nil
}

type fakeSummarySrv struct {
	school     *models.SchoolSummary
	classrooms []models.ClassroomSummary
	skills     *models.SkillsSummary
	activity   map[models.ReportType]*models.ActivityReport
}

func (f *fakeSummarySrv) SchoolSummary() *models.SchoolSummary { return f.school }
func (f *fakeSummarySrv) ClassroomSummaries() []models.ClassroomSummary { return f.classrooms }
func (f *fakeSummarySrv) ClassroomComparison() *models.ClassroomComparison { return nil }
func (f *fakeSummarySrv) ClassroomSkills() []models.ClassroomSkills {
	return []models.ClassroomSkills{{Classroom: "ClassA"}}
}
func (f *fakeSummarySrv) SkillsSummary() *models.SkillsSummary { return f.skills }
func (f *fakeSummarySrv) TopReaders() []models.ClassroomTopReaders { return nil }
func (f *fakeSummarySrv) LevelUp() []models.ClassroomLevelUp { return nil }
func (f *fakeSummarySrv) Activity(t models.ReportType) *models.ActivityReport {
	return f.activity[t]
}

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, rec
}

func TestDashboardHandlerOverviewReportsCacheHit(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{
		overview: &models.DashboardOverview{Institution: "Unidad Educativa", Period: "Marzo 2024"},
		hit:      true,
	}, &fakeSummarySrv{})

	c, rec := newTestContext(http.MethodGet, "/dashboard/overview")
	handler.Overview(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")

	var overview models.DashboardOverview
	require.NoError(t, json.Unmarshal(envelope.Data, &overview))
	assert.Equal(t, "Marzo 2024", overview.Period)
}

func TestDashboardHandlerOverviewError(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{err: appErrors.ErrNoData}, &fakeSummarySrv{})

	c, rec := newTestContext(http.MethodGet, "/dashboard/overview")
	handler.Overview(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NO_DATA", decodeEnvelope(t, rec).Error["code"])
}

func TestDashboardHandlerViewsWithoutDataAre404(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{}, &fakeSummarySrv{})
	views := map[string]gin.HandlerFunc{
		"school":      handler.School,
		"classrooms":  handler.Classrooms,
		"comparison":  handler.Comparison,
		"skills":      handler.Skills,
		"top-readers": handler.TopReaders,
		"level-up":    handler.LevelUp,
	}
	for name, view := range views {
		c, rec := newTestContext(http.MethodGet, "/dashboard/"+name)
		view(c)
		assert.Equal(t, http.StatusNotFound, rec.Code, name)
	}
}

func TestDashboardHandlerSchoolAndSkills(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{}, &fakeSummarySrv{
		school: &models.SchoolSummary{AllTeachers: 2, TotalActivities: 13},
		skills: &models.SkillsSummary{TotalClassrooms: 1, OverallAccuracy: 80},
	})

	c, rec := newTestContext(http.MethodGet, "/dashboard/school")
	handler.School(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var school models.SchoolSummary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &school))
	assert.Equal(t, 13, school.TotalActivities)

	c, rec = newTestContext(http.MethodGet, "/dashboard/skills")
	handler.Skills(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var skills SkillsView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &skills))
	assert.Equal(t, 80.0, skills.Summary.OverallAccuracy)
	require.Len(t, skills.Classrooms, 1)
	assert.Equal(t, "ClassA", skills.Classrooms[0].Classroom)
}

func TestDashboardHandlerActivity(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{}, &fakeSummarySrv{
		activity: map[models.ReportType]*models.ActivityReport{
			models.ReportTypeAssessment: {ReportType: models.ReportTypeAssessment, TotalFiles: 3},
		},
	})

	c, rec := newTestContext(http.MethodGet, "/dashboard/activity/Assessment")
	c.Params = gin.Params{{Key: "type", Value: "Assessment"}}
	handler.Activity(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/dashboard/activity/assignment")
	c.Params = gin.Params{{Key: "type", Value: "assignment"}}
	handler.Activity(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/dashboard/activity/skill")
	c.Params = gin.Params{{Key: "type", Value: "skill"}}
	handler.Activity(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandlerExports(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{pdf: []byte("%PDF-1.3")}, &fakeSummarySrv{})

	c, rec := newTestContext(http.MethodGet, "/dashboard/export/pdf")
	handler.ExportPDF(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "school_overview_20240315_103000.pdf")
	assert.Equal(t, "%PDF-1.3", rec.Body.String())

	c, rec = newTestContext(http.MethodGet, "/dashboard/export/csv")
	handler.ExportCSV(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "classroom_summary_20240315_103000.csv")
}

func TestDashboardHandlerExportWithoutData(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{}, &fakeSummarySrv{})
	c, rec := newTestContext(http.MethodGet, "/dashboard/export/pdf")
	handler.ExportPDF(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardOverviewMetaThroughMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{overview: &models.DashboardOverview{}}, &fakeSummarySrv{})
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	r.GET("/dashboard/overview", handler.Overview)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/overview", nil))

	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, false, decodeEnvelope(t, rec).Meta["cache_hit"])
}
