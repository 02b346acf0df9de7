package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

type fakeJobSrv struct {
	fakeTrigger
	filter models.RunFilter
}

func (f *fakeJobSrv) Status(context.Context) (*models.JobStatus, error) {
	return &models.JobStatus{Running: true, Current: &models.CombineRun{ID: "run-1"}}, nil
}

func (f *fakeJobSrv) Runs(_ context.Context, filter models.RunFilter) ([]models.CombineRun, *models.Pagination, error) {
	f.filter = filter
	return []models.CombineRun{{ID: "run-1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func TestJobHandlerScrape(t *testing.T) {
	jobs := &fakeJobSrv{}
	handler := NewJobHandler(jobs, nil)

	c, rec := newTestContext(http.MethodPost, "/jobs/scrape")
	handler.Scrape(c)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []models.RunTrigger{models.RunTriggerManual}, jobs.triggers)

	jobs.err = appErrors.Clone(appErrors.ErrJobRunning, "run run-1 is RUNNING")
	c, rec = newTestContext(http.MethodPost, "/jobs/scrape")
	handler.Scrape(c)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestJobHandlerStatus(t *testing.T) {
	handler := NewJobHandler(&fakeJobSrv{}, nil)
	c, rec := newTestContext(http.MethodGet, "/jobs/status")
	handler.Status(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"running":true`)
}

func TestJobHandlerRunsFilter(t *testing.T) {
	jobs := &fakeJobSrv{}
	handler := NewJobHandler(jobs, nil)

	c, rec := newTestContext(http.MethodGet, "/jobs/runs?status=failed&page=3&page_size=5")
	handler.Runs(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RunFilter{Status: models.RunStatusFailed, Page: 3, PageSize: 5}, jobs.filter)

	c, rec = newTestContext(http.MethodGet, "/jobs/runs?status=paused")
	handler.Runs(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeSettingsSrv struct {
	saved *models.ScrapeSettings
}

func (f *fakeSettingsSrv) Get(context.Context) models.ScrapeSettings {
	return models.DefaultScrapeSettings()
}

func (f *fakeSettingsSrv) Update(_ context.Context, settings models.ScrapeSettings) (*models.ScrapeSettings, error) {
	if settings.DateFilter == "Yesterday" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown date filter")
	}
	f.saved = &settings
	return &settings, nil
}

func TestSettingsHandlerGet(t *testing.T) {
	handler := NewSettingsHandler(&fakeSettingsSrv{})
	c, rec := newTestContext(http.MethodGet, "/settings")
	handler.Get(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"date_filter":"Today"`)
}

func TestSettingsHandlerUpdate(t *testing.T) {
	settings := &fakeSettingsSrv{}
	handler := NewSettingsHandler(settings)

	c, rec := newTestContext(http.MethodPut, "/settings")
	c.Request = httptest.NewRequest(http.MethodPut, "/settings", bytes.NewBufferString(`{"date_filter":"Last 7 Days","products_filter":"All"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	handler.Update(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, settings.saved)
	assert.Equal(t, "Last 7 Days", settings.saved.DateFilter)

	c, rec = newTestContext(http.MethodPut, "/settings")
	c.Request = httptest.NewRequest(http.MethodPut, "/settings", bytes.NewBufferString(`{"date_filter":`))
	handler.Update(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(http.MethodPut, "/settings")
	c.Request = httptest.NewRequest(http.MethodPut, "/settings", bytes.NewBufferString(`{"date_filter":"Yesterday","products_filter":"All"}`))
	handler.Update(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeAuthSrv struct{}

func (fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "secret" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.LoginResponse{AccessToken: "token", Username: req.Username, ExpiresIn: 3600}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(fakeAuthSrv{})

	c, rec := newTestContext(http.MethodPost, "/auth/login")
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"username":"admin","password":"secret"}`))
	handler.Login(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"token"`)

	c, rec = newTestContext(http.MethodPost, "/auth/login")
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"username":"admin","password":"wrong"}`))
	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/auth/login")
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`not json`))
	handler.Login(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
