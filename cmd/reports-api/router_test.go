package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/reading-reports-api/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env:         config.EnvProduction,
		APIPrefix:   "/api/v1",
		Institution: "Unidad Educativa",
		JWT:         config.JWTConfig{Secret: "secret"},
		Reports: config.ReportsConfig{
			Dir:           filepath.Join(dir, "reports"),
			SigningSecret: "download-secret",
			SettingsFile:  filepath.Join(dir, "scraper_config.json"),
			AccountsFile:  filepath.Join(dir, "users.json"),
		},
		Scheduler: config.SchedulerConfig{Spec: "@weekly"},
	}
}

func TestRouterServesSurface(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg.Admin = config.AdminConfig{Username: "admin", PasswordHash: string(hash)}

	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.close()
	r := newRouter(cfg, a, zap.NewNop())

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/api/v1/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/dashboard/school", http.StatusNotFound},
		{http.MethodGet, "/api/v1/dashboard/overview", http.StatusOK},
		{http.MethodGet, "/api/v1/reports", http.StatusOK},
		{http.MethodGet, "/api/v1/reports/latest", http.StatusNotFound},
		{http.MethodGet, "/api/v1/reports/zip", http.StatusNotFound},
		{http.MethodGet, "/api/v1/jobs/status", http.StatusOK},
		{http.MethodGet, "/api/v1/settings", http.StatusOK},
		{http.MethodPost, "/api/v1/jobs/scrape", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/reports/combine", http.StatusUnauthorized},
		{http.MethodPut, "/api/v1/settings", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/users", http.StatusUnauthorized},
		{http.MethodPut, "/api/v1/users", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/users/upload", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/docs/index.html", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, rec.Code, "%s %s", tc.method, tc.path)
	}
}
