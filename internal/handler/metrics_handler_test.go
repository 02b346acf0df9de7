package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/reading-reports-api/internal/service"
)

func TestMetricsHandlerEndpoints(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/dashboard/overview", http.StatusOK, 5*time.Millisecond)
	handler := NewMetricsHandler(metrics)

	c, rec := newTestContext(http.MethodGet, "/metrics")
	handler.Prometheus(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/dashboard/overview")

	c, rec = newTestContext(http.MethodGet, "/metrics/summary")
	handler.Snapshot(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"requests_total":1`)

	c, rec = newTestContext(http.MethodGet, "/health")
	handler.Health(c)
	assert.Equal(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsHandlerWithoutRegistry(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/metrics")
	NewMetricsHandler(nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
