package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

type fakeValidator struct {
	enabled bool
}

func (f fakeValidator) Enabled() bool { return f.enabled }

func (f fakeValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{Username: "operator"}, nil
}

func jwtRouter(v TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/jobs/scrape", JWT(v), func(c *gin.Context) {
		c.String(http.StatusOK, Operator(c))
	})
	return r
}

func TestJWTRequiresBearerToken(t *testing.T) {
	r := jwtRouter(fakeValidator{enabled: true})

	cases := map[string]int{
		"":            http.StatusUnauthorized,
		"Basic abc":   http.StatusUnauthorized,
		"Bearer bad":  http.StatusUnauthorized,
		"Bearer good": http.StatusOK,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "/jobs/scrape", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, header)
		if want == http.StatusOK {
			assert.Equal(t, "operator", rec.Body.String())
		}
	}
}

func TestJWTOpenWhenOperatorNotConfigured(t *testing.T) {
	r := jwtRouter(fakeValidator{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/scrape", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

type recordedRequest struct {
	method string
	path   string
	status int
}

type fakeObserver struct {
	requests []recordedRequest
}

func (f *fakeObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{method: method, path: path, status: status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &fakeObserver{}
	r := gin.New()
	r.Use(Metrics(observer, "/metrics"))
	r.GET("/reports/download/:token", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/reports/download/abc", "/metrics", "/wp-admin"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, observer.requests, 2)
	assert.Equal(t, recordedRequest{http.MethodGet, "/reports/download/:token", http.StatusNotFound}, observer.requests[0])
	assert.Equal(t, "unmatched", observer.requests[1].path)
}

func TestResponseMetaCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/dashboard/overview", func(c *gin.Context) {
		SetCacheHit(c, true)
		SetMeta(c, "source", "cache")
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/overview", nil))

	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, "cache", meta["source"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestOperatorIgnoresForeignClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextUserKey, errors.New("not claims"))
	assert.Empty(t, Operator(c))
}
