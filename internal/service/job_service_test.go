package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/internal/repository"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

type stubScraper struct {
	mu       sync.Mutex
	calls    int
	err      error
	release  chan struct{}
	settings models.ScrapeSettings
}

func (s *stubScraper) Scrape(ctx context.Context, settings models.ScrapeSettings) error {
	s.mu.Lock()
	s.calls++
	s.settings = settings
	release := s.release
	s.mu.Unlock()
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func (s *stubScraper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type staticSettings struct{}

func (staticSettings) Get(context.Context) models.ScrapeSettings {
	return models.DefaultScrapeSettings()
}

func newJobServiceForTest(t *testing.T, r *reportsDir, scraper *stubScraper) (*JobService, *repository.MemoryRunRepository, *memoryCacheRepo) {
	t.Helper()
	runs := repository.NewMemoryRunRepository(0)
	cache := newMemoryCacheRepo()
	svc := NewJobService(JobServiceParams{
		Runs:     runs,
		Scraper:  scraper,
		Combiner: newCombineServiceForTest(r),
		Settings: staticSettings{},
		Cache:    NewCacheService(cache, nil, time.Minute, zap.NewNop(), true),
		Metrics:  NewMetricsService(),
	})
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc, runs, cache
}

func waitForIdle(t *testing.T, svc *JobService) *models.JobStatus {
	t.Helper()
	var status *models.JobStatus
	require.Eventually(t, func() bool {
		var err error
		status, err = svc.Status(context.Background())
		require.NoError(t, err)
		return !status.Running
	}, 5*time.Second, 10*time.Millisecond)
	return status
}

func TestJobServiceScrapeThenCombine(t *testing.T) {
	r := newReportsDir(t)
	r.scenario()
	scraper := &stubScraper{}
	svc, _, cache := newJobServiceForTest(t, r, scraper)
	require.NoError(t, cache.Set(context.Background(), "dashboard:overview:old", 1, time.Minute))

	run, err := svc.Trigger(context.Background(), models.RunTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusQueued, run.Status)

	status := waitForIdle(t, svc)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, run.ID, status.LastRun.ID)
	assert.Equal(t, models.RunStatusFinished, status.LastRun.Status)
	require.NotNil(t, status.LastRun.OutputFile)
	assert.Equal(t, "Combined_All_Reports_20240315_103000.xlsx", *status.LastRun.OutputFile)
	assert.Len(t, status.LastRun.Sheets, 2)
	assert.NotNil(t, status.LastRun.FinishedAt)
	assert.Equal(t, 1, scraper.Calls())
	assert.Equal(t, models.DateFilterToday, scraper.settings.DateFilter)
	assert.Empty(t, cache.entries)
}

func TestJobServiceRejectsConcurrentTrigger(t *testing.T) {
	r := newReportsDir(t)
	scraper := &stubScraper{release: make(chan struct{})}
	svc, _, _ := newJobServiceForTest(t, r, scraper)

	_, err := svc.Trigger(context.Background(), models.RunTriggerManual)
	require.NoError(t, err)

	_, err = svc.Trigger(context.Background(), models.RunTriggerScheduled)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrJobRunning.Code, appErrors.FromError(err).Code)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Running)

	close(scraper.release)
	status = waitForIdle(t, svc)
	assert.Equal(t, models.RunStatusEmpty, status.LastRun.Status)

	_, err = svc.Trigger(context.Background(), models.RunTriggerManual)
	require.NoError(t, err)
	waitForIdle(t, svc)
}

func TestJobServiceScrapeFailure(t *testing.T) {
	r := newReportsDir(t)
	r.scenario()
	svc, _, _ := newJobServiceForTest(t, r, &stubScraper{err: errors.New("scraper failed: exit status 2")})

	_, err := svc.Trigger(context.Background(), models.RunTriggerScheduled)
	require.NoError(t, err)

	status := waitForIdle(t, svc)
	assert.Equal(t, models.RunStatusFailed, status.LastRun.Status)
	require.NotNil(t, status.LastRun.ErrorMessage)
	assert.Contains(t, *status.LastRun.ErrorMessage, "exit status 2")
	assert.Nil(t, status.LastRun.OutputFile)
}

func TestJobServiceCombineOnlySkipsScraper(t *testing.T) {
	r := newReportsDir(t)
	r.scenario()
	scraper := &stubScraper{}
	svc, _, _ := newJobServiceForTest(t, r, scraper)

	_, err := svc.Trigger(context.Background(), models.RunTriggerCombine)
	require.NoError(t, err)
	status := waitForIdle(t, svc)
	assert.Equal(t, models.RunStatusFinished, status.LastRun.Status)
	assert.Zero(t, scraper.Calls())

	runs, page, err := svc.Runs(context.Background(), models.RunFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, models.RunTriggerCombine, runs[0].Trigger)
}
