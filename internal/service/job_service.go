package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/internal/repository"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
	"github.com/noah-isme/reading-reports-api/pkg/jobs"
)

type runRepository interface {
	Create(ctx context.Context, run *models.CombineRun) error
	Update(ctx context.Context, id string, params repository.UpdateRunParams) error
	List(ctx context.Context, filter models.RunFilter) ([]models.CombineRun, int, error)
	Latest(ctx context.Context) (*models.CombineRun, error)
}

type scraper interface {
	Scrape(ctx context.Context, settings models.ScrapeSettings) error
}

type workbookCombiner interface {
	ConvertPending(ctx context.Context) int
	Combine(ctx context.Context) (*models.CombinedWorkbook, error)
}

type settingsProvider interface {
	Get(ctx context.Context) models.ScrapeSettings
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// JobService runs scrape and combine jobs one at a time on a single worker.
// A trigger while a job is queued or running is rejected with ErrJobRunning.
type JobService struct {
	queue    *jobs.Queue
	runs     runRepository
	scraper  scraper
	combiner workbookCombiner
	settings settingsProvider
	cache    cacheInvalidator
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	current *models.CombineRun
}

// JobServiceParams groups constructor dependencies.
type JobServiceParams struct {
	Runs     runRepository
	Scraper  scraper
	Combiner workbookCombiner
	Settings settingsProvider
	Cache    cacheInvalidator
	Metrics  *MetricsService
	Logger   *zap.Logger
}

func NewJobService(params JobServiceParams) *JobService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &JobService{
		runs:     params.Runs,
		scraper:  params.Scraper,
		combiner: params.Combiner,
		settings: params.Settings,
		cache:    params.Cache,
		metrics:  params.Metrics,
		logger:   logger,
		now:      time.Now,
	}
	s.queue = jobs.NewQueue("scrape", s.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 1,
		MaxRetries: 0,
		Logger:     logger,
	})
	return s
}

// Start launches the worker.
func (s *JobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop cancels the running job and waits for the worker to exit.
func (s *JobService) Stop() {
	s.queue.Stop()
}

// Trigger queues a run. Combine-only runs skip the scraper.
func (s *JobService) Trigger(ctx context.Context, trigger models.RunTrigger) (*models.CombineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return nil, appErrors.Clone(appErrors.ErrJobRunning, fmt.Sprintf("run %s is %s", s.current.ID, s.current.Status))
	}

	run := &models.CombineRun{
		Trigger:   trigger,
		Status:    models.RunStatusQueued,
		StartedAt: s.now().UTC(),
	}
	if err := s.observe("create_run", func() error { return s.runs.Create(ctx, run) }); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record run")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: run.ID, Type: string(trigger)}); err != nil {
		s.record(ctx, run, models.RunStatusFailed, nil, err)
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "job worker unavailable")
	}

	s.current = run
	s.metrics.SetJobRunning(true)
	s.logger.Info("run queued", zap.String("run_id", run.ID), zap.String("trigger", string(trigger)))
	snapshot := *run
	return &snapshot, nil
}

// Status reports whether a run is in flight along with the latest run.
func (s *JobService) Status(ctx context.Context) (*models.JobStatus, error) {
	status := &models.JobStatus{}
	s.mu.Lock()
	if s.current != nil {
		current := *s.current
		status.Running = true
		status.Current = &current
	}
	s.mu.Unlock()

	var latest *models.CombineRun
	err := s.observe("latest_run", func() error {
		var err error
		latest, err = s.runs.Latest(ctx)
		return err
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run history")
	}
	if latest != nil && (status.Current == nil || latest.ID != status.Current.ID) {
		status.LastRun = latest
	}
	return status, nil
}

// Runs lists recorded runs newest first.
func (s *JobService) Runs(ctx context.Context, filter models.RunFilter) ([]models.CombineRun, *models.Pagination, error) {
	var (
		runs  []models.CombineRun
		total int
	)
	err := s.observe("list_runs", func() error {
		var err error
		runs, total, err = s.runs.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list runs")
	}
	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return runs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *JobService) handle(ctx context.Context, job jobs.Job) error {
	s.mu.Lock()
	run := s.current
	s.mu.Unlock()
	if run == nil || run.ID != job.ID {
		return fmt.Errorf("run %s is not the active run", job.ID)
	}

	s.setStatus(ctx, run, models.RunStatusRunning)
	logger := s.logger.With(zap.String("run_id", run.ID), zap.String("trigger", string(run.Trigger)))

	if run.Trigger != models.RunTriggerCombine {
		if err := s.scraper.Scrape(ctx, s.settings.Get(ctx)); err != nil {
			logger.Error("scrape failed", zap.Error(err))
			s.finish(ctx, run, models.RunStatusFailed, nil, err)
			return nil
		}
	}

	s.combiner.ConvertPending(ctx)
	workbook, err := s.combiner.Combine(ctx)
	switch {
	case err != nil:
		logger.Error("combine failed", zap.Error(err))
		s.finish(ctx, run, models.RunStatusFailed, nil, err)
	case workbook == nil:
		logger.Warn("run produced no workbook")
		s.finish(ctx, run, models.RunStatusEmpty, nil, nil)
	default:
		logger.Info("run finished", zap.String("file", workbook.Filename), zap.Int("sheets", len(workbook.Sheets)))
		s.finish(ctx, run, models.RunStatusFinished, workbook, nil)
	}
	return nil
}

func (s *JobService) setStatus(ctx context.Context, run *models.CombineRun, status models.RunStatus) {
	s.mu.Lock()
	run.Status = status
	s.mu.Unlock()
	if err := s.observe("update_run", func() error {
		return s.runs.Update(ctx, run.ID, repository.UpdateRunParams{Status: &status})
	}); err != nil {
		s.logger.Warn("failed to update run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// finish records the outcome and clears the busy flag.
func (s *JobService) finish(ctx context.Context, run *models.CombineRun, status models.RunStatus, workbook *models.CombinedWorkbook, cause error) {
	s.record(ctx, run, status, workbook, cause)

	s.mu.Lock()
	if s.current != nil && s.current.ID == run.ID {
		s.current = nil
	}
	s.mu.Unlock()
	s.metrics.SetJobRunning(false)
}

// record writes the final run state. The write uses a detached context so a
// cancelled job is still recorded.
func (s *JobService) record(ctx context.Context, run *models.CombineRun, status models.RunStatus, workbook *models.CombinedWorkbook, cause error) {
	finishedAt := s.now().UTC()
	params := repository.UpdateRunParams{Status: &status, FinishedAt: &finishedAt}
	if workbook != nil {
		sheets := models.SheetLedger(workbook.Sheets)
		params.OutputFile = &workbook.Filename
		params.Sheets = &sheets
	}
	if cause != nil {
		message := cause.Error()
		params.ErrorMessage = &message
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.observe("update_run", func() error { return s.runs.Update(writeCtx, run.ID, params) }); err != nil {
		s.logger.Warn("failed to record run outcome", zap.String("run_id", run.ID), zap.Error(err))
	}
	if status == models.RunStatusFinished && s.cache != nil {
		_ = s.cache.Invalidate(writeCtx, dashboardCachePattern)
	}
	s.metrics.ObserveJob(status)
}

func (s *JobService) observe(label string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.ObserveDBQuery(label, time.Since(start))
	return err
}
