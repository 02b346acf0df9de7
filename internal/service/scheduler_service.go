package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

// DefaultScheduleSpec runs the scrape once a week.
const DefaultScheduleSpec = "@weekly"

type jobTrigger interface {
	Trigger(ctx context.Context, trigger models.RunTrigger) (*models.CombineRun, error)
}

// SchedulerService triggers scheduled scrape and combine runs on a cron spec.
type SchedulerService struct {
	cron    *cron.Cron
	jobs    jobTrigger
	spec    string
	entryID cron.EntryID
	logger  *zap.Logger
}

func NewSchedulerService(jobs jobTrigger, spec string, logger *zap.Logger) *SchedulerService {
	if spec == "" {
		spec = DefaultScheduleSpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulerService{
		cron:   cron.New(cron.WithLocation(time.Local)),
		jobs:   jobs,
		spec:   spec,
		logger: logger,
	}
}

// Start registers the run and starts the cron engine.
func (s *SchedulerService) Start() error {
	id, err := s.cron.AddFunc(s.spec, s.Fire)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}
	s.entryID = id
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec), zap.Time("next_run", s.Next()))
	return nil
}

// Stop halts the engine and waits for a firing callback to return.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Next returns the next planned run, or the zero time before Start.
func (s *SchedulerService) Next() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Fire triggers one scheduled run. A run already in flight is skipped.
func (s *SchedulerService) Fire() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	run, err := s.jobs.Trigger(ctx, models.RunTriggerScheduled)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrJobRunning.Code {
			s.logger.Info("scheduled run skipped, job already running")
			return
		}
		s.logger.Error("scheduled run failed to start", zap.Error(err))
		return
	}
	s.logger.Info("scheduled run queued", zap.String("run_id", run.ID))
}
