package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

type recordingTrigger struct {
	triggers []models.RunTrigger
	err      error
}

func (r *recordingTrigger) Trigger(_ context.Context, trigger models.RunTrigger) (*models.CombineRun, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.triggers = append(r.triggers, trigger)
	return &models.CombineRun{ID: "run-1", Trigger: trigger}, nil
}

func TestSchedulerFireTriggersScheduledRun(t *testing.T) {
	trigger := &recordingTrigger{}
	NewSchedulerService(trigger, "", nil).Fire()
	assert.Equal(t, []models.RunTrigger{models.RunTriggerScheduled}, trigger.triggers)
}

func TestSchedulerFireSkipsBusyJob(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	trigger := &recordingTrigger{err: appErrors.Clone(appErrors.ErrJobRunning, "run abc is RUNNING")}

	NewSchedulerService(trigger, "", zap.New(core)).Fire()
	assert.Equal(t, 1, logs.FilterMessage("scheduled run skipped, job already running").Len())
}

func TestSchedulerStartRejectsBadSpec(t *testing.T) {
	require.Error(t, NewSchedulerService(&recordingTrigger{}, "not a spec", nil).Start())
}

func TestSchedulerStartPlansNextRun(t *testing.T) {
	svc := NewSchedulerService(&recordingTrigger{}, "@daily", nil)
	assert.True(t, svc.Next().IsZero())
	require.NoError(t, svc.Start())
	defer svc.Stop()
	assert.False(t, svc.Next().IsZero())
}
