package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "run-1", Type: "combine"}))

	select {
	case id := <-done:
		assert.Equal(t, "run-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("job not processed")
	}
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	var calls int32
	q := NewQueue("retry", func(context.Context, Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}, QueueConfig{MaxRetries: 1, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "run-2"}))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueueRecoversPanics(t *testing.T) {
	var calls int32
	q := NewQueue("panic", func(context.Context, Job) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("bad job")
		}
		return nil
	}, QueueConfig{MaxRetries: 1, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "run-3"}))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "x"}))
	assert.Equal(t, 0, q.Pending())
}
