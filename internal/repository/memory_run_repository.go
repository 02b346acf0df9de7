package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

// DefaultMemoryRuns bounds the in-memory history.
const DefaultMemoryRuns = 200

// MemoryRunRepository keeps run history in process when Postgres is disabled.
// The oldest runs are evicted once the limit is reached.
type MemoryRunRepository struct {
	mu    sync.RWMutex
	runs  []models.CombineRun
	limit int
}

func NewMemoryRunRepository(limit int) *MemoryRunRepository {
	if limit <= 0 {
		limit = DefaultMemoryRuns
	}
	return &MemoryRunRepository{limit: limit}
}

func (r *MemoryRunRepository) Create(_ context.Context, run *models.CombineRun) error {
	prepareRun(run)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, cloneRun(*run))
	if len(r.runs) > r.limit {
		r.runs = r.runs[len(r.runs)-r.limit:]
	}
	return nil
}

func (r *MemoryRunRepository) GetByID(_ context.Context, id string) (*models.CombineRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.runs {
		if r.runs[i].ID == id {
			run := cloneRun(r.runs[i])
			return &run, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "run not found")
}

func (r *MemoryRunRepository) Update(_ context.Context, id string, params UpdateRunParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID != id {
			continue
		}
		run := &r.runs[i]
		if params.Status != nil {
			run.Status = *params.Status
		}
		if params.OutputFile != nil {
			v := *params.OutputFile
			run.OutputFile = &v
		}
		if params.Sheets != nil {
			run.Sheets = append(models.SheetLedger{}, (*params.Sheets)...)
		}
		if params.FinishedAt != nil {
			v := *params.FinishedAt
			run.FinishedAt = &v
		}
		if params.ErrorMessage != nil {
			v := *params.ErrorMessage
			run.ErrorMessage = &v
		}
		return nil
	}
	return appErrors.Clone(appErrors.ErrNotFound, "run not found")
}

func (r *MemoryRunRepository) List(_ context.Context, filter models.RunFilter) ([]models.CombineRun, int, error) {
	page, size := normalizePage(filter.Page, filter.PageSize)

	r.mu.RLock()
	matched := make([]models.CombineRun, 0, len(r.runs))
	for _, run := range r.runs {
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneRun(run))
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].StartedAt.After(matched[j].StartedAt)
	})

	total := len(matched)
	start := (page - 1) * size
	if start >= total {
		return []models.CombineRun{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *MemoryRunRepository) Latest(ctx context.Context) (*models.CombineRun, error) {
	runs, _, err := r.List(ctx, models.RunFilter{Page: 1, PageSize: 1})
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

func cloneRun(run models.CombineRun) models.CombineRun {
	out := run
	out.Sheets = append(models.SheetLedger{}, run.Sheets...)
	if run.OutputFile != nil {
		v := *run.OutputFile
		out.OutputFile = &v
	}
	if run.FinishedAt != nil {
		v := *run.FinishedAt
		out.FinishedAt = &v
	}
	if run.ErrorMessage != nil {
		v := *run.ErrorMessage
		out.ErrorMessage = &v
	}
	return out
}
