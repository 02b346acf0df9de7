package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

const runColumns = `id, run_trigger, status, output_file, sheets, started_at, finished_at, error_message`

const runSchema = `CREATE TABLE IF NOT EXISTS combine_runs (
	id UUID PRIMARY KEY,
	run_trigger TEXT NOT NULL,
	status TEXT NOT NULL,
	output_file TEXT,
	sheets JSONB NOT NULL DEFAULT '[]',
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	error_message TEXT
);
CREATE INDEX IF NOT EXISTS combine_runs_started_at_idx ON combine_runs (started_at DESC)`

// UpdateRunParams defines the mutable fields of a run.
type UpdateRunParams struct {
	Status       *models.RunStatus
	OutputFile   *string
	Sheets       *models.SheetLedger
	FinishedAt   *time.Time
	ErrorMessage *string
}

// RunRepository persists scrape and combine runs in Postgres.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository constructs the repository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// EnsureSchema creates the combine_runs table when missing.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(runSchema, ";\n") {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure combine_runs schema: %w", err)
		}
	}
	return nil
}

// Create inserts a run with generated defaults.
func (r *RunRepository) Create(ctx context.Context, run *models.CombineRun) error {
	prepareRun(run)
	const query = `INSERT INTO combine_runs (` + runColumns + `)
VALUES (:id, :run_trigger, :status, :output_file, :sheets, :started_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create combine run: %w", err)
	}
	return nil
}

// GetByID returns one run.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*models.CombineRun, error) {
	const query = `SELECT ` + runColumns + ` FROM combine_runs WHERE id = $1`
	var run models.CombineRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "run not found")
		}
		return nil, fmt.Errorf("get combine run: %w", err)
	}
	return &run, nil
}

// Update persists the provided changes for a run.
func (r *RunRepository) Update(ctx context.Context, id string, params UpdateRunParams) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	argPos := 1

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.OutputFile != nil {
		add("output_file", *params.OutputFile)
	}
	if params.Sheets != nil {
		add("sheets", *params.Sheets)
	}
	if params.FinishedAt != nil {
		add("finished_at", *params.FinishedAt)
	}
	if params.ErrorMessage != nil {
		add("error_message", *params.ErrorMessage)
	}
	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE combine_runs SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update combine run: %w", err)
	}
	return nil
}

// List returns runs newest first with the total count for filter.
func (r *RunRepository) List(ctx context.Context, filter models.RunFilter) ([]models.CombineRun, int, error) {
	page, size := normalizePage(filter.Page, filter.PageSize)

	where := ""
	args := make([]interface{}, 0, 3)
	if filter.Status != "" {
		where = " WHERE status = $1"
		args = append(args, filter.Status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM combine_runs`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count combine runs: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM combine_runs%s ORDER BY started_at DESC LIMIT $%d OFFSET $%d`,
		runColumns, where, len(args)+1, len(args)+2)
	args = append(args, size, (page-1)*size)

	runs := make([]models.CombineRun, 0)
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list combine runs: %w", err)
	}
	return runs, total, nil
}

// Latest returns the most recent run, or nil when none exist.
func (r *RunRepository) Latest(ctx context.Context) (*models.CombineRun, error) {
	const query = `SELECT ` + runColumns + ` FROM combine_runs ORDER BY started_at DESC LIMIT 1`
	var run models.CombineRun
	if err := r.db.GetContext(ctx, &run, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest combine run: %w", err)
	}
	return &run, nil
}

func prepareRun(run *models.CombineRun) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.RunStatusQueued
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Sheets == nil {
		run.Sheets = models.SheetLedger{}
	}
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
