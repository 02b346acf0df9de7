package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/aggregator"
	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/pkg/export"
	"github.com/noah-isme/reading-reports-api/pkg/reportfile"
	"github.com/noah-isme/reading-reports-api/pkg/sheet"
)

const (
	// CombinedPrefix starts every combined workbook filename.
	CombinedPrefix = "Combined_All_Reports_"
	// CombinedPattern matches combined workbooks in the reports directory.
	CombinedPattern = CombinedPrefix + "*.xlsx"

	combinedTimestamp = "20060102_150405"
	separatorLabel    = "User: "
)

// Summary row labels appended to the Student Usage sheet.
const (
	LabelTotalTeachers = "Total Teachers"
	LabelTotalStudents = "Total Students"
	LabelTotalListens  = "Total Listens"
	LabelTotalReads    = "Total Reads"
	LabelTotalQuizzes  = "Total Quizzes"
	LabelTotal         = "Total"
)

type reportLocator interface {
	Locate(t models.ReportType) []models.ReportFile
	LocateExt(t models.ReportType, ext string) []models.ReportFile
}

type workbookStorage interface {
	SaveUnique(filename string, data []byte) (string, error)
	Path(filename string) string
}

// CombineService merges every located report into one multi-sheet workbook.
type CombineService struct {
	locator reportLocator
	storage workbookStorage
	read    aggregator.TableReader
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewCombineService wires the combine pipeline.
func NewCombineService(locator reportLocator, storage workbookStorage, metrics *MetricsService, logger *zap.Logger) *CombineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CombineService{
		locator: locator,
		storage: storage,
		read:    tableReader(logger),
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

func tableReader(logger *zap.Logger) aggregator.TableReader {
	return func(path string) (*sheet.Table, bool) {
		return sheet.ReadTable(path, logger)
	}
}

// ConvertPending turns every *_<type>_*.csv export into xlsx and removes the
// CSV. Failures are logged per file; the number converted is returned.
func (s *CombineService) ConvertPending(ctx context.Context) int {
	converted := 0
	for _, t := range models.AllReportTypes() {
		for _, file := range s.locator.LocateExt(t, "csv") {
			if ctx.Err() != nil {
				return converted
			}
			if _, err := export.ConvertCSVToXLSX(file.Path, true); err != nil {
				s.logger.Warn("csv conversion failed", zap.String("file", file.Name), zap.Error(err))
				continue
			}
			converted++
		}
	}
	if converted > 0 {
		s.logger.Info("converted csv exports", zap.Int("count", converted))
	}
	return converted
}

// Combine writes Combined_All_Reports_<timestamp>.xlsx. It returns nil and
// writes nothing when no sheet could be populated. Only failures to encode
// or store the workbook are errors.
func (s *CombineService) Combine(ctx context.Context) (*models.CombinedWorkbook, error) {
	start := s.now()
	plans, sheets, err := s.Plan(ctx)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		s.logger.Info("nothing to combine")
		s.metrics.ObserveCombine("empty", time.Since(start), 0)
		return nil, nil
	}

	buf, err := sheet.Render(plans)
	if err != nil {
		s.metrics.ObserveCombine("failed", time.Since(start), 0)
		return nil, fmt.Errorf("build combined workbook: %w", err)
	}

	filename := CombinedPrefix + start.Format(combinedTimestamp) + ".xlsx"
	stored, err := s.storage.SaveUnique(filename, buf.Bytes())
	if err != nil {
		s.metrics.ObserveCombine("failed", time.Since(start), 0)
		return nil, fmt.Errorf("save combined workbook: %w", err)
	}

	s.metrics.ObserveCombine("finished", time.Since(start), len(sheets))
	s.logger.Info("combined workbook written", zap.String("file", stored), zap.Int("sheets", len(sheets)))

	return &models.CombinedWorkbook{
		Path:        s.storage.Path(stored),
		Filename:    stored,
		Sheets:      sheets,
		GeneratedAt: start,
	}, nil
}

// Plan lays out one sheet per report type that has rows, in fixed type order.
func (s *CombineService) Plan(ctx context.Context) ([]sheet.Plan, []models.CombinedSheet, error) {
	plans := make([]sheet.Plan, 0)
	sheets := make([]models.CombinedSheet, 0)
	names := make([]string, 0)

	for _, t := range models.AllReportTypes() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		files := reportfile.SortByName(s.locator.Locate(t))
		if len(files) == 0 {
			continue
		}

		name := sheet.UniqueSheetName(sheet.SanitizeSheetName(string(t)), names)
		plan, meta := s.planSheet(name, t, files)
		if meta.DataRows == 0 {
			s.logger.Warn("dropping sheet without data", zap.String("report_type", string(t)), zap.Int("files", len(files)))
			continue
		}
		names = append(names, name)
		plans = append(plans, plan)
		sheets = append(sheets, meta)
	}
	return plans, sheets, nil
}

func (s *CombineService) planSheet(name string, t models.ReportType, files []models.ReportFile) (sheet.Plan, models.CombinedSheet) {
	plan := sheet.Plan{Name: name}
	meta := models.CombinedSheet{Name: name, ReportType: t}
	usage := aggregator.NewUsageAccumulator()
	headerWritten := false

	for _, file := range files {
		table, ok := s.read(file.Path)
		if !ok {
			continue
		}
		if !headerWritten {
			plan.Rows = append(plan.Rows, sheet.Row{Kind: sheet.RowHeader, Cells: table.Header})
			headerWritten = true
		}
		plan.Rows = append(plan.Rows, sheet.Row{Kind: sheet.RowSeparator, Cells: []string{separatorLabel + file.Owner}})
		for _, row := range table.Rows {
			plan.Rows = append(plan.Rows, sheet.Row{Kind: sheet.RowData, Cells: row})
		}
		meta.Files++
		meta.Separators++
		meta.DataRows += len(table.Rows)

		if t == models.ReportTypeStudentUsage {
			usage.Add(file, table)
		}
	}
	if meta.DataRows == 0 {
		return plan, meta
	}

	switch t {
	case models.ReportTypeStudentUsage:
		plan.Rows = append(plan.Rows, usageSummaryRows(usage.School())...)
	case models.ReportTypeSkill:
		plan.DataBar = &sheet.DataBar{
			Column:  aggregator.SkillColAccuracy + 1,
			FromRow: 2,
			ToRow:   len(plan.Rows),
		}
	}
	return plan, meta
}

func usageSummaryRows(school *models.SchoolSummary) []sheet.Row {
	if school == nil {
		return nil
	}
	row := func(label string, value int) sheet.Row {
		return sheet.Row{Kind: sheet.RowSummary, Cells: []string{label, strconv.Itoa(value)}}
	}
	return []sheet.Row{
		{Kind: sheet.RowSpacer},
		row(LabelTotalTeachers, school.AllTeachers),
		row(LabelTotalStudents, school.AllStudents),
		row(LabelTotalListens, school.TotalListen),
		row(LabelTotalReads, school.TotalRead),
		row(LabelTotalQuizzes, school.TotalQuizzes),
		row(LabelTotal, school.TotalActivities),
	}
}
