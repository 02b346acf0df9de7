package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
	"github.com/noah-isme/reading-reports-api/pkg/export"
)

const (
	dashboardCachePrefix  = "dashboard:"
	dashboardCachePattern = dashboardCachePrefix + "*"
	exportTimestamp       = "20060102_150405"
)

type summaryProvider interface {
	SchoolSummary() *models.SchoolSummary
	ClassroomSummaries() []models.ClassroomSummary
	ClassroomComparison() *models.ClassroomComparison
	SkillsSummary() *models.SkillsSummary
	TopReaders() []models.ClassroomTopReaders
	LevelUp() []models.ClassroomLevelUp
}

type periodProvider interface {
	Period(ctx context.Context) (string, string)
}

type latestReportFinder interface {
	Latest(ctx context.Context) (*models.StoredReport, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	Institution string
	CacheTTL    time.Duration
}

// DashboardService composes the summary views into the overview payload and
// its PDF and CSV exports.
type DashboardService struct {
	summaries summaryProvider
	locator   reportLocator
	period    periodProvider
	files     latestReportFinder
	cache     *CacheService
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Summaries summaryProvider
	Locator   reportLocator
	Period    periodProvider
	Files     latestReportFinder
	Cache     *CacheService
	CSV       csvRenderer
	PDF       pdfRenderer
	Logger    *zap.Logger
	Config    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Institution == "" {
		cfg.Institution = "Unidad Educativa"
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &DashboardService{
		summaries: params.Summaries,
		locator:   params.Locator,
		period:    params.Period,
		files:     params.Files,
		cache:     params.Cache,
		csv:       csv,
		pdf:       pdf,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Overview returns every view in one payload and reports whether it came
// from the cache. Entries are keyed by a fingerprint of the source files and
// the configured period, so new exports never serve a stale overview.
func (s *DashboardService) Overview(ctx context.Context) (*models.DashboardOverview, bool, error) {
	period, dateRange := s.period.Period(ctx)
	key := dashboardCachePrefix + "overview:" + s.fingerprint(period, dateRange)

	var cached models.DashboardOverview
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	overview := &models.DashboardOverview{
		Institution: s.cfg.Institution,
		Period:      period,
		DateRange:   dateRange,
		School:      s.summaries.SchoolSummary(),
		Classrooms:  s.summaries.ClassroomSummaries(),
		Skills:      s.summaries.SkillsSummary(),
		TopReaders:  s.summaries.TopReaders(),
		LevelUp:     s.summaries.LevelUp(),
		Comparison:  s.summaries.ClassroomComparison(),
	}
	if latest, err := s.files.Latest(ctx); err == nil {
		overview.LatestReport = latest.Name
	}

	s.cache.Set(ctx, key, overview, s.cfg.CacheTTL)
	return overview, false, nil
}

// ExportPDF renders the school overview. It fails with ErrNoData when no
// Student Usage or Skill data exists.
func (s *DashboardService) ExportPDF(ctx context.Context) ([]byte, string, error) {
	overview, _, err := s.Overview(ctx)
	if err != nil {
		return nil, "", err
	}
	if overview.School == nil && overview.Skills == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNoData, "no usage or skill data to export")
	}

	doc := export.Document{
		Title:    overview.Institution,
		Subtitle: strings.TrimSpace(overview.Period + " | " + overview.DateRange),
	}
	if school := overview.School; school != nil {
		doc.Facts = append(doc.Facts,
			export.Fact{Label: LabelTotalTeachers, Value: strconv.Itoa(school.AllTeachers)},
			export.Fact{Label: LabelTotalStudents, Value: strconv.Itoa(school.AllStudents)},
			export.Fact{Label: LabelTotalListens, Value: strconv.Itoa(school.TotalListen)},
			export.Fact{Label: LabelTotalReads, Value: strconv.Itoa(school.TotalRead)},
			export.Fact{Label: LabelTotalQuizzes, Value: strconv.Itoa(school.TotalQuizzes)},
			export.Fact{Label: LabelTotal, Value: strconv.Itoa(school.TotalActivities)},
		)
	}
	if len(overview.Classrooms) > 0 {
		doc.Sections = append(doc.Sections, export.Section{Title: "Classrooms", Data: classroomDataset(overview.Classrooms)})
	}
	if skills := overview.Skills; skills != nil {
		doc.Facts = append(doc.Facts, export.Fact{Label: "Overall Accuracy", Value: formatPercent(skills.OverallAccuracy)})
		doc.Sections = append(doc.Sections, export.Section{Title: "Skills", Data: skillDataset(skills)})
	}
	if len(overview.TopReaders) > 0 {
		doc.Sections = append(doc.Sections, export.Section{Title: "Top Readers", Data: topReaderDataset(overview.TopReaders)})
	}

	payload, err := s.pdf.Render(doc)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, "school_overview_" + s.now().Format(exportTimestamp) + ".pdf", nil
}

// ExportCSV renders one row per classroom.
func (s *DashboardService) ExportCSV(ctx context.Context) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	classrooms := s.summaries.ClassroomSummaries()
	if len(classrooms) == 0 {
		return nil, "", appErrors.Clone(appErrors.ErrNoData, "no classroom data to export")
	}
	payload, err := s.csv.Render(classroomDataset(classrooms))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, "classroom_summary_" + s.now().Format(exportTimestamp) + ".csv", nil
}

// fingerprint hashes the name, size and mtime of every located export.
func (s *DashboardService) fingerprint(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(h, "%s\n", part)
	}
	for _, t := range models.AllReportTypes() {
		for _, file := range s.locator.Locate(t) {
			info, err := os.Stat(file.Path)
			if err != nil {
				continue
			}
			fmt.Fprintf(h, "%s|%d|%d\n", file.Path, info.Size(), info.ModTime().UnixNano())
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func classroomDataset(classrooms []models.ClassroomSummary) export.Dataset {
	data := export.Dataset{
		Headers: []string{"Classroom", "Students", "Students Used", "Usage %", "Listen", "Read", "Quiz", "Interactivity", "Practice Recording"},
		Rows:    make([][]string, 0, len(classrooms)),
	}
	for _, c := range classrooms {
		data.Rows = append(data.Rows, []string{
			c.Name,
			strconv.Itoa(c.Students),
			strconv.Itoa(c.StudentsUsed),
			formatPercent(c.Usage),
			strconv.Itoa(c.Listen),
			strconv.Itoa(c.Read),
			strconv.Itoa(c.Quiz),
			strconv.Itoa(c.Interactivity),
			strconv.Itoa(c.PracticeRecording),
		})
	}
	return data
}

func skillDataset(skills *models.SkillsSummary) export.Dataset {
	data := export.Dataset{
		Headers: []string{"Skill", "Average Accuracy", "Classrooms"},
		Rows:    make([][]string, 0, len(skills.SkillAverages)),
	}
	for _, avg := range skills.SkillAverages {
		data.Rows = append(data.Rows, []string{avg.Name, formatPercent(avg.Accuracy), strconv.Itoa(avg.Samples)})
	}
	return data
}

func topReaderDataset(classrooms []models.ClassroomTopReaders) export.Dataset {
	data := export.Dataset{Headers: []string{"Classroom", "Rank", "Student", "Score"}}
	for _, c := range classrooms {
		for i, reader := range c.Students {
			data.Rows = append(data.Rows, []string{c.Name, strconv.Itoa(i + 1), reader.Name, strconv.Itoa(reader.Score)})
		}
	}
	return data
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
