package aggregator

import (
	"strings"

	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/pkg/sheet"
)

// UsageAccumulator folds Student Usage files into classroom and school totals.
// Classrooms are keyed by the owner parsed from each filename.
type UsageAccumulator struct {
	classrooms map[string]*models.ClassroomSummary
	order      []string
	files      int
	rows       int
}

func NewUsageAccumulator() *UsageAccumulator {
	return &UsageAccumulator{classrooms: make(map[string]*models.ClassroomSummary)}
}

// Add folds every row of table into the classroom owning file.
func (a *UsageAccumulator) Add(file models.ReportFile, table *sheet.Table) {
	if table == nil || len(table.Rows) == 0 {
		return
	}
	a.files++

	summary := a.classroom(file.Owner)
	for _, row := range table.Rows {
		listen := parseCount(sheet.Cell(row, UsageColListen))
		read := parseCount(sheet.Cell(row, UsageColRead))
		quiz := parseCount(sheet.Cell(row, UsageColQuiz))

		summary.Students++
		summary.Listen += listen
		summary.Read += read
		summary.Quiz += quiz
		summary.Interactivity += parseCount(sheet.Cell(row, UsageColInteractivity))
		summary.PracticeRecording += parseCount(sheet.Cell(row, UsageColPracticeRecording))
		if listen+read+quiz > 0 {
			summary.StudentsUsed++
		}
		a.rows++
	}
}

func (a *UsageAccumulator) classroom(owner string) *models.ClassroomSummary {
	name := strings.TrimSpace(owner)
	if name == "" {
		name = models.UnknownOwner
	}
	summary, ok := a.classrooms[name]
	if !ok {
		summary = &models.ClassroomSummary{Name: name}
		a.classrooms[name] = summary
		a.order = append(a.order, name)
	}
	return summary
}

// Classrooms returns the finalized summaries in first-seen order.
func (a *UsageAccumulator) Classrooms() []models.ClassroomSummary {
	out := make([]models.ClassroomSummary, 0, len(a.order))
	for _, name := range a.order {
		summary := *a.classrooms[name]
		summary.Usage = percentage(summary.StudentsUsed, summary.Students)
		out = append(out, summary)
	}
	return out
}

// School returns the school-wide totals, or nil when no rows were folded.
func (a *UsageAccumulator) School() *models.SchoolSummary {
	if a.rows == 0 {
		return nil
	}
	school := &models.SchoolSummary{
		AllTeachers: a.files,
		AllStudents: a.rows,
	}
	for _, name := range a.order {
		c := a.classrooms[name]
		school.TotalListen += c.Listen
		school.TotalRead += c.Read
		school.TotalQuizzes += c.Quiz
	}
	school.TotalActivities = school.TotalListen + school.TotalRead + school.TotalQuizzes
	return school
}

// Comparison reshapes classroom summaries into parallel chart series.
// It returns nil for an empty input.
func Comparison(classrooms []models.ClassroomSummary) *models.ClassroomComparison {
	if len(classrooms) == 0 {
		return nil
	}
	cmp := &models.ClassroomComparison{
		Labels: make([]string, 0, len(classrooms)),
		Listen: make([]int, 0, len(classrooms)),
		Read:   make([]int, 0, len(classrooms)),
		Quiz:   make([]int, 0, len(classrooms)),
	}
	for _, c := range classrooms {
		cmp.Labels = append(cmp.Labels, c.Name)
		cmp.Listen = append(cmp.Listen, c.Listen)
		cmp.Read = append(cmp.Read, c.Read)
		cmp.Quiz = append(cmp.Quiz, c.Quiz)
	}
	return cmp
}
