package aggregator

import (
	"sort"
	"strings"

	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/pkg/sheet"
)

// LevelUpAccumulator collects level and progress per student and classroom.
type LevelUpAccumulator struct {
	classrooms map[string][]models.LevelUpStudent
	order      []string
}

func NewLevelUpAccumulator() *LevelUpAccumulator {
	return &LevelUpAccumulator{classrooms: make(map[string][]models.LevelUpStudent)}
}

func (a *LevelUpAccumulator) Add(file models.ReportFile, table *sheet.Table) {
	if table == nil {
		return
	}
	for _, row := range table.Rows {
		student := strings.TrimSpace(sheet.Cell(row, LevelUpColStudent))
		if student == "" {
			continue
		}
		if _, seen := a.classrooms[file.Owner]; !seen {
			a.order = append(a.order, file.Owner)
		}
		a.classrooms[file.Owner] = append(a.classrooms[file.Owner], models.LevelUpStudent{
			Student:  student,
			Level:    strings.TrimSpace(sheet.Cell(row, LevelUpColLevel)),
			Progress: parsePercent(sheet.Cell(row, LevelUpColProgress)),
		})
	}
}

// Classrooms returns classrooms in first-seen order with students sorted by
// name. The sort is byte-wise, so uppercase names come first.
func (a *LevelUpAccumulator) Classrooms() []models.ClassroomLevelUp {
	out := make([]models.ClassroomLevelUp, 0, len(a.order))
	for _, name := range a.order {
		students := make([]models.LevelUpStudent, len(a.classrooms[name]))
		copy(students, a.classrooms[name])
		sort.SliceStable(students, func(i, j int) bool {
			return students[i].Student < students[j].Student
		})
		out = append(out, models.ClassroomLevelUp{Classroom: name, Students: students})
	}
	return out
}
