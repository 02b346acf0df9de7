package aggregator

import (
	"sort"
	"strings"

	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/pkg/sheet"
)

type readerScores struct {
	scores map[string]int
	order  []string
}

// TopReadersAccumulator ranks students by listen + read within each classroom.
type TopReadersAccumulator struct {
	classrooms map[string]*readerScores
	order      []string
	limit      int
}

func NewTopReadersAccumulator() *TopReadersAccumulator {
	return &TopReadersAccumulator{
		classrooms: make(map[string]*readerScores),
		limit:      TopReadersPerClassroom,
	}
}

func (a *TopReadersAccumulator) Add(file models.ReportFile, table *sheet.Table) {
	if table == nil || len(table.Rows) == 0 {
		return
	}
	classroom, ok := a.classrooms[file.Owner]
	if !ok {
		classroom = &readerScores{scores: make(map[string]int)}
		a.classrooms[file.Owner] = classroom
		a.order = append(a.order, file.Owner)
	}
	for _, row := range table.Rows {
		name := strings.TrimSpace(sheet.Cell(row, UsageColStudent))
		if name == "" {
			continue
		}
		if _, seen := classroom.scores[name]; !seen {
			classroom.order = append(classroom.order, name)
		}
		classroom.scores[name] += parseCount(sheet.Cell(row, UsageColListen)) +
			parseCount(sheet.Cell(row, UsageColRead))
	}
}

// Classrooms returns up to three positive-score readers per classroom. Ties
// keep first-seen order; classrooms without a positive score are omitted.
func (a *TopReadersAccumulator) Classrooms() []models.ClassroomTopReaders {
	out := make([]models.ClassroomTopReaders, 0, len(a.order))
	for _, name := range a.order {
		classroom := a.classrooms[name]
		readers := make([]models.TopReader, 0, len(classroom.order))
		for _, student := range classroom.order {
			if score := classroom.scores[student]; score > 0 {
				readers = append(readers, models.TopReader{Name: student, Score: score})
			}
		}
		if len(readers) == 0 {
			continue
		}
		sort.SliceStable(readers, func(i, j int) bool {
			return readers[i].Score > readers[j].Score
		})
		if len(readers) > a.limit {
			readers = readers[:a.limit]
		}
		out = append(out, models.ClassroomTopReaders{Name: name, Students: readers})
	}
	return out
}
