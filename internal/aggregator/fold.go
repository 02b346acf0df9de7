package aggregator

import (
	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/pkg/reportfile"
	"github.com/noah-isme/reading-reports-api/pkg/sheet"
)

// TableReader loads one file; ok is false when the file has no usable rows.
type TableReader func(path string) (table *sheet.Table, ok bool)

// Accumulator is the common shape of every fold target.
type Accumulator interface {
	Add(file models.ReportFile, table *sheet.Table)
}

// Fold feeds files into acc in lexicographic filename order, skipping files
// without rows, and returns how many files contributed.
func Fold(files []models.ReportFile, read TableReader, acc Accumulator) int {
	used := 0
	for _, file := range reportfile.SortByName(files) {
		table, ok := read(file.Path)
		if !ok {
			continue
		}
		acc.Add(file, table)
		used++
	}
	return used
}

func FoldUsage(files []models.ReportFile, read TableReader) *UsageAccumulator {
	acc := NewUsageAccumulator()
	Fold(files, read, acc)
	return acc
}

func FoldSkills(files []models.ReportFile, read TableReader) *SkillAccumulator {
	acc := NewSkillAccumulator()
	Fold(files, read, acc)
	return acc
}

func FoldLevelUp(files []models.ReportFile, read TableReader) *LevelUpAccumulator {
	acc := NewLevelUpAccumulator()
	Fold(files, read, acc)
	return acc
}

func FoldTopReaders(files []models.ReportFile, read TableReader) *TopReadersAccumulator {
	acc := NewTopReadersAccumulator()
	Fold(files, read, acc)
	return acc
}

func FoldActivity(t models.ReportType, files []models.ReportFile, read TableReader) *ActivityAccumulator {
	acc := NewActivityAccumulator(t)
	Fold(files, read, acc)
	return acc
}
