package aggregator

import (
	"strings"

	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/pkg/sheet"
)

// SkillAccumulator collects skill rows per classroom.
type SkillAccumulator struct {
	classrooms map[string][]models.SkillData
	order      []string
}

func NewSkillAccumulator() *SkillAccumulator {
	return &SkillAccumulator{classrooms: make(map[string][]models.SkillData)}
}

func (a *SkillAccumulator) Add(file models.ReportFile, table *sheet.Table) {
	if table == nil {
		return
	}
	for _, row := range table.Rows {
		skill, ok := ParseSkillRow(row)
		if !ok {
			continue
		}
		if _, seen := a.classrooms[file.Owner]; !seen {
			a.order = append(a.order, file.Owner)
		}
		a.classrooms[file.Owner] = append(a.classrooms[file.Owner], skill)
	}
}

// ParseSkillRow reads one Skill row. Correct and total count only when the
// cell is a plain digit string. A missing or zero accuracy is derived from
// correct/total.
func ParseSkillRow(row []string) (models.SkillData, bool) {
	name := strings.TrimSpace(sheet.Cell(row, SkillColName))
	if name == "" {
		return models.SkillData{}, false
	}
	correct := parseDigits(sheet.Cell(row, SkillColCorrect))
	total := parseDigits(sheet.Cell(row, SkillColTotal))

	accuracy := parsePercent(sheet.Cell(row, SkillColAccuracy))
	if accuracy == 0 {
		accuracy = percentage(correct, total)
	}

	return models.SkillData{
		Name:     name,
		Correct:  correct,
		Total:    total,
		Accuracy: accuracy,
	}, true
}

// Classrooms returns each classroom's skills in first-seen order.
func (a *SkillAccumulator) Classrooms() []models.ClassroomSkills {
	out := make([]models.ClassroomSkills, 0, len(a.order))
	for _, name := range a.order {
		skills := make([]models.SkillData, len(a.classrooms[name]))
		copy(skills, a.classrooms[name])
		out = append(out, models.ClassroomSkills{Classroom: name, Skills: skills})
	}
	return out
}

// Summary aggregates every skill across classrooms, or nil without skills.
func (a *SkillAccumulator) Summary() *models.SkillsSummary {
	if len(a.order) == 0 {
		return nil
	}

	type running struct {
		sum   float64
		count int
	}
	averages := make(map[string]*running)
	names := make([]string, 0)

	summary := &models.SkillsSummary{TotalClassrooms: len(a.order)}
	for _, classroom := range a.order {
		for _, skill := range a.classrooms[classroom] {
			summary.TotalCorrect += skill.Correct
			summary.TotalQuestions += skill.Total

			switch {
			case skill.Accuracy >= HighAccuracy:
				summary.Distribution.High++
			case skill.Accuracy >= MediumAccuracy:
				summary.Distribution.Medium++
			default:
				summary.Distribution.Low++
			}

			avg, ok := averages[skill.Name]
			if !ok {
				avg = &running{}
				averages[skill.Name] = avg
				names = append(names, skill.Name)
			}
			avg.sum += skill.Accuracy
			avg.count++
		}
	}

	summary.OverallAccuracy = percentage(summary.TotalCorrect, summary.TotalQuestions)
	summary.SkillAverages = make([]models.SkillAverage, 0, len(names))
	for _, name := range names {
		avg := averages[name]
		summary.SkillAverages = append(summary.SkillAverages, models.SkillAverage{
			Name:     name,
			Accuracy: round1(avg.sum / float64(avg.count)),
			Samples:  avg.count,
		})
	}
	return summary
}
