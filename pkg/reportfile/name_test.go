package reportfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/reading-reports-api/internal/models"
)

func TestParseName(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		owner    string
		typ      models.ReportType
		suffix   string
	}{
		{"classroom usage", "ClassA_Student Usage_20240301.xlsx", "ClassA", models.ReportTypeStudentUsage, "20240301"},
		{"owner with underscores", "Grade 3_B_Skill_x.xlsx", "Grade 3_B", models.ReportTypeSkill, "x"},
		{"level up", "4to EGB_Level Up Progress_week.xlsx", "4to EGB", models.ReportTypeLevelUp, "week"},
		{"legacy without owner", "Assessment_20240301.xlsx", models.UnknownOwner, models.ReportTypeAssessment, "20240301"},
		{"csv export", "teacher1_Assignment_a.csv", "teacher1", models.ReportTypeAssignment, "a"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, ok := ParseName(tc.filename)
			require.True(t, ok)
			assert.Equal(t, tc.owner, parsed.Owner)
			assert.Equal(t, tc.typ, parsed.Type)
			assert.Equal(t, tc.suffix, parsed.Suffix)
		})
	}
}

func TestParseNameRejectsUnrelatedFiles(t *testing.T) {
	_, ok := ParseName("Combined_All_Reports_20240301_101010.xlsx")
	assert.False(t, ok)

	_, ok = ParseName("notes.txt")
	assert.False(t, ok)
}

func TestOwnerFallsBackToUnknown(t *testing.T) {
	assert.Equal(t, models.UnknownOwner, Owner("random.xlsx", models.ReportTypeSkill))
	assert.Equal(t, "ClassA", Owner("/tmp/reports/ClassA_Skill_1.xlsx", models.ReportTypeSkill))
}
