package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/reading-reports-api/internal/models"
)

func TestSummaryViewsWithoutData(t *testing.T) {
	svc := NewSummaryService(newReportsDir(t).locator(), nil)

	assert.Nil(t, svc.SchoolSummary())
	assert.Nil(t, svc.ClassroomSummaries())
	assert.Nil(t, svc.ClassroomComparison())
	assert.Nil(t, svc.ClassroomSkills())
	assert.Nil(t, svc.SkillsSummary())
	assert.Nil(t, svc.TopReaders())
	assert.Nil(t, svc.LevelUp())
	assert.Nil(t, svc.Activity(models.ReportTypeAssignment))
}

func TestSummaryScenario(t *testing.T) {
	r := newReportsDir(t)
	r.scenario()
	svc := NewSummaryService(r.locator(), nil)

	classrooms := svc.ClassroomSummaries()
	require.Len(t, classrooms, 2)
	assert.Equal(t, "ClassA", classrooms[0].Name)
	assert.Equal(t, "ClassB", classrooms[1].Name)

	school := svc.SchoolSummary()
	require.NotNil(t, school)
	assert.Equal(t, 6, school.TotalListen)
	assert.Equal(t, 4, school.TotalRead)
	assert.Equal(t, 3, school.TotalQuizzes)
	assert.Equal(t, 13, school.TotalActivities)
	assert.Equal(t, 2, school.AllTeachers)
	assert.Equal(t, 2, school.AllStudents)

	skills := svc.ClassroomSkills()
	require.Len(t, skills, 1)
	assert.Equal(t, 80.0, skills[0].Skills[0].Accuracy)

	cmp := svc.ClassroomComparison()
	require.NotNil(t, cmp)
	assert.Equal(t, []string{"ClassA", "ClassB"}, cmp.Labels)

	readers := svc.TopReaders()
	require.Len(t, readers, 2)
	assert.Equal(t, models.TopReader{Name: "Ana", Score: 8}, readers[0].Students[0])
}

func TestSummaryLevelUp(t *testing.T) {
	r := newReportsDir(t)
	header := []string{"District", "School", "Teacher", "Grade", "Class", "Student", "Level", "Progress"}
	r.write("ClassA_Level Up Progress_1.xlsx",
		header,
		[]string{"d", "s", "t", "3", "A", "Zoe", "K", "45%"},
		[]string{"d", "s", "t", "3", "A", "Ana", "J", "N/A"},
	)

	levelUp := NewSummaryService(r.locator(), nil).LevelUp()
	require.Len(t, levelUp, 1)
	require.Len(t, levelUp[0].Students, 2)
	assert.Equal(t, "Ana", levelUp[0].Students[0].Student)
	assert.Equal(t, 0.0, levelUp[0].Students[0].Progress)
	assert.Equal(t, 45.0, levelUp[0].Students[1].Progress)
}
