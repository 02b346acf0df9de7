package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/reading-reports-api/pkg/reportfile"
	"github.com/noah-isme/reading-reports-api/pkg/sheet"
	"github.com/noah-isme/reading-reports-api/pkg/storage"
)

var usageHeader = []string{"Student", "Classroom", "District ID", "Grade", "Teacher", "Listen", "Read", "Quiz", "Interactivity", "Practice Recording"}

func usageRow(student, listen, read, quiz string) []string {
	return []string{student, "", "", "3", "Ms. T", listen, read, quiz, "0", "0"}
}

type reportsDir struct {
	t   *testing.T
	dir string
}

func newReportsDir(t *testing.T) *reportsDir {
	t.Helper()
	return &reportsDir{t: t, dir: t.TempDir()}
}

func (r *reportsDir) write(name string, rows ...[]string) {
	r.t.Helper()
	require.NoError(r.t, sheet.WriteRows(filepath.Join(r.dir, name), rows))
}

func (r *reportsDir) locator() *reportfile.Locator {
	return reportfile.NewLocator(r.dir, nil, nil)
}

func (r *reportsDir) storage() *storage.LocalStorage {
	r.t.Helper()
	store, err := storage.NewLocalStorage(r.dir)
	require.NoError(r.t, err)
	return store
}

// scenario writes the two-classroom usage fixture plus one skill file.
func (r *reportsDir) scenario() {
	r.write("ClassA_Student Usage_x.xlsx", usageHeader, usageRow("Ana", "5", "3", "2"))
	r.write("ClassB_Student Usage_y.xlsx", usageHeader, usageRow("Ben", "1", "1", "1"))
	r.write("ClassA_Skill_x.xlsx",
		[]string{"Skill", "Correct", "Total", "Accuracy"},
		[]string{"Phonics", "8", "10", "0"},
	)
}
