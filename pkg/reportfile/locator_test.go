package reportfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/reading-reports-api/internal/models"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestLocatorFindsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ClassB_Student Usage_2.xlsx")
	touch(t, dir, "ClassA_Student Usage_1.xlsx")
	touch(t, dir, "ClassA_Skill_1.xlsx")
	touch(t, dir, "~$ClassA_Student Usage_1.xlsx")
	touch(t, dir, "ClassC_Student Usage_3.csv")

	locator := NewLocator(dir, nil, nil)
	files := SortByName(locator.Locate(models.ReportTypeStudentUsage))

	require.Len(t, files, 2)
	assert.Equal(t, "ClassA_Student Usage_1.xlsx", files[0].Name)
	assert.Equal(t, "ClassA", files[0].Owner)
	assert.Equal(t, models.ReportTypeStudentUsage, files[0].Type)
	assert.Equal(t, filepath.Join(dir, "ClassA_Student Usage_1.xlsx"), files[0].Path)
	assert.Equal(t, "ClassB", files[1].Owner)

	csv := locator.LocateExt(models.ReportTypeStudentUsage, "csv")
	require.Len(t, csv, 1)
	assert.Equal(t, "ClassC", csv[0].Owner)
}

func TestLocatorDeduplicatesAcrossRoots(t *testing.T) {
	primary := t.TempDir()
	fallback := t.TempDir()
	touch(t, primary, "ClassA_Skill_1.xlsx")
	touch(t, fallback, "ClassA_Skill_1.xlsx")
	touch(t, fallback, "ClassB_Skill_1.xlsx")

	locator := NewLocator(primary, []string{fallback}, nil)
	files := SortByName(locator.Locate(models.ReportTypeSkill))

	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(primary, "ClassA_Skill_1.xlsx"), files[0].Path)
	assert.Equal(t, filepath.Join(fallback, "ClassB_Skill_1.xlsx"), files[1].Path)
	assert.Equal(t, primary, locator.PrimaryRoot())
}

func TestLocatorMissingRootsYieldNothing(t *testing.T) {
	locator := NewLocator(filepath.Join(t.TempDir(), "absent"), nil, nil)
	assert.Empty(t, locator.Locate(models.ReportTypeLevelUp))

	empty := NewLocator("", nil, nil)
	assert.Empty(t, empty.Locate(models.ReportTypeLevelUp))
	assert.Equal(t, "", empty.PrimaryRoot())
}

func TestResolveRootsRelative(t *testing.T) {
	roots := ResolveRoots("reports")
	require.NotEmpty(t, roots)
	for _, root := range roots {
		assert.True(t, filepath.IsAbs(root))
		assert.Equal(t, "reports", filepath.Base(root))
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Contains(t, roots, filepath.Join(wd, "reports"))
}
