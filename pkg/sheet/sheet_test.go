package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadTableNormalizesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ClassA_Skill_1.xlsx")
	require.NoError(t, WriteRows(path, [][]string{
		{"Skill", "Correct", "Total", "Accuracy"},
		{"Phonics", "8", "10", "NaN"},
		{"", "", "", ""},
		{"Vocabulary", "N/A"},
	}))

	table, ok := ReadTable(path, nil)
	require.True(t, ok)
	assert.Equal(t, []string{"Skill", "Correct", "Total", "Accuracy"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Phonics", "8", "10", ""}, table.Rows[0])
	assert.Equal(t, []string{"Vocabulary", "", "", ""}, table.Rows[1])
}

func TestReadTableSkipsUnusableFiles(t *testing.T) {
	dir := t.TempDir()

	_, ok := ReadTable(filepath.Join(dir, "missing.xlsx"), nil)
	assert.False(t, ok)

	empty := filepath.Join(dir, "empty.xlsx")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, ok = ReadTable(empty, nil)
	assert.False(t, ok)

	corrupt := filepath.Join(dir, "corrupt.xlsx")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a workbook"), 0o644))
	_, ok = ReadTable(corrupt, nil)
	assert.False(t, ok)

	headerOnly := filepath.Join(dir, "header.xlsx")
	require.NoError(t, WriteRows(headerOnly, [][]string{{"Student", "Level"}}))
	_, ok = ReadTable(headerOnly, nil)
	assert.False(t, ok)
}

func TestNormalizeKeepsColumnsBeyondHeader(t *testing.T) {
	table, ok := Normalize([][]string{
		{"Student", "Level"},
		{"Ana", "K", "45%"},
		{"Ben"},
	})
	require.True(t, ok)
	assert.Equal(t, []string{"Student", "Level", ""}, table.Header)
	assert.Equal(t, [][]string{{"Ana", "K", "45%"}, {"Ben", "", ""}}, table.Rows)
	assert.Equal(t, "45%", Cell(table.Rows[0], 2))
	assert.Equal(t, "", Cell(table.Rows[0], 5))
}

func TestNormalizeHeaderWithBlankTail(t *testing.T) {
	table, ok := Normalize([][]string{
		{},
		{"District", "School", "Teacher", "Grade", "Class", "Student", "Level", "", "NaN"},
		{"d", "s", "t", "3", "A", "Ana", "K", "45%", "", ""},
	})
	require.True(t, ok)
	require.Len(t, table.Header, 8)
	assert.Equal(t, "", table.Header[7])
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "45%", table.Rows[0][7])
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "Student Usage", SanitizeSheetName("Student Usage"))
	assert.Equal(t, "a_b_c_d_e_f_g_h", SanitizeSheetName("a:b\\c/d?e*f[g]h"))

	long := strings.Repeat("x", 40)
	assert.Len(t, SanitizeSheetName(long), MaxNameLength)
	assert.Equal(t, "Sheet", SanitizeSheetName("   "))
}

func TestUniqueSheetName(t *testing.T) {
	assert.Equal(t, "Skill", UniqueSheetName("Skill", nil))
	assert.Equal(t, "Skill_1", UniqueSheetName("Skill", []string{"Skill"}))
	assert.Equal(t, "Skill_2", UniqueSheetName("skill", []string{"Skill", "Skill_1"}))

	long := strings.Repeat("y", MaxNameLength)
	unique := UniqueSheetName(long, []string{long})
	assert.LessOrEqual(t, len(unique), MaxNameLength)
	assert.True(t, strings.HasSuffix(unique, "_1"))
}

func TestColumnWidthsClamp(t *testing.T) {
	widths := ColumnWidths([]Row{
		{Kind: RowHeader, Cells: []string{"", "Name", strings.Repeat("z", 80)}},
		{Kind: RowData, Cells: []string{"", "Al"}},
	})
	assert.Equal(t, []float64{2, 6, 50}, widths)
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, int64(42), CellValue("42"))
	assert.Equal(t, 85.5, CellValue("85.5"))
	assert.Equal(t, "0012", CellValue("0012"))
	assert.Equal(t, "45%", CellValue("45%"))
	assert.Equal(t, int64(0), CellValue("0"))
}

func TestRenderStylesAndDataBar(t *testing.T) {
	buf, err := Render([]Plan{{
		Name: "Skill",
		Rows: []Row{
			{Kind: RowHeader, Cells: []string{"Skill", "Correct", "Total", "Accuracy"}},
			{Kind: RowSeparator, Cells: []string{"User: ClassA"}},
			{Kind: RowData, Cells: []string{"Phonics", "8", "10", "80"}},
		},
		DataBar: &DataBar{Column: 4, FromRow: 2, ToRow: 3},
	}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{"Skill"}, f.GetSheetList())

	rows, err := f.GetRows("Skill")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "User: ClassA", rows[1][0])

	formats, err := f.GetConditionalFormats("Skill")
	require.NoError(t, err)
	require.Contains(t, formats, "D2:D3")
	assert.Equal(t, "data_bar", formats["D2:D3"][0].Type)

	width, err := f.GetColWidth("Skill", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("User: ClassA")+2), width)

	styleID, err := f.GetCellStyle("Skill", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.True(t, style.Font.Bold)
	assert.Equal(t, "center", style.Alignment.Horizontal)
}

func TestRenderRejectsEmptyPlan(t *testing.T) {
	_, err := Render(nil)
	assert.Error(t, err)
}
