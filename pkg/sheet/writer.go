package sheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	HeaderFill   = "#D4E6F1"
	HeaderFont   = "#000000"
	DataBarColor = "#4472C4"

	minColumnWidth = 2
	maxColumnWidth = 50
	columnPadding  = 2

	defaultSheet = "Sheet1"
)

// RowKind selects how a planned row is written and styled.
type RowKind int

const (
	RowData RowKind = iota
	RowHeader
	RowSeparator
	RowSpacer
	RowSummary
)

// Row is one planned worksheet row.
type Row struct {
	Kind  RowKind
	Cells []string
}

// DataBar is a 0-100 data bar over one column.
type DataBar struct {
	Column  int
	FromRow int
	ToRow   int
}

// Plan describes a worksheet before it is rendered.
type Plan struct {
	Name    string
	Rows    []Row
	DataBar *DataBar
}

// Render writes every plan into a new workbook and returns its bytes.
func Render(plans []Plan) (*bytes.Buffer, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("render workbook: no sheets")
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	for _, plan := range plans {
		if _, err := f.NewSheet(plan.Name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", plan.Name, err)
		}
		if err := writePlan(f, plan, styles); err != nil {
			return nil, err
		}
	}

	if plans[0].Name != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return nil, fmt.Errorf("drop default sheet: %w", err)
		}
	}
	if idx, err := f.GetSheetIndex(plans[0].Name); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf, nil
}

type styleSet struct {
	header       int
	summaryLabel int
	summaryValue int
}

func newStyles(f *excelize.File) (styleSet, error) {
	fill := excelize.Fill{Type: "pattern", Color: []string{HeaderFill}, Pattern: 1}
	font := &excelize.Font{Bold: true, Color: HeaderFont}

	header, err := f.NewStyle(&excelize.Style{
		Fill:      fill,
		Font:      font,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return styleSet{}, fmt.Errorf("create header style: %w", err)
	}
	label, err := f.NewStyle(&excelize.Style{
		Fill:      fill,
		Font:      font,
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return styleSet{}, fmt.Errorf("create summary label style: %w", err)
	}
	value, err := f.NewStyle(&excelize.Style{
		Fill:      fill,
		Font:      font,
		Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"},
	})
	if err != nil {
		return styleSet{}, fmt.Errorf("create summary value style: %w", err)
	}
	return styleSet{header: header, summaryLabel: label, summaryValue: value}, nil
}

func writePlan(f *excelize.File, plan Plan, styles styleSet) error {
	width := 0
	for _, row := range plan.Rows {
		if len(row.Cells) > width {
			width = len(row.Cells)
		}
	}

	for i, row := range plan.Rows {
		rowNum := i + 1
		if row.Kind == RowSpacer {
			continue
		}
		start, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row.Cells))
		for c, cell := range row.Cells {
			if row.Kind == RowData || row.Kind == RowSummary {
				values[c] = CellValue(cell)
			} else {
				values[c] = cell
			}
		}
		if err := f.SetSheetRow(plan.Name, start, &values); err != nil {
			return fmt.Errorf("write row %d of %q: %w", rowNum, plan.Name, err)
		}

		switch row.Kind {
		case RowHeader, RowSeparator:
			end, err := excelize.CoordinatesToCellName(max(width, 1), rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(plan.Name, start, end, styles.header); err != nil {
				return fmt.Errorf("style row %d of %q: %w", rowNum, plan.Name, err)
			}
		case RowSummary:
			valueCell, err := excelize.CoordinatesToCellName(2, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(plan.Name, start, start, styles.summaryLabel); err != nil {
				return err
			}
			if err := f.SetCellStyle(plan.Name, valueCell, valueCell, styles.summaryValue); err != nil {
				return err
			}
		}
	}

	for col, w := range ColumnWidths(plan.Rows) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(plan.Name, name, name, w); err != nil {
			return fmt.Errorf("size column %s of %q: %w", name, plan.Name, err)
		}
	}

	if bar := plan.DataBar; bar != nil && bar.ToRow >= bar.FromRow {
		colName, err := excelize.ColumnNumberToName(bar.Column)
		if err != nil {
			return err
		}
		ref := fmt.Sprintf("%s%d:%s%d", colName, bar.FromRow, colName, bar.ToRow)
		err = f.SetConditionalFormat(plan.Name, ref, []excelize.ConditionalFormatOptions{{
			Type:     "data_bar",
			Criteria: "=",
			MinType:  "num",
			MaxType:  "num",
			MinValue: "0",
			MaxValue: "100",
			BarColor: DataBarColor,
		}})
		if err != nil {
			return fmt.Errorf("add data bar to %q: %w", plan.Name, err)
		}
	}
	return nil
}

// ColumnWidths returns the longest cell length plus padding for each column,
// clamped to [2, 50].
func ColumnWidths(rows []Row) []float64 {
	widths := make([]float64, 0)
	for _, row := range rows {
		for col, cell := range row.Cells {
			for len(widths) <= col {
				widths = append(widths, minColumnWidth)
			}
			w := float64(utf8.RuneCountInString(cell) + columnPadding)
			if w > widths[col] {
				widths[col] = w
			}
		}
	}
	for i, w := range widths {
		if w > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
	}
	return widths
}

// CellValue converts numeric-looking text into a number so the written cell
// is numeric. Values with leading zeros stay text.
func CellValue(s string) interface{} {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	if hasLeadingZero(trimmed) {
		return s
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if strings.Contains(trimmed, ".") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	}
	return s
}

func hasLeadingZero(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	return len(digits) > 1 && digits[0] == '0' && digits[1] != '.'
}

// WriteRows saves rows as a single-sheet workbook at path. Numeric-looking
// cells are stored as numbers.
func WriteRows(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for c, value := range row {
			values[c] = CellValue(value)
		}
		if err := f.SetSheetRow(defaultSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
