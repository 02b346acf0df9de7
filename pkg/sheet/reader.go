package sheet

import (
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Table is the normalized content of the first worksheet of a file.
// Every row has exactly len(Header) cells; missing values are "".
type Table struct {
	Header []string
	Rows   [][]string
}

var nullMarkers = map[string]struct{}{
	"nan":  {},
	"NaN":  {},
	"None": {},
	"null": {},
	"NULL": {},
	"#N/A": {},
	"N/A":  {},
	"NA":   {},
	"<NA>": {},
}

// ReadTable loads path and normalizes its rows. Missing, empty, corrupt or
// header-only files are logged and reported as ok == false.
func ReadTable(path string, logger *zap.Logger) (*Table, bool) {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(path)
	if err != nil {
		logger.Warn("report file not found", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	if info.Size() == 0 {
		logger.Warn("report file is empty", zap.String("path", path))
		return nil, false
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		logger.Warn("report file unreadable", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	defer f.Close() //nolint:errcheck

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		logger.Warn("report file has no sheets", zap.String("path", path))
		return nil, false
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		logger.Warn("report sheet unreadable", zap.String("path", path), zap.String("sheet", sheets[0]), zap.Error(err))
		return nil, false
	}

	table, ok := Normalize(raw)
	if !ok {
		logger.Warn("report file has no data rows", zap.String("path", path))
		return nil, false
	}
	return table, true
}

// Normalize turns raw rows into a Table. The first non-blank row is the
// header. The table is as wide as its widest row; a short header is padded
// with empty labels.
func Normalize(raw [][]string) (*Table, bool) {
	start := -1
	for i, row := range raw {
		if !isBlank(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, false
	}

	header := trimTrailing(cleanRow(raw[start]))
	width := len(header)

	rows := make([][]string, 0, len(raw)-start-1)
	for _, row := range raw[start+1:] {
		cleaned := cleanRow(row)
		if isBlank(cleaned) {
			continue
		}
		cleaned = trimTrailing(cleaned)
		if len(cleaned) > width {
			width = len(cleaned)
		}
		rows = append(rows, cleaned)
	}
	if len(rows) == 0 {
		return nil, false
	}

	// Columns without a header label still carry positional data.
	for i := range rows {
		rows[i] = fit(rows[i], width)
	}
	return &Table{Header: fit(header, width), Rows: rows}, true
}

// Cell returns the value at col, or "" when the row is shorter.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func cleanRow(row []string) []string {
	out := make([]string, len(row))
	for i, value := range row {
		out[i] = cleanCell(value)
	}
	return out
}

func cleanCell(value string) string {
	if _, null := nullMarkers[strings.TrimSpace(value)]; null {
		return ""
	}
	return value
}

func isBlank(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(cleanCell(value)) != "" {
			return false
		}
	}
	return true
}

func trimTrailing(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}

func fit(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
