package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/noah-isme/reading-reports-api/pkg/sheet"
)

// ConvertCSVToXLSX writes csvPath as a workbook next to it and returns the
// new path. The CSV is removed afterwards when removeCSV is set.
func ConvertCSVToXLSX(csvPath string, removeCSV bool) (string, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return "", fmt.Errorf("open csv: %w", err)
	}
	records, err := ReadCSV(file)
	_ = file.Close()
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("csv %s is empty", csvPath)
	}

	xlsxPath := strings.TrimSuffix(csvPath, ".csv") + ".xlsx"
	if err := sheet.WriteRows(xlsxPath, records); err != nil {
		return "", err
	}

	if removeCSV {
		if err := os.Remove(csvPath); err != nil {
			return xlsxPath, fmt.Errorf("remove converted csv: %w", err)
		}
	}
	return xlsxPath, nil
}
