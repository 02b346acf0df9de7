package reportfile

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/noah-isme/reading-reports-api/internal/models"
)

// Parsed is the metadata carried by a report filename.
type Parsed struct {
	Owner  string
	Type   models.ReportType
	Suffix string
	Ext    string
}

// ParseName splits a filename of the form <owner>_<ReportType>_<suffix>.<ext>.
// The legacy form <ReportType>_<suffix>.<ext> yields the Unknown owner. When
// several report type labels occur the longest one wins.
func ParseName(filename string) (Parsed, bool) {
	for _, t := range typesByLabelLength() {
		if parsed, ok := ParseNameAs(filename, t); ok {
			return parsed, true
		}
	}
	return Parsed{}, false
}

// ParseNameAs parses filename assuming it belongs to report type t.
func ParseNameAs(filename string, t models.ReportType) (Parsed, bool) {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	label := string(t)

	marker := "_" + label + "_"
	if idx := strings.LastIndex(stem, marker); idx >= 0 {
		owner := strings.TrimSpace(stem[:idx])
		if owner == "" {
			owner = models.UnknownOwner
		}
		return Parsed{
			Owner:  owner,
			Type:   t,
			Suffix: stem[idx+len(marker):],
			Ext:    strings.TrimPrefix(ext, "."),
		}, true
	}

	if strings.HasPrefix(stem, label+"_") {
		return Parsed{
			Owner:  models.UnknownOwner,
			Type:   t,
			Suffix: strings.TrimPrefix(stem, label+"_"),
			Ext:    strings.TrimPrefix(ext, "."),
		}, true
	}

	return Parsed{}, false
}

// Owner returns the owner segment of filename for report type t.
func Owner(filename string, t models.ReportType) string {
	parsed, ok := ParseNameAs(filename, t)
	if !ok {
		return models.UnknownOwner
	}
	return parsed.Owner
}

func typesByLabelLength() []models.ReportType {
	types := models.AllReportTypes()
	sort.SliceStable(types, func(i, j int) bool {
		return len(types[i]) > len(types[j])
	})
	return types
}
