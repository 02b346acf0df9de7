package models

import "time"

// ReportType enumerates the spreadsheet exports produced by the scraper.
type ReportType string

const (
	ReportTypeStudentUsage ReportType = "Student Usage"
	ReportTypeSkill        ReportType = "Skill"
	ReportTypeAssignment   ReportType = "Assignment"
	ReportTypeAssessment   ReportType = "Assessment"
	ReportTypeLevelUp      ReportType = "Level Up Progress"
)

// UnknownOwner is assigned to files that carry no owner segment.
const UnknownOwner = "Unknown"

// AllReportTypes returns every report type in combined workbook order.
func AllReportTypes() []ReportType {
	return []ReportType{
		ReportTypeStudentUsage,
		ReportTypeSkill,
		ReportTypeAssignment,
		ReportTypeAssessment,
		ReportTypeLevelUp,
	}
}

// Valid reports whether t is one of the known report types.
func (t ReportType) Valid() bool {
	for _, known := range AllReportTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// ReportFile is a single downloaded export discovered on disk.
type ReportFile struct {
	Path  string     `json:"path"`
	Name  string     `json:"name"`
	Type  ReportType `json:"type"`
	Owner string     `json:"owner"`
}

// StoredReport describes a file kept in the reports directory.
type StoredReport struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	SizeHuman  string    `json:"size_human"`
	ModifiedAt time.Time `json:"modified_at"`
	Combined   bool      `json:"combined"`
}

// ReportInventory summarises the reports directory.
type ReportInventory struct {
	Count          int        `json:"count"`
	TotalSize      int64      `json:"total_size"`
	TotalSizeHuman string     `json:"total_size_human"`
	Latest         *time.Time `json:"latest,omitempty"`
	Oldest         *time.Time `json:"oldest,omitempty"`
}

// DownloadLink is a signed, time-limited download reference.
type DownloadLink struct {
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Pagination describes a paged listing.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// ReportListing is one page of stored reports plus the directory inventory.
type ReportListing struct {
	Reports    []StoredReport  `json:"reports"`
	Inventory  ReportInventory `json:"inventory"`
	Pagination Pagination      `json:"pagination"`
}
