package models

// Date filters offered by the reading platform.
const (
	DateFilterToday      = "Today"
	DateFilterLast7Days  = "Last 7 Days"
	DateFilterLast30Days = "Last 30 Days"
	DateFilterLast90Days = "Last 90 Days"
	DateFilterLastYear   = "Last Year"
	DateFilterCustom     = "Custom"
)

// DateFilters lists every accepted date filter in display order.
func DateFilters() []string {
	return []string{
		DateFilterToday,
		DateFilterLast7Days,
		DateFilterLast30Days,
		DateFilterLast90Days,
		DateFilterLastYear,
		DateFilterCustom,
	}
}

// ProductFilters lists every accepted product filter in display order.
func ProductFilters() []string {
	return []string{
		"All",
		"Raz-Plus",
		"Español",
		"Science A-Z",
		"Writing A-Z",
		"Vocabulary A-Z",
		"Foundations A-Z",
	}
}

// ScrapeSettings gates which exports the scraper downloads.
type ScrapeSettings struct {
	DateFilter      string              `json:"date_filter" validate:"required"`
	ProductsFilter  string              `json:"products_filter" validate:"required"`
	CustomStartDate string              `json:"custom_start_date,omitempty"`
	CustomEndDate   string              `json:"custom_end_date,omitempty"`
	Tabs            map[ReportType]bool `json:"tabs"`
}

// DefaultScrapeSettings enables every tab for the current day.
func DefaultScrapeSettings() ScrapeSettings {
	tabs := make(map[ReportType]bool, len(AllReportTypes()))
	for _, t := range AllReportTypes() {
		tabs[t] = true
	}
	return ScrapeSettings{
		DateFilter:     DateFilterToday,
		ProductsFilter: "All",
		Tabs:           tabs,
	}
}

// EnabledTabs returns the enabled report types in workbook order.
func (s ScrapeSettings) EnabledTabs() []ReportType {
	enabled := make([]ReportType, 0, len(s.Tabs))
	for _, t := range AllReportTypes() {
		if on, ok := s.Tabs[t]; !ok || on {
			enabled = append(enabled, t)
		}
	}
	return enabled
}
