// Package daterange resolves scrape date filters and renders them in Spanish.
package daterange

import (
	"fmt"
	"time"
)

// CustomLayout is the DD/MM/YYYY layout used for stored custom dates.
const CustomLayout = "02/01/2006"

// MaxCustomDays bounds a custom date range.
const MaxCustomDays = 365

var spanishMonths = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// SpanishMonth returns the month name, defaulting to Enero.
func SpanishMonth(m time.Month) string {
	if m < time.January || m > time.December {
		return spanishMonths[0]
	}
	return spanishMonths[m-1]
}

// FormatSpanish renders a date such as "05 Marzo 2024".
func FormatSpanish(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), SpanishMonth(t.Month()), t.Year())
}

// Resolve maps a filter onto a start and end date relative to now. Unknown
// filters and unparsable custom dates resolve to today.
func Resolve(filter, customStart, customEnd string, now time.Time) (time.Time, time.Time) {
	switch filter {
	case "Today":
		return now, now
	case "Last 7 Days":
		return now.AddDate(0, 0, -7), now
	case "Last 30 Days":
		return now.AddDate(0, 0, -30), now
	case "Last 90 Days":
		return now.AddDate(0, 0, -90), now
	case "Last Year":
		return now.AddDate(0, 0, -365), now
	case "Custom":
		start, errStart := time.Parse(CustomLayout, customStart)
		end, errEnd := time.Parse(CustomLayout, customEnd)
		if errStart == nil && errEnd == nil {
			return start, end
		}
	}
	return now, now
}

// RangeString renders "15 Marzo 2024 - 30 Abril 2024", or one date when the
// range covers a single day.
func RangeString(start, end time.Time) string {
	if sameDay(start, end) {
		return FormatSpanish(start)
	}
	return FormatSpanish(start) + " - " + FormatSpanish(end)
}

// Subtitle renders the compact period used in report headers.
func Subtitle(start, end time.Time) string {
	switch {
	case start.Year() != end.Year():
		return fmt.Sprintf("%s %d - %s %d", SpanishMonth(start.Month()), start.Year(), SpanishMonth(end.Month()), end.Year())
	case start.Month() != end.Month():
		return fmt.Sprintf("%s - %s %d", SpanishMonth(start.Month()), SpanishMonth(end.Month()), end.Year())
	default:
		return fmt.Sprintf("%s %d", SpanishMonth(start.Month()), start.Year())
	}
}

// ValidateCustom checks a DD/MM/YYYY range: both dates present, ordered, and
// at most MaxCustomDays apart.
func ValidateCustom(start, end string) error {
	if start == "" || end == "" {
		return fmt.Errorf("both start and end dates are required")
	}
	s, err := time.Parse(CustomLayout, start)
	if err != nil {
		return fmt.Errorf("invalid start date %q", start)
	}
	e, err := time.Parse(CustomLayout, end)
	if err != nil {
		return fmt.Errorf("invalid end date %q", end)
	}
	days := int(e.Sub(s).Hours() / 24)
	if days < 0 {
		return fmt.Errorf("end date must be after start date")
	}
	if days > MaxCustomDays {
		return fmt.Errorf("date range cannot exceed %d days", MaxCustomDays)
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
