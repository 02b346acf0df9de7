package sheet

import (
	"strconv"
	"strings"
)

const (
	// MaxNameLength is the Excel limit on worksheet names.
	MaxNameLength = 31
	maxSuffix     = 999
)

var invalidNameChars = strings.NewReplacer(
	":", "_",
	"\\", "_",
	"/", "_",
	"?", "_",
	"*", "_",
	"[", "_",
	"]", "_",
)

// SanitizeSheetName replaces characters Excel rejects and truncates to 31 runes.
func SanitizeSheetName(name string) string {
	clean := truncate(invalidNameChars.Replace(strings.TrimSpace(name)), MaxNameLength)
	if clean == "" {
		return "Sheet"
	}
	return clean
}

// UniqueSheetName returns name, or name with a _<n> suffix when it collides
// with existing. Comparison is case-insensitive, as in Excel.
func UniqueSheetName(name string, existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		taken[strings.ToLower(e)] = struct{}{}
	}
	if _, ok := taken[strings.ToLower(name)]; !ok {
		return name
	}

	base := truncate(name, MaxNameLength-4)
	for n := 1; n <= maxSuffix; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if _, ok := taken[strings.ToLower(candidate)]; !ok {
			return candidate
		}
	}
	return base + "_X"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
