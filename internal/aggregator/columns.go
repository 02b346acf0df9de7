// Package aggregator folds normalized report rows into per-type summaries.
//
// Every report type uses a fixed positional column layout inherited from the
// reading platform's CSV export. Header names are never consulted.
package aggregator

import (
	"math"
	"strconv"
	"strings"
)

// Student Usage columns.
const (
	UsageColStudent           = 0
	UsageColClassroom         = 1
	UsageColDistrictID        = 2
	UsageColGrade             = 3
	UsageColTeacher           = 4
	UsageColListen            = 5
	UsageColRead              = 6
	UsageColQuiz              = 7
	UsageColInteractivity     = 8
	UsageColPracticeRecording = 9
)

// Skill columns.
const (
	SkillColName     = 0
	SkillColCorrect  = 1
	SkillColTotal    = 2
	SkillColAccuracy = 3
)

// Level Up Progress columns.
const (
	LevelUpColStudent  = 5
	LevelUpColLevel    = 6
	LevelUpColProgress = 7
)

// Accuracy bucket thresholds.
const (
	HighAccuracy   = 80.0
	MediumAccuracy = 60.0
)

// TopReadersPerClassroom caps each classroom's ranking.
const TopReadersPerClassroom = 3

// parseCount reads a numeric cell leniently. Anything unparsable, negative
// or non-finite counts as zero; fractions are truncated.
func parseCount(raw string) int {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	return int(value)
}

// parseDigits accepts only a plain run of ASCII digits.
func parseDigits(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parsePercent strips one trailing % and parses the rest, defaulting to 0.
func parsePercent(raw string) float64 {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// round1 rounds to one decimal, halves to even.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

func percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}
