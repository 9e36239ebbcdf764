package models

import (
	"strings"
	"time"
)

// monthNumbers is the single month-name table shared by sorting and cleaning.
var monthNumbers = map[string]int{
	"january":   1,
	"february":  2,
	"march":     3,
	"april":     4,
	"may":       5,
	"june":      6,
	"july":      7,
	"august":    8,
	"september": 9,
	"october":   10,
	"november":  11,
	"december":  12,
}

// MonthNumber maps an English month name to 1-12. Unrecognized names map to 0.
func MonthNumber(name string) int {
	return monthNumbers[strings.ToLower(strings.TrimSpace(name))]
}

// MonthStart returns the first day of the given month in UTC.
func MonthStart(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}
