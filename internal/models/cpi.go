package models

import "time"

// CPIPoint is one monthly index observation, dated on the first of the month.
type CPIPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// CPISeries is a monthly consumer-price index series ordered by date ascending.
type CPISeries struct {
	SeriesID string     `json:"series_id"`
	Points   []CPIPoint `json:"points"`
}

// Value returns the observation for the month containing date.
func (c CPISeries) Value(date time.Time) (float64, bool) {
	month := MonthStart(date.Year(), int(date.Month()))
	for _, p := range c.Points {
		if p.Date.Equal(month) {
			return p.Value, true
		}
	}
	return 0, false
}
