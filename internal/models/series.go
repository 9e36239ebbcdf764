package models

import "time"

// PricePoint is one calendar month of averaged prices keyed by item key.
type PricePoint struct {
	Date   time.Time          `json:"date"`
	Prices map[string]float64 `json:"prices"`
}

// PriceSeries is the cleaned, month-deduplicated series ordered by date ascending.
type PriceSeries struct {
	Items  []string     `json:"items"`
	Points []PricePoint `json:"points"`
}

// Empty reports whether the series has no points.
func (s PriceSeries) Empty() bool {
	return len(s.Points) == 0
}

// First returns the earliest point. The series must not be empty.
func (s PriceSeries) First() PricePoint {
	return s.Points[0]
}

// Last returns the latest point. The series must not be empty.
func (s PriceSeries) Last() PricePoint {
	return s.Points[len(s.Points)-1]
}

// YearRange returns the first and last calendar years covered.
func (s PriceSeries) YearRange() (int, int) {
	if s.Empty() {
		return 0, 0
	}
	return s.First().Date.Year(), s.Last().Date.Year()
}

// Records converts the series back into flattened records, one per month.
func (s PriceSeries) Records() []Record {
	records := make([]Record, 0, len(s.Points))
	for _, p := range s.Points {
		month := p.Date.Month().String()
		year := p.Date.Year()
		rec := Record{
			Image: p.Date.Format("2006-01"),
			Month: &month,
			Year:  &year,
		}
		for _, key := range s.Items {
			price, ok := p.Prices[key]
			if !ok {
				rec.Items = append(rec.Items, ItemReading{Key: key})
				continue
			}
			rec.Items = append(rec.Items, ItemReading{Key: key, Price: &price})
		}
		records = append(records, rec)
	}
	return records
}
