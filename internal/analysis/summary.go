package analysis

import (
	"time"

	"github.com/pders01/menu-inflation/internal/models"
)

// ItemChange is an item's price at the first and last cleaned months.
type ItemChange struct {
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	StartPrice float64   `json:"start_price"`
	EndPrice   float64   `json:"end_price"`
}

// PercentChange returns the relative price change in percent.
func (c ItemChange) PercentChange() float64 {
	if c.StartPrice == 0 {
		return 0
	}
	return (c.EndPrice - c.StartPrice) / c.StartPrice * 100
}

// Summarize compares the first and last months of series for each item.
func Summarize(series models.PriceSeries, items []models.TrackedItem) []ItemChange {
	if series.Empty() {
		return nil
	}
	first, last := series.First(), series.Last()

	var changes []ItemChange
	for _, item := range items {
		start, okStart := first.Prices[item.Key]
		end, okEnd := last.Prices[item.Key]
		if !okStart || !okEnd {
			continue
		}
		changes = append(changes, ItemChange{
			Key:        item.Key,
			Name:       item.Name,
			StartDate:  first.Date,
			EndDate:    last.Date,
			StartPrice: start,
			EndPrice:   end,
		})
	}
	return changes
}
