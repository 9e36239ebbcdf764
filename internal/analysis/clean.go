package analysis

import (
	"sort"
	"time"

	"github.com/pders01/menu-inflation/internal/models"
)

// Clean turns a raw collection into a monthly price series for itemKeys.
//
// Records are dropped when they failed extraction, lack a year or month,
// name a month that is not recognized, or lack a numeric price for any of
// itemKeys. Remaining records are grouped by calendar month and their prices
// averaged; the result is ordered by date ascending and does not depend on
// the order of records.
func Clean(records []models.Record, itemKeys []string) models.PriceSeries {
	groups := make(map[time.Time]map[string][]float64)

	for _, rec := range records {
		date, prices, ok := usable(rec, itemKeys)
		if !ok {
			continue
		}
		group, exists := groups[date]
		if !exists {
			group = make(map[string][]float64, len(itemKeys))
			groups[date] = group
		}
		for key, price := range prices {
			group[key] = append(group[key], price)
		}
	}

	dates := make([]time.Time, 0, len(groups))
	for date := range groups {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	series := models.PriceSeries{Items: append([]string(nil), itemKeys...)}
	for _, date := range dates {
		point := models.PricePoint{Date: date, Prices: make(map[string]float64, len(itemKeys))}
		for _, key := range itemKeys {
			point.Prices[key] = mean(groups[date][key])
		}
		series.Points = append(series.Points, point)
	}

	return series
}

func usable(rec models.Record, itemKeys []string) (time.Time, map[string]float64, bool) {
	if rec.Failed() || rec.Year == nil || rec.Month == nil {
		return time.Time{}, nil, false
	}

	month := models.MonthNumber(*rec.Month)
	if month == 0 {
		return time.Time{}, nil, false
	}

	prices := make(map[string]float64, len(itemKeys))
	for _, key := range itemKeys {
		price := rec.Price(key)
		if price == nil {
			return time.Time{}, nil, false
		}
		prices[key] = *price
	}

	return models.MonthStart(*rec.Year, month), prices, true
}

// mean sums in sorted order so the result is independent of input order.
func mean(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}
