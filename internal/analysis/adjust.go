package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/pders01/menu-inflation/internal/models"
)

// ErrCPIGap is returned when the CPI series cannot cover a cleaned month
// without filling across a gap wider than the cleaned series' own span.
var ErrCPIGap = errors.New("CPI series does not cover the price series")

// AdjustedPoint pairs one month's actual price with its inflation-adjusted value.
type AdjustedPoint struct {
	Date     time.Time `json:"date"`
	Price    float64   `json:"price"`
	CPI      float64   `json:"cpi"`
	Filled   bool      `json:"filled"`
	Adjusted float64   `json:"adjusted"`
}

// Adjust joins the itemKey prices with cpi and expresses every price in
// dollars of the series' last month: adjusted = price * CPI(last) / CPI(month).
//
// Months with no CPI observation take the nearest earlier observation, or
// failing that the nearest later one. A fill that reaches further than the
// number of months spanned by the price series is ErrCPIGap.
func Adjust(series models.PriceSeries, cpi models.CPISeries, itemKey string) ([]AdjustedPoint, error) {
	if series.Empty() {
		return nil, nil
	}
	if len(cpi.Points) == 0 {
		return nil, fmt.Errorf("%w: CPI series %s is empty", ErrCPIGap, cpi.SeriesID)
	}

	maxGap := monthsBetween(series.First().Date, series.Last().Date)

	points := make([]AdjustedPoint, 0, len(series.Points))
	for _, p := range series.Points {
		price, ok := p.Prices[itemKey]
		if !ok {
			return nil, fmt.Errorf("item %s is not part of the cleaned series", itemKey)
		}

		value, source := fill(cpi, p.Date)
		gap := monthsBetween(source, p.Date)
		if gap < 0 {
			gap = -gap
		}
		if gap > maxGap {
			return nil, fmt.Errorf("%w: nearest CPI for %s is %s (%d months away)",
				ErrCPIGap, p.Date.Format("Jan 2006"), source.Format("Jan 2006"), gap)
		}
		if value <= 0 {
			return nil, fmt.Errorf("invalid CPI value %.3f for %s", value, source.Format("Jan 2006"))
		}

		points = append(points, AdjustedPoint{
			Date:   p.Date,
			Price:  price,
			CPI:    value,
			Filled: gap != 0,
		})
	}

	end := points[len(points)-1].CPI
	for i := range points {
		points[i].Adjusted = points[i].Price * end / points[i].CPI
	}

	return points, nil
}

// fill returns the CPI value used for date and the month it was observed.
// cpi must be non-empty and sorted ascending.
func fill(cpi models.CPISeries, date time.Time) (float64, time.Time) {
	if v, ok := cpi.Value(date); ok {
		return v, date
	}

	var before *models.CPIPoint
	for i := range cpi.Points {
		p := &cpi.Points[i]
		if p.Date.Before(date) {
			before = p
			continue
		}
		if before == nil {
			return p.Value, p.Date
		}
		break
	}
	return before.Value, before.Date
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
