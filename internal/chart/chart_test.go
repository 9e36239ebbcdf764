package chart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/pders01/menu-inflation/internal/analysis"
	"github.com/pders01/menu-inflation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func smallRenderer() *Renderer {
	return &Renderer{Width: 4 * vg.Inch, Height: 3 * vg.Inch}
}

func TestRenderTrendProducesPNG(t *testing.T) {
	var buf bytes.Buffer
	err := smallRenderer().RenderTrend(&buf, analysis.TrendChart{
		Title:         "In-N-Out Double-Double Price vs. Inflation",
		ItemName:      "Double-Double",
		ReferenceYear: 2023,
		Points: []analysis.AdjustedPoint{
			{Date: models.MonthStart(2020, 1), Price: 3.45, CPI: 280, Adjusted: 4.10},
			{Date: models.MonthStart(2023, 1), Price: 4.15, CPI: 333, Adjusted: 4.15},
		},
	})
	require.NoError(t, err)

	_, err = png.Decode(&buf)
	assert.NoError(t, err)
}

func TestRenderSummaryProducesPNG(t *testing.T) {
	var buf bytes.Buffer
	err := smallRenderer().RenderSummary(&buf, analysis.SummaryChart{
		Title: "Price Increase of In-N-Out Menu Items",
		Changes: []analysis.ItemChange{
			{Key: "doubledouble", Name: "Double-Double", StartDate: models.MonthStart(2020, 1), EndDate: models.MonthStart(2023, 1), StartPrice: 3.45, EndPrice: 4.15},
			{Key: "hamburger", Name: "Hamburger", StartDate: models.MonthStart(2020, 1), EndDate: models.MonthStart(2023, 1), StartPrice: 2.10, EndPrice: 2.75},
		},
	})
	require.NoError(t, err)

	_, err = png.Decode(&buf)
	assert.NoError(t, err)
}

func TestRenderRejectsEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, smallRenderer().RenderTrend(&buf, analysis.TrendChart{}))
	assert.Error(t, smallRenderer().RenderSummary(&buf, analysis.SummaryChart{}))
}

func TestTrendLabels(t *testing.T) {
	actual, adjusted := trendLabels(analysis.TrendChart{ItemName: "Double-Double", ReferenceYear: 2023})
	assert.Equal(t, "Actual Double-Double Price", actual)
	assert.Equal(t, "Double-Double Price in 2023 Dollars", adjusted)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$4", formatCurrency(4))
	assert.Equal(t, "$3.50", formatCurrency(3.5))
	assert.Equal(t, "$0", formatCurrency(0))
}

func TestRendererSatisfiesAnalysis(t *testing.T) {
	var _ analysis.Renderer = NewRenderer()
}
