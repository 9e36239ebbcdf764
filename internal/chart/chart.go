package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/pders01/menu-inflation/internal/analysis"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	red       = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	black     = color.RGBA{A: 255}
	startBlue = color.RGBA{R: 68, G: 1, B: 84, A: 255}
	endTeal   = color.RGBA{R: 33, G: 145, B: 140, A: 255}
)

// Renderer draws PNG charts with gonum/plot. It implements analysis.Renderer.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer returns a renderer producing 12x7 inch images.
func NewRenderer() *Renderer {
	return &Renderer{Width: 12 * vg.Inch, Height: 7 * vg.Inch}
}

// RenderTrend draws actual prices against inflation-adjusted prices.
func (r *Renderer) RenderTrend(w io.Writer, c analysis.TrendChart) error {
	if len(c.Points) == 0 {
		return fmt.Errorf("no points to plot")
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.Title.Padding = vg.Points(20)
	p.Y.Label.Text = c.ItemName + " Price"
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 2006"}
	p.Y.Tick.Marker = currencyTicks{}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	actual := make(plotter.XYs, len(c.Points))
	adjusted := make(plotter.XYs, len(c.Points))
	for i, pt := range c.Points {
		x := float64(pt.Date.Unix())
		actual[i] = plotter.XY{X: x, Y: pt.Price}
		adjusted[i] = plotter.XY{X: x, Y: pt.Adjusted}
	}

	actualLine, actualPoints, err := plotter.NewLinePoints(actual)
	if err != nil {
		return fmt.Errorf("failed to plot actual prices: %w", err)
	}
	actualLine.Color = red
	actualPoints.Color = red
	actualPoints.Shape = draw.CircleGlyph{}

	adjustedLine, adjustedPoints, err := plotter.NewLinePoints(adjusted)
	if err != nil {
		return fmt.Errorf("failed to plot adjusted prices: %w", err)
	}
	adjustedLine.Color = black
	adjustedLine.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	adjustedPoints.Color = black
	adjustedPoints.Shape = draw.CrossGlyph{}

	p.Add(actualLine, actualPoints, adjustedLine, adjustedPoints)
	actualLabel, adjustedLabel := trendLabels(c)
	p.Legend.Add(actualLabel, actualLine, actualPoints)
	p.Legend.Add(adjustedLabel, adjustedLine, adjustedPoints)

	return r.write(w, p)
}

// RenderSummary draws grouped bars of start and end prices per item.
func (r *Renderer) RenderSummary(w io.Writer, c analysis.SummaryChart) error {
	if len(c.Changes) == 0 {
		return fmt.Errorf("no items to plot")
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.Title.Padding = vg.Points(20)
	p.Y.Label.Text = "Price ($)"
	p.Y.Tick.Marker = currencyTicks{}
	p.Y.Min = 0
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	names := make([]string, len(c.Changes))
	start := make(plotter.Values, len(c.Changes))
	end := make(plotter.Values, len(c.Changes))
	for i, ch := range c.Changes {
		names[i] = ch.Name
		start[i] = ch.StartPrice
		end[i] = ch.EndPrice
	}

	width := vg.Points(28)

	startBars, err := plotter.NewBarChart(start, width)
	if err != nil {
		return fmt.Errorf("failed to plot start prices: %w", err)
	}
	startBars.Color = startBlue
	startBars.LineStyle.Width = 0
	startBars.Offset = -width / 2

	endBars, err := plotter.NewBarChart(end, width)
	if err != nil {
		return fmt.Errorf("failed to plot end prices: %w", err)
	}
	endBars.Color = endTeal
	endBars.LineStyle.Width = 0
	endBars.Offset = width / 2

	p.Add(startBars, endBars)
	p.Legend.Add(c.Changes[0].StartDate.Format("Jan 2006"), startBars)
	p.Legend.Add(c.Changes[0].EndDate.Format("Jan 2006"), endBars)
	p.NominalX(names...)

	return r.write(w, p)
}

// trendLabels names the actual and adjusted series after the charted item.
func trendLabels(c analysis.TrendChart) (string, string) {
	return fmt.Sprintf("Actual %s Price", c.ItemName),
		fmt.Sprintf("%s Price in %d Dollars", c.ItemName, c.ReferenceYear)
}

func (r *Renderer) write(w io.Writer, p *plot.Plot) error {
	c := vgimg.PngCanvas{Canvas: vgimg.New(r.Width, r.Height)}
	p.Draw(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

// currencyTicks labels the default ticks as dollar amounts.
type currencyTicks struct{}

func (currencyTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i, t := range ticks {
		if t.Label == "" {
			continue
		}
		ticks[i].Label = formatCurrency(t.Value)
	}
	return ticks
}

func formatCurrency(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("$%d", int64(v))
	}
	return fmt.Sprintf("$%.2f", v)
}
