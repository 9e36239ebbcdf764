package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/pders01/menu-inflation/internal/config"
	"github.com/pders01/menu-inflation/internal/extract"
	"github.com/pders01/menu-inflation/internal/models"
	"github.com/spf13/afero"
)

// ErrNoData is returned when there is nothing to analyze: the collection is
// missing or nothing survives cleaning.
var ErrNoData = errors.New("no data to analyze")

// IndexFetcher retrieves a monthly CPI series covering [startYear, endYear].
type IndexFetcher interface {
	Fetch(ctx context.Context, seriesID string, startYear, endYear int) (models.CPISeries, error)
}

// TrendChart is the input for the actual vs. inflation-adjusted price chart.
type TrendChart struct {
	Title         string
	ItemName      string
	ReferenceYear int
	Points        []AdjustedPoint
}

// SummaryChart is the input for the start vs. end price bar chart.
type SummaryChart struct {
	Title   string
	Changes []ItemChange
}

// Renderer draws charts as PNG images.
type Renderer interface {
	RenderTrend(w io.Writer, chart TrendChart) error
	RenderSummary(w io.Writer, chart SummaryChart) error
}

// Report is the outcome of an analysis run.
type Report struct {
	Series      models.PriceSeries
	CPI         models.CPISeries
	Adjusted    []AdjustedPoint
	Changes     []ItemChange
	TrendPath   string
	SummaryPath string
}

// Analyzer runs the analysis stage.
type Analyzer struct {
	Fs       afero.Fs
	Fetcher  IndexFetcher
	Renderer Renderer
	Out      io.Writer
}

// LoadSeries reads the collection at cfg.Data.File and cleans it.
func LoadSeries(fsys afero.Fs, cfg *config.Config) ([]models.Record, models.PriceSeries, error) {
	records, err := extract.ReadCollection(fsys, cfg.Data.File)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.PriceSeries{}, fmt.Errorf("%w: data file not found at '%s'. Please run `menu-inflation extract` first", ErrNoData, cfg.Data.File)
		}
		return nil, models.PriceSeries{}, err
	}

	series := Clean(records, cfg.Analysis.Items)
	if series.Empty() {
		return records, series, fmt.Errorf("%w: no valid data to analyze after cleaning", ErrNoData)
	}

	return records, series, nil
}

// Run cleans the collection, fetches CPI for its year range, adjusts the
// trend item for inflation and renders both charts into cfg.Plots.Dir.
func (a *Analyzer) Run(ctx context.Context, cfg *config.Config) (*Report, error) {
	_, series, err := LoadSeries(a.Fs, cfg)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.Out, "Cleaned %d month(s) from %s to %s\n",
		len(series.Points), series.First().Date.Format("Jan 2006"), series.Last().Date.Format("Jan 2006"))

	startYear, endYear := series.YearRange()
	cpi, err := a.Fetcher.Fetch(ctx, cfg.BLS.SeriesID, startYear, endYear)
	if err != nil {
		return nil, fmt.Errorf("could not fetch CPI data, aborting analysis: %w", err)
	}
	fmt.Fprintf(a.Out, "Successfully fetched CPI data for series '%s'\n", cfg.BLS.SeriesID)

	adjusted, err := Adjust(series, cpi, cfg.Analysis.TrendItem)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust prices: %w", err)
	}

	report := &Report{
		Series:   series,
		CPI:      cpi,
		Adjusted: adjusted,
		Changes:  Summarize(series, cfg.AnalysisItems()),
	}

	if err := a.Fs.MkdirAll(cfg.Plots.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory %s: %w", cfg.Plots.Dir, err)
	}

	trendName := models.ItemName(cfg.Items, cfg.Analysis.TrendItem)
	report.TrendPath = filepath.Join(cfg.Plots.Dir, cfg.Analysis.TrendItem+"_price_vs_inflation.png")
	trend := TrendChart{
		Title:         fmt.Sprintf("In-N-Out %s Price vs. Inflation", trendName),
		ItemName:      trendName,
		ReferenceYear: series.Last().Date.Year(),
		Points:        adjusted,
	}
	if err := a.render(report.TrendPath, func(w io.Writer) error { return a.Renderer.RenderTrend(w, trend) }); err != nil {
		return nil, err
	}
	fmt.Fprintf(a.Out, "\n📈 Trend plot saved to '%s'\n", report.TrendPath)

	report.SummaryPath = filepath.Join(cfg.Plots.Dir, "item_price_increases.png")
	summary := SummaryChart{
		Title:   "Price Increase of In-N-Out Menu Items",
		Changes: report.Changes,
	}
	if err := a.render(report.SummaryPath, func(w io.Writer) error { return a.Renderer.RenderSummary(w, summary) }); err != nil {
		return nil, err
	}
	fmt.Fprintf(a.Out, "📊 Bar chart saved to '%s'\n", report.SummaryPath)

	return report, nil
}

func (a *Analyzer) render(path string, draw func(io.Writer) error) error {
	f, err := a.Fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := draw(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
