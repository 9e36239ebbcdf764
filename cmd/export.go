package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/pders01/menu-inflation/internal/analysis"
	"github.com/pders01/menu-inflation/internal/bls"
	"github.com/pders01/menu-inflation/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportCPI    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export records and the cleaned series to an Excel workbook",
	Long: `Write the extracted records and the cleaned monthly series to an
.xlsx workbook. With --cpi the inflation-adjusted trend item is added
as a third sheet, which requires BLS_API_KEY.

Examples:
  menu-inflation export
  menu-inflation export -o prices.xlsx --cpi`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: next to the data file)")
	exportCmd.Flags().BoolVar(&exportCPI, "cpi", false, "Include the CPI-adjusted trend sheet")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := stdout(cmd)

	records, series, err := analysis.LoadSeries(appFs, cfg)
	if err != nil {
		if errors.Is(err, analysis.ErrNoData) {
			fmt.Fprintln(out, err)
			return nil
		}
		return err
	}

	wb := export.Workbook{
		Items:     cfg.Items,
		Records:   records,
		Series:    series,
		TrendItem: cfg.Analysis.TrendItem,
	}

	if exportCPI {
		if err := cfg.ValidateAnalyze(); err != nil {
			return err
		}
		startYear, endYear := series.YearRange()
		cpi, err := bls.NewClient(cfg.BLS).Fetch(commandContext(cmd), cfg.BLS.SeriesID, startYear, endYear)
		if err != nil {
			return fmt.Errorf("could not fetch CPI data: %w", err)
		}
		wb.Adjusted, err = analysis.Adjust(series, cpi, cfg.Analysis.TrendItem)
		if err != nil {
			return fmt.Errorf("failed to adjust prices: %w", err)
		}
	}

	path := exportOutput
	if path == "" {
		path = exportPath(cfg.Data.File)
	}
	if err := appFs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := appFs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.Write(f, wb); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(out, "✓ Exported %d record(s) and %d month(s) to %s\n", len(records), len(series.Points), path)
	return nil
}

// exportPath swaps the data file's extension for .xlsx.
func exportPath(dataFile string) string {
	ext := filepath.Ext(dataFile)
	return dataFile[:len(dataFile)-len(ext)] + ".xlsx"
}
