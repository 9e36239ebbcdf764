package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/alpkeskin/gotoon"
	"github.com/pders01/menu-inflation/internal/analysis"
	"github.com/pders01/menu-inflation/internal/config"
	"github.com/pders01/menu-inflation/internal/extract"
	"github.com/pders01/menu-inflation/internal/models"
	"github.com/spf13/cobra"
)

var (
	showJSON  bool
	showToon  bool
	showClean bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show extracted records or the cleaned monthly series",
	Long: `Display the records written by extract, or with --clean the monthly
series the analysis works on.

Examples:
  menu-inflation show
  menu-inflation show --clean
  menu-inflation show --json
  menu-inflation show --clean --toon`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVar(&showToon, "toon", false, "Output in LLM-friendly toon format")
	showCmd.Flags().BoolVar(&showClean, "clean", false, "Show the cleaned monthly series instead of raw records")
}

type cleanedRow struct {
	Month  string             `json:"month"`
	Prices map[string]float64 `json:"prices"`
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := stdout(cmd)

	if showClean {
		return showSeries(out, cfg)
	}

	records, err := extract.ReadCollection(appFs, cfg.Data.File)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(out, "No data found at '%s'. Run `menu-inflation extract` first.\n", cfg.Data.File)
			return nil
		}
		return err
	}

	if showJSON {
		output, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	if showToon {
		// toon works on plain values, so go through the ordered JSON form first
		raw, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		var plain []any
		if err := json.Unmarshal(raw, &plain); err != nil {
			return fmt.Errorf("failed to decode records: %w", err)
		}
		return printToon(out, plain)
	}

	if meta, err := extract.ReadMetadata(appFs, cfg.Data.File); err == nil {
		fmt.Fprintf(out, "Run %s at %s (%s/%s): %d image(s), %d failed\n\n",
			meta.RunID, meta.CreatedAt.Format("2006-01-02 15:04"), meta.Provider, meta.Model, meta.Images, meta.Failed)
	}

	printRecords(out, cfg.Items, records)
	return nil
}

func showSeries(out io.Writer, cfg *config.Config) error {
	_, series, err := analysis.LoadSeries(appFs, cfg)
	if err != nil {
		if errors.Is(err, analysis.ErrNoData) {
			fmt.Fprintln(out, err)
			return nil
		}
		return err
	}

	rows := make([]cleanedRow, 0, len(series.Points))
	for _, p := range series.Points {
		rows = append(rows, cleanedRow{Month: p.Date.Format("2006-01"), Prices: p.Prices})
	}

	if showJSON {
		output, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	if showToon {
		return printToon(out, rows)
	}

	items := cfg.AnalysisItems()
	fmt.Fprintf(out, "%-8s", "Month")
	for _, item := range items {
		fmt.Fprintf(out, " %14s", item.Name)
	}
	fmt.Fprintln(out)
	for _, row := range rows {
		fmt.Fprintf(out, "%-8s", row.Month)
		for _, item := range items {
			fmt.Fprintf(out, " %14s", priceCell(row.Prices, item.Key))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "\n%d month(s)\n", len(rows))

	return nil
}

func printToon(out io.Writer, v any) error {
	output, err := gotoon.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode Toon: %w", err)
	}
	fmt.Fprintln(out, output)
	return nil
}

func printRecords(out io.Writer, items []models.TrackedItem, records []models.Record) {
	fmt.Fprintf(out, "Found %d record(s):\n\n", len(records))

	for _, r := range records {
		fmt.Fprintf(out, "  %s\n", r.Image)
		if r.Failed() {
			fmt.Fprintf(out, "    Error:   %s\n\n", r.Error)
			continue
		}

		date := "unknown"
		if r.Month != nil && r.Year != nil {
			date = fmt.Sprintf("%s %d", *r.Month, *r.Year)
		} else if r.Year != nil {
			date = fmt.Sprintf("%d", *r.Year)
		}
		fmt.Fprintf(out, "    Date:    %s\n", date)
		if r.Lat != nil && r.Lon != nil {
			fmt.Fprintf(out, "    Where:   %.5f, %.5f\n", *r.Lat, *r.Lon)
		}

		var prices []string
		for _, item := range items {
			if p := r.Price(item.Key); p != nil {
				prices = append(prices, fmt.Sprintf("%s %s", item.Name, formatPrice(*p)))
			}
		}
		if len(prices) > 0 {
			fmt.Fprintf(out, "    Prices:  %s\n", strings.Join(prices, ", "))
		}
		fmt.Fprintln(out)
	}
}

// priceCell formats the price for key, or "-" when the month has none.
func priceCell(prices map[string]float64, key string) string {
	p, ok := prices[key]
	if !ok {
		return "-"
	}
	return formatPrice(p)
}

func formatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}
