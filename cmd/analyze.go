package cmd

import (
	"errors"
	"fmt"

	"github.com/pders01/menu-inflation/internal/analysis"
	"github.com/pders01/menu-inflation/internal/bls"
	"github.com/pders01/menu-inflation/internal/chart"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare menu prices against CPI and render plots",
	Long: `Clean the extracted records into a monthly price series, fetch the
consumer price index for the covered years from the Bureau of Labor
Statistics, and render two charts:

  <item>_price_vs_inflation.png   actual vs. inflation-adjusted price
  item_price_increases.png        first vs. last price per item

Requires BLS_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("plots", "", "directory for rendered charts (default is plots)")
	analyzeCmd.Flags().String("series", "", "BLS CPI series id")
	analyzeCmd.Flags().String("trend", "", "item key to compare against CPI")

	_ = viper.BindPFlag("plots.dir", analyzeCmd.Flags().Lookup("plots"))
	_ = viper.BindPFlag("bls.series_id", analyzeCmd.Flags().Lookup("series"))
	_ = viper.BindPFlag("analysis.trend_item", analyzeCmd.Flags().Lookup("trend"))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateAnalyze(); err != nil {
		return err
	}

	analyzer := &analysis.Analyzer{
		Fs:       appFs,
		Fetcher:  bls.NewClient(cfg.BLS),
		Renderer: chart.NewRenderer(),
		Out:      stdout(cmd),
	}

	report, err := analyzer.Run(commandContext(cmd), cfg)
	if err != nil {
		if errors.Is(err, analysis.ErrNoData) {
			fmt.Fprintln(stdout(cmd), err)
			return nil
		}
		return err
	}

	fmt.Fprintln(stdout(cmd), "\nPrice changes:")
	for _, c := range report.Changes {
		fmt.Fprintf(stdout(cmd), "  %-15s $%.2f -> $%.2f  (%+.1f%%)\n", c.Name, c.StartPrice, c.EndPrice, c.PercentChange())
	}

	return nil
}
