package cmd

import (
	"errors"
	"fmt"

	"github.com/pders01/menu-inflation/internal/extract"
	"github.com/pders01/menu-inflation/internal/vision"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract menu prices from street-view screenshots",
	Long: `Send every screenshot in the image directory to a vision model and
collect the reported date, location and prices into one JSON file.

Images that cannot be read or parsed are kept in the output with an
error so a run never loses track of a file.

Examples:
  menu-inflation extract
  menu-inflation extract --images shots/ --data out.json
  menu-inflation extract --provider ollama --model llava`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("images", "", "directory of screenshots (default is images)")
	extractCmd.Flags().String("provider", "", "vision provider: openai or ollama")
	extractCmd.Flags().String("model", "", "vision model name")
	extractCmd.Flags().String("endpoint", "", "vision API endpoint override")

	_ = viper.BindPFlag("images.dir", extractCmd.Flags().Lookup("images"))
	_ = viper.BindPFlag("vision.provider", extractCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("vision.model", extractCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("vision.endpoint", extractCmd.Flags().Lookup("endpoint"))
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateExtract(); err != nil {
		return err
	}

	ctx := commandContext(cmd)

	client, err := vision.NewClient(cfg.Vision)
	if err != nil {
		return err
	}

	switch c := client.(type) {
	case *vision.OpenAIClient:
		if err := c.CheckCredentials(ctx); err != nil {
			return err
		}
	case *vision.OllamaClient:
		if !vision.IsAvailable(cfg.Vision.Endpoint) {
			return fmt.Errorf("ollama is not available at %s (start it with: ollama serve)", vision.ServerURL(cfg.Vision.Endpoint))
		}
		if err := c.CheckModel(ctx); err != nil {
			return err
		}
	}

	extractor := &extract.Extractor{
		Fs:     appFs,
		Client: client,
		Out:    stdout(cmd),
		Err:    stderr(cmd),
	}

	if _, err := extractor.Run(ctx, cfg); err != nil {
		if errors.Is(err, extract.ErrNoImages) {
			fmt.Fprintf(stdout(cmd), "No images found in '%s'. Please check the path.\n", cfg.Images.Dir)
			return nil
		}
		return err
	}

	return nil
}

