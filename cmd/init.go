package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pders01/menu-inflation/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config and the image directory",
	Long: `Create configuration for menu-inflation.

This command:
  - Creates a default config file if it doesn't exist
  - Creates the image directory screenshots are read from

API keys are never written to the config file. Set OPENAI_API_KEY and
BLS_API_KEY in the environment or in a .env file instead.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	out := stdout(cmd)

	dir, err := configDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(dir, "config.toml")

	exists, err := afero.Exists(appFs, configPath)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if !exists {
		if err := appFs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config.Default()); err != nil {
			return fmt.Errorf("failed to encode default config: %w", err)
		}

		if err := afero.WriteFile(appFs, configPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		fmt.Fprintf(out, "✓ Created default config: %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Config already exists: %s\n", configPath)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := appFs.MkdirAll(cfg.Images.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	fmt.Fprintf(out, "✓ Image directory ready: %s\n", cfg.Images.Dir)

	fmt.Fprintln(out, "\n✓ menu-inflation initialized successfully!")
	fmt.Fprintf(out, "  Drop screenshots into %s, then run: menu-inflation extract\n", cfg.Images.Dir)

	return nil
}
