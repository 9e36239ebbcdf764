package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pders01/menu-inflation/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	dataFile string
)

// appFs is the filesystem every command reads and writes through.
var appFs afero.Fs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   "menu-inflation",
	Short: "Track In-N-Out menu prices from street-view screenshots",
	Long: `menu-inflation reads dated street-view screenshots of a menu board,
asks a vision model for the prices it can see, and compares the cleaned
monthly price history against the consumer price index.

Typical workflow:
  menu-inflation init      write a default config
  menu-inflation extract   turn images/ into data/menu_inflation.json
  menu-inflation analyze   fetch CPI and render plots/
  menu-inflation show      inspect the extracted records
  menu-inflation export    write the data to an Excel workbook`,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/menu-inflation/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataFile, "data", "", "extracted data file (default is data/menu_inflation.json)")
	_ = viper.BindPFlag("data.file", rootCmd.PersistentFlags().Lookup("data"))
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "menu-inflation"), nil
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: could not load .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(dir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("MENU_INFLATION")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Warning: could not read config file:", err)
	}
}

// loadConfig resolves the effective configuration from defaults, the
// config file, the environment and command flags.
func loadConfig() (*config.Config, error) {
	v := viper.GetViper()
	if err := config.BindEnv(v); err != nil {
		return nil, err
	}
	return config.Load(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
