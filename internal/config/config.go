package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pders01/menu-inflation/internal/models"
	"github.com/spf13/viper"
)

// ErrMissingCredential is returned when a stage needs an API key that is not set.
var ErrMissingCredential = errors.New("missing credential")

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	DefaultOpenAIModel = "gpt-4o"
	DefaultOllamaModel = "llava"

	// DefaultCPISeries is the U.S. city average CPI for "Food away from home".
	DefaultCPISeries = "CUUR0000SEFV"
	// DefaultBLSEndpoint is the BLS public data API v2 timeseries endpoint.
	DefaultBLSEndpoint = "https://api.bls.gov/publicAPI/v2/timeseries/data/"
)

// Config is the explicit configuration passed into each stage.
type Config struct {
	Images   ImagesConfig         `mapstructure:"images" toml:"images"`
	Data     DataConfig           `mapstructure:"data" toml:"data"`
	Plots    PlotsConfig          `mapstructure:"plots" toml:"plots"`
	Vision   VisionConfig         `mapstructure:"vision" toml:"vision"`
	BLS      BLSConfig            `mapstructure:"bls" toml:"bls"`
	Analysis AnalysisConfig       `mapstructure:"analysis" toml:"analysis"`
	Items    []models.TrackedItem `mapstructure:"items" toml:"items"`
}

// ImagesConfig locates the street-view screenshots.
type ImagesConfig struct {
	Dir        string   `mapstructure:"dir" toml:"dir"`
	Extensions []string `mapstructure:"extensions" toml:"extensions"`
}

// DataConfig locates the extracted collection.
type DataConfig struct {
	File string `mapstructure:"file" toml:"file"`
}

// PlotsConfig locates rendered charts.
type PlotsConfig struct {
	Dir string `mapstructure:"dir" toml:"dir"`
}

// VisionConfig selects and configures the vision model backend.
type VisionConfig struct {
	Provider    string `mapstructure:"provider" toml:"provider"`
	Model       string `mapstructure:"model" toml:"model"`
	APIKey      string `mapstructure:"api_key" toml:"-"`
	Endpoint    string `mapstructure:"endpoint" toml:"endpoint,omitempty"`
	MaxTokens   int    `mapstructure:"max_tokens" toml:"max_tokens"`
	TimeoutSecs int    `mapstructure:"timeout_secs" toml:"timeout_secs"`
}

// BLSConfig configures the Bureau of Labor Statistics CPI lookup.
type BLSConfig struct {
	APIKey      string `mapstructure:"api_key" toml:"-"`
	SeriesID    string `mapstructure:"series_id" toml:"series_id"`
	Endpoint    string `mapstructure:"endpoint" toml:"endpoint"`
	TimeoutSecs int    `mapstructure:"timeout_secs" toml:"timeout_secs"`
}

// AnalysisConfig selects which tracked items the analysis stage uses.
type AnalysisConfig struct {
	Items     []string `mapstructure:"items" toml:"items"`
	TrendItem string   `mapstructure:"trend_item" toml:"trend_item"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("images.dir", "images")
	v.SetDefault("images.extensions", []string{".png", ".jpg", ".jpeg"})
	v.SetDefault("data.file", "data/menu_inflation.json")
	v.SetDefault("plots.dir", "plots")
	v.SetDefault("vision.provider", ProviderOpenAI)
	v.SetDefault("vision.max_tokens", 1000)
	v.SetDefault("vision.timeout_secs", 120)
	v.SetDefault("bls.series_id", DefaultCPISeries)
	v.SetDefault("bls.endpoint", DefaultBLSEndpoint)
	v.SetDefault("bls.timeout_secs", 30)
	v.SetDefault("analysis.items", []string{"doubledouble", "cheeseburger", "hamburger", "frenchfries"})
	v.SetDefault("analysis.trend_item", "doubledouble")
}

// BindEnv maps the credential environment variables onto config keys.
func BindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"vision.api_key": "OPENAI_API_KEY",
		"bls.api_key":    "BLS_API_KEY",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// Default returns the configuration used when no file or environment is present.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		// defaults are static and always valid
		panic(err)
	}
	return cfg
}

// Load builds a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if cfg.Vision.Model == "" {
		cfg.Vision.Model = defaultModel(cfg.Vision.Provider)
	}

	if len(cfg.Items) == 0 {
		cfg.Items = slices.Clone(models.DefaultItems)
	}

	if err := cfg.validateItems(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaultModel(provider string) string {
	if provider == ProviderOllama {
		return DefaultOllamaModel
	}
	return DefaultOpenAIModel
}

func (c *Config) validateItems() error {
	seen := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		if item.Key == "" || item.Name == "" {
			return fmt.Errorf("invalid item %q: name and key are required", item.Name)
		}
		if models.FieldKey(item.Key) != item.Key {
			return fmt.Errorf("invalid item key %q: keys must not contain spaces", item.Key)
		}
		if seen[item.Key] {
			return fmt.Errorf("duplicate item key: %s", item.Key)
		}
		seen[item.Key] = true
	}

	if len(c.Analysis.Items) == 0 {
		c.Analysis.Items = models.ItemKeys(c.Items)
	}
	for _, key := range c.Analysis.Items {
		if !seen[key] {
			return fmt.Errorf("analysis item %q is not a tracked item", key)
		}
	}

	if c.Analysis.TrendItem == "" {
		c.Analysis.TrendItem = c.Analysis.Items[0]
	}
	if !slices.Contains(c.Analysis.Items, c.Analysis.TrendItem) {
		return fmt.Errorf("trend item %q must be one of analysis.items", c.Analysis.TrendItem)
	}

	return nil
}

// AnalysisItems returns the tracked items selected for analysis, in config order.
func (c *Config) AnalysisItems() []models.TrackedItem {
	var items []models.TrackedItem
	for _, item := range c.Items {
		if slices.Contains(c.Analysis.Items, item.Key) {
			items = append(items, item)
		}
	}
	return items
}

// ValidateExtract checks what the extraction stage needs before any image is read.
func (c *Config) ValidateExtract() error {
	switch c.Vision.Provider {
	case ProviderOpenAI:
		if c.Vision.APIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is not set (export it or add it to .env)", ErrMissingCredential)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("invalid vision provider: %s (must be: openai, ollama)", c.Vision.Provider)
	}

	if c.Vision.Model == "" {
		return fmt.Errorf("vision.model is required")
	}
	if c.Images.Dir == "" || c.Data.File == "" {
		return fmt.Errorf("images.dir and data.file are required")
	}
	return nil
}

// ValidateAnalyze checks what the analysis stage needs before any remote call.
func (c *Config) ValidateAnalyze() error {
	if c.BLS.APIKey == "" {
		return fmt.Errorf("%w: BLS_API_KEY is not set. Get a key from https://data.bls.gov/registrationEngine/", ErrMissingCredential)
	}
	if c.BLS.SeriesID == "" {
		return fmt.Errorf("bls.series_id is required")
	}
	if c.Plots.Dir == "" {
		return fmt.Errorf("plots.dir is required")
	}
	return nil
}
