package vision

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pders01/menu-inflation/internal/config"
)

// Image is one screenshot sent to the model.
type Image struct {
	Name        string
	Data        []byte
	ContentType string
}

// Client sends one image and an instruction to a vision-capable model and
// returns the model's text response unmodified.
type Client interface {
	Extract(ctx context.Context, img Image, prompt string) (string, error)
	GetModel() string
}

// ContentTypeFor returns the MIME type for an image filename.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// NewClient creates the client selected by cfg.Provider.
func NewClient(cfg config.VisionConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case config.ProviderOllama:
		return NewOllamaClient(cfg.Endpoint, cfg.Model, timeout(cfg))
	default:
		return nil, fmt.Errorf("unknown vision provider: %s", cfg.Provider)
	}
}

func timeout(cfg config.VisionConfig) time.Duration {
	if cfg.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(cfg.TimeoutSecs) * time.Second
}
