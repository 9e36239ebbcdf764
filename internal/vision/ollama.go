package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
	"github.com/pders01/menu-inflation/internal/config"
)

// DefaultOllamaModel is a vision-capable model available through Ollama
const DefaultOllamaModel = config.DefaultOllamaModel

// OllamaClient implements Client against a local Ollama server
type OllamaClient struct {
	client *api.Client
	model  string
}

// NewOllamaClient creates a new Ollama client. An empty url falls back to
// OLLAMA_HOST or the default endpoint.
func NewOllamaClient(rawURL, model string, timeout time.Duration) (*OllamaClient, error) {
	if model == "" {
		model = DefaultOllamaModel
	}

	var client *api.Client
	if rawURL == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		client = c
	} else {
		base, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama url %q: %w", rawURL, err)
		}
		client = api.NewClient(base, &http.Client{Timeout: timeout})
	}

	return &OllamaClient{
		client: client,
		model:  model,
	}, nil
}

// ServerURL returns rawURL, or the host from OLLAMA_HOST when it is empty.
func ServerURL(rawURL string) string {
	if rawURL != "" {
		return rawURL
	}
	return envconfig.Host().String()
}

// IsAvailable checks if Ollama is running and accessible
func IsAvailable(rawURL string) bool {
	rawURL = ServerURL(rawURL)

	client := &http.Client{
		Timeout: 2 * time.Second,
	}

	resp, err := client.Get(rawURL)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Extract asks the model about one image and returns the reply text
func (c *OllamaClient) Extract(ctx context.Context, img Image, prompt string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
				Images:  []api.ImageData{img.Data},
			},
		},
		Format: json.RawMessage(`"json"`),
		Stream: &stream,
	}

	var out strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	return out.String(), nil
}

// CheckModel checks if the specified model is available
func (c *OllamaClient) CheckModel(ctx context.Context) error {
	listResp, err := c.client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	for _, model := range listResp.Models {
		if model.Name == c.model || strings.TrimSuffix(model.Name, ":latest") == c.model {
			return nil
		}
	}

	return fmt.Errorf("model '%s' not found - run: ollama pull %s", c.model, c.model)
}

// GetModel returns the model being used
func (c *OllamaClient) GetModel() string {
	return c.model
}
