package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/pders01/menu-inflation/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client using the OpenAI Chat Completions API.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIClient creates a client from cfg. cfg.Endpoint overrides the API
// base URL (for example https://api.openai.com/v1); empty uses the public API.
func NewOpenAIClient(cfg config.VisionConfig) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout(cfg)}

	model := cfg.Model
	if model == "" {
		model = config.DefaultOpenAIModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &OpenAIClient{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

// GetModel returns the model being used
func (c *OpenAIClient) GetModel() string {
	return c.model
}

// CheckCredentials lists the available models to verify the API key.
// A rejected key is config.ErrMissingCredential.
func (c *OpenAIClient) CheckCredentials(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		if code, ok := statusCode(err); ok && (code == http.StatusUnauthorized || code == http.StatusForbidden) {
			return fmt.Errorf("%w: OPENAI_API_KEY was rejected (status %d)", config.ErrMissingCredential, code)
		}
		return fmt.Errorf("failed to reach openai API: %w", err)
	}
	return nil
}

func (c *OpenAIClient) Extract(ctx context.Context, img Image, prompt string) (string, error) {
	contentType := img.ContentType
	if contentType == "" {
		contentType = ContentTypeFor(img.Name)
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(img.Data))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURI}},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		if code, ok := statusCode(err); ok {
			return "", fmt.Errorf("openai API error (status %d): %w", code, err)
		}
		return "", fmt.Errorf("failed to call openai API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// statusCode extracts the HTTP status from an error returned by the SDK.
func statusCode(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}
