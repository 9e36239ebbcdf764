package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pders01/menu-inflation/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestClient(serverURL string) *OpenAIClient {
	return NewOpenAIClient(config.VisionConfig{
		Provider:    config.ProviderOpenAI,
		APIKey:      "test-openai-key",
		Model:       "gpt-4o",
		Endpoint:    serverURL,
		MaxTokens:   1000,
		TimeoutSecs: 5,
	})
}

func openaiSuccessResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func TestOpenAIExtractSuccess(t *testing.T) {
	llmJSON := `{"lat":null,"lon":null,"month":"March","year":2021,"items":{}}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"))

		var reqBody map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o", reqBody["model"])
		assert.Equal(t, float64(1000), reqBody["max_tokens"])
		assert.Equal(t, map[string]any{"type": "json_object"}, reqBody["response_format"])

		messages := reqBody["messages"].([]any)
		require.Len(t, messages, 1)
		content := messages[0].(map[string]any)["content"].([]any)
		require.Len(t, content, 2)

		text := content[0].(map[string]any)
		assert.Equal(t, "text", text["type"])
		assert.Equal(t, "extract please", text["text"])

		image := content[1].(map[string]any)
		assert.Equal(t, "image_url", image["type"])
		url := image["image_url"].(map[string]any)["url"].(string)
		assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"), url)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openaiSuccessResponse(llmJSON))
	}))
	defer server.Close()

	client := newOpenAITestClient(server.URL)
	out, err := client.Extract(context.Background(), Image{Name: "menu.jpg", Data: []byte("jpeg")}, "extract please")
	require.NoError(t, err)
	assert.Equal(t, llmJSON, out)
}

func TestOpenAIExtractReturnsContentUnmodified(t *testing.T) {
	raw := "```json\n{\"year\": 2020}\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openaiSuccessResponse(raw))
	}))
	defer server.Close()

	out, err := newOpenAITestClient(server.URL).Extract(context.Background(), Image{Name: "a.png"}, "p")
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func openaiErrorBody(message, code string) string {
	return fmt.Sprintf(`{"error":{"message":%q,"type":"invalid_request_error","code":%q}}`, message, code)
}

func TestOpenAIExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: openaiErrorBody("boom", "server_error"), wantErr: "status 500"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: openaiErrorBody("Incorrect API key provided", "invalid_api_key"), wantErr: "status 401"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "no choices"},
		{name: "garbage", status: http.StatusOK, body: `not json`, wantErr: "failed to call openai API"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newOpenAITestClient(server.URL).Extract(context.Background(), Image{Name: "a.png"}, "p")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOpenAICheckCredentials(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		wantErr        bool
		wantCredential bool
	}{
		{name: "accepted", status: http.StatusOK, body: `{"object":"list","data":[{"id":"gpt-4o","object":"model"}]}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: openaiErrorBody("Incorrect API key provided", "invalid_api_key"), wantErr: true, wantCredential: true},
		{name: "forbidden", status: http.StatusForbidden, body: openaiErrorBody("Project does not have access", "forbidden"), wantErr: true, wantCredential: true},
		{name: "server error", status: http.StatusInternalServerError, body: openaiErrorBody("boom", "server_error"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.True(t, strings.HasSuffix(r.URL.Path, "/models"), r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := newOpenAITestClient(server.URL).CheckCredentials(context.Background())
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCredential, errors.Is(err, config.ErrMissingCredential))
		})
	}
}

func TestNewClientSelectsProvider(t *testing.T) {
	c, err := NewClient(config.VisionConfig{Provider: config.ProviderOpenAI, Model: "gpt-4o"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = NewClient(config.VisionConfig{Provider: config.ProviderOllama, Endpoint: "http://localhost:11434"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, c)

	_, err = NewClient(config.VisionConfig{Provider: "nope"})
	assert.Error(t, err)
}
