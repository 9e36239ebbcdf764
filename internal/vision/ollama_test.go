package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockChatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

type mockListResponse struct {
	Models []mockModel `json:"models"`
}

type mockModel struct {
	Name string `json:"name"`
}

func newMockOllama(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			var req struct {
				Model    string `json:"model"`
				Messages []struct {
					Content string   `json:"content"`
					Images  []string `json:"images"`
				} `json:"messages"`
				Format json.RawMessage `json:"format"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode chat request: %v", err)
			}
			if len(req.Messages) != 1 || len(req.Messages[0].Images) != 1 {
				t.Errorf("expected one message with one image, got %+v", req.Messages)
			}
			if string(req.Format) != `"json"` {
				t.Errorf("expected json format, got %s", req.Format)
			}

			resp := mockChatResponse{Model: req.Model, Done: true}
			resp.Message.Role = "assistant"
			resp.Message.Content = `{"year": 2021}`
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		case "/api/tags":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(mockListResponse{
				Models: []mockModel{{Name: "llava:latest"}, {Name: "another-model"}},
			})
		case "/":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestNewOllamaClient(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		model     string
		wantModel string
		wantErr   bool
	}{
		{
			name:      "with custom url and model",
			url:       "http://localhost:11434",
			model:     "custom-model",
			wantModel: "custom-model",
		},
		{
			name:      "with default url",
			url:       "",
			model:     "test-model",
			wantModel: "test-model",
		},
		{
			name:      "with default model",
			url:       "http://localhost:11434",
			model:     "",
			wantModel: DefaultOllamaModel,
		},
		{
			name:    "with invalid url",
			url:     "://bad",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewOllamaClient(tt.url, tt.model, time.Second)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if client.GetModel() != tt.wantModel {
				t.Errorf("expected model %s, got %s", tt.wantModel, client.GetModel())
			}
		})
	}
}

func TestIsAvailable(t *testing.T) {
	server := newMockOllama(t)
	defer server.Close()

	if !IsAvailable(server.URL) {
		t.Error("expected mock server to be available")
	}
	if IsAvailable("http://localhost:99999") {
		t.Error("expected invalid port to be unavailable")
	}
}

func TestServerURL(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://example.test:1234")

	if got := ServerURL(""); got != "http://example.test:1234" {
		t.Errorf("expected OLLAMA_HOST to be used, got %s", got)
	}
	if got := ServerURL("http://localhost:9999"); got != "http://localhost:9999" {
		t.Errorf("expected explicit url to win, got %s", got)
	}
}

func TestOllamaExtract(t *testing.T) {
	server := newMockOllama(t)
	defer server.Close()

	client, err := NewOllamaClient(server.URL, "llava", 5*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	out, err := client.Extract(context.Background(), Image{Name: "a.png", Data: []byte("png")}, "prompt")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if out != `{"year": 2021}` {
		t.Errorf("unexpected response: %s", out)
	}
}

func TestCheckModel(t *testing.T) {
	server := newMockOllama(t)
	defer server.Close()

	t.Run("model exists", func(t *testing.T) {
		client, _ := NewOllamaClient(server.URL, "llava", time.Second)
		if err := client.CheckModel(context.Background()); err != nil {
			t.Errorf("expected model to be found: %v", err)
		}
	})

	t.Run("model does not exist", func(t *testing.T) {
		client, _ := NewOllamaClient(server.URL, "nonexistent-model-xyz", time.Second)
		if err := client.CheckModel(context.Background()); err == nil {
			t.Error("expected error for nonexistent model")
		}
	})
}
