package clients

import (
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual LLM API requests
)

type OpenAIConfig struct {
	APIKey string
	// BaseURL selects any OpenAI-compatible endpoint: OpenAI, Groq
	// (https://api.groq.com/openai/v1) or a local Ollama (http://localhost:11434/v1).
	BaseURL string
	Timeout time.Duration
}

type OpenAIClient struct {
	Client *openai.Client
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = openAIRequestTimeout
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	slog.Info("[OpenAIClient] LLM client initialized",
		slog.String("base_url", config.BaseURL),
		slog.Duration("timeout", cfg.Timeout))

	return &OpenAIClient{Client: openai.NewClientWithConfig(config)}
}
