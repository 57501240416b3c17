// Package provider wraps the external embedding/completion service behind a
// small interface so the indexer and resolver never see the wire client.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/checkline/checkline-cli/internal/config"
)

// ErrNoAPIKey indicates the required provider credential is absent. At build
// or load time this is fatal; at query time it is a server-side error for
// that request.
var ErrNoAPIKey = errors.New("provider API key is not configured (set CHECKLINE_API_KEY)")

// Client embeds text into fixed-length float vectors and generates grounded
// completions. Implementations must be deterministic for the same input text
// and model.
type Client interface {
	ModelID() string
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Complete(ctx context.Context, system string, turns []Turn) (string, error)
}

// Turn is one role-tagged conversation turn passed to the completion call.
type Turn struct {
	Role    string
	Content string
}

// Config contains the resolved provider configuration.
type Config struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
}

// LoadConfig resolves the provider config from environment variables first,
// then ~/.checkline/.env.
func LoadConfig() (*Config, error) {
	apiKey, err := config.GetConfigValue("CHECKLINE_API_KEY")
	if err != nil {
		return nil, err
	}
	baseURL, err := config.GetConfigValue("CHECKLINE_BASE_URL")
	if err != nil {
		return nil, err
	}
	embedModel, err := config.GetConfigValue("CHECKLINE_EMBEDDINGS_MODEL")
	if err != nil {
		return nil, err
	}
	chatModel, err := config.GetConfigValue("CHECKLINE_CHAT_MODEL")
	if err != nil {
		return nil, err
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}

	return &Config{
		APIKey:         apiKey,
		BaseURL:        baseURL,
		EmbeddingModel: embedModel,
		ChatModel:      chatModel,
	}, nil
}

// NewFromConfig returns a provider client.
func NewFromConfig(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider config is nil")
	}
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	return newOpenAI(cfg), nil
}
