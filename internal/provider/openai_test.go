package provider

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestIsRateLimited(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"api 429", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, true},
		{"api 500", &openai.APIError{HTTPStatusCode: http.StatusInternalServerError}, false},
		{"request 429", &openai.RequestError{HTTPStatusCode: http.StatusTooManyRequests}, true},
		{"wrapped api 429", fmt.Errorf("embeddings request failed: %w", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}), true},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, c := range cases {
		if got := IsRateLimited(c.err); got != c.want {
			t.Fatalf("%s: IsRateLimited = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestNewFromConfig_RequiresAPIKey(t *testing.T) {
	_, err := NewFromConfig(&Config{})
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}

	c, err := NewFromConfig(&Config{APIKey: "sk-test", EmbeddingModel: "text-embedding-3-small", ChatModel: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if got := c.ModelID(); got != "openai:text-embedding-3-small" {
		t.Fatalf("ModelID = %q", got)
	}
}
