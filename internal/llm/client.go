package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Chat roles understood by OpenAI-compatible providers.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// temperature keeps generations close to the supplied context instead of
// the model's own knowledge.
const temperature = 0.1

// Message is a single turn in a chat conversation.
type Message struct {
	Role    string
	Content string
}

// Client talks to an OpenAI-compatible chat completion API.
type Client interface {
	// Complete runs one chat completion with the given model.
	Complete(ctx context.Context, model string, messages []Message) (string, error)
	// ListModels returns the model ids the provider currently serves.
	ListModels(ctx context.Context) ([]string, error)
}

type openAIClient struct {
	client  *openai.Client
	timeout time.Duration
}

// NewClient creates a Client against the given OpenAI-compatible base URL.
func NewClient(baseURL, apiKey string, timeout time.Duration) Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAIClient{
		client:  openai.NewClientWithConfig(cfg),
		timeout: timeout,
	}
}

func (c *openAIClient) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *openAIClient) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
