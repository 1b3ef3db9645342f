package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured means no provider credentials are set. Surfaced as a
// service-unavailable condition, never a crash.
var ErrNotConfigured = errors.New("ai provider is not configured")

// ErrBusy means the provider is overloaded (503-class). Retryable by the
// client; this service performs no automatic retry.
var ErrBusy = errors.New("ai provider is busy")

// Message is a role-tagged chat message. Role is one of "system", "user" or
// "assistant".
type Message struct {
	Role    string
	Content string
}

// Result is the provider's reply plus bookkeeping for the stored meta.
type Result struct {
	Content          string
	FinishReason     string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Client is the chat-completion collaborator. Pass-through integration: the
// provider is opaque, only message assembly and error mapping live here.
type Client interface {
	Complete(ctx context.Context, messages []Message) (*Result, error)
}

// ProviderClient talks to any OpenAI-compatible chat completion endpoint
// (Perplexity in production, configured via ai.base_url).
type ProviderClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewProviderClient builds the provider client, or ErrNotConfigured when no
// API key is present.
func NewProviderClient(cfg config.AIConfig) (*ProviderClient, error) {
	if cfg.Key == "" {
		return nil, ErrNotConfigured
	}

	oc := openai.DefaultConfig(cfg.Key)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "sonar"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &ProviderClient{
		client:      openai.NewClientWithConfig(oc),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
	}, nil
}

// Complete sends the assembled messages to the provider, bounded by the
// configured timeout. Overloaded/503 responses map to ErrBusy; everything
// else is terminal for this request.
func (c *ProviderClient) Complete(ctx context.Context, messages []Message) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        0.9,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, mapProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("ai provider returned no choices")
	}

	choice := resp.Choices[0]
	return &Result{
		Content:          choice.Message.Content,
		FinishReason:     string(choice.FinishReason),
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func mapProviderError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 503 || strings.Contains(strings.ToLower(apiErr.Message), "overloaded") {
			return ErrBusy
		}
	}
	return err
}
