package ai

import (
	"errors"
	"testing"

	"github.com/flavian-jumba/peerly-BE/internal/config"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderClient_RequiresKey(t *testing.T) {
	_, err := NewProviderClient(config.AIConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewProviderClient_Defaults(t *testing.T) {
	c, err := NewProviderClient(config.AIConfig{Key: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "sonar", c.model)
	assert.Equal(t, 800, c.maxTokens)
	assert.InDelta(t, 0.7, c.temperature, 0.001)
}

func TestMapProviderError(t *testing.T) {
	busy503 := &openai.APIError{HTTPStatusCode: 503, Message: "service unavailable"}
	assert.ErrorIs(t, mapProviderError(busy503), ErrBusy)

	overloaded := &openai.APIError{HTTPStatusCode: 429, Message: "The model is Overloaded, retry shortly"}
	assert.ErrorIs(t, mapProviderError(overloaded), ErrBusy)

	badKey := &openai.APIError{HTTPStatusCode: 401, Message: "invalid api key"}
	assert.NotErrorIs(t, mapProviderError(badKey), ErrBusy)

	plain := errors.New("connection refused")
	assert.Equal(t, plain, mapProviderError(plain))
}
