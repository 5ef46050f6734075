package llmclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

func TestNewClient(t *testing.T) {
	logger, _ := setupTestLogger(t)

	t.Run("providers register themselves", func(t *testing.T) {
		assert.Equal(t, []config.LLMProvider{config.ProviderGemini, config.ProviderOllama, config.ProviderOpenAI}, Providers())
	})

	t.Run("openai without retries", func(t *testing.T) {
		client, err := NewClient(getValidLLMConfig(config.ProviderOpenAI), logger)
		require.NoError(t, err)
		assert.IsType(t, &OpenAIClient{}, client)
	})

	t.Run("retries wrap the provider", func(t *testing.T) {
		cfg := getValidLLMConfig(config.ProviderOllama)
		cfg.Endpoint = "http://127.0.0.1:11434"
		cfg.Retry = config.RetryConfig{MaxElapsed: 1, MaxInterval: 1}
		client, err := NewClient(cfg, logger)
		require.NoError(t, err)
		require.IsType(t, &RetryingClient{}, client)
		assert.IsType(t, &OllamaClient{}, client.(*RetryingClient).next)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewClient(getValidLLMConfig("claude"), logger)
		assert.ErrorIs(t, err, ErrUnknownProvider)
	})

	t.Run("factory error is wrapped", func(t *testing.T) {
		cfg := getValidLLMConfig(config.ProviderOpenAI)
		cfg.Model = ""
		_, err := NewClient(cfg, logger)
		assert.ErrorContains(t, err, "failed to create openai client")
	})
}

func TestUserPrompt(t *testing.T) {
	prompt := UserPrompt("Open the calculator.")
	assert.True(t, strings.HasSuffix(prompt, "## User Task Instruction\nOpen the calculator.\n"))
	for _, sig := range ActionSpace() {
		assert.Contains(t, prompt, sig)
	}
	assert.Contains(t, SystemPrompt(), "authenticate()")
	assert.Len(t, ActionSpace(), 11)
}
