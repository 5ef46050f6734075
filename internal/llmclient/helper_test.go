package llmclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

// MockClient is a mock implementation of the Client interface for testing.
type MockClient struct {
	mock.Mock
}

// Complete mocks the Complete method.
func (m *MockClient) Complete(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// setupTestLogger is a helper to create a zap logger for testing with an observer.
func setupTestLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

// getValidLLMConfig returns a valid LLMConfig for testing purposes.
func getValidLLMConfig(provider config.LLMProvider) config.LLMConfig {
	return config.LLMConfig{
		Provider:    provider,
		APIKey:      "test-api-key",
		Model:       "test-model",
		Temperature: 0,
		MaxTokens:   512,
		APITimeout:  5 * time.Second,
	}
}

// createTestRequest provides a request with one replayed turn and a current screenshot.
func createTestRequest() Request {
	return Request{
		System:     "System prompt instructions.",
		Prompt:     "User task.",
		History:    []Turn{{Screenshot: []byte("png-1"), Reply: "Thought: a\nAction: wait()"}},
		Screenshot: []byte("png-2"),
	}
}
