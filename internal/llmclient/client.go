// internal/llmclient/client.go
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

var (
	// ErrEmptyResponse is returned when the provider answered without any text.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrUnknownProvider is returned by NewClient for unregistered providers.
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// Turn is one completed exchange: the screenshot sent and the reply received.
type Turn struct {
	Screenshot []byte
	Reply      string
}

// Request carries everything a provider needs for one completion. History
// is replayed in order before the current Screenshot.
type Request struct {
	System     string
	Prompt     string
	History    []Turn
	Screenshot []byte
	MaxTokens  int
}

// Client sends a Request to a model and returns its text reply.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Factory builds a Client for one provider.
type Factory func(cfg config.LLMConfig, logger *zap.Logger) (Client, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[config.LLMProvider]Factory)
)

// Register makes a provider available to NewClient. Registering the same
// provider twice replaces the earlier factory.
func Register(provider config.LLMProvider, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[provider] = factory
}

// Providers lists the registered provider names in sorted order.
func Providers() []config.LLMProvider {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]config.LLMProvider, 0, len(registry))
	for p := range registry {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// NewClient is a factory function that creates a Client based on the configuration.
// When retries are configured the client is wrapped in a RetryingClient.
func NewClient(cfg config.LLMConfig, logger *zap.Logger) (Client, error) {
	registryMu.RLock()
	factory, ok := registry[cfg.Provider]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: '%s'. Supported: %v", ErrUnknownProvider, cfg.Provider, Providers())
	}

	client, err := factory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	if cfg.Retry.MaxElapsed > 0 {
		client = NewRetryingClient(client, cfg.Retry, logger)
	}
	return client, nil
}
