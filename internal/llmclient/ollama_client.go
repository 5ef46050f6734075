// internal/llmclient/ollama_client.go
package llmclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

func init() {
	Register(config.ProviderOllama, func(cfg config.LLMConfig, logger *zap.Logger) (Client, error) {
		return NewOllamaClient(cfg, logger)
	})
}

// OllamaClient implements Client against a local Ollama server.
type OllamaClient struct {
	client *api.Client
	cfg    config.LLMConfig
	logger *zap.Logger
}

var _ Client = (*OllamaClient)(nil)

// NewOllamaClient initializes the client. An empty endpoint falls back to
// the OLLAMA_HOST environment handling of the ollama package.
func NewOllamaClient(cfg config.LLMConfig, logger *zap.Logger) (*OllamaClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	var client *api.Client
	if cfg.Endpoint != "" {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		client = api.NewClient(u, &http.Client{Timeout: cfg.APITimeout})
	} else {
		var err error
		if client, err = api.ClientFromEnvironment(); err != nil {
			return nil, err
		}
	}

	return &OllamaClient{
		client: client,
		cfg:    cfg,
		logger: logger.Named("llm_client.ollama"),
	}, nil
}

// Complete runs a non-streaming chat request.
func (c *OllamaClient) Complete(ctx context.Context, req Request) (string, error) {
	options := map[string]any{"temperature": c.cfg.Temperature}
	if maxTokens := pickMaxTokens(req.MaxTokens, c.cfg.MaxTokens); maxTokens > 0 {
		options["num_predict"] = maxTokens
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    c.cfg.Model,
		Messages: buildOllamaMessages(req),
		Options:  options,
		Stream:   &stream,
	}

	start := time.Now()
	var out strings.Builder
	var final api.ChatResponse
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		if resp.Done {
			final = resp
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat request failed: %w", err)
	}

	c.logger.Info("LLM generation complete (Ollama)",
		zap.Duration("duration", time.Since(start)),
		zap.Int("prompt_tokens", final.PromptEvalCount),
		zap.Int("completion_tokens", final.EvalCount),
	)

	text := out.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func buildOllamaMessages(req Request) []api.Message {
	msgs := make([]api.Message, 0, 3+2*len(req.History))
	if req.System != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: req.System})
	}
	if req.Prompt != "" {
		msgs = append(msgs, api.Message{Role: "user", Content: req.Prompt})
	}
	for _, turn := range req.History {
		msgs = append(msgs,
			api.Message{Role: "user", Images: []api.ImageData{turn.Screenshot}},
			api.Message{Role: "assistant", Content: turn.Reply},
		)
	}
	if len(req.Screenshot) > 0 {
		msgs = append(msgs, api.Message{Role: "user", Images: []api.ImageData{req.Screenshot}})
	}
	return msgs
}
