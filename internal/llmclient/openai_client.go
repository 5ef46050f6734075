// internal/llmclient/openai_client.go
package llmclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

func init() {
	Register(config.ProviderOpenAI, func(cfg config.LLMConfig, logger *zap.Logger) (Client, error) {
		return NewOpenAIClient(cfg, logger)
	})
}

// OpenAIClient talks to any OpenAI compatible chat completions endpoint,
// including a local vLLM server.
type OpenAIClient struct {
	client *openai.Client
	cfg    config.LLMConfig
	logger *zap.Logger
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient initializes the client.
func NewOpenAIClient(cfg config.LLMConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	// Retries belong to RetryingClient.
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.APITimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.APITimeout))
	}

	client := openai.NewClient(opts...)
	return &OpenAIClient{
		client: &client,
		cfg:    cfg,
		logger: logger.Named("llm_client.openai"),
	}, nil
}

// Complete sends one chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    c.buildMessages(req),
		Temperature: openai.Float(float64(c.cfg.Temperature)),
	}
	if maxTokens := pickMaxTokens(req.MaxTokens, c.cfg.MaxTokens); maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	c.logger.Info("LLM generation complete (OpenAI)",
		zap.Duration("duration", time.Since(start)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
	)

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

func (c *OpenAIClient) buildMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 3+2*len(req.History))
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	if req.Prompt != "" {
		msgs = append(msgs, openai.UserMessage(req.Prompt))
	}
	for _, turn := range req.History {
		msgs = append(msgs, imageMessage(turn.Screenshot), openai.AssistantMessage(turn.Reply))
	}
	if len(req.Screenshot) > 0 {
		msgs = append(msgs, imageMessage(req.Screenshot))
	}
	return msgs
}

func imageMessage(png []byte) openai.ChatCompletionMessageParamUnion {
	return openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: PNGDataURL(png),
		}),
	})
}

// PNGDataURL encodes an image as a base64 data URL.
func PNGDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// pickMaxTokens prefers the per request cap over the configured one.
func pickMaxTokens(request, configured int) int {
	if request > 0 {
		return request
	}
	return configured
}
