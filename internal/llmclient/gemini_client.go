// internal/llmclient/gemini_client.go
package llmclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

func init() {
	Register(config.ProviderGemini, func(cfg config.LLMConfig, logger *zap.Logger) (Client, error) {
		return NewGeminiClient(context.Background(), cfg, logger)
	})
}

const (
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
	pngMIMEType     = "image/png"
)

// GeminiClient implements Client for Google Gemini models.
type GeminiClient struct {
	client *genai.Client
	cfg    config.LLMConfig
	logger *zap.Logger
}

var _ Client = (*GeminiClient)(nil)

// NewGeminiClient initializes the client.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API Key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.APITimeout},
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		cfg:    cfg,
		logger: logger.Named("llm_client.gemini"),
	}, nil
}

// Complete sends the conversation to GenerateContent.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.cfg.Temperature),
	}
	if maxTokens := pickMaxTokens(req.MaxTokens, c.cfg.MaxTokens); maxTokens > 0 {
		genCfg.MaxOutputTokens = int32(maxTokens)
	}
	if req.System != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, buildGeminiContents(req), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	fields := []zap.Field{zap.Duration("duration", time.Since(start))}
	if u := resp.UsageMetadata; u != nil {
		fields = append(fields,
			zap.Int32("prompt_tokens", u.PromptTokenCount),
			zap.Int32("completion_tokens", u.CandidatesTokenCount),
			zap.Int32("total_tokens", u.TotalTokenCount),
		)
	}
	c.logger.Info("LLM generation complete (Gemini)", fields...)

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func buildGeminiContents(req Request) []*genai.Content {
	contents := make([]*genai.Content, 0, 2+2*len(req.History))
	if req.Prompt != "" {
		contents = append(contents, &genai.Content{
			Role:  geminiRoleUser,
			Parts: []*genai.Part{{Text: req.Prompt}},
		})
	}
	for _, turn := range req.History {
		contents = append(contents,
			geminiImage(turn.Screenshot),
			&genai.Content{Role: geminiRoleModel, Parts: []*genai.Part{{Text: turn.Reply}}},
		)
	}
	if len(req.Screenshot) > 0 {
		contents = append(contents, geminiImage(req.Screenshot))
	}
	return contents
}

func geminiImage(png []byte) *genai.Content {
	return &genai.Content{
		Role: geminiRoleUser,
		Parts: []*genai.Part{{
			InlineData: &genai.Blob{MIMEType: pngMIMEType, Data: png},
		}},
	}
}
