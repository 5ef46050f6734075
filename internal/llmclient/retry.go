// internal/llmclient/retry.go
package llmclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/cenkalti/backoff/v5"
	openai "github.com/openai/openai-go/v3"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/deskpilot/internal/config"
)

// RetryingClient retries transient failures of the wrapped client with
// exponential backoff.
type RetryingClient struct {
	next   Client
	cfg    config.RetryConfig
	logger *zap.Logger
}

var _ Client = (*RetryingClient)(nil)

// NewRetryingClient wraps next.
func NewRetryingClient(next Client, cfg config.RetryConfig, logger *zap.Logger) *RetryingClient {
	return &RetryingClient{next: next, cfg: cfg, logger: logger.Named("llm_retry")}
}

// Complete retries transient failures of the wrapped client until
// MaxElapsed has passed or ctx is done.
func (r *RetryingClient) Complete(ctx context.Context, req Request) (string, error) {
	b := backoff.NewExponentialBackOff()
	if r.cfg.MaxInterval > 0 {
		b.MaxInterval = r.cfg.MaxInterval
		b.InitialInterval = min(b.InitialInterval, b.MaxInterval)
	}

	attempt := 0
	operation := func() (string, error) {
		attempt++
		out, err := r.next.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		if !isTransient(err) {
			return "", backoff.Permanent(err)
		}
		r.logger.Warn("Transient LLM error, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		return "", err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(r.cfg.MaxElapsed),
	)
}

// isTransient reports whether err is worth another attempt: rate limits,
// server side failures and network errors are; client errors, empty
// replies and cancellation are not.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return false
	}

	var oaErr *openai.Error
	if errors.As(err, &oaErr) {
		return transientStatus(oaErr.StatusCode)
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return transientStatus(gErr.Code)
	}
	var olErr api.StatusError
	if errors.As(err, &olErr) {
		return transientStatus(olErr.StatusCode)
	}
	return true
}

func transientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	}
	return false
}
