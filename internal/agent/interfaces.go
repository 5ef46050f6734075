// internal/agent/interfaces.go
package agent

import (
	"context"

	"github.com/xkilldash9x/deskpilot/internal/action"
	"github.com/xkilldash9x/deskpilot/internal/llmclient"
)

// ActionExecutor performs a validated action against the desktop.
type ActionExecutor interface {
	Execute(ctx context.Context, a action.Action) (*ExecutionResult, error)
}

// ScreenshotProvider captures the screen into dir and returns the file path.
type ScreenshotProvider interface {
	Capture(ctx context.Context, dir string) (string, error)
}

// ModelClient returns the model's text reply for a request.
type ModelClient interface {
	Complete(ctx context.Context, req llmclient.Request) (string, error)
}

// Stepper runs one agent step. Agent implements it; the Runner depends on it.
type Stepper interface {
	Step(ctx context.Context, instruction string) (StepReport, error)
}

// Journal persists step reports.
type Journal interface {
	Record(report StepReport) error
}
