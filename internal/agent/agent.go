// internal/agent/agent.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/action"
	"github.com/xkilldash9x/deskpilot/internal/llmclient"
)

// Agent runs single steps of one instruction: capture, ask, parse, decide.
type Agent struct {
	sessionDir string
	screens    ScreenshotProvider
	model      ModelClient
	controller *Controller
	history    Conversation
	logger     *zap.Logger
	steps      int
	now        func() time.Time
}

var _ Stepper = (*Agent)(nil)

// New wires an Agent for one instruction run in sessionDir.
func New(sessionDir string, screens ScreenshotProvider, model ModelClient, controller *Controller, logger *zap.Logger) *Agent {
	return &Agent{
		sessionDir: sessionDir,
		screens:    screens,
		model:      model,
		controller: controller,
		logger:     logger.Named("agent"),
		now:        time.Now,
	}
}

// History exposes the conversation so far.
func (a *Agent) History() []llmclient.Turn { return a.history.Turns() }

// Controller returns the loop guard controller of this run.
func (a *Agent) Controller() *Controller { return a.controller }

// Step performs one pass of the decision loop. Only screenshot failures and
// context cancellation are returned as errors; everything else is reported
// through the StepReport Outcome.
func (a *Agent) Step(ctx context.Context, instruction string) (StepReport, error) {
	a.steps++
	report := StepReport{Index: a.steps, Time: a.now()}

	path, err := a.screens.Capture(ctx, a.sessionDir)
	if err != nil {
		return report, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	report.Screenshot = path

	image, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("failed to read screenshot: %w", err)
	}

	a.logger.Info("Calling model.", zap.Int("step", report.Index), zap.Int("history", a.history.Len()))
	reply, err := a.model.Complete(ctx, llmclient.Request{
		System:     llmclient.SystemPrompt(),
		Prompt:     llmclient.UserPrompt(instruction),
		History:    a.history.Turns(),
		Screenshot: image,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return report, ctxErr
	}
	if err == nil && strings.TrimSpace(reply) == "" {
		err = ErrNoModelOutput
	}
	if err != nil {
		a.logger.Error("Error calling model API.", zap.Error(err))
		report.Outcome = OutcomeAPIError
		report.Error = err.Error()
		return report, nil
	}
	a.history.Append(image, reply)

	parsed := action.Parse(reply)
	report.Reasoning = parsed.Reasoning
	if parsed.Action != nil {
		report.Action = parsed.Action
		report.ActionText = parsed.Action.String()
		a.logger.Info("Model decided.", zap.String("thought", parsed.Reasoning), zap.String("action", report.ActionText))
	} else {
		a.logger.Debug("Unparseable model output.", zap.String("output", reply))
	}

	d := a.controller.Decide(ctx, parsed)
	report.Outcome = d.Outcome
	report.Guard = d.Guard
	report.Result = d.Result
	if d.Err != nil {
		report.Error = d.Err.Error()
	}
	if errors.Is(d.Err, context.Canceled) || errors.Is(d.Err, context.DeadlineExceeded) {
		return report, d.Err
	}
	return report, nil
}
