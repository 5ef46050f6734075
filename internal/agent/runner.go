// internal/agent/runner.go
package agent

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/deskpilot/internal/config"
	"github.com/xkilldash9x/deskpilot/internal/timing"
)

// Runner drives an instruction run step by step until a terminal outcome,
// a streak of failed steps, or cancellation.
type Runner struct {
	stepper Stepper
	journal Journal
	cfg     config.AgentConfig
	logger  *zap.Logger
}

// NewRunner creates a Runner. journal may be nil.
func NewRunner(stepper Stepper, journal Journal, cfg config.AgentConfig, logger *zap.Logger) *Runner {
	return &Runner{stepper: stepper, journal: journal, cfg: cfg, logger: logger.Named("runner")}
}

// Run executes instruction. The returned error is non-nil only for
// cancellation (ctx.Err()) or a step that could not run at all; in the
// latter case the Outcome is OutcomeExecutionFailed.
func (r *Runner) Run(ctx context.Context, instruction string) (Outcome, error) {
	r.logger.Info("Starting instruction run.", zap.Duration("start_delay", r.cfg.StartDelay))
	if err := timing.Sleep(ctx, r.cfg.StartDelay); err != nil {
		return OutcomeContinue, err
	}

	limit := rate.Inf
	if r.cfg.StepDelay > 0 {
		limit = rate.Every(r.cfg.StepDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	streak := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return OutcomeContinue, ctx.Err()
			}
			return OutcomeExecutionFailed, err
		}

		report, err := r.stepper.Step(ctx, instruction)
		if err != nil {
			if ctx.Err() != nil {
				return OutcomeContinue, ctx.Err()
			}
			r.logger.Error("Step could not be performed.", zap.Int("step", report.Index), zap.Error(err))
			if report.Error == "" {
				report.Error = err.Error()
			}
			report.Outcome = OutcomeExecutionFailed
			r.record(report)
			return OutcomeExecutionFailed, err
		}
		r.record(report)

		outcome := report.Outcome
		if outcome.Terminal() {
			r.logger.Info("Instruction run ended.", zap.Stringer("outcome", outcome), zap.Int("steps", report.Index))
			return outcome, nil
		}

		if !outcome.Failed() {
			streak = 0
			continue
		}
		streak++
		r.logger.Warn("Step failed.",
			zap.Stringer("outcome", outcome),
			zap.Int("consecutive", streak),
			zap.Int("max_consecutive_errors", r.cfg.MaxConsecutiveErrors),
		)
		if r.cfg.MaxConsecutiveErrors > 0 && streak >= r.cfg.MaxConsecutiveErrors {
			r.logger.Error("Too many consecutive failed steps, giving up.", zap.Stringer("outcome", outcome))
			return outcome, nil
		}
	}
}

func (r *Runner) record(report StepReport) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Record(report); err != nil {
		r.logger.Warn("Failed to record step.", zap.Int("step", report.Index), zap.Error(err))
	}
}
