// internal/agent/controller.go
package agent

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/action"
)

// Decision is the full result of evaluating one parsed model reply.
type Decision struct {
	Outcome Outcome
	Guard   Guard
	// Result is set when the executor ran and returned a result.
	Result *ExecutionResult
	// Err is the executor error or recovered panic behind an APIError.
	Err error
}

// Controller applies the loop guards of one instruction run and hands
// surviving actions to the executor. It is not safe for concurrent use.
type Controller struct {
	state    *LoopGuardState
	limits   Limits
	executor ActionExecutor
	logger   *zap.Logger
}

// NewController creates a controller with fresh counters.
func NewController(limits Limits, executor ActionExecutor, logger *zap.Logger) *Controller {
	return &Controller{
		state:    NewLoopGuardState(),
		limits:   limits,
		executor: executor,
		logger:   logger.Named("controller"),
	}
}

// State returns a copy of the current counters.
func (c *Controller) State() LoopGuardState {
	return c.state.Clone()
}

// Evaluate is Decide reduced to its Outcome.
func (c *Controller) Evaluate(ctx context.Context, parsed action.Parsed) Outcome {
	return c.Decide(ctx, parsed).Outcome
}

// Decide runs the guards over parsed.Action and, when they all pass,
// executes it. It never panics on executor failure.
func (c *Controller) Decide(ctx context.Context, parsed action.Parsed) Decision {
	if parsed.Action == nil {
		c.logger.Warn("Could not parse action from model output.")
		return Decision{Outcome: OutcomeParseError}
	}
	a := *parsed.Action

	v := Evaluate(c.state, c.limits, &a)
	if !v.Execute {
		c.logVerdict(a, v)
		return Decision{Outcome: v.Outcome, Guard: v.Guard}
	}

	result, err := c.execute(ctx, a)
	if err != nil {
		c.logger.Error("Exception during action execution.", zap.String("action", a.String()), zap.Error(err))
		return Decision{Outcome: OutcomeAPIError, Err: err}
	}

	outcome, known := outcomeFromStatus(result.Status)
	if !known {
		c.logger.Warn("Executor returned an unknown status.", zap.String("status", string(result.Status)))
	}
	if outcome == OutcomeExecutionFailed {
		c.logger.Warn("Action execution failed.",
			zap.String("action", a.String()),
			zap.String("error_code", string(result.ErrorCode)),
			zap.String("message", result.Message),
		)
	}
	return Decision{Outcome: outcome, Result: result}
}

// execute calls the executor, turning panics and missing results into errors.
func (c *Controller) execute(ctx context.Context, a action.Action) (result *ExecutionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Executor panicked.",
				zap.String("error_code", string(ErrCodeExecutorPanic)),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			result, err = nil, fmt.Errorf("%w: %v", ErrExecutorPanic, r)
		}
	}()

	result, err = c.executor.Execute(ctx, a)
	if err == nil && result == nil {
		err = ErrNoExecutionResult
	}
	return result, err
}

func (c *Controller) logVerdict(a action.Action, v Verdict) {
	fields := []zap.Field{zap.String("action", a.Name), zap.Int("total_steps", c.state.TotalSteps)}
	switch v.Guard {
	case GuardStepBudget:
		c.logger.Warn("Exceeded maximum total steps. Agent may be stuck in a loop, calling user.",
			append(fields, zap.Int("max_total_steps", c.limits.MaxTotalSteps))...)
	case GuardActionFrequency:
		c.logger.Warn("Action type used too often. Agent may be stuck, calling user.",
			append(fields, zap.Int("count", c.state.ActionTypeCounter[a.Name]))...)
	case GuardRepeat:
		c.logger.Warn("Same action with the same parameters repeated, calling user.",
			append(fields, zap.Int("repeats", c.state.SameActionCounter))...)
	case GuardWaitStreak:
		c.logger.Warn("Exceeded consecutive waits, handing control back to user.",
			append(fields, zap.Int("max_wait", c.limits.MaxWait))...)
	default:
		switch v.Outcome {
		case OutcomeFinished:
			c.logger.Info("Task marked as finished by model.")
		case OutcomeAuthenticateRequested:
			c.logger.Info("Model requested user authentication (OTP/mobile number).")
		case OutcomeCallUserRequested:
			c.logger.Info("Model requested user intervention.")
		}
	}
}
