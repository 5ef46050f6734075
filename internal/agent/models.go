// internal/agent/models.go
package agent

import (
	"time"

	"github.com/xkilldash9x/deskpilot/internal/action"
)

// Status is what an executor reports after carrying out an action.
type Status string

const (
	StatusContinue     Status = "continue"
	StatusStop         Status = "stop"
	StatusFailed       Status = "failed"
	StatusAuthenticate Status = "authenticate"
	StatusCallUser     Status = "call_user"
)

// ExecutionResult is the structured answer of an ActionExecutor. Failures the
// executor understood (bad parameters, unknown action) are reported here with
// StatusFailed rather than as a Go error.
type ExecutionResult struct {
	Status    Status    `json:"status"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Guard names the loop guard that stopped a step, if any.
type Guard string

const (
	GuardNone            Guard = ""
	GuardStepBudget      Guard = "step_budget"
	GuardActionFrequency Guard = "action_frequency"
	GuardRepeat          Guard = "repeat"
	GuardWaitStreak      Guard = "wait_streak"
)

// StepReport describes one pass through capture, model, parse and evaluate.
type StepReport struct {
	Index      int              `json:"index"`
	Time       time.Time        `json:"time"`
	Screenshot string           `json:"screenshot,omitempty"`
	Reasoning  string           `json:"reasoning,omitempty"`
	Action     *action.Action   `json:"action,omitempty"`
	ActionText string           `json:"action_text,omitempty"`
	Outcome    Outcome          `json:"outcome"`
	Guard      Guard            `json:"guard,omitempty"`
	Result     *ExecutionResult `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
}
