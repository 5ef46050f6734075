// internal/agent/guard.go
package agent

import (
	"maps"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/xkilldash9x/deskpilot/internal/action"
	"github.com/xkilldash9x/deskpilot/internal/config"
)

// Limits are the loop guard thresholds, fixed for the lifetime of a run.
type Limits struct {
	MaxTotalSteps      int
	MaxActionFrequency int
	MaxSameAction      int
	MaxWait            int
}

// DefaultLimits mirrors the configuration defaults.
func DefaultLimits() Limits {
	return Limits{MaxTotalSteps: 30, MaxActionFrequency: 15, MaxSameAction: 5, MaxWait: 5}
}

// LimitsFromConfig extracts the guard thresholds from the agent config.
func LimitsFromConfig(cfg config.AgentConfig) Limits {
	return Limits{
		MaxTotalSteps:      cfg.MaxTotalSteps,
		MaxActionFrequency: cfg.MaxActionFrequency,
		MaxSameAction:      cfg.MaxSameAction,
		MaxWait:            cfg.MaxWait,
	}
}

// LoopGuardState holds the counters of one instruction run. It is owned by a
// single Controller and never shared.
type LoopGuardState struct {
	TotalSteps        int
	WaitCounter       int
	SameActionCounter int
	// HasLast is false until the first non-terminal action is recorded.
	HasLast           bool
	LastActionName    string
	LastActionParams  action.Params
	ActionTypeCounter map[string]int
}

// NewLoopGuardState returns zeroed counters.
func NewLoopGuardState() *LoopGuardState {
	return &LoopGuardState{ActionTypeCounter: make(map[string]int)}
}

// Clone returns a deep copy.
func (s *LoopGuardState) Clone() LoopGuardState {
	c := *s
	c.LastActionParams = maps.Clone(s.LastActionParams)
	c.ActionTypeCounter = maps.Clone(s.ActionTypeCounter)
	return c
}

// Verdict is the result of running the guards over one action.
type Verdict struct {
	Outcome Outcome
	// Execute is true when every guard passed and the action should be
	// handed to the executor. Outcome is meaningless in that case.
	Execute bool
	Guard   Guard
}

var paramsEqual = cmpopts.EquateEmpty()

// Evaluate advances state for a and decides whether it may run. Guards are
// checked in a fixed order: terminal actions, step budget, per type
// frequency, exact repeat, wait streak. A nil action leaves state untouched.
func Evaluate(state *LoopGuardState, limits Limits, a *action.Action) Verdict {
	if a == nil {
		return Verdict{Outcome: OutcomeParseError}
	}

	state.TotalSteps++

	switch action.KindOf(a.Name) {
	case action.KindFinished:
		return Verdict{Outcome: OutcomeFinished}
	case action.KindAuthenticate:
		return Verdict{Outcome: OutcomeAuthenticateRequested}
	case action.KindCallUser:
		return Verdict{Outcome: OutcomeCallUserRequested}
	}

	if state.ActionTypeCounter == nil {
		state.ActionTypeCounter = make(map[string]int)
	}
	state.ActionTypeCounter[a.Name]++

	if state.TotalSteps >= limits.MaxTotalSteps {
		return Verdict{Outcome: OutcomeCallUserRequested, Guard: GuardStepBudget}
	}

	if state.ActionTypeCounter[a.Name] >= limits.MaxActionFrequency {
		return Verdict{Outcome: OutcomeCallUserRequested, Guard: GuardActionFrequency}
	}

	if state.HasLast && a.Name == state.LastActionName && cmp.Equal(a.Params, state.LastActionParams, paramsEqual) {
		state.SameActionCounter++
	} else {
		state.SameActionCounter = 1
		state.HasLast = true
		state.LastActionName = a.Name
		state.LastActionParams = maps.Clone(a.Params)
	}
	if state.SameActionCounter >= limits.MaxSameAction {
		return Verdict{Outcome: OutcomeCallUserRequested, Guard: GuardRepeat}
	}

	if action.KindOf(a.Name) == action.KindWait {
		state.WaitCounter++
	} else {
		state.WaitCounter = 0
	}
	if state.WaitCounter >= limits.MaxWait {
		return Verdict{Outcome: OutcomeCallUserRequested, Guard: GuardWaitStreak}
	}

	return Verdict{Execute: true}
}
