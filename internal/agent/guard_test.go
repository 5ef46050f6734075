package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/deskpilot/internal/action"
)

func TestEvaluate_NilActionLeavesStateUntouched(t *testing.T) {
	s := NewLoopGuardState()
	v := Evaluate(s, DefaultLimits(), nil)

	assert.Equal(t, OutcomeParseError, v.Outcome)
	assert.False(t, v.Execute)
	assert.Equal(t, *NewLoopGuardState(), s.Clone())
}

func TestEvaluate_TotalStepsMonotonic(t *testing.T) {
	s := NewLoopGuardState()
	limits := Limits{MaxTotalSteps: 100, MaxActionFrequency: 100, MaxSameAction: 100, MaxWait: 100}
	seq := []*action.Action{click(1, 1), named("wait"), named("finished"), click(2, 2), named("call_user"), nil, named("authenticate")}

	k := 0
	for _, a := range seq {
		Evaluate(s, limits, a)
		if a != nil {
			k++
		}
		assert.Equal(t, k, s.TotalSteps)
	}
}

func TestEvaluate_TerminalActionsBypassGuards(t *testing.T) {
	cases := map[string]Outcome{
		"finished":     OutcomeFinished,
		"authenticate": OutcomeAuthenticateRequested,
		"call_user":    OutcomeCallUserRequested,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			s := NewLoopGuardState()
			s.TotalSteps = 99
			s.ActionTypeCounter[name] = 99
			v := Evaluate(s, DefaultLimits(), named(name))

			assert.Equal(t, want, v.Outcome)
			assert.Equal(t, GuardNone, v.Guard)
			assert.False(t, v.Execute)
			assert.Equal(t, 100, s.TotalSteps)
			assert.Equal(t, 99, s.ActionTypeCounter[name], "terminal actions are not counted per type")
			assert.False(t, s.HasLast)
		})
	}
}

func TestEvaluate_StepBudget(t *testing.T) {
	s := NewLoopGuardState()
	limits := Limits{MaxTotalSteps: 3, MaxActionFrequency: 15, MaxSameAction: 5, MaxWait: 5}

	assert.True(t, Evaluate(s, limits, click(1, 1)).Execute)
	assert.True(t, Evaluate(s, limits, click(2, 2)).Execute)
	v := Evaluate(s, limits, click(3, 3))
	assert.Equal(t, OutcomeCallUserRequested, v.Outcome)
	assert.Equal(t, GuardStepBudget, v.Guard)
}

func TestEvaluate_ActionFrequencyBoundary(t *testing.T) {
	s := NewLoopGuardState()
	limits := Limits{MaxTotalSteps: 30, MaxActionFrequency: 15, MaxSameAction: 5, MaxWait: 5}

	for i := 1; i <= 14; i++ {
		v := Evaluate(s, limits, click(i, i))
		require.True(t, v.Execute, "evaluation %d", i)
	}
	v := Evaluate(s, limits, click(15, 15))
	assert.Equal(t, OutcomeCallUserRequested, v.Outcome)
	assert.Equal(t, GuardActionFrequency, v.Guard)
	assert.Equal(t, 15, s.ActionTypeCounter["click"])
	assert.Equal(t, 1, s.SameActionCounter, "distinct coordinates never build a repeat streak")
}

func TestEvaluate_RepeatGuard(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		t.Run(fmt.Sprintf("max_same_action=%d", n), func(t *testing.T) {
			s := NewLoopGuardState()
			limits := Limits{MaxTotalSteps: 100, MaxActionFrequency: 100, MaxSameAction: n, MaxWait: 100}

			for i := 1; i < n; i++ {
				v := Evaluate(s, limits, click(10, 20))
				require.True(t, v.Execute, "repeat %d of %d", i, n)
				assert.Equal(t, i, s.SameActionCounter)
			}
			v := Evaluate(s, limits, click(10, 20))
			assert.Equal(t, OutcomeCallUserRequested, v.Outcome)
			assert.Equal(t, GuardRepeat, v.Guard)
		})
	}
}

func TestEvaluate_RepeatResetsOnChange(t *testing.T) {
	s := NewLoopGuardState()
	limits := DefaultLimits()

	Evaluate(s, limits, click(1, 2))
	Evaluate(s, limits, click(1, 2))
	assert.Equal(t, 2, s.SameActionCounter)

	Evaluate(s, limits, click(1, 3))
	assert.Equal(t, 1, s.SameActionCounter)
	assert.Equal(t, action.PointValue(1, 3), s.LastActionParams["start_box"])

	drag := action.New("left_double", action.Params{"start_box": action.PointValue(1, 3)})
	Evaluate(s, limits, &drag)
	assert.Equal(t, 1, s.SameActionCounter, "a different name resets the streak")
	assert.Equal(t, "left_double", s.LastActionName)
}

func TestEvaluate_RepeatComparesByValue(t *testing.T) {
	s := NewLoopGuardState()
	limits := DefaultLimits()

	a := action.New("type", action.Params{"content": action.TextValue("hi")})
	b := action.New("type", action.Params{"content": action.TextValue("hi")})
	Evaluate(s, limits, &a)
	Evaluate(s, limits, &b)
	assert.Equal(t, 2, s.SameActionCounter)

	// Mutating the caller's map must not rewrite the stored parameters.
	b.Params["content"] = action.TextValue("changed")
	assert.Equal(t, action.TextValue("hi"), s.LastActionParams["content"])

	// nil and empty parameter maps are the same parameter set.
	w1 := action.Action{Name: "wait"}
	w2 := action.New("wait", action.Params{})
	Evaluate(s, limits, &w1)
	Evaluate(s, limits, &w2)
	assert.Equal(t, 2, s.SameActionCounter)
}

func TestEvaluate_WaitStreak(t *testing.T) {
	s := NewLoopGuardState()
	// The repeat guard is disabled in practice so the wait streak is isolated.
	limits := Limits{MaxTotalSteps: 100, MaxActionFrequency: 100, MaxSameAction: 100, MaxWait: 5}

	for i := 1; i <= 4; i++ {
		require.True(t, Evaluate(s, limits, named("wait")).Execute)
	}
	v := Evaluate(s, limits, named("wait"))
	assert.Equal(t, OutcomeCallUserRequested, v.Outcome)
	assert.Equal(t, GuardWaitStreak, v.Guard)
}

func TestEvaluate_WaitStreakResets(t *testing.T) {
	s := NewLoopGuardState()
	limits := Limits{MaxTotalSteps: 100, MaxActionFrequency: 100, MaxSameAction: 100, MaxWait: 3}

	Evaluate(s, limits, named("wait"))
	Evaluate(s, limits, named("wait"))
	Evaluate(s, limits, click(5, 5))
	assert.Equal(t, 0, s.WaitCounter)
	assert.True(t, Evaluate(s, limits, named("wait")).Execute)
	assert.Equal(t, 1, s.WaitCounter)
}

func TestEvaluate_DefaultWaitTripsRepeatFirst(t *testing.T) {
	// With defaults both thresholds are 5; the repeat guard is checked first.
	s := NewLoopGuardState()
	var v Verdict
	for i := 0; i < 5; i++ {
		v = Evaluate(s, DefaultLimits(), named("wait"))
	}
	assert.Equal(t, OutcomeCallUserRequested, v.Outcome)
	assert.Equal(t, GuardRepeat, v.Guard)
}

func TestEvaluate_UnknownNamesPassToExecutor(t *testing.T) {
	s := NewLoopGuardState()
	v := Evaluate(s, DefaultLimits(), named("launch_rocket"))
	assert.True(t, v.Execute)
	assert.Equal(t, 1, s.ActionTypeCounter["launch_rocket"])
}

func TestLimitsFromDefaults(t *testing.T) {
	assert.Equal(t, Limits{MaxTotalSteps: 30, MaxActionFrequency: 15, MaxSameAction: 5, MaxWait: 5}, DefaultLimits())
}
