package agent

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/deskpilot/internal/action"
	"github.com/xkilldash9x/deskpilot/internal/llmclient"
)

// -- Executor Mock --

// MockExecutor mocks the ActionExecutor interface.
type MockExecutor struct {
	mock.Mock
}

// Execute mocks the executor call.
func (m *MockExecutor) Execute(ctx context.Context, a action.Action) (*ExecutionResult, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ExecutionResult), args.Error(1)
}

// -- Model Mock --

// MockModel mocks the ModelClient interface.
type MockModel struct {
	mock.Mock
}

// Complete mocks the model call.
func (m *MockModel) Complete(ctx context.Context, req llmclient.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// -- Screenshot Mock --

// MockScreens mocks the ScreenshotProvider interface.
type MockScreens struct {
	mock.Mock
}

// Capture mocks a screen capture.
func (m *MockScreens) Capture(ctx context.Context, dir string) (string, error) {
	args := m.Called(ctx, dir)
	return args.String(0), args.Error(1)
}

// -- Stepper Mock --

// MockStepper mocks the Stepper interface.
type MockStepper struct {
	mock.Mock
}

// Step mocks one agent step.
func (m *MockStepper) Step(ctx context.Context, instruction string) (StepReport, error) {
	args := m.Called(ctx, instruction)
	return args.Get(0).(StepReport), args.Error(1)
}

// -- Journal Fake --

// memJournal records reports in memory.
type memJournal struct {
	mu      sync.Mutex
	reports []StepReport
	err     error
}

func (j *memJournal) Record(r StepReport) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reports = append(j.reports, r)
	return j.err
}

func (j *memJournal) outcomes() []Outcome {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Outcome, 0, len(j.reports))
	for _, r := range j.reports {
		out = append(out, r.Outcome)
	}
	return out
}

// -- Helpers --

func continueResult() *ExecutionResult { return &ExecutionResult{Status: StatusContinue} }

func click(x, y int) *action.Action {
	a := action.New("click", action.Params{"start_box": action.PointValue(x, y)})
	return &a
}

func named(name string) *action.Action {
	a := action.New(name, nil)
	return &a
}
