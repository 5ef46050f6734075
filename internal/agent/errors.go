// internal/agent/errors.go
package agent

import "errors"

// ErrorCode is a string type used for structured error reporting from action executors.
// Using a custom type ensures that only predefined constants can be used where an
// ErrorCode is expected.
type ErrorCode string

const (
	// -- General Execution Errors --
	ErrCodeExecutionFailure  ErrorCode = "EXECUTION_FAILURE"
	ErrCodeInvalidParameters ErrorCode = "INVALID_PARAMETERS"
	ErrCodeUnknownAction     ErrorCode = "UNKNOWN_ACTION_TYPE"

	// -- Input errors --
	// ErrCodeInputDriver means the OS input tool rejected or failed a command.
	ErrCodeInputDriver ErrorCode = "INPUT_DRIVER_ERROR"

	// -- Internal System Errors --
	ErrCodeExecutorPanic ErrorCode = "EXECUTOR_PANIC"
)

var (
	// ErrNoModelOutput is reported when the model answered with nothing usable.
	ErrNoModelOutput = errors.New("model returned no output")
	// ErrExecutorPanic wraps a panic recovered from an executor.
	ErrExecutorPanic = errors.New("executor panicked")
	// ErrNoExecutionResult is reported when an executor returns neither a result nor an error.
	ErrNoExecutionResult = errors.New("executor returned no result")
)
