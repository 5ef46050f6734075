// internal/agent/outcome.go
package agent

import "fmt"

// Outcome classifies the result of one evaluated step.
type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeFinished
	OutcomeAuthenticateRequested
	OutcomeCallUserRequested
	OutcomeParseError
	OutcomeAPIError
	OutcomeExecutionFailed
)

// Process exit codes that are not tied to an Outcome.
const (
	ExitInternal    = 2
	ExitInterrupted = 130
)

var outcomeNames = [...]string{
	OutcomeContinue:              "continue",
	OutcomeFinished:              "finished",
	OutcomeAuthenticateRequested: "authenticate",
	OutcomeCallUserRequested:     "call_user",
	OutcomeParseError:            "parse_error",
	OutcomeAPIError:              "api_error",
	OutcomeExecutionFailed:       "execution_failed",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// MarshalText renders the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Terminal reports whether the outcome ends the instruction run by itself.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeFinished, OutcomeAuthenticateRequested, OutcomeCallUserRequested:
		return true
	}
	return false
}

// Failed reports whether the outcome is one of the error classifications.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeParseError, OutcomeAPIError, OutcomeExecutionFailed:
		return true
	}
	return false
}

// ExitCode maps the outcome onto the process exit code contract. A run
// never ends on OutcomeContinue, so it maps to ExitInternal.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeFinished:
		return 0
	case OutcomeCallUserRequested:
		return 1
	case OutcomeAuthenticateRequested:
		return 3
	default:
		return ExitInternal
	}
}

// outcomeFromStatus maps an executor status 1:1. Statuses outside the known
// set are treated as failures.
func outcomeFromStatus(s Status) (Outcome, bool) {
	switch s {
	case StatusContinue:
		return OutcomeContinue, true
	case StatusStop:
		return OutcomeFinished, true
	case StatusFailed:
		return OutcomeExecutionFailed, true
	case StatusAuthenticate:
		return OutcomeAuthenticateRequested, true
	case StatusCallUser:
		return OutcomeCallUserRequested, true
	}
	return OutcomeExecutionFailed, false
}
