package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimedOut is returned when an expectation never reached the
	// required polarity before its deadline.
	ErrTimedOut = errors.New("timed out")

	// ErrInvalidExpectation is returned when the caller supplies an
	// expected value the codec cannot encode. It surfaces before any
	// remote call is made and is never retried.
	ErrInvalidExpectation = errors.New("invalid expected value")
)

// TimeoutError is the terminal outcome of an assertion whose expectation
// did not reach the required polarity before the deadline. It carries the
// expected value and the last actual value the evaluator observed, if any.
// Test frameworks should report it as an assertion failure, not a crash.
type TimeoutError struct {
	// Message is the operator and polarity specific failure text, e.g.
	// "Locator expected to have text".
	Message string
	// Expected is the rendered expected value. Empty for state
	// assertions such as "to.be.visible".
	Expected string
	// Actual is the last observed value the evaluator reported, if any.
	Actual string
	// Timeout is the deadline that was exceeded.
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	msg := e.Message
	if e.Expected != "" {
		msg += " " + e.Expected
	}
	msg += fmt.Sprintf(": %v %s", ErrTimedOut, e.Timeout)
	if e.Actual != "" {
		msg += ", last actual value: " + e.Actual
	}
	return msg
}

// Is reports ErrTimedOut as a match so callers can test with errors.Is
// without inspecting the concrete type.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimedOut
}

// EvaluationError is a terminal, non-retriable fault reported by the
// remote evaluator: a detached target, a malformed selector or auxiliary
// argument, or a protocol failure. It is distinguishable from a genuine
// expectation mismatch, which surfaces as a TimeoutError.
type EvaluationError struct {
	Expression string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating %q: %v", e.Expression, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
