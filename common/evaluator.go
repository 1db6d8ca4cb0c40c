package common

import (
	"context"
	"encoding/json"
	"time"
)

// Evaluator is the remote collaborator that inspects the live state of
// the target. It owns the remote-side polling pace: a single Evaluate
// call may internally wait and re-check up to the budget in
// EvalRequest.Timeout, but it must return within that budget rather than
// block indefinitely. It must be safe to call repeatedly with a
// decreasing budget, once per retry loop attempt.
type Evaluator interface {
	Evaluate(ctx context.Context, req *EvalRequest) (*EvalResult, error)
}

// EvalRequest is the unit sent to the Evaluator per poll attempt. The
// engine rebuilds or re-stamps it for every attempt and discards it after
// the round-trip.
type EvalRequest struct {
	// Expression is the fixed operator tag identifying the predicate
	// family, e.g. "to.have.text" or "to.be.visible".
	Expression string `json:"expression"`

	// Expected holds the text expectations, one per array item for the
	// array-shaped operators. Nil for count, property and state
	// predicates.
	Expected []*ExpectedValue `json:"expectedText,omitempty"`

	// ExpressionArg names the attribute, CSS property or JS property
	// the predicate applies to, when the operator needs one.
	ExpressionArg string `json:"expressionArg,omitempty"`

	// ExpectedNumber is the expected match count for "to.have.count".
	ExpectedNumber *float64 `json:"expectedNumber,omitempty"`

	// ExpectedValue is the serialized caller value for
	// "to.have.property"; the deep equality comparison is remote.
	ExpectedValue json.RawMessage `json:"expectedValue,omitempty"`

	// IsNot is forwarded so the remote side can stop polling early once
	// the requested polarity holds. The engine still interprets Matched
	// itself.
	IsNot bool `json:"isNot"`

	// Timeout is the remaining budget of the enclosing assertion. It is
	// strictly non-increasing across the attempts of one assertion.
	Timeout time.Duration `json:"timeout"`
}

// EvalResult is the outcome of one evaluator round-trip. A non-nil error
// from Evaluate is terminal instead: the engine never retries it.
type EvalResult struct {
	// Matched reports whether the predicate held, without polarity
	// applied.
	Matched bool `json:"matched"`

	// Received is the last observed actual value, pre-rendered for
	// diagnostics. May be empty when the evaluator has nothing to
	// report (e.g. a missing element).
	Received string `json:"received,omitempty"`

	// TimedOut reports that the evaluator exhausted the budget it was
	// given while waiting remotely. The engine then stops retrying.
	TimedOut bool `json:"timedOut,omitempty"`
}
