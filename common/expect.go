package common

import (
	"context"
	"errors"
	"strings"
	"time"
)

// expect drives the retry loop of a single assertion: it re-issues the
// request against the evaluator until the expectation reaches the
// required polarity, the deadline passes, the evaluator reports a
// terminal fault, or the caller's context ends.
//
// The deadline is measured from loop entry and never reset per attempt.
// The engine adds no sleep of its own between attempts: the evaluator
// owns the remote-side polling pace, and a client-side delay on top of
// it would double up.
func (a *Assertions) expect(req *EvalRequest, message, expected string, timeout time.Duration) error {
	req.IsNot = a.isNot
	if a.isNot {
		message = strings.Replace(message, "expected to", "expected not to", 1)
	}

	deadline := time.Now().Add(timeout)
	var (
		received string
		attempts int
	)
	for {
		// A canceled caller must never be reported as an expectation
		// timeout, even when the evaluator itself ignores the context.
		if cerr := a.ctx.Err(); cerr != nil {
			return cerr
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		req.Timeout = remaining
		attempts++

		res, err := a.target.Evaluate(a.ctx, req)
		if err != nil {
			// The caller's cancellation must surface as such, not as
			// an expectation timeout.
			if cerr := a.ctx.Err(); cerr != nil {
				return cerr
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			if errors.Is(err, context.DeadlineExceeded) {
				// The evaluator burned the budget it was handed.
				break
			}
			a.log.Debugf("Assertions:expect",
				"op:%q attempt:%d terminal err:%v", req.Expression, attempts, err)
			return &EvaluationError{Expression: req.Expression, Err: err}
		}

		if res.Received != "" {
			received = res.Received
		}
		if res.Matched != a.isNot {
			a.log.Debugf("Assertions:expect",
				"op:%q isnot:%t attempts:%d matched", req.Expression, a.isNot, attempts)
			return nil
		}
		if res.TimedOut {
			break
		}
	}

	a.log.Debugf("Assertions:expect",
		"op:%q isnot:%t attempts:%d timed out after %s", req.Expression, a.isNot, attempts, timeout)

	return &TimeoutError{
		Message:  message,
		Expected: expected,
		Actual:   received,
		Timeout:  timeout,
	}
}

// newEvalRequest bridges a descriptor into the per-attempt request form.
func newEvalRequest(expression string, ev *ExpectedValue, expressionArg string) *EvalRequest {
	req := &EvalRequest{
		Expression:    expression,
		ExpressionArg: expressionArg,
	}
	switch ev.Kind {
	case KindNumber:
		n := ev.Number
		req.ExpectedNumber = &n
	case KindProperty:
		req.ExpectedValue = ev.Value
	case KindBooleanTrue:
		// state predicates carry no expected payload
	default:
		req.Expected = ev.entries()
	}
	return req
}
