package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browserkit/expect/log"
)

// evaluatorStub records every request it receives and answers from evalFn.
type evaluatorStub struct {
	evalFn func(ctx context.Context, req *EvalRequest) (*EvalResult, error)
	calls  []EvalRequest
}

func (s *evaluatorStub) Evaluate(ctx context.Context, req *EvalRequest) (*EvalResult, error) {
	s.calls = append(s.calls, *req)
	return s.evalFn(ctx, req)
}

func newTestAssertions(target Evaluator, defaultTimeout time.Duration) *Assertions {
	ts := NewTimeoutSettings(nil)
	ts.SetDefaultTimeout(defaultTimeout)
	return NewAssertions(context.Background(), target, ts, log.NewNullLogger())
}

func TestExpectMatchesFirstAttempt(t *testing.T) {
	t.Parallel()

	stub := &evaluatorStub{
		evalFn: func(_ context.Context, _ *EvalRequest) (*EvalResult, error) {
			return &EvalResult{Matched: true}, nil
		},
	}
	a := newTestAssertions(stub, 100*time.Millisecond)

	require.NoError(t, a.ToBeVisible(nil))
	assert.Len(t, stub.calls, 1)
	assert.Equal(t, "to.be.visible", stub.calls[0].Expression)
	assert.False(t, stub.calls[0].IsNot)
}

func TestExpectMatchesOnThirdRoundTrip(t *testing.T) {
	t.Parallel()

	n := 0
	stub := &evaluatorStub{
		evalFn: func(_ context.Context, _ *EvalRequest) (*EvalResult, error) {
			n++
			return &EvalResult{Matched: n == 3}, nil
		},
	}
	a := newTestAssertions(stub, time.Minute)

	require.NoError(t, a.ToHaveCount(3, nil))
	assert.Len(t, stub.calls, 3)
}

func TestExpectTimeoutBudgetNonIncreasing(t *testing.T) {
	t.Parallel()

	stub := &evaluatorStub{
		evalFn: func(_ context.Context, _ *EvalRequest) (*EvalResult, error) {
			// pace the attempts the way a remote evaluator would
			time.Sleep(5 * time.Millisecond)
			return &EvalResult{Matched: false, Received: "Bar"}, nil
		},
	}
	a := newTestAssertions(stub, 50*time.Millisecond)

	err := a.ToHaveText("Foo", nil)
	require.Error(t, err)

	var terr *TimeoutError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, "Locator expected to have text", terr.Message)
	assert.Equal(t, `"Foo"`, terr.Expected)
	assert.Equal(t, "Bar", terr.Actual)
	assert.Equal(t, 50*time.Millisecond, terr.Timeout)

	require.NotEmpty(t, stub.calls)
	prev := stub.calls[0].Timeout
	assert.LessOrEqual(t, prev, 50*time.Millisecond)
	for _, call := range stub.calls[1:] {
		assert.LessOrEqual(t, call.Timeout, prev)
		assert.Greater(t, call.Timeout, time.Duration(0))
		prev = call.Timeout
	}
}

func TestExpectEvaluatorTimedOutStopsRetrying(t *testing.T) {
	t.Parallel()

	stub := &evaluatorStub{
		evalFn: func(_ context.Context, req *EvalRequest) (*EvalResult, error) {
			// the evaluator reports it spent the whole budget remotely
			return &EvalResult{Matched: false, TimedOut: true}, nil
		},
	}
	a := newTestAssertions(stub, time.Minute)

	err := a.ToBeVisible(nil)
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Len(t, stub.calls, 1)
}

func TestExpectTerminalErrorNotRetried(t *testing.T) {
	t.Parallel()

	detached := errors.New("element was detached from the DOM")
	stub := &evaluatorStub{
		evalFn: func(_ context.Context, _ *EvalRequest) (*EvalResult, error) {
			return nil, detached
		},
	}
	a := newTestAssertions(stub, time.Minute)

	err := a.ToBeEnabled(nil)
	require.Error(t, err)

	var eerr *EvaluationError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "to.be.enabled", eerr.Expression)
	assert.ErrorIs(t, err, detached)
	assert.NotErrorIs(t, err, ErrTimedOut)
	assert.Len(t, stub.calls, 1)
}

func TestExpectCancellationIsNotTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	stub := &evaluatorStub{
		evalFn: func(ctx context.Context, _ *EvalRequest) (*EvalResult, error) {
			cancel()
			return nil, ctx.Err()
		},
	}
	ts := NewTimeoutSettings(nil)
	ts.SetDefaultTimeout(time.Minute)
	a := NewAssertions(ctx, stub, ts, log.NewNullLogger())

	err := a.ToBeVisible(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimedOut)

	var terr *TimeoutError
	assert.False(t, errors.As(err, &terr))
	assert.Len(t, stub.calls, 1)
}

func TestExpectCancellationWithContextIgnoringEvaluator(t *testing.T) {
	t.Parallel()

	// The evaluator never consults its context and keeps reporting a
	// mismatch; the engine must still notice the canceled caller between
	// attempts instead of spinning on to an expectation timeout.
	stub := &evaluatorStub{
		evalFn: func(_ context.Context, _ *EvalRequest) (*EvalResult, error) {
			return &EvalResult{Matched: false}, nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ts := NewTimeoutSettings(nil)
	ts.SetDefaultTimeout(150 * time.Millisecond)
	a := NewAssertions(ctx, stub, ts, log.NewNullLogger())

	err := a.ToBeVisible(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var terr *TimeoutError
	assert.False(t, errors.As(err, &terr))
	assert.Empty(t, stub.calls)
}

func TestExpectNegatedPolarity(t *testing.T) {
	t.Parallel()

	t.Run("negated success when predicate does not hold", func(t *testing.T) {
		t.Parallel()

		stub := &evaluatorStub{
			evalFn: func(_ context.Context, _ *EvalRequest) (*EvalResult, error) {
				return &EvalResult{Matched: false}, nil
			},
		}
		a := newTestAssertions(stub, 50*time.Millisecond)

		require.NoError(t, a.Not().ToBeVisible(nil))
		assert.Len(t, stub.calls, 1)
		assert.True(t, stub.calls[0].IsNot)
	})

	t.Run("negated failure message", func(t *testing.T) {
		t.Parallel()

		stub := &evaluatorStub{
			evalFn: func(_ context.Context, _ *EvalRequest) (*EvalResult, error) {
				return &EvalResult{Matched: true, TimedOut: true}, nil
			},
		}
		a := newTestAssertions(stub, 50*time.Millisecond)

		err := a.Not().ToHaveText("Foo", nil)
		var terr *TimeoutError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, "Locator expected not to have text", terr.Message)
	})

	t.Run("double negation is identity", func(t *testing.T) {
		t.Parallel()

		stub := &evaluatorStub{
			evalFn: func(_ context.Context, _ *EvalRequest) (*EvalResult, error) {
				return &EvalResult{Matched: true}, nil
			},
		}
		a := newTestAssertions(stub, 50*time.Millisecond)

		require.NoError(t, a.Not().Not().ToBeVisible(nil))
		assert.False(t, stub.calls[0].IsNot)

		// the original handle is unchanged by chaining
		require.NoError(t, a.ToBeVisible(nil))
	})
}

func TestExpectTimeoutOptionOverridesDefault(t *testing.T) {
	t.Parallel()

	stub := &evaluatorStub{
		evalFn: func(_ context.Context, _ *EvalRequest) (*EvalResult, error) {
			return &EvalResult{Matched: false, TimedOut: true}, nil
		},
	}
	a := newTestAssertions(stub, time.Minute)

	err := a.ToBeVisible(&ExpectOptions{Timeout: 25 * time.Millisecond})
	var terr *TimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 25*time.Millisecond, terr.Timeout)
	assert.LessOrEqual(t, stub.calls[0].Timeout, 25*time.Millisecond)
}

func TestTimeoutErrorMessage(t *testing.T) {
	t.Parallel()

	terr := &TimeoutError{
		Message:  "Locator expected to have text",
		Expected: `"Foo"`,
		Actual:   "Bar",
		Timeout:  time.Second,
	}
	assert.Equal(t,
		`Locator expected to have text "Foo": timed out 1s, last actual value: Bar`,
		terr.Error())

	stateErr := &TimeoutError{
		Message: "Locator expected to be visible",
		Timeout: 500 * time.Millisecond,
	}
	assert.Equal(t,
		"Locator expected to be visible: timed out 500ms",
		stateErr.Error())
}
