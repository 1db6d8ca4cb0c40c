package common

import (
	"context"
	"fmt"
	"time"

	"github.com/browserkit/expect/log"
)

// Assertions is an auto-retrying expectation surface bound to a single
// remote target. Each method re-evaluates its expectation against the
// live target until it holds, then returns nil; a *TimeoutError is
// returned when the deadline passes first, and an *EvaluationError when
// the evaluator reports a terminal fault.
//
// An Assertions value holds no mutable state across calls, so separate
// invocations on different targets may run concurrently without locking.
type Assertions struct {
	target Evaluator
	isNot  bool

	timeouts *TimeoutSettings

	ctx context.Context
	log *log.Logger
}

// NewAssertions creates an assertion surface for the given target. A nil
// ts falls back to the library default timeout; a nil logger discards
// debug output.
func NewAssertions(ctx context.Context, target Evaluator, ts *TimeoutSettings, l *log.Logger) *Assertions {
	if ts == nil {
		ts = NewTimeoutSettings(nil)
	}
	return &Assertions{
		target:   target,
		timeouts: ts,
		ctx:      ctx,
		log:      l,
	}
}

// Not returns a new Assertions sharing the same target with the polarity
// flipped. The receiver is unchanged; chaining Not twice restores the
// original semantics.
func (a *Assertions) Not() *Assertions {
	return &Assertions{
		target:   a.target,
		isNot:    !a.isNot,
		timeouts: a.timeouts,
		ctx:      a.ctx,
		log:      a.log,
	}
}

// Timeout will return the default timeout or the one set by the user.
func (a *Assertions) Timeout() time.Duration {
	return a.timeouts.Timeout()
}

// ToHaveText expects the target's text content to equal the given value,
// with whitespace normalized. text can be a string, a *regexp.Regexp, a
// []string, a []*regexp.Regexp, or a []any mixing strings and patterns;
// arrays compare positionally. A pattern matches substring-style, same
// as ToContainText.
func (a *Assertions) ToHaveText(text any, opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToHaveText", "isnot:%t text:%v opts:%+v", a.isNot, text, opts)

	ev, err := buildExpectedText(text, hasTextFamily)
	if err != nil {
		return fmt.Errorf("checking text of target: %w", err)
	}
	expression := "to.have.text"
	if ev.isArray() {
		expression = "to.have.text.array"
	}
	message := "Locator expected to have text"
	if ev.hasPattern() {
		message += " matching regex"
	}
	return a.expect(newEvalRequest(expression, ev, ""), message, ev.String(), a.resolveTimeout(opts))
}

// ToContainText expects the target's text content to contain the given
// value, with whitespace normalized. Accepts the same value shapes as
// ToHaveText.
func (a *Assertions) ToContainText(text any, opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToContainText", "isnot:%t text:%v opts:%+v", a.isNot, text, opts)

	ev, err := buildExpectedText(text, containsTextFamily)
	if err != nil {
		return fmt.Errorf("checking text of target: %w", err)
	}
	expression := "to.have.text"
	message := "Locator expected to contain text"
	if ev.isArray() {
		expression = "to.contain.text.array"
	} else if ev.hasPattern() {
		message = "Locator expected to contain regex"
	}
	return a.expect(newEvalRequest(expression, ev, ""), message, ev.String(), a.resolveTimeout(opts))
}

// ToHaveAttribute expects the target to have the named attribute with the
// given value. value can be a string or a *regexp.Regexp.
func (a *Assertions) ToHaveAttribute(name string, value any, opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToHaveAttribute", "isnot:%t name:%q value:%v opts:%+v", a.isNot, name, value, opts)

	ev, err := buildExpectedScalar(value, plainTextFamily)
	if err != nil {
		return fmt.Errorf("checking attribute %q of target: %w", name, err)
	}
	message := fmt.Sprintf("Locator expected to have attribute '%s'", name)
	if ev.hasPattern() {
		message += " matching regex"
	}
	return a.expect(newEvalRequest("to.have.attribute", ev, name), message, ev.String(), a.resolveTimeout(opts))
}

// ToHaveClass expects the target's class list to equal the given value.
// Accepts the same value shapes as ToHaveText; arrays compare
// positionally, not as a set.
func (a *Assertions) ToHaveClass(class any, opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToHaveClass", "isnot:%t class:%v opts:%+v", a.isNot, class, opts)

	ev, err := buildExpectedText(class, plainTextFamily)
	if err != nil {
		return fmt.Errorf("checking class of target: %w", err)
	}
	expression := "to.have.class"
	if ev.isArray() {
		expression = "to.have.class.array"
	}
	message := "Locator expected to have class"
	if ev.hasPattern() {
		message += " matching regex"
	}
	return a.expect(newEvalRequest(expression, ev, ""), message, ev.String(), a.resolveTimeout(opts))
}

// ToHaveCount expects the number of elements matching the target to
// equal count.
func (a *Assertions) ToHaveCount(count int, opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToHaveCount", "isnot:%t count:%d opts:%+v", a.isNot, count, opts)

	ev := expectedNumber(float64(count))
	message := "Locator expected to have count"
	return a.expect(newEvalRequest("to.have.count", ev, ""), message, ev.String(), a.resolveTimeout(opts))
}

// ToHaveCSS expects the target to have the named computed CSS property
// with the given value. value can be a string or a *regexp.Regexp.
func (a *Assertions) ToHaveCSS(name string, value any, opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToHaveCSS", "isnot:%t name:%q value:%v opts:%+v", a.isNot, name, value, opts)

	ev, err := buildExpectedScalar(value, plainTextFamily)
	if err != nil {
		return fmt.Errorf("checking CSS property %q of target: %w", name, err)
	}
	message := fmt.Sprintf("Locator expected to have CSS property '%s'", name)
	if ev.hasPattern() {
		message += " matching regex"
	}
	return a.expect(newEvalRequest("to.have.css", ev, name), message, ev.String(), a.resolveTimeout(opts))
}

// ToHaveID expects the target's id attribute to equal the given value.
// id can be a string or a *regexp.Regexp.
func (a *Assertions) ToHaveID(id any, opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToHaveID", "isnot:%t id:%v opts:%+v", a.isNot, id, opts)

	ev, err := buildExpectedScalar(id, plainTextFamily)
	if err != nil {
		return fmt.Errorf("checking ID of target: %w", err)
	}
	message := "Locator expected to have ID"
	if ev.hasPattern() {
		message += " matching regex"
	}
	return a.expect(newEvalRequest("to.have.id", ev, ""), message, ev.String(), a.resolveTimeout(opts))
}

// ToHaveJSProperty expects the target's JS property name to deep-equal
// the given value. The value is serialized here; the structural
// comparison happens on the remote side.
func (a *Assertions) ToHaveJSProperty(name string, value any, opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToHaveJSProperty", "isnot:%t name:%q value:%v opts:%+v", a.isNot, name, value, opts)

	ev, err := expectedProperty(value)
	if err != nil {
		return fmt.Errorf("checking JS property %q of target: %w", name, err)
	}
	message := fmt.Sprintf("Locator expected to have JavaScript property '%s'", name)
	return a.expect(newEvalRequest("to.have.property", ev, name), message, ev.String(), a.resolveTimeout(opts))
}

// ToHaveValue expects the target's input value to equal the given value.
// value can be a string or a *regexp.Regexp.
func (a *Assertions) ToHaveValue(value any, opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToHaveValue", "isnot:%t value:%v opts:%+v", a.isNot, value, opts)

	ev, err := buildExpectedScalar(value, plainTextFamily)
	if err != nil {
		return fmt.Errorf("checking value of target: %w", err)
	}
	message := "Locator expected to have value"
	if ev.hasPattern() {
		message += " matching regex"
	}
	return a.expect(newEvalRequest("to.have.value", ev, ""), message, ev.String(), a.resolveTimeout(opts))
}

// ToBeChecked expects the target to be checked. With opts.Checked set to
// false it expects the unchecked state instead.
func (a *Assertions) ToBeChecked(opts *CheckedOptions) error {
	a.log.Debugf("Assertions:ToBeChecked", "isnot:%t opts:%+v", a.isNot, opts)

	expression := "to.be.checked"
	var timeoutOpts *ExpectOptions
	if opts != nil {
		timeoutOpts = &opts.ExpectOptions
		if !opts.Checked {
			expression = "to.be.unchecked"
		}
	}
	return a.expectTrue(expression, "Locator expected to be checked", timeoutOpts)
}

// ToBeDisabled expects the target to be disabled.
func (a *Assertions) ToBeDisabled(opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToBeDisabled", "isnot:%t opts:%+v", a.isNot, opts)
	return a.expectTrue("to.be.disabled", "Locator expected to be disabled", opts)
}

// ToBeEditable expects the target to be editable.
func (a *Assertions) ToBeEditable(opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToBeEditable", "isnot:%t opts:%+v", a.isNot, opts)
	return a.expectTrue("to.be.editable", "Locator expected to be editable", opts)
}

// ToBeEmpty expects the target to be empty: no text for a container, no
// value for an input.
func (a *Assertions) ToBeEmpty(opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToBeEmpty", "isnot:%t opts:%+v", a.isNot, opts)
	return a.expectTrue("to.be.empty", "Locator expected to be empty", opts)
}

// ToBeEnabled expects the target to be enabled.
func (a *Assertions) ToBeEnabled(opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToBeEnabled", "isnot:%t opts:%+v", a.isNot, opts)
	return a.expectTrue("to.be.enabled", "Locator expected to be enabled", opts)
}

// ToBeFocused expects the target to have focus.
func (a *Assertions) ToBeFocused(opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToBeFocused", "isnot:%t opts:%+v", a.isNot, opts)
	return a.expectTrue("to.be.focused", "Locator expected to be focused", opts)
}

// ToBeHidden expects the target to be hidden.
func (a *Assertions) ToBeHidden(opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToBeHidden", "isnot:%t opts:%+v", a.isNot, opts)
	return a.expectTrue("to.be.hidden", "Locator expected to be hidden", opts)
}

// ToBeVisible expects the target to be visible.
func (a *Assertions) ToBeVisible(opts *ExpectOptions) error {
	a.log.Debugf("Assertions:ToBeVisible", "isnot:%t opts:%+v", a.isNot, opts)
	return a.expectTrue("to.be.visible", "Locator expected to be visible", opts)
}

func (a *Assertions) expectTrue(expression, message string, opts *ExpectOptions) error {
	ev := expectedBooleanTrue()
	return a.expect(newEvalRequest(expression, ev, ""), message, ev.String(), a.resolveTimeout(opts))
}
