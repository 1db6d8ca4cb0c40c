package common

import "time"

// ExpectOptions changes the behavior of a single assertion call.
type ExpectOptions struct {
	// Timeout overrides the deadline for this assertion. Zero means
	// "use the configured default".
	Timeout time.Duration `json:"timeout"`
}

// NewExpectOptions creates ExpectOptions with all fields defaulted.
func NewExpectOptions(defaultTimeout time.Duration) *ExpectOptions {
	return &ExpectOptions{
		Timeout: defaultTimeout,
	}
}

// CheckedOptions changes the behavior of ToBeChecked. Construct it with
// NewCheckedOptions: the zero value of Checked selects the unchecked
// state, so a bare &CheckedOptions{} asserts "to.be.unchecked".
type CheckedOptions struct {
	ExpectOptions
	// Checked selects which state to assert. NewCheckedOptions sets it
	// to true; false asserts the unchecked state instead.
	Checked bool `json:"checked"`
}

// NewCheckedOptions creates CheckedOptions with all fields defaulted.
func NewCheckedOptions(defaultTimeout time.Duration) *CheckedOptions {
	return &CheckedOptions{
		ExpectOptions: *NewExpectOptions(defaultTimeout),
		Checked:       true,
	}
}

// resolveTimeout folds a possibly-nil options value into the effective
// deadline for one assertion.
func (a *Assertions) resolveTimeout(opts *ExpectOptions) time.Duration {
	if opts != nil && opts.Timeout > 0 {
		return opts.Timeout
	}
	return a.timeouts.Timeout()
}
