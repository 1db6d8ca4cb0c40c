package common

import "time"

// TimeoutSettings holds information on timeout settings. Settings chain:
// a child without an explicit default falls back to its parent, and the
// root falls back to DefaultTimeout.
type TimeoutSettings struct {
	parent         *TimeoutSettings
	defaultTimeout *time.Duration
}

// NewTimeoutSettings creates a new timeout settings object.
func NewTimeoutSettings(parent *TimeoutSettings) *TimeoutSettings {
	t := &TimeoutSettings{
		parent:         parent,
		defaultTimeout: nil,
	}
	return t
}

// SetDefaultTimeout sets the default maximum time an assertion waits for
// its expectation to hold.
func (t *TimeoutSettings) SetDefaultTimeout(timeout time.Duration) {
	t.defaultTimeout = &timeout
}

// Timeout returns the default timeout, resolved through the parent chain.
func (t *TimeoutSettings) Timeout() time.Duration {
	if t.defaultTimeout != nil {
		return *t.defaultTimeout
	}
	if t.parent != nil {
		return t.parent.Timeout()
	}
	return DefaultTimeout
}
