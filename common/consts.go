package common

import "time"

const (
	// DefaultTimeout is the deadline applied to an assertion when no
	// timeout is configured on the options or the timeout settings.
	DefaultTimeout time.Duration = 30 * time.Second
)
