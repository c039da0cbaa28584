package queue

import "errors"

// ErrJobNotFound is returned when a job identifier resolves to nothing.
var ErrJobNotFound = errors.New("job not found")

// ErrIllegalTransition is returned when a status change would violate the
// job lifecycle (for example starting a job that already finished).
var ErrIllegalTransition = errors.New("illegal status transition")
