package agent

import "errors"

var (
	// ErrNotSupported marks a booking target missing from the supported-sites
	// registry. It maps to the "unsupported" booking status, not "failed".
	ErrNotSupported = errors.New("booking target not supported")

	// ErrMalformedAction marks a decision-service reply that is not a single
	// well-formed action object. Never silently retried.
	ErrMalformedAction = errors.New("malformed agent action")

	// ErrStepLimit marks a run that exhausted the step bound without reaching
	// done or error.
	ErrStepLimit = errors.New("agent step limit exceeded")
)
