package crawler

import (
	"context"
	"errors"
)

// Outcome classifies the result of a request or a fetch run.
type Outcome int

const (
	// OutcomeSuccess means the operation completed.
	OutcomeSuccess Outcome = iota
	// OutcomeRetryable means a later attempt or run may succeed.
	OutcomeRetryable
	// OutcomeFatal means retrying cannot help.
	OutcomeFatal
)

// String returns the outcome label used in logs and summaries.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Classify maps an error to an Outcome.
// Cancellation and malformed responses are fatal, anything else is retryable.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, ErrMalformedResponse):
		return OutcomeFatal
	default:
		return OutcomeRetryable
	}
}
