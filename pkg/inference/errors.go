package inference

import "errors"

var (
	// ErrUnavailable indicates the inference provider rejected or failed the call.
	ErrUnavailable = errors.New("inference service unavailable")
	// ErrTimeout indicates the call exceeded its configured upper bound.
	ErrTimeout = errors.New("inference call timed out")
	// ErrNoContent indicates the provider returned a response with no output text.
	ErrNoContent = errors.New("inference response contained no content")
)
