package enhance

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDomain is a caller error: no template exists for the domain
	ErrUnknownDomain = errors.New("no enhancement template for domain")

	// ErrUnavailable means no LLM collaborator is configured
	ErrUnavailable = errors.New("enhancement unavailable: llm not configured")

	// ErrCallFailed matches every CallFailedError
	ErrCallFailed = errors.New("enhancement call failed")

	// ErrUnparseableResponse matches every UnparseableResponseError
	ErrUnparseableResponse = errors.New("enhancement response is not valid JSON")
)

// CallFailedError wraps a transport, provider, or timeout failure.
type CallFailedError struct {
	Cause error
}

func (e *CallFailedError) Error() string {
	return fmt.Sprintf("%v: %v", ErrCallFailed, e.Cause)
}

func (e *CallFailedError) Unwrap() error { return e.Cause }

func (e *CallFailedError) Is(target error) bool { return target == ErrCallFailed }

// UnparseableResponseError carries the raw reply that held no usable JSON object.
type UnparseableResponseError struct {
	Raw string
}

func (e *UnparseableResponseError) Error() string {
	raw := e.Raw
	if len(raw) > 120 {
		raw = raw[:120] + "..."
	}
	return fmt.Sprintf("%v: %q", ErrUnparseableResponse, raw)
}

func (e *UnparseableResponseError) Is(target error) bool { return target == ErrUnparseableResponse }

// Outcome classifies an Enhance error for logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrUnparseableResponse):
		return "unparseable"
	case errors.Is(err, ErrUnknownDomain):
		return "unknown_domain"
	default:
		return "call_failed"
	}
}
