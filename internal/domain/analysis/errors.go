package analysis

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse indicates the backend replied with a success status but no
// content to parse.
var ErrEmptyResponse = errors.New("analysis backend returned an empty response")

// ErrInFlight is returned when a submission arrives while another analysis is
// still running. At most one call may be in flight at a time.
var ErrInFlight = errors.New("an analysis is already in progress")

// InputError covers bad or undecodable local input, raised before any backend
// call is made.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

// TransportError covers an unreachable backend or a non-success status.
// StatusCode is zero when the failure happened below HTTP.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("analysis backend request failed: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("analysis backend unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError indicates a backend response that does not satisfy the result
// contract: malformed JSON, a missing required field, or a value outside its
// allowed range or enumeration.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("response violates result schema: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("response violates result schema: %s", e.Reason)
}
