package runner

import "fmt"

// Per-case error taxonomy. Every error below is folded into a FAILED
// TestResult by the engine; none escape Run. Message text matches the
// report wording users grep for.

// MalformedTestError reports a structurally invalid test case: a
// missing required field, an unsupported method, or an unknown type tag.
type MalformedTestError struct {
	// MissingKey is set when a required field was absent from the case.
	MissingKey string
	// Reason describes any other structural problem.
	Reason string
}

func (e *MalformedTestError) Error() string {
	if e.MissingKey != "" {
		return fmt.Sprintf("Malformed test. Must provide '%s' in tests file.", e.MissingKey)
	}
	return "Malformed test. " + e.Reason
}

// RequestError reports a transport-level failure (connection refused,
// timeout, bad URL) before any response body was available.
type RequestError struct{ Err error }

func (e *RequestError) Error() string {
	return fmt.Sprintf("HTTP request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ResponseDecodeError reports a response body that is not valid JSON.
type ResponseDecodeError struct{ Err error }

func (e *ResponseDecodeError) Error() string {
	return "Could not decode JSON from response."
}

func (e *ResponseDecodeError) Unwrap() error { return e.Err }

// KeyNotFoundError reports an expected key absent from the response.
type KeyNotFoundError struct{ Key string }

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("Expected key '%s' not found.", e.Key)
}

// ValueMismatchError reports an exact-value check failure.
type ValueMismatchError struct {
	Key      string
	Expected any
	Actual   any
}

func (e *ValueMismatchError) Error() string {
	return fmt.Sprintf("Expected value '%v' at key '%s' but got '%v'.", e.Expected, e.Key, e.Actual)
}

// TypeMismatchError reports a type-tag check failure.
type TypeMismatchError struct {
	Key      string
	Expected TypeTag
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("Invalid type at key '%s'. Expected '%s' got '%s'.", e.Key, e.Expected, e.Actual)
}
