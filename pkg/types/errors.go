package types

import "fmt"

// MalformedFillError reports a fill record that is missing a required field.
// It fails the whole account analysis: dropping a single fill would shift FIFO matching
// for every later fill of the same instrument.
type MalformedFillError struct {
	Index  int    // position of the record in the source response
	Field  string // wire field name
	Reason string
}

func (e *MalformedFillError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed fill at index %d: field %q: %s", e.Index, e.Field, e.Reason)
	}

	return fmt.Sprintf("malformed fill at index %d: missing field %q", e.Index, e.Field)
}

// TransportError represents a failure talking to the fill source.
type TransportError struct {
	Op         string // "do request", "read response body", ...
	StatusCode int    // HTTP status if a response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode > 299) {
		return fmt.Sprintf("%s: unexpected status code %d: %v", e.Op, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failed request is worth a second attempt.
func (e *TransportError) Retryable() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == 429:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}
