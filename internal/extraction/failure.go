// Package extraction calls the external document-recognition service and
// returns the structured fields it read off a document image.
package extraction

import (
	"errors"
	"fmt"
)

// Cause classifies why an extraction attempt failed. Callers log and react
// per cause; the causes are never collapsed into a generic error.
type Cause string

const (
	// NetworkError covers transport failures and deadline expiry.
	NetworkError Cause = "network_error"
	// MalformedResponse means the service answered but the nested OCR
	// section was absent or undecodable.
	MalformedResponse Cause = "malformed_response"
	// ServiceReportedError means the service itself signalled a non-success
	// status, over HTTP or inside the response envelope.
	ServiceReportedError Cause = "service_reported_error"
	// MissingPayload means the response carried no body at all.
	MissingPayload Cause = "missing_payload"
)

// Failure is the typed extraction error.
type Failure struct {
	Cause   Cause
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %s: %v", f.Cause, f.Message, f.Err)
	}
	return fmt.Sprintf("extraction failed (%s): %s", f.Cause, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

func newFailure(cause Cause, message string, err error) *Failure {
	return &Failure{Cause: cause, Message: message, Err: err}
}

// AsFailure extracts the typed failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// CauseOf returns the failure cause, or an empty Cause for non-extraction
// errors.
func CauseOf(err error) Cause {
	if f, ok := AsFailure(err); ok {
		return f.Cause
	}
	return ""
}
