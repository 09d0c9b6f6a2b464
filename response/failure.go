// response/failure.go
package response

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// FailureKind classifies why a dispatched request did not produce an Envelope.
type FailureKind int

const (
	// KindNone is returned by KindOf for nil or unclassified errors.
	KindNone FailureKind = iota
	// KindTransport covers DNS failures, refused or reset connections and cancellation.
	KindTransport
	// KindTimeout covers requests that exceeded the configured or context deadline.
	KindTimeout
	// KindHTTPStatus covers responses with a status outside [200,299].
	KindHTTPStatus
	// KindSerialization covers bodies that could not be decoded in the expected format.
	KindSerialization
)

func (k FailureKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindSerialization:
		return "serialization"
	default:
		return "none"
	}
}

// Failure is implemented by every error the dispatcher returns for a sent request.
type Failure interface {
	error
	Kind() FailureKind
}

// KindOf returns the FailureKind of err, looking through wrapped errors.
func KindOf(err error) FailureKind {
	var failure Failure
	if errors.As(err, &failure) {
		return failure.Kind()
	}
	return KindNone
}

// TransportError is returned when no HTTP response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Kind() FailureKind { return KindTransport }

// TimeoutError is returned when the request exceeded its deadline.
type TimeoutError struct {
	Method string
	URL    string
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Kind() FailureKind { return KindTimeout }

// DecodeError is returned when a response body could not be decoded.
type DecodeError struct {
	ContentType string
	Raw         []byte
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %q response body: %v", e.ContentType, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Kind() FailureKind { return KindSerialization }

// ClassifyTransportError wraps an error returned by http.Client.Do as either a TimeoutError
// or a TransportError. The redacted URL is used so credentials never end up in error strings.
func ClassifyTransportError(method, redactedURL string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactedURL
	}
	if isTimeout(err) {
		return &TimeoutError{Method: method, URL: redactedURL, Err: err}
	}
	return &TransportError{Method: method, URL: redactedURL, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
