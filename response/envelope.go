// response/envelope.go
package response

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Envelope is the result of a request that completed with a 2xx status.
// It is immutable; accessors return copies of mutable data.
type Envelope struct {
	statusCode  int
	body        any
	raw         []byte
	header      map[string]string
	contentType string
}

// NewEnvelope builds an Envelope. header is copied.
func NewEnvelope(statusCode int, body any, raw []byte, header map[string]string, contentType string) *Envelope {
	copied := make(map[string]string, len(header))
	for k, v := range header {
		copied[http.CanonicalHeaderKey(k)] = v
	}
	return &Envelope{
		statusCode:  statusCode,
		body:        body,
		raw:         bytes.Clone(raw),
		header:      copied,
		contentType: contentType,
	}
}

// StatusCode returns the HTTP status code.
func (e *Envelope) StatusCode() int { return e.statusCode }

// Body returns the decoded payload: JSON values for JSON responses, a string for text,
// an *xmlquery.Node for XML, raw bytes for binary and nil for an empty body.
func (e *Envelope) Body() any { return e.body }

// Raw returns a copy of the undecoded body.
func (e *Envelope) Raw() []byte { return bytes.Clone(e.raw) }

// ContentType returns the media type of the response without parameters.
func (e *Envelope) ContentType() string { return e.contentType }

// Header returns a single response header value.
func (e *Envelope) Header(name string) string {
	return e.header[http.CanonicalHeaderKey(name)]
}

// Headers returns a copy of all response headers.
func (e *Envelope) Headers() map[string]string {
	out := make(map[string]string, len(e.header))
	for k, v := range e.header {
		out[k] = v
	}
	return out
}

// Decode unmarshals the raw JSON body into out. An empty body leaves out untouched.
func (e *Envelope) Decode(out any) error {
	if len(bytes.TrimSpace(e.raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.raw, out); err != nil {
		return &DecodeError{ContentType: e.contentType, Raw: e.Raw(), Err: err}
	}
	return nil
}
