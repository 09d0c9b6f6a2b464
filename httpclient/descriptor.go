// httpclient/descriptor.go
package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// ErrInvalidDescriptor is wrapped by every error returned for a descriptor rejected before
// any network activity.
var ErrInvalidDescriptor = errors.New("invalid request descriptor")

// Method is an HTTP verb accepted by the dispatcher.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
	MethodPatch  Method = http.MethodPatch
)

// Valid reports whether m is one of the supported verbs.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch:
		return true
	}
	return false
}

// QueryParams maps parameter names to string or numeric values.
type QueryParams map[string]any

// Descriptor describes one outbound request. It is consumed by a single Send.
type Descriptor struct {
	Path    string // relative to the base URL, e.g. "/user/info/42"
	Method  Method
	Query   QueryParams
	Body    Body              // nil means no payload
	Headers map[string]string // merged over the client's default headers

	// Route labels the request in metrics. Defaults to Path; set it to the route
	// template when Path carries identifiers.
	Route string
}

// Body is the payload of a request: JSONBody or MultipartBody.
type Body interface {
	isBody()
}

// JSONBody is serialized with encoding/json and sent as application/json.
type JSONBody struct {
	Value any
}

// MultipartBody is sent as multipart/form-data with parts in order.
type MultipartBody struct {
	Parts []FormPart
}

func (JSONBody) isBody()      {}
func (MultipartBody) isBody() {}

// FormPart is one field of a multipart body. A part with a non-nil Content is a file.
type FormPart struct {
	FieldName   string
	Value       string    // text fields only
	FileName    string    // file parts only
	Content     io.Reader // file parts only
	ContentType string    // file parts only, defaults to application/octet-stream
}

// TextField returns a plain form field.
func TextField(name, value string) FormPart {
	return FormPart{FieldName: name, Value: value}
}

// FileField returns a file part read from content.
func FileField(name, fileName string, content io.Reader) FormPart {
	return FormPart{FieldName: name, FileName: fileName, Content: content}
}

// IsFile reports whether the part carries file content.
func (p FormPart) IsFile() bool {
	return p.Content != nil
}

// Validate checks the descriptor without touching the network.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Path) == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalidDescriptor)
	}
	if strings.ContainsAny(d.Path, "?#") {
		return fmt.Errorf("%w: path %q must not contain a query or fragment, use Query", ErrInvalidDescriptor, d.Path)
	}
	if !d.Method.Valid() {
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidDescriptor, d.Method)
	}
	if d.Method == MethodGet && !isEmptyBody(d.Body) {
		return fmt.Errorf("%w: GET request cannot carry a body", ErrInvalidDescriptor)
	}

	switch body := d.Body.(type) {
	case nil, JSONBody, *JSONBody:
	case MultipartBody:
		if err := validateParts(body.Parts); err != nil {
			return err
		}
	case *MultipartBody:
		if body == nil {
			break
		}
		if err := validateParts(body.Parts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unsupported body type %T", ErrInvalidDescriptor, d.Body)
	}

	if _, err := encodeQuery(d.Query); err != nil {
		return err
	}
	return nil
}

// isEmptyBody reports whether body carries no payload. Typed nil pointers count as empty.
func isEmptyBody(body Body) bool {
	switch b := body.(type) {
	case nil:
		return true
	case *JSONBody:
		return b == nil
	case *MultipartBody:
		return b == nil
	default:
		return false
	}
}

func validateParts(parts []FormPart) error {
	for i, part := range parts {
		if part.FieldName == "" {
			return fmt.Errorf("%w: multipart part %d has no field name", ErrInvalidDescriptor, i)
		}
	}
	return nil
}

// route returns the metrics label for the descriptor.
func (d Descriptor) route() string {
	if d.Route != "" {
		return d.Route
	}
	return d.Path
}

// encodeQuery renders query parameters with url.Values.Encode, which sorts by key.
func encodeQuery(params QueryParams) (string, error) {
	if len(params) == 0 {
		return "", nil
	}
	values := url.Values{}
	for key, raw := range params {
		value, err := queryValue(raw)
		if err != nil {
			return "", fmt.Errorf("%w: query parameter %q: %v", ErrInvalidDescriptor, key, err)
		}
		values.Set(key, value)
	}
	return values.Encode(), nil
}

// queryValue coerces strings and numbers to their string form.
func queryValue(raw any) (string, error) {
	if raw == nil {
		return "", errors.New("nil value")
	}
	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported type %T", raw)
	}
}

// Path formats a route template, escaping each segment with url.PathEscape so that
// identifiers cannot alter the route.
func Path(format string, segments ...string) string {
	escaped := make([]any, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return fmt.Sprintf(format, escaped...)
}
