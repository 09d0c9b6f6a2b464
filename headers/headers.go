// headers/headers.go
package headers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-api-user-client/headers/redact"
	"github.com/deploymenttheory/go-api-user-client/logger"
	"go.uber.org/zap"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderUserAgent     = "User-Agent"
	HeaderRequestID     = "X-Request-ID"
	HeaderDeprecation   = "Deprecation"

	bearerPrefix = "Bearer "
)

// HeaderHandler is responsible for managing and setting headers on HTTP requests.
type HeaderHandler struct {
	req *http.Request
	log logger.Logger
}

// NewHeaderHandler creates a new instance of HeaderHandler for a given http.Request and logger.
func NewHeaderHandler(req *http.Request, log logger.Logger) *HeaderHandler {
	return &HeaderHandler{
		req: req,
		log: log,
	}
}

// SetAuthorization sets the Authorization header for the request.
// The token is prefixed with "Bearer " only once.
func (h *HeaderHandler) SetAuthorization(token string) {
	if !strings.HasPrefix(token, bearerPrefix) {
		token = bearerPrefix + token
	}
	h.req.Header.Set(HeaderAuthorization, token)
}

// HasAuthorization reports whether an Authorization header was already supplied.
func (h *HeaderHandler) HasAuthorization() bool {
	return h.req.Header.Get(HeaderAuthorization) != ""
}

// SetContentType sets the Content-Type header for the request.
func (h *HeaderHandler) SetContentType(contentType string) {
	h.req.Header.Set(HeaderContentType, contentType)
}

// SetRequestID sets the X-Request-ID header used to correlate client and server logs.
func (h *HeaderHandler) SetRequestID(requestID string) {
	h.req.Header.Set(HeaderRequestID, requestID)
}

// SetRequestHeaders applies every non-empty header in the map to the request.
func (h *HeaderHandler) SetRequestHeaders(headers map[string]string) {
	for name, value := range headers {
		if value != "" {
			h.req.Header.Set(name, value)
		}
	}
}

// LogHeaders logs the current request headers at debug level, redacting sensitive values
// when hideSensitiveData is set.
func (h *HeaderHandler) LogHeaders(hideSensitiveData bool) {
	if h.log.GetLogLevel() <= logger.LogLevelDebug {
		redactedHeaders := http.Header(redact.RedactHeaders(hideSensitiveData, h.req.Header))
		h.log.Debug("HTTP Request Headers", zap.String("Headers", HeadersToString(redactedHeaders)))
	}
}

// MergeHeaders returns defaults overlaid with overrides. Keys are canonicalized so
// "content-type" in overrides replaces "Content-Type" in defaults.
func MergeHeaders(defaults, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for name, value := range defaults {
		merged[http.CanonicalHeaderKey(name)] = value
	}
	for name, value := range overrides {
		merged[http.CanonicalHeaderKey(name)] = value
	}
	return merged
}

// HeadersToString converts a http.Header to a string for logging,
// with each header on a new line, sorted by name.
func HeadersToString(headers http.Header) string {
	var headerStrings []string
	for name, values := range headers {
		headerStrings = append(headerStrings, fmt.Sprintf("%s: %s", name, strings.Join(values, ", ")))
	}
	sort.Strings(headerStrings)
	return strings.Join(headerStrings, "\n")
}

// Flatten collapses a http.Header into a single value per key, joining repeated values with ", ".
func Flatten(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// CheckDeprecationHeader checks the response headers for the Deprecation header and logs a warning if present.
func CheckDeprecationHeader(resp *http.Response, log logger.Logger) {
	deprecationHeader := resp.Header.Get(HeaderDeprecation)
	if deprecationHeader != "" {
		endpoint := ""
		if resp.Request != nil && resp.Request.URL != nil {
			endpoint = resp.Request.URL.Path
		}
		log.Warn("API endpoint is deprecated",
			zap.String("Date", deprecationHeader),
			zap.String("Endpoint", endpoint),
		)
	}
}
