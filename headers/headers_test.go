// headers/headers_test.go
package headers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deploymenttheory/go-api-user-client/logger"
	"github.com/deploymenttheory/go-api-user-client/mocklogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestSetAuthorization(t *testing.T) {
	cases := []struct {
		name     string
		token    string
		expected string
	}{
		{"raw token", "test-token", "Bearer test-token"},
		{"already prefixed", "Bearer test-token", "Bearer test-token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			headerHandler := NewHeaderHandler(req, mocklogger.NewMockLogger())

			assert.False(t, headerHandler.HasAuthorization())
			headerHandler.SetAuthorization(tc.token)

			assert.Equal(t, tc.expected, req.Header.Get("Authorization"), "Authorization header should be correctly set")
			assert.True(t, headerHandler.HasAuthorization())
		})
	}
}

func TestSetContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)

	headerHandler := NewHeaderHandler(req, mocklogger.NewMockLogger())
	headerHandler.SetContentType("application/json")
	headerHandler.SetRequestID("abc")

	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "abc", req.Header.Get("X-Request-ID"))
}

func TestSetRequestHeadersSkipsEmptyValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)

	NewHeaderHandler(req, mocklogger.NewMockLogger()).SetRequestHeaders(map[string]string{
		"X-Tenant": "acme",
		"X-Empty":  "",
	})

	assert.Equal(t, "acme", req.Header.Get("X-Tenant"))
	_, present := req.Header["X-Empty"]
	assert.False(t, present)
}

func TestMergeHeaders(t *testing.T) {
	merged := MergeHeaders(
		map[string]string{"Accept": "application/json", "X-Client": "web"},
		map[string]string{"accept": "text/plain", "X-Trace": "1"},
	)

	assert.Equal(t, map[string]string{
		"Accept":   "text/plain",
		"X-Client": "web",
		"X-Trace":  "1",
	}, merged)
}

func TestLogHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("Authorization", "Bearer secret")

	mockLog := mocklogger.NewMockLogger()
	mockLog.On("GetLogLevel").Return(logger.LogLevelDebug)
	mockLog.On("Debug", "HTTP Request Headers", mock.MatchedBy(func(fields []zap.Field) bool {
		return len(fields) == 1 && fields[0].String == "Authorization: REDACTED"
	})).Once()

	NewHeaderHandler(req, mockLog).LogHeaders(true)

	mockLog.AssertExpectations(t)
}

func TestLogHeadersSkippedAboveDebug(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)

	mockLog := mocklogger.NewMockLogger()
	mockLog.On("GetLogLevel").Return(logger.LogLevelInfo)

	NewHeaderHandler(req, mockLog).LogHeaders(true)

	mockLog.AssertNotCalled(t, "Debug", mock.Anything, mock.Anything)
}

func TestHeadersToString(t *testing.T) {
	h := http.Header{}
	h.Add("B", "2")
	h.Add("A", "1")
	h.Add("A", "3")

	assert.Equal(t, "A: 1, 3\nB: 2", HeadersToString(h))
}

func TestCheckDeprecationHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/user/info", nil)
	resp := &http.Response{Header: http.Header{}, Request: req}
	resp.Header.Set("Deprecation", "Sun, 11 Nov 2030 23:59:59 GMT")

	mockLog := mocklogger.NewMockLogger()
	mockLog.On("Warn", "API endpoint is deprecated", mock.Anything).Once()

	CheckDeprecationHeader(resp, mockLog)

	mockLog.AssertExpectations(t)
}
