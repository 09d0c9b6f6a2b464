package response

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"

	"github.com/deploymenttheory/go-api-user-client/mocklogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TestHandleAPIErrorResponse tests the handling of various API error responses.
func TestHandleAPIErrorResponse(t *testing.T) {
	tests := []struct {
		name            string
		responseStatus  int
		contentType     string
		responseBody    string
		expectedMessage string
		expectedDetails []string
		expectBody      bool
	}{
		{
			name:            "backend result envelope",
			responseStatus:  http.StatusUnauthorized,
			contentType:     "application/json",
			responseBody:    `{"code":401,"msg":"token expired","data":null}`,
			expectedMessage: "token expired",
			expectBody:      true,
		},
		{
			name:            "json with error list",
			responseStatus:  http.StatusBadRequest,
			contentType:     "application/problem+json",
			responseBody:    `{"message":"validation failed","errors":[{"field":"email","description":"invalid email"},"username taken"]}`,
			expectedMessage: "validation failed",
			expectedDetails: []string{"invalid email", "username taken"},
			expectBody:      true,
		},
		{
			name:            "malformed json keeps status text",
			responseStatus:  http.StatusInternalServerError,
			contentType:     "application/json",
			responseBody:    `{"message":`,
			expectedMessage: "Internal Server Error",
		},
		{
			name:            "xml error",
			responseStatus:  http.StatusForbidden,
			contentType:     "text/xml",
			responseBody:    `<error><message>denied</message></error>`,
			expectedMessage: "denied",
		},
		{
			name:            "html error page",
			responseStatus:  http.StatusServiceUnavailable,
			contentType:     "text/html; charset=utf-8",
			responseBody:    `<html><body><p>Service Unavailable</p><p>See <a href="https://status.example.com">status</a></p></body></html>`,
			expectedMessage: "Service Unavailable; See [Link: https://status.example.com] status",
		},
		{
			name:            "plain text",
			responseStatus:  http.StatusNotFound,
			contentType:     "text/plain",
			responseBody:    "no such user\n",
			expectedMessage: "no such user",
		},
		{
			name:            "empty body",
			responseStatus:  http.StatusForbidden,
			contentType:     "",
			responseBody:    "",
			expectedMessage: "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newResponse(tt.responseStatus, tt.contentType, tt.responseBody)

			mockLogger := mocklogger.NewMockLogger()
			mockLogger.On("LogError",
				"request_error",
				http.MethodGet,
				"http://example.com/user/info",
				tt.responseStatus,
				mock.AnythingOfType("string"),
				mock.Anything,
				mock.AnythingOfType("string"),
			).Once()

			result := HandleAPIErrorResponse(resp, "http://example.com/user/info", mockLogger)

			assert.Equal(t, tt.responseStatus, result.StatusCode)
			assert.Equal(t, http.MethodGet, result.Method)
			assert.Equal(t, tt.expectedMessage, result.Message)
			assert.Equal(t, tt.expectedDetails, result.Details)
			assert.Equal(t, tt.expectBody, result.Body != nil)
			assert.Equal(t, KindHTTPStatus, KindOf(result))
			mockLogger.AssertExpectations(t)
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{StatusCode: http.StatusForbidden, Method: http.MethodGet, URL: "http://example.com/user/info"}
	assert.Equal(t, "API Error: StatusCode=403, Method=GET, URL=http://example.com/user/info, Message=Forbidden", err.Error())
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

var _ net.Error = timeoutNetError{}

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind FailureKind
	}{
		{"deadline exceeded", context.DeadlineExceeded, KindTimeout},
		{"url timeout", &url.Error{Op: "Get", URL: "http://example.com", Err: timeoutNetError{}}, KindTimeout},
		{"wrapped deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), KindTimeout},
		{"connection refused", &url.Error{Op: "Get", URL: "http://example.com", Err: errors.New("connect: connection refused")}, KindTransport},
		{"canceled", context.Canceled, KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyTransportError(http.MethodGet, "http://example.com", tt.err)

			assert.Equal(t, tt.kind, KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindNone, KindOf(errors.New("plain")))
	assert.Equal(t, KindHTTPStatus, KindOf(fmt.Errorf("wrapped: %w", &StatusError{StatusCode: 500})))
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "none", KindNone.String())
}
