// status.go
// Package status classifies HTTP status codes for the dispatcher.
package status

import (
	"fmt"
	"net/http"
)

// IsSuccess reports whether statusCode is in [200,299].
func IsSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

// IsRedirectStatusCode checks if the provided HTTP status code is one of the redirect codes.
//
// - 301 Moved Permanently
// - 302 Found
// - 303 See Other
// - 307 Temporary Redirect
// - 308 Permanent Redirect
func IsRedirectStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// IsPermanentRedirect checks if the provided HTTP status code is one of the permanent redirect codes.
func IsPermanentRedirect(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// IsAuthError reports whether the backend rejected the session (401) or the permission (403).
func IsAuthError(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden
}

// TranslateStatusCode provides a human-readable message for HTTP status codes.
func TranslateStatusCode(statusCode int) string {
	messages := map[int]string{
		http.StatusOK:                    "Request successful.",
		http.StatusCreated:               "Request to create or update resource successful.",
		http.StatusAccepted:              "The request was accepted for processing, but the processing has not completed.",
		http.StatusNoContent:             "Request successful. No content to send for this request.",
		http.StatusMovedPermanently:      "Moved permanently. The resource has a new permanent URL.",
		http.StatusFound:                 "Found. The resource temporarily resides under a different URL.",
		http.StatusBadRequest:            "Bad request. Verify the syntax of the request.",
		http.StatusUnauthorized:          "Authentication failed. Verify the session token or log in again.",
		http.StatusForbidden:             "Invalid permissions. Verify the account has the proper permissions for the resource.",
		http.StatusNotFound:              "Resource not found. Verify the URL path is correct.",
		http.StatusMethodNotAllowed:      "Method not allowed. The method specified is not allowed for the resource.",
		http.StatusRequestTimeout:        "Request timeout. The server timed out waiting for the request.",
		http.StatusConflict:              "Conflict. The request could not be processed because of conflict in the request.",
		http.StatusRequestEntityTooLarge: "Payload too large. The request is larger than the server is willing or able to process.",
		http.StatusUnsupportedMediaType:  "Unsupported media type. The request entity has a media type which the server or resource does not support.",
		http.StatusUnprocessableEntity:   "Unprocessable entity. The server was unable to process the contained instructions.",
		http.StatusTooManyRequests:       "Too many requests. The user has sent too many requests in a given amount of time.",
		http.StatusInternalServerError:   "Internal server error. The server encountered an unexpected condition that prevented it from fulfilling the request.",
		http.StatusNotImplemented:        "Not implemented. The server does not support the functionality required to fulfill the request.",
		http.StatusBadGateway:            "Bad gateway. The server received an invalid response from the upstream server while trying to fulfill the request.",
		http.StatusServiceUnavailable:    "Service unavailable. The server is currently unable to handle the request due to temporary overloading or maintenance.",
		http.StatusGatewayTimeout:        "Gateway timeout. The server did not receive a timely response from the upstream server.",
	}

	if message, exists := messages[statusCode]; exists {
		return message
	}
	return fmt.Sprintf("Unknown status code: %d", statusCode)
}
