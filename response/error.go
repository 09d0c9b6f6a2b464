// response/error.go
// This package provides utility functions and structures for handling and categorizing HTTP error responses.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/deploymenttheory/go-api-user-client/logger"
	"github.com/deploymenttheory/go-api-user-client/status"
	"golang.org/x/net/html"
)

// StatusError represents a response received with a status outside [200,299].
type StatusError struct {
	StatusCode  int      `json:"status_code"`
	Method      string   `json:"method"`
	URL         string   `json:"url"`
	Message     string   `json:"message"`
	Details     []string `json:"details,omitempty"`
	Body        any      `json:"-"` // decoded JSON error body, nil for other formats
	RawResponse string   `json:"raw_response"`
}

// Error returns a string representation of the StatusError.
func (e *StatusError) Error() string {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API Error: StatusCode=%d, Method=%s, URL=%s, Message=%s", e.StatusCode, e.Method, e.URL, message)
}

func (e *StatusError) Kind() FailureKind { return KindHTTPStatus }

// HandleAPIErrorResponse reads the error body, extracts a human-readable message based on its content
// type, and logs the failure. redactedURL is used in place of the request URL.
func HandleAPIErrorResponse(resp *http.Response, redactedURL string, log logger.Logger) *StatusError {
	apiError := &StatusError{
		StatusCode: resp.StatusCode,
		URL:        redactedURL,
		Message:    http.StatusText(resp.StatusCode),
	}
	if resp.Request != nil {
		apiError.Method = resp.Request.Method
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		apiError.RawResponse = "Failed to read response body"
		log.LogError("request_error", apiError.Method, redactedURL, resp.StatusCode, status.TranslateStatusCode(resp.StatusCode), err, apiError.RawResponse)
		return apiError
	}

	mediaType, _ := parseHeader(resp.Header.Get("Content-Type"))
	switch {
	case len(bytes.TrimSpace(bodyBytes)) == 0:
	case isJSONMediaType(mediaType):
		parseJSONResponse(bodyBytes, apiError)
	case isXMLMediaType(mediaType):
		parseXMLResponse(bodyBytes, apiError)
	case mediaType == "text/html":
		parseHTMLResponse(bodyBytes, apiError)
	case mediaType == "text/plain":
		parseTextResponse(bodyBytes, apiError)
	default:
		apiError.RawResponse = string(bodyBytes)
	}

	log.LogError("request_error", apiError.Method, redactedURL, resp.StatusCode, status.TranslateStatusCode(resp.StatusCode), apiError, apiError.RawResponse)
	return apiError
}

// messageKeys are the JSON fields inspected, in order, for a human-readable message.
var messageKeys = []string{"msg", "message", "error", "error_description", "detail"}

// parseJSONResponse decodes the JSON error body and lifts a message from well-known keys.
func parseJSONResponse(bodyBytes []byte, apiError *StatusError) {
	apiError.RawResponse = string(bodyBytes)

	var decoded any
	if err := json.Unmarshal(bodyBytes, &decoded); err != nil {
		return
	}
	apiError.Body = decoded

	object, ok := decoded.(map[string]any)
	if !ok {
		return
	}

	for _, key := range messageKeys {
		if msg, ok := object[key].(string); ok && msg != "" {
			apiError.Message = msg
			break
		}
	}

	if errs, ok := object["errors"].([]any); ok {
		for _, item := range errs {
			switch v := item.(type) {
			case string:
				apiError.Details = append(apiError.Details, v)
			case map[string]any:
				if desc, ok := v["description"].(string); ok {
					apiError.Details = append(apiError.Details, desc)
				} else if msg, ok := v["message"].(string); ok {
					apiError.Details = append(apiError.Details, msg)
				}
			}
		}
	}
}

// parseXMLResponse dynamically parses XML error responses and accumulates potential error messages.
func parseXMLResponse(bodyBytes []byte, apiError *StatusError) {
	apiError.RawResponse = string(bodyBytes)

	doc, err := xmlquery.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return
	}

	var messages []string
	var traverse func(*xmlquery.Node)
	traverse = func(n *xmlquery.Node) {
		if n.Type == xmlquery.TextNode && strings.TrimSpace(n.Data) != "" {
			messages = append(messages, strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	if len(messages) > 0 {
		apiError.Message = strings.Join(messages, "; ")
	}
}

// parseTextResponse uses a plain text body as the message.
func parseTextResponse(bodyBytes []byte, apiError *StatusError) {
	bodyText := string(bodyBytes)
	apiError.RawResponse = bodyText
	apiError.Message = strings.TrimSpace(bodyText)
}

// parseHTMLResponse extracts the text of <p> elements (and link targets within them)
// from an HTML error page.
func parseHTMLResponse(bodyBytes []byte, apiError *StatusError) {
	apiError.RawResponse = string(bodyBytes)

	doc, err := html.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return
	}

	var messages []string
	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			var pContent strings.Builder
			var traverseChildren func(*html.Node)
			traverseChildren = func(c *html.Node) {
				if c.Type == html.TextNode {
					pContent.WriteString(strings.TrimSpace(c.Data) + " ")
				} else if c.Type == html.ElementNode && c.Data == "a" {
					for _, attr := range c.Attr {
						if attr.Key == "href" {
							pContent.WriteString("[Link: " + attr.Val + "] ")
							break
						}
					}
				}
				for child := c.FirstChild; child != nil; child = child.NextSibling {
					traverseChildren(child)
				}
			}
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				traverseChildren(child)
			}
			if finalContent := strings.TrimSpace(pContent.String()); finalContent != "" {
				messages = append(messages, finalContent)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}
	parse(doc)

	if len(messages) > 0 {
		apiError.Message = strings.Join(messages, "; ")
	}
}
