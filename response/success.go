// response/success.go
/* Responsible for handling successful API responses. It reads the response body, logs the raw response details,
and decodes the response based on the content type into an Envelope. */
package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/deploymenttheory/go-api-user-client/logger"
	"go.uber.org/zap"
)

// contentHandler decodes a response body of a given media type into a generic value.
type contentHandler func(body []byte, log logger.Logger, mediaType string) (any, error)

// HandleAPISuccessResponse reads the response body and builds an Envelope, decoding the body based on the content type.
// A body that cannot be decoded in its declared format yields a *DecodeError.
func HandleAPISuccessResponse(resp *http.Response, log logger.Logger, flattenedHeaders map[string]string) (*Envelope, error) {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, &DecodeError{ContentType: resp.Header.Get("Content-Type"), Err: err}
	}

	log.Debug("Raw HTTP Response", zap.Int("status_code", resp.StatusCode), zap.Int("body_bytes", len(bodyBytes)))

	mediaType, _ := parseHeader(resp.Header.Get("Content-Type"))
	contentDisposition := resp.Header.Get("Content-Disposition")

	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return NewEnvelope(resp.StatusCode, nil, bodyBytes, flattenedHeaders, mediaType), nil
	}

	handler, err := selectHandler(mediaType, contentDisposition)
	if err != nil {
		log.Error("Unmarshal error", zap.String("content type", mediaType), zap.Error(err))
		return nil, &DecodeError{ContentType: mediaType, Raw: bodyBytes, Err: err}
	}

	body, err := handler(bodyBytes, log, mediaType)
	if err != nil {
		return nil, &DecodeError{ContentType: mediaType, Raw: bodyBytes, Err: err}
	}

	return NewEnvelope(resp.StatusCode, body, bodyBytes, flattenedHeaders, mediaType), nil
}

// selectHandler picks the decoder for a media type. A missing Content-Type is treated as JSON,
// the format every route of the backend answers with.
func selectHandler(mediaType, contentDisposition string) (contentHandler, error) {
	switch {
	case mediaType == "" || isJSONMediaType(mediaType):
		return handlerUnmarshalJSON, nil
	case isXMLMediaType(mediaType):
		return handlerParseXML, nil
	case strings.HasPrefix(mediaType, "text/"):
		return handlerText, nil
	case isBinaryData(mediaType, contentDisposition):
		return handlerBinary, nil
	default:
		return nil, fmt.Errorf("unexpected MIME type: %s", mediaType)
	}
}

// handlerUnmarshalJSON decodes a JSON document into a generic value.
func handlerUnmarshalJSON(body []byte, log logger.Logger, mediaType string) (any, error) {
	var out any
	decoder := json.NewDecoder(bytes.NewReader(body))
	if err := decoder.Decode(&out); err != nil {
		log.Error("JSON Unmarshal error", zap.Error(err))
		return nil, err
	}
	if decoder.More() {
		err := errors.New("unexpected data after top-level JSON value")
		log.Error("JSON Unmarshal error", zap.Error(err))
		return nil, err
	}
	log.Debug("Successfully unmarshalled JSON response", zap.String("content type", mediaType))
	return out, nil
}

// handlerParseXML parses an XML document into an xmlquery node tree.
func handlerParseXML(body []byte, log logger.Logger, mediaType string) (any, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		log.Error("XML Unmarshal error", zap.Error(err))
		return nil, err
	}
	log.Debug("Successfully parsed XML response", zap.String("content type", mediaType))
	return doc, nil
}

func handlerText(body []byte, _ logger.Logger, _ string) (any, error) {
	return string(body), nil
}

func handlerBinary(body []byte, log logger.Logger, mediaType string) (any, error) {
	log.Debug("Received binary response", zap.String("content type", mediaType), zap.Int("bytes", len(body)))
	return bytes.Clone(body), nil
}

// isBinaryData checks if the MIME type or Content-Disposition indicates binary data.
func isBinaryData(mediaType, contentDisposition string) bool {
	return mediaType == "application/octet-stream" ||
		strings.HasPrefix(mediaType, "image/") ||
		strings.HasPrefix(contentDisposition, "attachment")
}
