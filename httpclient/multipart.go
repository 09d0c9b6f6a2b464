// httpclient/multipart.go
package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/deploymenttheory/go-api-user-client/logger"
	"go.uber.org/zap"
)

const (
	contentTypeJSON        = "application/json"
	contentTypeOctetStream = "application/octet-stream"

	uploadProgressStep = 1 << 20
)

// encodedBody is a request payload ready to send.
type encodedBody struct {
	reader      io.Reader
	contentType string
	multipart   bool
}

// encodeBody serializes body according to its variant. A nil body, typed or not, yields no payload.
func encodeBody(body Body, log logger.Logger) (*encodedBody, error) {
	if isEmptyBody(body) {
		return &encodedBody{}, nil
	}

	switch b := body.(type) {
	case JSONBody:
		return encodeJSON(b.Value)
	case *JSONBody:
		return encodeJSON(b.Value)
	case MultipartBody:
		return encodeMultipart(b.Parts, log)
	case *MultipartBody:
		return encodeMultipart(b.Parts, log)
	default:
		return nil, fmt.Errorf("%w: unsupported body type %T", ErrInvalidDescriptor, body)
	}
}

func encodeJSON(value any) (*encodedBody, error) {
	if value == nil {
		return &encodedBody{}, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding JSON body: %w", ErrInvalidDescriptor, err)
	}
	return &encodedBody{reader: bytes.NewReader(data), contentType: contentTypeJSON}, nil
}

// encodeMultipart writes every part into an in-memory form so the request has a known length.
func encodeMultipart(parts []FormPart, log logger.Logger) (*encodedBody, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for _, part := range parts {
		if !part.IsFile() {
			if err := writer.WriteField(part.FieldName, part.Value); err != nil {
				log.Error("Failed to write form field", zap.String("fieldName", part.FieldName), zap.Error(err))
				return nil, fmt.Errorf("%w: writing form field %q: %w", ErrInvalidDescriptor, part.FieldName, err)
			}
			continue
		}

		dst, err := writer.CreatePart(fileHeader(part))
		if err != nil {
			log.Error("Failed to create form file", zap.String("fieldName", part.FieldName), zap.Error(err))
			return nil, fmt.Errorf("%w: creating form file %q: %w", ErrInvalidDescriptor, part.FieldName, err)
		}
		if err := copyWithProgress(dst, part.Content, part.FileName, log); err != nil {
			log.Error("Failed to copy file content", zap.String("fileName", part.FileName), zap.Error(err))
			return nil, fmt.Errorf("%w: reading file %q: %w", ErrInvalidDescriptor, part.FileName, err)
		}
	}

	if err := writer.Close(); err != nil {
		log.Error("Failed to close writer", zap.Error(err))
		return nil, fmt.Errorf("%w: closing multipart body: %w", ErrInvalidDescriptor, err)
	}

	return &encodedBody{reader: buf, contentType: writer.FormDataContentType(), multipart: true}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func fileHeader(part FormPart) textproto.MIMEHeader {
	contentType := part.ContentType
	if contentType == "" {
		contentType = contentTypeOctetStream
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(part.FieldName), quoteEscaper.Replace(part.FileName)))
	h.Set("Content-Type", contentType)
	return h
}

// copyWithProgress copies src into dst, logging progress every megabyte.
func copyWithProgress(dst io.Writer, src io.Reader, fileName string, log logger.Logger) error {
	buffer := make([]byte, 32*1024)
	var written, nextLog int64 = 0, uploadProgressStep
	startTime := time.Now()

	for {
		n, readErr := src.Read(buffer)
		if n > 0 {
			if _, err := dst.Write(buffer[:n]); err != nil {
				return err
			}
			written += int64(n)
			if written >= nextLog {
				log.Debug("File upload progress",
					zap.String("fileName", fileName),
					zap.Float64("uploaded_megabytes", float64(written)/(1024*1024)),
					zap.Duration("elapsed_time", time.Since(startTime)))
				nextLog += uploadProgressStep
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}

	log.Debug("File part encoded",
		zap.String("fileName", fileName),
		zap.Int64("bytes", written),
		zap.Duration("elapsed_time", time.Since(startTime)))
	return nil
}
