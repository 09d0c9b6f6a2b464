// httpclient/request.go
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/deploymenttheory/go-api-user-client/cookiejar"
	"github.com/deploymenttheory/go-api-user-client/headers"
	"github.com/deploymenttheory/go-api-user-client/headers/redact"
	"github.com/deploymenttheory/go-api-user-client/metrics"
	"github.com/deploymenttheory/go-api-user-client/response"
	"github.com/deploymenttheory/go-api-user-client/status"
	"go.uber.org/zap"
)

// Send dispatches desc and waits for the outcome.
//
// A status in [200,299] yields an Envelope with the decoded body. Every other outcome is an error:
//   - ErrInvalidDescriptor (wrapped) when desc is rejected before any network activity
//   - *response.StatusError for any other status, 3xx included when redirects are not followed
//   - *response.TimeoutError when the client timeout or ctx deadline expires
//   - *response.TransportError for connection failures and cancellation
//   - *response.DecodeError when a 2xx body cannot be decoded in its declared format
//
// Send never retries.
func (c *Client) Send(ctx context.Context, desc Descriptor) (*response.Envelope, error) {
	log := c.Logger
	method := string(desc.Method)
	route := desc.route()

	if err := desc.Validate(); err != nil {
		log.Warn("Rejected request descriptor", zap.String("method", method), zap.String("route", route), zap.Error(err))
		c.metrics.ObserveRejected(method, route)
		return nil, err
	}

	reqURL, err := c.buildURL(desc)
	if err != nil {
		log.Warn("Rejected request descriptor", zap.String("method", method), zap.String("route", route), zap.Error(err))
		c.metrics.ObserveRejected(method, route)
		return nil, err
	}
	redactedURL := redact.RedactURL(reqURL)

	payload, err := encodeBody(desc.Body, log)
	if err != nil {
		c.metrics.ObserveRejected(method, route)
		return nil, err
	}

	ctx, requestID, err := c.Concurrency.AcquireConcurrencyPermit(ctx)
	if err != nil {
		failure := response.ClassifyTransportError(method, redactedURL, err)
		log.LogError("concurrency_permit_error", method, redactedURL, 0, "", err, "")
		c.metrics.ObserveRequest(method, route, outcomeOf(failure), 0, 0)
		return nil, failure
	}
	defer c.Concurrency.ReleaseConcurrencyPermit(requestID)

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), payload.reader)
	if err != nil {
		log.Error("Failed to create HTTP request", zap.String("method", method), zap.String("url", redactedURL), zap.Error(err))
		c.metrics.ObserveRejected(method, route)
		return nil, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}

	headerHandler := headers.NewHeaderHandler(req, log)
	headerHandler.SetRequestHeaders(headers.MergeHeaders(c.defaultHeaders, desc.Headers))
	if payload.multipart || (payload.contentType != "" && req.Header.Get(headers.HeaderContentType) == "") {
		headerHandler.SetContentType(payload.contentType)
	}
	headerHandler.SetRequestID(requestID.String())
	if err := c.AuthTokenHandler.ApplyBearerToken(req); err != nil {
		c.metrics.ObserveRejected(method, route)
		return nil, err
	}
	headerHandler.LogHeaders(c.config.HideSensitiveData)

	log.LogRequestStart("request_start", requestID.String(), method, redactedURL, redact.RedactHeaders(c.config.HideSensitiveData, req.Header))

	c.metrics.RequestStarted()
	defer c.metrics.RequestFinished()

	startTime := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		duration := time.Since(startTime)
		failure := response.ClassifyTransportError(method, redactedURL, err)
		log.LogError("request_transport_error", method, redactedURL, 0, response.KindOf(failure).String(), failure, "")
		c.metrics.ObserveRequest(method, route, outcomeOf(failure), 0, duration)
		return nil, failure
	}
	defer drainAndClose(resp.Body)

	envelope, err := c.handleResponse(resp, redactedURL)
	duration := time.Since(startTime)
	log.LogRequestEnd("request_end", requestID.String(), method, redactedURL, resp.StatusCode, duration)
	c.metrics.ObserveRequest(method, route, outcomeOf(err), resp.StatusCode, duration)

	return envelope, err
}

// Do sends desc and decodes the JSON body of a successful response into out.
// out may be nil, in which case Do behaves like Send.
func (c *Client) Do(ctx context.Context, desc Descriptor, out any) (*response.Envelope, error) {
	envelope, err := c.Send(ctx, desc)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return envelope, nil
	}
	if err := envelope.Decode(out); err != nil {
		c.Logger.Error("Failed to decode response into target", zap.String("route", desc.route()), zap.Error(err))
		return envelope, err
	}
	return envelope, nil
}

// buildURL joins the base URL, the descriptor path and its encoded query.
func (c *Client) buildURL(desc Descriptor) (*url.URL, error) {
	path := desc.Path
	if path[0] != '/' {
		path = "/" + path
	}

	reqURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("%w: path %q: %w", ErrInvalidDescriptor, desc.Path, err)
	}

	query, err := encodeQuery(desc.Query)
	if err != nil {
		return nil, err
	}
	reqURL.RawQuery = query

	return reqURL, nil
}

// handleResponse turns a received response into an Envelope or a classified failure.
func (c *Client) handleResponse(resp *http.Response, redactedURL string) (*response.Envelope, error) {
	log := c.Logger

	headers.CheckDeprecationHeader(resp, log)
	cookiejar.LogCookies(resp.Header, c.config.HideSensitiveData, log)

	if !status.IsSuccess(resp.StatusCode) {
		if status.IsRedirectStatusCode(resp.StatusCode) {
			log.Warn("Redirect response received", zap.Int("status_code", resp.StatusCode), zap.String("location", resp.Header.Get("Location")))
		}
		if status.IsAuthError(resp.StatusCode) {
			log.Warn("Session rejected by backend", zap.Int("status_code", resp.StatusCode), zap.String("url", redactedURL))
		}
		return nil, response.HandleAPIErrorResponse(resp, redactedURL, log)
	}

	return response.HandleAPISuccessResponse(resp, log, headers.Flatten(resp.Header))
}

// outcomeOf maps a Send result to its metrics label.
func outcomeOf(err error) string {
	switch response.KindOf(err) {
	case response.KindNone:
		if err != nil {
			return metrics.OutcomeInvalid
		}
		return metrics.OutcomeSuccess
	case response.KindTransport:
		return metrics.OutcomeTransport
	case response.KindTimeout:
		return metrics.OutcomeTimeout
	case response.KindHTTPStatus:
		return metrics.OutcomeHTTPStatus
	case response.KindSerialization:
		return metrics.OutcomeSerialization
	default:
		return metrics.OutcomeInvalid
	}
}

// drainAndClose lets the transport reuse the connection.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
