// httpclient/client.go
/* Package httpclient dispatches typed request descriptors to a REST backend. Each Send issues
exactly one HTTP call and returns either a response.Envelope or one of the classified failures
from the response package. The Client is safe for concurrent use; its configuration is fixed
when BuildClient returns. */
package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/deploymenttheory/go-api-user-client/authenticationhandler"
	"github.com/deploymenttheory/go-api-user-client/concurrency"
	"github.com/deploymenttheory/go-api-user-client/cookiejar"
	"github.com/deploymenttheory/go-api-user-client/headers"
	"github.com/deploymenttheory/go-api-user-client/logger"
	"github.com/deploymenttheory/go-api-user-client/metrics"
	"github.com/deploymenttheory/go-api-user-client/proxy"
	"github.com/deploymenttheory/go-api-user-client/redirecthandler"
	"github.com/deploymenttheory/go-api-user-client/version"
	"go.uber.org/zap"
)

// Client is the request dispatcher.
type Client struct {
	// Private
	config         ClientConfig
	baseURL        string
	defaultHeaders map[string]string
	http           *http.Client
	metrics        *metrics.Manager

	// Exported
	Logger           logger.Logger
	Concurrency      *concurrency.ConcurrencyHandler
	AuthTokenHandler *authenticationhandler.AuthTokenHandler
}

// BuildClient creates a new HTTP client with the provided configuration. tokens supplies the
// bearer token for each request and may be nil for anonymous use.
func BuildClient(config ClientConfig, tokens authenticationhandler.TokenStore) (*Client, error) {
	SetDefaultValuesClientConfig(&config)

	if err := validateClientConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	parsedLogLevel := logger.ParseLogLevelFromString(config.LogLevel)
	log := logger.BuildLogger(parsedLogLevel, config.LogOutputFormat, config.LogConsoleSeparator)

	baseURL, _ := url.Parse(config.BaseURL)
	log.Info("Initializing new http client", zap.String("BaseURL", baseURL.Redacted()))

	httpClient := &http.Client{
		Timeout: config.Timeout,
	}

	if err := redirecthandler.SetupRedirectHandler(httpClient, config.FollowRedirects, config.MaxRedirects, log); err != nil {
		log.Error("Failed to set up redirect handler", zap.Error(err))
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := proxy.InitializeProxy(httpClient, config.ProxyURL, config.ProxyUsername, config.ProxyPassword, log); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cookiejar.SetupCookieJar(httpClient, config.CookieJarEnabled, log); err != nil {
		return nil, err
	}

	concurrencyHandler := concurrency.NewConcurrencyHandler(
		config.MaxConcurrentRequests,
		log,
		&concurrency.ConcurrencyMetrics{},
	)

	metricsManager, err := metrics.NewManager(
		metrics.WithNamespace(config.MetricsNamespace),
		metrics.WithPrometheusRegistry(config.MetricsRegistry),
	)
	if err != nil {
		log.Error("Failed to register client metrics", zap.Error(err))
		return nil, err
	}

	defaultHeaders := headers.MergeHeaders(map[string]string{
		headers.HeaderAccept:    DefaultAcceptHeader,
		headers.HeaderUserAgent: version.GetUserAgentHeader(),
	}, config.DefaultHeaders)

	client := &Client{
		config:           config,
		baseURL:          strings.TrimRight(config.BaseURL, "/"),
		defaultHeaders:   defaultHeaders,
		http:             httpClient,
		metrics:          metricsManager,
		Logger:           log,
		Concurrency:      concurrencyHandler,
		AuthTokenHandler: authenticationhandler.NewAuthTokenHandler(tokens, log, config.HideSensitiveData),
	}

	log.Debug("New API client initialized",
		zap.String("Logging Level", config.LogLevel),
		zap.String("Log Encoding Format", config.LogOutputFormat),
		zap.Bool("Hide Sensitive Data In Logs", config.HideSensitiveData),
		zap.Bool("Cookie Jar Enabled", config.CookieJarEnabled),
		zap.Int("Max Concurrent Requests", config.MaxConcurrentRequests),
		zap.Bool("Follow Redirects", config.FollowRedirects),
		zap.Int("Max Redirects", config.MaxRedirects),
		zap.Bool("Proxy Enabled", config.ProxyURL != ""),
		zap.Duration("Timeout", config.Timeout),
	)

	return client, nil
}

// TokenStore returns the store the client reads bearer tokens from, or nil.
func (c *Client) TokenStore() authenticationhandler.TokenStore {
	return c.AuthTokenHandler.Store
}

// Metrics returns the client's Prometheus collectors.
func (c *Client) Metrics() *metrics.Manager {
	return c.metrics
}

// Config returns a copy of the configuration the client was built with.
func (c *Client) Config() ClientConfig {
	config := c.config
	config.DefaultHeaders = make(map[string]string, len(c.config.DefaultHeaders))
	for k, v := range c.config.DefaultHeaders {
		config.DefaultHeaders[k] = v
	}
	return config
}

// CloseIdleConnections releases idle keep-alive connections held by the transport.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}
