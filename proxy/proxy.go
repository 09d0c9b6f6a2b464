// proxy/proxy.go
package proxy

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/deploymenttheory/go-api-user-client/headers/redact"
	"github.com/deploymenttheory/go-api-user-client/logger"
	"go.uber.org/zap"
)

// InitializeProxy routes the client's traffic through proxyURL. Credentials, when given,
// are embedded in the proxy URL and sent on CONNECT. An empty proxyURL leaves the
// transport untouched.
func InitializeProxy(httpClient *http.Client, proxyURL, proxyUsername, proxyPassword string, log logger.Logger) error {
	if proxyURL == "" {
		return nil
	}

	parsedProxyURL, err := url.Parse(proxyURL)
	if err != nil {
		log.Error("Failed to parse proxy URL", zap.Error(err))
		return fmt.Errorf("invalid proxy URL: %w", err)
	}
	if parsedProxyURL.Scheme == "" || parsedProxyURL.Host == "" {
		return log.Error("Proxy URL must include scheme and host", zap.String("ProxyURL", proxyURL))
	}

	if proxyUsername != "" && proxyPassword != "" {
		parsedProxyURL.User = url.UserPassword(proxyUsername, proxyPassword)
	}

	transport := baseTransport(httpClient)
	transport.Proxy = http.ProxyURL(parsedProxyURL)
	httpClient.Transport = transport

	log.Info("Proxy configured", zap.String("ProxyURL", redact.RedactURL(parsedProxyURL)))
	return nil
}

// baseTransport returns a copy of the client's transport so existing settings survive.
func baseTransport(httpClient *http.Client) *http.Transport {
	if t, ok := httpClient.Transport.(*http.Transport); ok && t != nil {
		return t.Clone()
	}
	return http.DefaultTransport.(*http.Transport).Clone()
}
