// cookiejar/cookiejar.go

/* Package cookiejar keeps backend session cookies across requests when enabled and
provides helpers to log cookies without leaking session identifiers. */
package cookiejar

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/deploymenttheory/go-api-user-client/headers/redact"
	"github.com/deploymenttheory/go-api-user-client/logger"
	"go.uber.org/zap"
)

// sensitiveCookieNames are matched case-insensitively.
var sensitiveCookieNames = map[string]bool{
	"sessionid":  true,
	"jsessionid": true,
	"token":      true,
	"satoken":    true,
}

// SetupCookieJar initializes the HTTP client with a cookie jar if enabled in the configuration.
func SetupCookieJar(client *http.Client, enableCookieJar bool, log logger.Logger) error {
	if !enableCookieJar {
		return nil
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Error("Failed to create cookie jar", zap.Error(err))
		return fmt.Errorf("setupCookieJar failed: %w", err)
	}
	client.Jar = jar
	log.Debug("Cookie jar enabled")
	return nil
}

// RedactSensitiveCookies returns copies of cookies with sensitive values replaced.
// The input is not modified.
func RedactSensitiveCookies(cookies []*http.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		c := *cookie
		if sensitiveCookieNames[strings.ToLower(c.Name)] {
			c.Value = redact.Redacted
		}
		out = append(out, &c)
	}
	return out
}

// CookiesFromHeader parses the Set-Cookie headers of a response.
func CookiesFromHeader(header http.Header) []*http.Cookie {
	return (&http.Response{Header: header}).Cookies()
}

// LogCookies writes the response cookies at debug level, redacting session values when hideSensitiveData is set.
func LogCookies(header http.Header, hideSensitiveData bool, log logger.Logger) {
	cookies := CookiesFromHeader(header)
	if len(cookies) == 0 {
		return
	}
	if hideSensitiveData {
		cookies = RedactSensitiveCookies(cookies)
	}
	values := make([]string, 0, len(cookies))
	for _, c := range cookies {
		values = append(values, c.Name+"="+c.Value)
	}
	log.Debug("Response cookies", zap.Strings("Cookies", values))
}
