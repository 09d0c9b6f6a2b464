// headers/redact/redact.go
package redact

import (
	"net/http"
	"net/url"
	"strings"
)

const Redacted = "REDACTED"

// sensitiveHeaders are matched on their canonical form.
var sensitiveHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,
	"Set-Cookie":    true,
	"X-Auth-Token":  true,
	"Accesstoken":   true,
}

// sensitiveQueryKeys are matched case-insensitively.
var sensitiveQueryKeys = map[string]bool{
	"password":    true,
	"oldpassword": true,
	"newpassword": true,
	"token":       true,
	"captcha":     true,
}

// RedactSensitiveHeaderData redacts sensitive data based on the hideSensitiveData flag.
func RedactSensitiveHeaderData(hideSensitiveData bool, key, value string) string {
	if hideSensitiveData && sensitiveHeaders[http.CanonicalHeaderKey(key)] {
		return Redacted
	}
	return value
}

// RedactHeaders returns a copy of h with sensitive values redacted.
func RedactHeaders(hideSensitiveData bool, h http.Header) map[string][]string {
	out := make(map[string][]string, len(h))
	for name, values := range h {
		redacted := make([]string, len(values))
		for i, v := range values {
			redacted[i] = RedactSensitiveHeaderData(hideSensitiveData, name, v)
		}
		out[name] = redacted
	}
	return out
}

// RedactURL masks credential-bearing query parameters and any userinfo password. These are masked regardless of
// any logging flag because they never belong in logs.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	if u.RawQuery == "" {
		return u.Redacted()
	}

	query := u.Query()
	changed := false
	for key := range query {
		if sensitiveQueryKeys[strings.ToLower(key)] {
			query.Set(key, Redacted)
			changed = true
		}
	}
	if !changed {
		return u.Redacted()
	}

	clone := *u
	clone.RawQuery = query.Encode()
	return clone.Redacted()
}
