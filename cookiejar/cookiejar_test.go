// cookiejar/cookiejar_test.go
package cookiejar

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deploymenttheory/go-api-user-client/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestRedactSensitiveCookies tests the RedactSensitiveCookies function to ensure it correctly redacts sensitive cookies.
func TestRedactSensitiveCookies(t *testing.T) {
	cookies := []*http.Cookie{
		{Name: "JSESSIONID", Value: "sensitive-value-1"},
		{Name: "theme", Value: "dark"},
		{Name: "satoken", Value: "sensitive-value-2"},
	}

	redactedCookies := RedactSensitiveCookies(cookies)

	expectedValues := map[string]string{
		"JSESSIONID": "REDACTED",
		"theme":      "dark",
		"satoken":    "REDACTED",
	}
	for _, cookie := range redactedCookies {
		assert.Equal(t, expectedValues[cookie.Name], cookie.Value)
	}
	assert.Equal(t, "sensitive-value-1", cookies[0].Value, "input must not be modified")
}

// TestCookiesFromHeader tests the CookiesFromHeader function to ensure it can correctly parse cookies from HTTP headers.
func TestCookiesFromHeader(t *testing.T) {
	header := http.Header{
		"Set-Cookie": []string{
			"JSESSIONID=sensitive-value; Path=/; HttpOnly",
			"theme=dark; Path=/",
		},
	}

	cookies := CookiesFromHeader(header)

	require.Len(t, cookies, 2)
	assert.Equal(t, "JSESSIONID", cookies[0].Name)
	assert.Equal(t, "sensitive-value", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "theme", cookies[1].Name)
	assert.Equal(t, "dark", cookies[1].Value)
}

func TestSetupCookieJar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user/login" {
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
			return
		}
		cookie, err := r.Cookie("JSESSIONID")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(cookie.Value))
	}))
	defer server.Close()

	client := &http.Client{}
	require.NoError(t, SetupCookieJar(client, true, logger.NewNopLogger()))
	require.NotNil(t, client.Jar)

	resp, err := client.Get(server.URL + "/user/login")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(server.URL + "/user/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	disabled := &http.Client{}
	require.NoError(t, SetupCookieJar(disabled, false, logger.NewNopLogger()))
	assert.Nil(t, disabled.Jar)
}

func TestLogCookies(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewLogger(zap.New(core), logger.LogLevelDebug)

	header := http.Header{"Set-Cookie": []string{"JSESSIONID=secret; Path=/", "theme=dark"}}
	LogCookies(header, true, log)

	entries := logs.FilterMessage("Response cookies").All()
	require.Len(t, entries, 1)
	assert.Equal(t, []interface{}{"JSESSIONID=REDACTED", "theme=dark"}, entries[0].ContextMap()["Cookies"])
}
