package httpclient

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	configJSON := `{
		"base_url": "https://api.example.com",
		"timeout": "30s",
		"default_headers": {"X-Client": "web"},
		"log_level": "LogLevelDebug",
		"log_output_format": "json",
		"hide_sensitive_data": true,
		"follow_redirects": true,
		"max_redirects": 3,
		"cookie_jar_enabled": true,
		"max_concurrent_requests": 4
	}`
	require.NoError(t, os.WriteFile(path, []byte(configJSON), 0o600))

	config, err := LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", config.BaseURL)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, map[string]string{"x-client": "web"}, config.DefaultHeaders)
	assert.Equal(t, "LogLevelDebug", config.LogLevel)
	assert.Equal(t, "json", config.LogOutputFormat)
	assert.True(t, config.HideSensitiveData)
	assert.True(t, config.FollowRedirects)
	assert.Equal(t, 3, config.MaxRedirects)
	assert.True(t, config.CookieJarEnabled)
	assert.Equal(t, 4, config.MaxConcurrentRequests)
	assert.Equal(t, DefaultLogConsoleSeparator, config.LogConsoleSeparator)
	assert.Equal(t, DefaultMetricsNamespace, config.MetricsNamespace)
}

func TestLoadConfigFromFileRejectsBadPaths(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("base_url: x"), 0o600))

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.json")},
		{"wrong extension", yamlPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfigFromFile(tt.path)
			assert.Nil(t, config)
			assert.ErrorContains(t, err, "invalid file path")
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("USERAPI_BASE_URL", "http://localhost:8080")
	t.Setenv("USERAPI_TIMEOUT", "2s")
	t.Setenv("USERAPI_MAX_CONCURRENT_REQUESTS", "3")
	t.Setenv("USERAPI_HIDE_SENSITIVE_DATA", "true")
	t.Setenv("USERAPI_LOG_LEVEL", "LogLevelWarn")

	config, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", config.BaseURL)
	assert.Equal(t, 2*time.Second, config.Timeout)
	assert.Equal(t, 3, config.MaxConcurrentRequests)
	assert.True(t, config.HideSensitiveData)
	assert.Equal(t, "LogLevelWarn", config.LogLevel)
	assert.Equal(t, DefaultMaxRedirects, config.MaxRedirects)
	assert.False(t, config.FollowRedirects)
}

func TestLoadConfigFromEnvReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("USERAPI_BASE_URL=http://dotenv.local\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("USERAPI_BASE_URL", "")
	require.NoError(t, os.Unsetenv("USERAPI_BASE_URL"))

	config, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://dotenv.local", config.BaseURL)
}

func TestLoadConfigFromEnvMalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("USERAPI-BASE-URL=http://dotenv.local\n"), 0o600))
	t.Chdir(dir)

	config, err := LoadConfigFromEnv()

	assert.Nil(t, config)
	assert.ErrorContains(t, err, "failed to load .env file")
}

func TestValidateClientConfig(t *testing.T) {
	valid := func() ClientConfig {
		config := ClientConfig{BaseURL: "https://api.example.com"}
		SetDefaultValuesClientConfig(&config)
		return config
	}

	tests := []struct {
		name    string
		mutate  func(*ClientConfig)
		wantErr string
	}{
		{"valid", func(*ClientConfig) {}, ""},
		{"missing base url", func(c *ClientConfig) { c.BaseURL = "" }, "base URL is required"},
		{"bad scheme", func(c *ClientConfig) { c.BaseURL = "ftp://api.example.com" }, "scheme"},
		{"no host", func(c *ClientConfig) { c.BaseURL = "http://" }, "no host"},
		{"query on base url", func(c *ClientConfig) { c.BaseURL = "https://api.example.com?x=1" }, "query or fragment"},
		{"bad log level", func(c *ClientConfig) { c.LogLevel = "verbose" }, "invalid log level"},
		{"bad log format", func(c *ClientConfig) { c.LogOutputFormat = "pretty" }, "invalid log output format"},
		{"negative timeout", func(c *ClientConfig) { c.Timeout = -time.Second }, "timeout"},
		{"redirects without budget", func(c *ClientConfig) { c.FollowRedirects = true; c.MaxRedirects = -1 }, "max redirects"},
		{"negative concurrency", func(c *ClientConfig) { c.MaxConcurrentRequests = -1 }, "concurrent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)

			err := validateClientConfig(config)

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaultValuesClientConfig(t *testing.T) {
	config := ClientConfig{Timeout: time.Minute}
	SetDefaultValuesClientConfig(&config)

	assert.Equal(t, time.Minute, config.Timeout)
	assert.Equal(t, DefaultLogLevelString, config.LogLevel)
	assert.Equal(t, DefaultLogOutputFormatString, config.LogOutputFormat)
	assert.Equal(t, DefaultMaxRedirects, config.MaxRedirects)
	assert.Equal(t, DefaultMaxConcurrentRequests, config.MaxConcurrentRequests)
}

func TestBuildClientWrapsConfigErrors(t *testing.T) {
	client, err := BuildClient(ClientConfig{}, nil)

	assert.Nil(t, client)
	assert.ErrorContains(t, err, "invalid configuration: base URL is required")
}
