// httpclient/config.go
// Description: Client configuration, its defaults and validation, and loading from a JSON file or environment variables.
package httpclient

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevelString        = "LogLevelInfo"
	DefaultLogOutputFormatString = "console"
	DefaultLogConsoleSeparator   = "\t"
	DefaultTimeout               = 10 * time.Second
	DefaultHideSensitiveData     = false
	DefaultFollowRedirects       = false
	DefaultMaxRedirects          = 5
	DefaultMaxConcurrentRequests = 0
	DefaultMetricsNamespace      = "userapi"
	DefaultAcceptHeader          = "application/json"

	// EnvPrefix prefixes every environment variable read by LoadConfigFromEnv.
	EnvPrefix = "USERAPI"

	ConfigFileExtension = ".json"
)

var validLogLevels = []string{
	"LogLevelDebug",
	"LogLevelInfo",
	"LogLevelWarn",
	"LogLevelError",
	"LogLevelDPanic",
	"LogLevelPanic",
	"LogLevelFatal",
	"LogLevelNone",
}

var validLogFormats = []string{
	"json",
	"console",
}

// ClientConfig holds everything BuildClient needs. It is read once when the client is
// built and never mutated afterwards.
type ClientConfig struct {
	// Backend
	BaseURL        string            `mapstructure:"base_url"`
	Timeout        time.Duration     `mapstructure:"timeout"`
	DefaultHeaders map[string]string `mapstructure:"default_headers"`

	// Log
	LogLevel            string `mapstructure:"log_level"`
	LogOutputFormat     string `mapstructure:"log_output_format"` // "json" or "console"
	LogConsoleSeparator string `mapstructure:"log_console_separator"`
	HideSensitiveData   bool   `mapstructure:"hide_sensitive_data"`

	// Redirects
	FollowRedirects bool `mapstructure:"follow_redirects"`
	MaxRedirects    int  `mapstructure:"max_redirects"`

	// Proxy
	ProxyURL      string `mapstructure:"proxy_url"`
	ProxyUsername string `mapstructure:"proxy_username"`
	ProxyPassword string `mapstructure:"proxy_password"`

	// Cookies
	CookieJarEnabled bool `mapstructure:"cookie_jar_enabled"`

	// Concurrency, 0 means unlimited
	MaxConcurrentRequests int `mapstructure:"max_concurrent_requests"`

	// Metrics
	MetricsNamespace string                `mapstructure:"metrics_namespace"`
	MetricsRegistry  prometheus.Registerer `mapstructure:"-"` // nil registers on a private registry
}

// SetDefaultValuesClientConfig fills zero-valued fields with their defaults.
func SetDefaultValuesClientConfig(config *ClientConfig) {
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevelString
	}

	if config.LogOutputFormat == "" {
		config.LogOutputFormat = DefaultLogOutputFormatString
	}

	if config.LogConsoleSeparator == "" {
		config.LogConsoleSeparator = DefaultLogConsoleSeparator
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if config.MaxRedirects == 0 {
		config.MaxRedirects = DefaultMaxRedirects
	}

	if config.MetricsNamespace == "" {
		config.MetricsNamespace = DefaultMetricsNamespace
	}
}

// validateClientConfig reports the first problem found in config.
func validateClientConfig(config ClientConfig) error {
	if config.BaseURL == "" {
		return errors.New("base URL is required")
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https: %s", config.BaseURL)
	}
	if baseURL.Host == "" {
		return fmt.Errorf("base URL has no host: %s", config.BaseURL)
	}
	if baseURL.RawQuery != "" || baseURL.Fragment != "" {
		return fmt.Errorf("base URL must not carry a query or fragment: %s", config.BaseURL)
	}

	if !slices.Contains(validLogLevels, config.LogLevel) {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	if !slices.Contains(validLogFormats, config.LogOutputFormat) {
		return fmt.Errorf("invalid log output format: %s", config.LogOutputFormat)
	}

	if config.Timeout < 0 {
		return errors.New("timeout cannot be less than 0 seconds")
	}

	if config.FollowRedirects && config.MaxRedirects < 1 {
		return errors.New("max redirects cannot be less than 1")
	}

	if config.MaxConcurrentRequests < 0 {
		return errors.New("maximum concurrent requests cannot be less than 0")
	}

	return nil
}

// LoadConfigFromFile loads http client configuration settings from a JSON file.
// Durations are written as Go duration strings such as "30s".
func LoadConfigFromFile(path string) (*ClientConfig, error) {
	absPath, err := validateFilePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	v := newConfigViper()
	v.SetConfigFile(absPath)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	return unmarshalConfig(v)
}

// LoadConfigFromEnv loads configuration from USERAPI_* environment variables. A .env file
// in the working directory is read first when present; variables already set in the
// environment take precedence over it.
func LoadConfigFromEnv() (*ClientConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := newConfigViper()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return unmarshalConfig(v)
}

// newConfigViper registers every key with its default so that AutomaticEnv can see it.
func newConfigViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("base_url", "")
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("log_level", DefaultLogLevelString)
	v.SetDefault("log_output_format", DefaultLogOutputFormatString)
	v.SetDefault("log_console_separator", DefaultLogConsoleSeparator)
	v.SetDefault("hide_sensitive_data", DefaultHideSensitiveData)
	v.SetDefault("follow_redirects", DefaultFollowRedirects)
	v.SetDefault("max_redirects", DefaultMaxRedirects)
	v.SetDefault("proxy_url", "")
	v.SetDefault("proxy_username", "")
	v.SetDefault("proxy_password", "")
	v.SetDefault("cookie_jar_enabled", false)
	v.SetDefault("max_concurrent_requests", DefaultMaxConcurrentRequests)
	v.SetDefault("metrics_namespace", DefaultMetricsNamespace)

	return v
}

func unmarshalConfig(v *viper.Viper) (*ClientConfig, error) {
	var config ClientConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	SetDefaultValuesClientConfig(&config)

	return &config, nil
}

func validateFilePath(path string) (string, error) {
	cleanPath := filepath.Clean(path)

	absPath, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		return "", fmt.Errorf("unable to resolve the absolute path of the configuration file: %s, error: %w", path, err)
	}

	if strings.Contains(absPath, "..") {
		return "", fmt.Errorf("invalid path, path traversal patterns detected: %s", path)
	}

	if filepath.Ext(absPath) != ConfigFileExtension {
		return "", fmt.Errorf("invalid file extension for configuration file: %s, expected .json", path)
	}

	return absPath, nil
}
