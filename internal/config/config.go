package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Option defaults.
const (
	DefaultConnectTimeout = 30000 * time.Millisecond
	DefaultReadTimeout    = 30000 * time.Millisecond
	DefaultTotalRequests  = 1
	DefaultConcurrency    = 1
	DefaultContentType    = "text/plain"
	DefaultMethod         = "GET"
	DefaultLogLevel       = "warn"
)

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// Config is the resolved set of run parameters. It is built once by the Loader
// and shared read-only by every run.
type Config struct {
	URLs           []string      `mapstructure:"urls"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	TotalRequests  int           `mapstructure:"total_request"`
	Concurrency    int           `mapstructure:"concurrency"`
	Method         string        `mapstructure:"method"`
	ContentType    string        `mapstructure:"content_type"`
	KeepAlive      bool          `mapstructure:"keep_alive"`
	Body           string        `mapstructure:"body"`
	BodyFile       string        `mapstructure:"body_file"`
	Output         OutputFormat  `mapstructure:"output"`
	Progress       bool          `mapstructure:"progress"`
	HistoryFile    string        `mapstructure:"history_file"`
	LogLevel       string        `mapstructure:"log_level"`
	ConfigFile     string        `mapstructure:"-"`
	Tracing        TracingConfig `mapstructure:"tracing"`
}

// TracingConfig controls OTLP span export for outgoing requests.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// Default returns a Config populated with the documented option defaults.
func Default() Config {
	return Config{
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
		TotalRequests:  DefaultTotalRequests,
		Concurrency:    DefaultConcurrency,
		Method:         DefaultMethod,
		ContentType:    DefaultContentType,
		Output:         OutputText,
		LogLevel:       DefaultLogLevel,
		Tracing:        TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate reports every configuration problem at once. Warnings are returned
// separately so the caller decides where they are logged.
func (c Config) Validate() (warnings []string, err error) {
	var issues []string

	if len(c.URLs) == 0 {
		issues = append(issues, "at least one URL is required (use --help for usage information)")
	}
	for _, raw := range c.URLs {
		if issue := validateURL(raw); issue != "" {
			issues = append(issues, issue)
		}
	}

	if c.ConnectTimeout <= 0 {
		issues = append(issues, "connectTimeout must be > 0")
	}
	if c.ReadTimeout <= 0 {
		issues = append(issues, "readTimeout must be > 0")
	}
	if c.TotalRequests < 0 {
		issues = append(issues, "totalRequest must be >= 0")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if strings.TrimSpace(c.Method) == "" {
		issues = append(issues, "method is required")
	}
	if c.Body != "" && strings.TrimSpace(c.BodyFile) != "" {
		issues = append(issues, "body and body-file are mutually exclusive")
	}

	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		issues = append(issues, fmt.Sprintf("output %q is not supported (text, json or yaml)", c.Output))
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel))); err != nil {
		issues = append(issues, fmt.Sprintf("log-level %q is not a valid level", c.LogLevel))
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("High concurrency configured (%d workers). Ensure you have authorization to test the target system.", c.Concurrency))
	}

	if len(issues) > 0 {
		return warnings, ValidationError{issues: issues}
	}
	return warnings, nil
}

func validateURL(raw string) string {
	if !strings.HasPrefix(raw, "http") {
		return fmt.Sprintf("invalid URL %q: must start with http", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("invalid URL %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Sprintf("invalid URL %q: missing host", raw)
	}
	return ""
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	if !t.Enabled() {
		return issues
	}
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	return issues
}
