package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "httpbench [flags] <url> [<url> ...]",
		Short:         "Fire a fixed number of HTTP requests at each URL and report throughput",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

func configureFlags(flags *pflag.FlagSet) {
	// Core options keep their camelCase names, e.g. --totalRequest=1000 --concurrency=10.
	flags.Int("connectTimeout", int(DefaultConnectTimeout/time.Millisecond), "Socket connect timeout in milliseconds")
	flags.Int("readTimeout", int(DefaultReadTimeout/time.Millisecond), "Socket read timeout in milliseconds")
	flags.IntP("totalRequest", "n", DefaultTotalRequests, "Total number of requests per URL")
	flags.IntP("concurrency", "c", DefaultConcurrency, "Number of concurrent workers")
	flags.String("contentType", DefaultContentType, "Content-Type header sent with a request body")
	flags.String("method", DefaultMethod, "HTTP method to use")
	// A bare --keepAlive means true; explicit values are taken literally.
	flags.Bool("keepAlive", false, "Reuse connections between requests")

	// Request body
	flags.String("body", "", "Inline request body payload")
	flags.String("body-file", "", "Path to file containing the request body")

	// Output
	flags.StringP("output", "o", string(OutputText), "Report format: text, json or yaml")
	flags.Bool("progress", false, "Print live progress to stderr while a run is in flight")
	flags.String("history-file", "", "Append each report as a JSON line to this file")
	flags.String("log-level", DefaultLogLevel, "Diagnostic log level (trace, debug, info, warn, error)")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (enables tracing)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("tracing-sample-rate", 1.0, "Fraction of requests to trace (0.0-1.0)")
	flags.String("tracing-service-name", "", "Service name reported on exported spans")
	flags.Bool("tracing-propagate", false, "Inject W3C trace context headers into requests")
}

func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("connectTimeout") {
		val, err := fs.GetInt("connectTimeout")
		if err != nil {
			return err
		}
		cfg.ConnectTimeout = time.Duration(val) * time.Millisecond
	}
	if fs.Changed("readTimeout") {
		val, err := fs.GetInt("readTimeout")
		if err != nil {
			return err
		}
		cfg.ReadTimeout = time.Duration(val) * time.Millisecond
	}
	if fs.Changed("totalRequest") {
		val, err := fs.GetInt("totalRequest")
		if err != nil {
			return err
		}
		cfg.TotalRequests = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("contentType") {
		val, err := fs.GetString("contentType")
		if err != nil {
			return err
		}
		cfg.ContentType = strings.TrimSpace(val)
	}
	if fs.Changed("method") {
		val, err := fs.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = val
	}
	if fs.Changed("keepAlive") {
		val, err := fs.GetBool("keepAlive")
		if err != nil {
			return err
		}
		cfg.KeepAlive = val
	}
	if fs.Changed("body") {
		val, err := fs.GetString("body")
		if err != nil {
			return err
		}
		cfg.Body = val
		cfg.BodyFile = ""
	}
	if fs.Changed("body-file") {
		val, err := fs.GetString("body-file")
		if err != nil {
			return err
		}
		cfg.BodyFile = val
		cfg.Body = ""
	}
	if fs.Changed("output") {
		val, err := fs.GetString("output")
		if err != nil {
			return err
		}
		cfg.Output = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("progress") {
		val, err := fs.GetBool("progress")
		if err != nil {
			return err
		}
		cfg.Progress = val
	}
	if fs.Changed("history-file") {
		val, err := fs.GetString("history-file")
		if err != nil {
			return err
		}
		cfg.HistoryFile = strings.TrimSpace(val)
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = val
	}

	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = val
	}

	return nil
}

// PrintUsage writes the flag summary to w.
func PrintUsage(w io.Writer) {
	cmd := newFlagCommand()
	cmd.SetOut(w)
	displayHelp(cmd)
}
