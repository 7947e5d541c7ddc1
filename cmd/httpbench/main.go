package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/torosent/httpbench/internal/config"
	"github.com/torosent/httpbench/internal/history"
	"github.com/torosent/httpbench/internal/httpclient"
	"github.com/torosent/httpbench/internal/metrics"
	"github.com/torosent/httpbench/internal/output"
	"github.com/torosent/httpbench/internal/runner"
	"github.com/torosent/httpbench/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

// usageError marks failures that should be followed by the flag summary.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr)
			config.PrintUsage(os.Stderr)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return &usageError{err: err}
	}

	warnings, err := cfg.Validate()
	if err != nil {
		return &usageError{err: err}
	}

	logger := newLogger(stderr, cfg.LogLevel)
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}

	// Requests are never cancelled as a group; each is bounded by its own timeouts.
	ctx := context.Background()

	provider, err := tracing.Setup(ctx, cfg.Tracing, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	var store *history.Store
	if cfg.HistoryFile != "" {
		store, err = history.Open(cfg.HistoryFile, logger)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	client := httpclient.NewClient(httpclient.Options{
		ConnectTimeout:  cfg.ConnectTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		KeepAlive:       cfg.KeepAlive,
		MaxConnsPerHost: cfg.Concurrency,
	})
	defer client.CloseIdleConnections()

	var execOpts []httpclient.ExecutorOption
	if rt := provider.Requests(); rt != nil {
		execOpts = append(execOpts, httpclient.WithTracing(rt))
	}

	for _, target := range cfg.URLs {
		report, err := benchmark(ctx, cfg, client, target, execOpts, logger, stderr)
		if err != nil {
			return err
		}
		if err := printReport(stdout, cfg.Output, report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if store != nil {
			if _, err := store.Append(report); err != nil {
				return err
			}
		}
	}
	return nil
}

func benchmark(
	ctx context.Context,
	cfg *config.Config,
	client *http.Client,
	target string,
	execOpts []httpclient.ExecutorOption,
	logger zerolog.Logger,
	stderr io.Writer,
) (metrics.Report, error) {
	builder, err := httpclient.NewRequestBuilder(cfg, target)
	if err != nil {
		return metrics.Report{}, err
	}

	counters := metrics.NewCounters()
	r := runner.New(runner.Options{
		URL:           target,
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.TotalRequests,
		KeepAlive:     cfg.KeepAlive,
		Executor:      httpclient.NewExecutor(client, builder, execOpts...),
		Counters:      counters,
		Logger:        &logger,
	})

	if cfg.Progress {
		progress := output.NewProgressReporter(counters, int64(cfg.TotalRequests), progressInterval, stderr)
		progress.Start()
		defer progress.Stop()
	}

	return r.Run(ctx), nil
}

func printReport(w io.Writer, format config.OutputFormat, report metrics.Report) error {
	switch format {
	case config.OutputJSON:
		return output.PrintJSONReport(w, report)
	case config.OutputYAML:
		return output.PrintYAMLReport(w, report)
	default:
		return output.PrintReport(w, report)
	}
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
