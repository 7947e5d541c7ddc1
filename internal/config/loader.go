package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
// Positional arguments are target URLs; they are appended after any URLs listed
// in the config file.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	cfg := Default()
	cfg.ConfigFile = configPath

	if err := applyConfigSettings(&cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(&cfg, flagSet); err != nil {
		return nil, err
	}

	for _, arg := range flagSet.Args() {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		cfg.URLs = append(cfg.URLs, arg)
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.BodyFile = strings.TrimSpace(cfg.BodyFile)
	if cfg.ContentType == "" {
		cfg.ContentType = DefaultContentType
	}

	return &cfg, nil
}

// applyConfigSettings copies config-file values onto cfg. Every malformed
// key is reported, not just the first.
func applyConfigSettings(cfg *Config, raw map[string]interface{}) error {
	s, err := newSettings(raw)
	if err != nil {
		return err
	}
	tracing, err := s.section("tracing")
	if err != nil {
		return err
	}

	output := string(cfg.Output)
	err = errors.Join(
		s.urls(&cfg.URLs, "urls", "url"),
		s.millis(&cfg.ConnectTimeout, "connectTimeout"),
		s.millis(&cfg.ReadTimeout, "readTimeout"),
		s.integer(&cfg.TotalRequests, "totalRequest", "total"),
		s.integer(&cfg.Concurrency, "concurrency"),
		s.text(&cfg.ContentType, "contentType"),
		s.text(&cfg.Method, "method"),
		s.boolean(&cfg.KeepAlive, "keepAlive"),
		s.text(&cfg.BodyFile, "bodyFile"),
		s.text(&output, "output"),
		s.boolean(&cfg.Progress, "progress"),
		s.text(&cfg.HistoryFile, "historyFile"),
		s.text(&cfg.LogLevel, "logLevel"),

		tracing.text(&cfg.Tracing.Endpoint, "endpoint"),
		tracing.text(&cfg.Tracing.Protocol, "protocol"),
		tracing.boolean(&cfg.Tracing.Insecure, "insecure"),
		tracing.ratio(&cfg.Tracing.SampleRate, "sampleRate"),
		tracing.text(&cfg.Tracing.ServiceName, "serviceName"),
		tracing.boolean(&cfg.Tracing.Propagate, "propagate"),
	)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	// Bodies are sent byte for byte, so no trimming.
	if v, _, ok := s.value("body"); ok {
		cfg.Body = toText(v)
	}
	if output == "" {
		output = string(OutputText)
	}
	cfg.Output = OutputFormat(strings.ToLower(output))
	cfg.Tracing.Protocol = strings.ToLower(cfg.Tracing.Protocol)
	if cfg.Method == "" {
		cfg.Method = DefaultMethod
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return nil
}
