package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/torosent/httpbench/internal/metrics"
)

// PrintReport writes the fixed-label summary for one URL. Every field sits on
// its own line so the output stays easy to grep and diff between runs.
func PrintReport(w io.Writer, report metrics.Report) error {
	lines := []string{
		fmt.Sprintf("URL:                    %s", report.URL),
		fmt.Sprintf("Concurrency Level:      %d", report.Concurrency),
		fmt.Sprintf("Use KeepAlive:          %t", report.KeepAlive),
		fmt.Sprintf("Time taken for tests:   %s seconds", formatSeconds(report.Duration)),
		fmt.Sprintf("Complete requests:      %d", report.Successes),
		fmt.Sprintf("Failed requests:        %d", report.Failures),
		fmt.Sprintf("HTML transferred:       %d bytes", report.BytesTransferred),
		fmt.Sprintf("Requests per second:    %.2f [#/sec] (mean)", report.RequestsPerSec),
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report metrics.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// PrintYAMLReport outputs the report as a YAML document.
func PrintYAMLReport(w io.Writer, report metrics.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

// formatSeconds renders millisecond precision without trailing zeros but
// always with a fractional part, e.g. "0.0", "1.5", "2.314".
func formatSeconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := strconv.FormatFloat(float64(d.Milliseconds())/1000, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
