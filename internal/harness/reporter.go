package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"jstestctl/internal/color"
)

// scriptColumnWidth is the width test names are padded or truncated to.
const scriptColumnWidth = 60

// consoleReporter narrates a run for humans
type consoleReporter struct {
	out        io.Writer
	verbose    bool
	colored    bool
	reportPath string
}

// NewConsoleReporter creates a reporter writing to out. A non-empty
// reportPath also saves a JSON report into that directory.
func NewConsoleReporter(out io.Writer, verbose bool, reportPath string) Reporter {
	return &consoleReporter{
		out:        out,
		verbose:    verbose,
		colored:    color.Enabled(),
		reportPath: reportPath,
	}
}

func (r *consoleReporter) render(style lipgloss.Style, s string) string {
	if !r.colored {
		return s
	}
	return style.Render(s)
}

// ReportStart is called when the suite begins
func (r *consoleReporter) ReportStart(config RunConfiguration, numTests int) {
	fmt.Fprintln(r.out, r.render(color.HeaderStyle, fmt.Sprintf("Running %d test(s) on %d job(s)", numTests, max(config.Jobs, 1))))

	if r.verbose {
		fmt.Fprintf(r.out, "  Suite: %s\n", stringOrDefault(config.SuitePath, "none"))
		fmt.Fprintf(r.out, "  Clients per test: %s\n", stringOrDefault(clientsLabel(config.NumClients), "from suite"))
		fmt.Fprintf(r.out, "  Fail fast: %t\n", config.FailFast)
		if config.Timeout > 0 {
			fmt.Fprintf(r.out, "  Timeout: %v\n", config.Timeout)
		}
		if config.Environment.ConnectionString != "" {
			fmt.Fprintf(r.out, "  Connection string: %s\n", config.Environment.ConnectionString)
		}
		fmt.Fprintln(r.out)
	}
}

// ReportTestStart is called when a test case is dispatched to a job
func (r *consoleReporter) ReportTestStart(script string, jobNum int) {
	if r.verbose {
		fmt.Fprintln(r.out, r.render(color.MutedStyle, fmt.Sprintf("[job %d] starting %s", jobNum, script)))
	}
}

// ReportTestResult is called when a test case completes
func (r *consoleReporter) ReportTestResult(result TestCaseResult) {
	name := runewidth.FillRight(runewidth.Truncate(result.Script, scriptColumnWidth, "..."), scriptColumnWidth)
	fmt.Fprintf(r.out, "%s %s %s\n", r.resultLabel(result.Result), name, formatDuration(result.Duration))

	if result.Error != "" && (result.Result == ResultFailed || result.Result == ResultError) {
		fmt.Fprintf(r.out, "    %s\n", r.render(color.FailedStyle, result.Error))
	}

	if r.verbose && len(result.Clients) > 1 {
		for _, c := range result.Clients {
			status := fmt.Sprintf("code %d", c.ReturnCode)
			if c.Error != "" {
				status = fmt.Sprintf("%s failure: %s", c.ErrorKind, c.Error)
			}
			fmt.Fprintf(r.out, "    client %-3d %s %s\n", c.ThreadID, formatDuration(c.Duration), status)
		}
	}
}

// ReportSuiteResult is called when all test cases complete
func (r *consoleReporter) ReportSuiteResult(result SuiteResult) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.render(color.HeaderStyle, "Summary"))
	fmt.Fprintf(r.out, "  Run: %s\n", result.RunID)
	fmt.Fprintf(r.out, "  Duration: %s\n", formatDuration(result.Duration))
	fmt.Fprintf(r.out, "  %s %d\n", r.render(color.PassedStyle, "Passed: "), result.PassedTests)
	if result.FailedTests > 0 {
		fmt.Fprintf(r.out, "  %s %d\n", r.render(color.FailedStyle, "Failed: "), result.FailedTests)
	}
	if result.ErrorTests > 0 {
		fmt.Fprintf(r.out, "  %s %d\n", r.render(color.ErrorStyle, "Errors: "), result.ErrorTests)
	}
	if result.SkippedTests > 0 {
		fmt.Fprintf(r.out, "  %s %d\n", r.render(color.SkippedStyle, "Skipped:"), result.SkippedTests)
	}
	fmt.Fprintf(r.out, "  Total:   %d\n", result.TotalTests)

	if result.Succeeded() {
		fmt.Fprintln(r.out, r.render(color.PassedStyle, "\nAll tests passed"))
	} else {
		fmt.Fprintln(r.out, r.render(color.FailedStyle, "\nSome tests failed"))
	}

	if r.reportPath != "" {
		path, err := SaveReport(r.reportPath, result)
		if err != nil {
			fmt.Fprintf(r.out, "Failed to save detailed report: %v\n", err)
		} else {
			fmt.Fprintf(r.out, "Detailed report saved to: %s\n", path)
		}
	}
}

func (r *consoleReporter) resultLabel(result TestResult) string {
	label := fmt.Sprintf("[%-7s]", result)
	switch result {
	case ResultPassed:
		return r.render(color.PassedStyle, label)
	case ResultFailed:
		return r.render(color.FailedStyle, label)
	case ResultError:
		return r.render(color.ErrorStyle, label)
	default:
		return r.render(color.SkippedStyle, label)
	}
}

// SaveReport writes result as JSON into dir and returns the file path.
func SaveReport(dir string, result SuiteResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	timestamp := result.StartTime.Format("20060102-150405")
	fullPath := filepath.Join(dir, fmt.Sprintf("jstestctl-report-%s.json", timestamp))

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	if err := os.WriteFile(fullPath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return fullPath, nil
}

// NewQuietReporter creates a reporter that only outputs failures and a
// one-line summary
func NewQuietReporter(out io.Writer) Reporter {
	return &quietReporter{out: out}
}

// quietReporter implements minimal output for CI integration
type quietReporter struct {
	out io.Writer
}

func (r *quietReporter) ReportStart(config RunConfiguration, numTests int) {
	// Silent start
}

func (r *quietReporter) ReportTestStart(script string, jobNum int) {
	// Silent test start
}

func (r *quietReporter) ReportTestResult(result TestCaseResult) {
	// Only report failures
	if result.Result == ResultFailed || result.Result == ResultError {
		fmt.Fprintf(r.out, "%s %s: %s\n", result.Result, result.Script, result.Error)
	}
}

func (r *quietReporter) ReportSuiteResult(result SuiteResult) {
	if result.Succeeded() {
		fmt.Fprintf(r.out, "All %d tests passed\n", result.PassedTests)
	} else {
		fmt.Fprintf(r.out, "%d/%d tests failed\n", result.FailedTests+result.ErrorTests, result.TotalTests)
	}
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func clientsLabel(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

// stringOrDefault returns the string if not empty, otherwise returns the default
func stringOrDefault(s, defaultValue string) string {
	if s == "" {
		return defaultValue
	}
	return s
}
