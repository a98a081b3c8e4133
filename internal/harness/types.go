package harness

import (
	"time"

	"jstestctl/internal/failure"
	"jstestctl/internal/jstest"
)

// TestResult represents the result of one test case
type TestResult string

const (
	// ResultPassed indicates every client exited zero
	ResultPassed TestResult = "PASSED"
	// ResultFailed indicates a client failed or exited non-zero
	ResultFailed TestResult = "FAILED"
	// ResultSkipped indicates the test case never ran because of --fail-fast
	ResultSkipped TestResult = "SKIPPED"
	// ResultError indicates the harness could not run the test case
	ResultError TestResult = "ERROR"
)

// RunConfiguration defines how a suite is executed
type RunConfiguration struct {
	// SuitePath is the suite file the scripts and shell options come from
	SuitePath string `json:"suite_path,omitempty"`
	// Jobs is the number of test cases run in parallel
	Jobs int `json:"jobs"`
	// NumClients overrides the suite's client count when positive
	NumClients int `json:"num_clients,omitempty"`
	// Timeout bounds every test case; zero means no limit
	Timeout time.Duration `json:"timeout,omitempty"`
	// FailFast stops dispatching test cases after the first failure
	FailFast bool `json:"fail_fast"`
	// FailOnNonZeroExit turns a non-zero shell exit into a test failure
	FailOnNonZeroExit bool `json:"fail_on_nonzero_exit"`
	// Verbose enables per-client output
	Verbose bool `json:"verbose"`
	// ReportPath is the directory a JSON report is written to
	ReportPath string `json:"report_path,omitempty"`
	// CleanupOnSuccess removes the job data directories when every test passed
	CleanupOnSuccess bool `json:"cleanup_on_success"`
	// Environment describes the executables, directories and ports
	Environment Environment `json:"environment"`
}

// Environment holds the settings given on the command line or in the
// jstestctl configuration. Empty values defer to the suite, then to defaults.
type Environment struct {
	ShellExecutable  string `json:"shell_executable,omitempty"`
	MongodExecutable string `json:"mongod_executable,omitempty"`
	MongosExecutable string `json:"mongos_executable,omitempty"`
	ConnectionString string `json:"connection_string,omitempty"`
	DbpathPrefix     string `json:"dbpath_prefix,omitempty"`
	RunnerSubdir     string `json:"runner_subdir,omitempty"`
	BasePort         int    `json:"base_port"`
	MaxPort          int    `json:"max_port"`
}

// ClientResult is the outcome of one client of a test case
type ClientResult struct {
	ThreadID   int           `json:"thread_id"`
	ReturnCode int           `json:"return_code"`
	Error      string        `json:"error,omitempty"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// TestCaseResult represents the result of a single test script
type TestCaseResult struct {
	// ID uniquely identifies this execution
	ID string `json:"id"`
	// Script is the path of the test script
	Script string `json:"script"`
	// JobNum is the job that ran the test case
	JobNum int `json:"job_num"`
	// NumClients is the number of clients the test case ran with
	NumClients int `json:"num_clients"`
	// Result is the overall result of the test case
	Result TestResult `json:"result"`
	// ReturnCode is the aggregated return code
	ReturnCode int `json:"return_code"`
	// Error message if the test case failed or had an error
	Error string `json:"error,omitempty"`
	// ErrorKind is "config", "test", "system" or "error"
	ErrorKind string `json:"error_kind,omitempty"`
	// StartTime when the test case began
	StartTime time.Time `json:"start_time"`
	// EndTime when the test case completed
	EndTime time.Time `json:"end_time"`
	// Duration of the test case
	Duration time.Duration `json:"duration"`
	// Clients holds every client's result in thread ID order
	Clients []ClientResult `json:"clients,omitempty"`
}

// SuiteResult represents the overall result of a suite run
type SuiteResult struct {
	RunID           string           `json:"run_id"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         time.Time        `json:"end_time"`
	Duration        time.Duration    `json:"duration"`
	TotalTests      int              `json:"total_tests"`
	PassedTests     int              `json:"passed_tests"`
	FailedTests     int              `json:"failed_tests"`
	SkippedTests    int              `json:"skipped_tests"`
	ErrorTests      int              `json:"error_tests"`
	TestCaseResults []TestCaseResult `json:"test_case_results"`
	Configuration   RunConfiguration `json:"configuration"`
}

// Succeeded reports whether no test case failed or errored.
func (r SuiteResult) Succeeded() bool {
	return r.FailedTests == 0 && r.ErrorTests == 0
}

// Reporter defines how results are reported
type Reporter interface {
	// ReportStart is called when the suite begins
	ReportStart(config RunConfiguration, numTests int)
	// ReportTestStart is called when a test case is dispatched to a job
	ReportTestStart(script string, jobNum int)
	// ReportTestResult is called when a test case completes
	ReportTestResult(result TestCaseResult)
	// ReportSuiteResult is called when all test cases complete
	ReportSuiteResult(result SuiteResult)
}

// clientResults converts kernel outcomes for reporting.
func clientResults(outcomes []jstest.ClientOutcome) []ClientResult {
	results := make([]ClientResult, 0, len(outcomes))
	for _, o := range outcomes {
		cr := ClientResult{
			ThreadID:   o.ThreadID,
			ReturnCode: o.ReturnCode,
			Duration:   o.Duration,
		}
		if o.Failure != nil {
			cr.Error = o.Failure.Error()
			cr.ErrorKind = failure.Kind(o.Failure)
		}
		results = append(results, cr)
	}
	return results
}
