package harness

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jstestctl/internal/failure"
	"jstestctl/internal/jstest"
	"jstestctl/pkg/logging"
)

// Runner executes the scripts of a suite, one test case per script, on a
// fixed number of jobs. Each job owns a port range and a data directory.
type Runner struct {
	preparer *Preparer
	launcher jstest.Launcher
	reporter Reporter

	// Reporter calls come from every job.
	reportMu sync.Mutex
	newID    func() string
}

// NewRunner creates a runner.
func NewRunner(preparer *Preparer, l jstest.Launcher, reporter Reporter) *Runner {
	return &Runner{
		preparer: preparer,
		launcher: l,
		reporter: reporter,
		newID:    uuid.NewString,
	}
}

// Run executes scripts and returns their results in the order of scripts,
// whatever order they complete in. With FailFast no test case is started
// after one failed; those not started are reported as skipped.
func (r *Runner) Run(ctx context.Context, config RunConfiguration, suite Suite, scripts []string) (*SuiteResult, error) {
	jobs := config.Jobs
	if jobs < 1 {
		jobs = 1
	}

	result := &SuiteResult{
		RunID:         r.newID(),
		StartTime:     time.Now(),
		TotalTests:    len(scripts),
		Configuration: config,
	}
	logging.Info("Harness", "Starting run %s: %d test(s) on %d job(s)", result.RunID, len(scripts), jobs)
	r.reporter.ReportStart(config, len(scripts))

	results := make([]TestCaseResult, len(scripts))
	for i, script := range scripts {
		results[i] = TestCaseResult{Script: script, JobNum: -1, Result: ResultSkipped}
	}

	next := make(chan int, len(scripts))
	for i := range scripts {
		next <- i
	}
	close(next)

	numWorkers := jobs
	if numWorkers > len(scripts) {
		numWorkers = len(scripts)
	}

	var stop atomic.Bool
	var g errgroup.Group
	for job := 0; job < numWorkers; job++ {
		job := job
		g.Go(func() error {
			for i := range next {
				if stop.Load() || ctx.Err() != nil {
					continue
				}
				tcResult := r.runTestCase(ctx, config, suite, scripts[i], job)
				results[i] = tcResult
				r.report(func() { r.reporter.ReportTestResult(tcResult) })

				if config.FailFast && tcResult.Result != ResultPassed {
					stop.Store(true)
				}
			}
			return nil
		})
	}
	// Jobs record failures in their results; the group never returns an error.
	_ = g.Wait()

	for _, tcResult := range results {
		if tcResult.Result == ResultSkipped {
			r.reporter.ReportTestResult(tcResult)
		}
		updateCounters(result, tcResult)
	}
	result.TestCaseResults = results
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if config.CleanupOnSuccess && result.Succeeded() {
		if err := r.preparer.Cleanup(suite, numWorkers); err != nil {
			logging.Warn("Harness", "Failed to remove data directories: %v", err)
		}
	}

	r.reporter.ReportSuiteResult(*result)
	return result, ctx.Err()
}

// runTestCase runs one script on job jobNum.
func (r *Runner) runTestCase(ctx context.Context, config RunConfiguration, suite Suite, script string, jobNum int) TestCaseResult {
	result := TestCaseResult{
		ID:        r.newID(),
		Script:    script,
		JobNum:    jobNum,
		StartTime: time.Now(),
	}
	r.report(func() { r.reporter.ReportTestStart(script, jobNum) })

	logger := logging.NewTestLogger(jstest.TestKind, script)
	logger.Info("Running %s on job %d", script, jobNum)

	base, err := r.preparer.PrepareBaseConfig(suite, jobNum)
	if err != nil {
		err = &failure.SystemError{Op: "prepare", Test: script, Err: err}
		return finishTestCase(logger, result, jstest.AggregateOutcome{}, err)
	}

	result.NumClients = numClients(config, suite)
	tc := jstest.NewTestCase(script, r.launcher, logger)
	if err := tc.Configure(base, result.NumClients); err != nil {
		return finishTestCase(logger, result, jstest.AggregateOutcome{}, err)
	}

	testCtx := ctx
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		testCtx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	outcome, err := tc.Run(testCtx)
	return finishTestCase(logger, result, outcome, err)
}

func (r *Runner) report(fn func()) {
	r.reportMu.Lock()
	defer r.reportMu.Unlock()
	fn()
}

func finishTestCase(logger *logging.Logger, result TestCaseResult, outcome jstest.AggregateOutcome, err error) TestCaseResult {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.ReturnCode = outcome.ReturnCode
	result.Clients = clientResults(outcome.Clients)

	switch {
	case err != nil:
		result.Error = err.Error()
		result.ErrorKind = failure.Kind(err)
		if failure.IsTestFailure(err) {
			result.Result = ResultFailed
		} else {
			result.Result = ResultError
		}
	case outcome.ReturnCode != 0:
		result.Result = ResultFailed
		result.Error = fmt.Sprintf("%s exited with code %d", result.Script, outcome.ReturnCode)
		result.ErrorKind = "test"
	default:
		result.Result = ResultPassed
	}

	logger.Info("%s %s in %s", result.Script, result.Result, result.Duration)
	return result
}

// numClients resolves the client count: run configuration, then suite, then 1.
func numClients(config RunConfiguration, suite Suite) int {
	if config.NumClients > 0 {
		return config.NumClients
	}
	if suite.NumClients > 0 {
		return suite.NumClients
	}
	return 1
}

func updateCounters(suiteResult *SuiteResult, result TestCaseResult) {
	switch result.Result {
	case ResultPassed:
		suiteResult.PassedTests++
	case ResultFailed:
		suiteResult.FailedTests++
	case ResultError:
		suiteResult.ErrorTests++
	case ResultSkipped:
		suiteResult.SkippedTests++
	}
}
