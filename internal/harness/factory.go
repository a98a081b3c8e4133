package harness

import (
	"fmt"
	"io"

	"jstestctl/internal/jstest"
	"jstestctl/internal/launcher"
)

// Harness holds all components needed to run a suite
type Harness struct {
	Runner   *Runner
	Preparer *Preparer
	Launcher jstest.Launcher
	Reporter Reporter
}

// NewHarness wires a harness for config and suite. Output goes to out;
// quiet selects the quiet reporter.
func NewHarness(config RunConfiguration, suite Suite, out io.Writer, quiet bool) (*Harness, error) {
	if err := ValidateConfiguration(config); err != nil {
		return nil, err
	}

	preparer, err := NewPreparer(config.Environment, config.Jobs)
	if err != nil {
		return nil, err
	}

	// Either the run or the suite can demand non-zero exits fail the test.
	l := launcher.NewShellLauncher(config.FailOnNonZeroExit || suite.FailOnNonZeroExit)

	var reporter Reporter
	if quiet {
		reporter = NewQuietReporter(out)
	} else {
		reporter = NewConsoleReporter(out, config.Verbose, config.ReportPath)
	}

	return &Harness{
		Runner:   NewRunner(preparer, l, reporter),
		Preparer: preparer,
		Launcher: l,
		Reporter: reporter,
	}, nil
}

// ValidateConfiguration validates a run configuration
func ValidateConfiguration(config RunConfiguration) error {
	if config.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1")
	}
	if config.NumClients < 0 {
		return fmt.Errorf("num clients must not be negative")
	}
	if config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
