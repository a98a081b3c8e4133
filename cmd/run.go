package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jstestctl/internal/color"
	"jstestctl/internal/config"
	"jstestctl/internal/harness"
	"jstestctl/pkg/logging"
)

// errTestsFailed is returned when the run completed but a test case did not pass.
var errTestsFailed = errors.New("some tests failed")

// runOptions holds the flags of the run command.
type runOptions struct {
	suitePath         string
	numClients        int
	jobs              int
	timeout           time.Duration
	failFast          bool
	failOnNonZeroExit bool
	connectionString  string
	shell             string
	mongod            string
	mongos            string
	dbpathPrefix      string
	basePort          int
	maxPort           int
	verbose           bool
	quiet             bool
	reportPath        string
	clean             bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [script.js...]",
		Short: "Run JavaScript tests with one or more concurrent clients",
		Long: `Runs the scripts of a suite, and any scripts given as arguments, through
the mongo shell.

Every script is a test case. With --num-clients N the script is started N
times at once; client i sees TestData.threadID == i and only client 0 has
TestData.isMainTest set. A test case passes when no client failed and every
client exited zero.

Settings are resolved in this order: flags, the jstestctl configuration file,
the suite file, built-in defaults.

Example usage:
  jstestctl run --suite suites/core.yml                 # Run a suite
  jstestctl run --num-clients 4 jstests/core/find.js    # Four clients, one script
  jstestctl run --suite suites/core.yml --jobs 8        # Eight test cases at a time
  jstestctl run --suite suites/core.yml --fail-fast     # Stop after the first failure
  jstestctl run --quiet --report-path ./reports ...     # CI output plus a JSON report

The command exits non-zero when a test case failed or errored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts, args)
		},
	}

	opts.bindFlags(cmd)

	return cmd
}

// bindFlags registers the run flags on cmd.
func (o *runOptions) bindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.suitePath, "suite", "", "Path to the suite file")
	flags.IntVar(&o.numClients, "num-clients", 0, "Clients per test case (default from config or suite, else 1)")
	flags.IntVar(&o.jobs, "jobs", 0, "Number of test cases run in parallel (default from config)")
	flags.DurationVar(&o.timeout, "timeout", 0, "Time limit for each test case (0 means none)")
	flags.BoolVar(&o.failFast, "fail-fast", false, "Stop starting test cases after the first failure")
	flags.BoolVar(&o.failOnNonZeroExit, "fail-on-nonzero-exit", false, "Report a non-zero shell exit as a test failure")
	flags.StringVar(&o.connectionString, "connection-string", "", "Connection string passed to the shell")
	flags.StringVar(&o.shell, "shell", "", "Path to the mongo shell")
	flags.StringVar(&o.mongod, "mongod", "", "Path to mongod, exposed as MongoRunner.mongodPath")
	flags.StringVar(&o.mongos, "mongos", "", "Path to mongos, exposed as MongoRunner.mongosPath")
	flags.StringVar(&o.dbpathPrefix, "dbpath-prefix", "", "Root of the per-job data directories")
	flags.IntVar(&o.basePort, "base-port", 0, "First port handed out to jobs")
	flags.IntVar(&o.maxPort, "max-port", 0, "Highest port handed out to jobs")
	flags.BoolVar(&o.verbose, "verbose", false, "Print per-client results")
	flags.BoolVar(&o.quiet, "quiet", false, "Only print failures and a summary line")
	flags.StringVar(&o.reportPath, "report-path", "", "Directory a JSON report is written to")
	flags.BoolVar(&o.clean, "clean", false, "Remove the job data directories when every test passed")

	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	cmd.MarkFlagsMutuallyExclusive("quiet", "report-path")
}

func runRun(cmd *cobra.Command, opts *runOptions, args []string) error {
	cfg, err := config.LoadConfigWithFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyRunFlags(cmd, opts, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := initLogging(cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}
	color.Initialize(true)

	suite := harness.Suite{}
	if opts.suitePath != "" {
		suite, err = harness.LoadSuite(opts.suitePath)
		if err != nil {
			return err
		}
	}

	scripts, err := suite.Scripts(args)
	if err != nil {
		return err
	}
	if len(scripts) == 0 {
		return fmt.Errorf("no test scripts to run: pass --suite or script paths")
	}

	runConfig := buildRunConfiguration(cfg, opts)
	h, err := harness.NewHarness(runConfig, suite, cmd.OutOrStdout(), opts.quiet)
	if err != nil {
		return fmt.Errorf("failed to create harness: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := h.Runner.Run(ctx, runConfig, suite, scripts)
	if err != nil {
		return fmt.Errorf("test execution interrupted: %w", err)
	}
	if !result.Succeeded() {
		return errTestsFailed
	}
	return nil
}

// applyRunFlags overrides cfg with the flags set on the command line.
func applyRunFlags(cmd *cobra.Command, opts *runOptions, cfg *config.JstestctlConfig) {
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}

	if changed("jobs") {
		cfg.Jobs = opts.jobs
	}
	if changed("num-clients") {
		cfg.NumClients = opts.numClients
	}
	if changed("fail-on-nonzero-exit") {
		v := opts.failOnNonZeroExit
		cfg.FailOnNonZeroExit = &v
	}
	if changed("shell") {
		cfg.Shell.Executable = opts.shell
	}
	if changed("mongod") {
		cfg.Mongod.Executable = opts.mongod
	}
	if changed("mongos") {
		cfg.Mongos.Executable = opts.mongos
	}
	if changed("dbpath-prefix") {
		cfg.DbpathPrefix = opts.dbpathPrefix
	}
	if changed("base-port") {
		cfg.Ports.Base = opts.basePort
	}
	if changed("max-port") {
		cfg.Ports.Max = opts.maxPort
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
}

// buildRunConfiguration turns the resolved configuration into the harness's.
func buildRunConfiguration(cfg config.JstestctlConfig, opts *runOptions) harness.RunConfiguration {
	return harness.RunConfiguration{
		SuitePath:         opts.suitePath,
		Jobs:              cfg.Jobs,
		NumClients:        cfg.NumClients,
		Timeout:           opts.timeout,
		FailFast:          opts.failFast,
		FailOnNonZeroExit: cfg.FailOnNonZero(),
		Verbose:           opts.verbose,
		ReportPath:        opts.reportPath,
		CleanupOnSuccess:  opts.clean,
		Environment: harness.Environment{
			ShellExecutable:  cfg.Shell.Executable,
			MongodExecutable: cfg.Mongod.Executable,
			MongosExecutable: cfg.Mongos.Executable,
			ConnectionString: opts.connectionString,
			DbpathPrefix:     cfg.DbpathPrefix,
			RunnerSubdir:     cfg.RunnerSubdir,
			BasePort:         cfg.Ports.Base,
			MaxPort:          cfg.Ports.Max,
		},
	}
}

func initLogging(cfg config.JstestctlConfig, out io.Writer) error {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logging.Init(level, logging.Format(cfg.Logging.Format), out)
	return nil
}
