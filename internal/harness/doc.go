// Package harness runs a suite of JavaScript test scripts.
//
// A suite file names the scripts (roots and exclude_files globs) and how the
// shell is invoked (shell_options). The Runner hands scripts to a fixed
// number of jobs. Before a test case runs, the Preparer gives it the job's
// resources:
//
//   - MongoRunner.dataDir, an emptied <prefix>/job<N>/mongorunner directory,
//     and MongoRunner.dataPath, the same with a trailing separator
//   - TestData.minPort and TestData.maxPort, the job's port range
//   - MongoRunner.mongodPath, mongosPath and mongoShellPath when configured
//   - a private Kerberos credential cache when KRB5_CONFIG is set
//
// The test case itself, with its clients, is run by the jstest package.
//
// Results are kept in the order of the scripts, not the order in which they
// complete. A test case passes when no client failed and the aggregated
// return code is zero.
//
// # Settings precedence
//
// The command line and the jstestctl configuration (the Environment) win
// over the suite, which wins over the built-in defaults.
//
// # Usage
//
//	h, err := harness.NewHarness(runConfig, suite, os.Stdout, false)
//	if err != nil {
//		return err
//	}
//	result, err := h.Runner.Run(ctx, runConfig, suite, scripts)
package harness
