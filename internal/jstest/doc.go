// Package jstest runs one JavaScript test script as one or more concurrent
// clients and folds their results into a single outcome.
//
// A TestCase is configured with a base configuration and a client count.
// Running it derives one ClientContext per client from the base: a deep copy
// whose TestData carries isMainTest, numTestClients and threadID. Each context
// is handed to a ClientRunner, which launches exactly one shell process and
// waits for it.
//
// With a single client everything happens on the caller's goroutine and a
// failure is returned exactly as the launcher produced it. With several
// clients every client runs on its own goroutine and writes only its own
// result slot; the test case waits for all of them, then aggregates in client
// index order:
//
//   - the return code is the first non-zero code among clients that did not fail
//   - the failure is the failure of the lowest-indexed failing client
//
// Completion order never influences the outcome.
//
// # Usage
//
//	tc := jstest.NewTestCase("jstests/core/find.js", launcher.NewShellLauncher(false), logger)
//	if err := tc.Configure(base, 4); err != nil {
//		return err
//	}
//	outcome, err := tc.Run(ctx)
package jstest
