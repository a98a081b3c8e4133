// Package launcher turns a client's shell options into a running shell.
//
// The launcher owns everything about the external process: building the
// command line (flags, the generated --eval string and the script), the
// environment, streaming output into the client's logger, and classifying the
// exit. Timeouts are enforced here too, through the context passed to Launch.
//
// # Exit classification
//
//   - exit code 0: success
//   - exit code > 0: recorded as the client's return code, or reported as a
//     failure.TestFailure when FailOnNonZeroExit is set
//   - killed by a signal, or the wait itself failed: failure.SystemError
//   - the shell could not be started: failure.SystemError
//
// # Usage Example
//
//	l := launcher.NewShellLauncher(false)
//	proc, err := l.Launch(ctx, launcher.Request{
//	    Executable:       "mongo",
//	    Script:           "jstests/core/find.js",
//	    ConnectionString: "mongodb://localhost:20000",
//	    Options:          opts,
//	    Logger:           logger,
//	})
//	if err != nil {
//	    return err
//	}
//	code, err := proc.Wait()
package launcher
