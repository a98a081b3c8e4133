package jstest

import (
	"context"
	"time"

	"jstestctl/internal/failure"
	"jstestctl/internal/launcher"
	"jstestctl/pkg/logging"
)

// ClientRunner executes the script once for one client.
type ClientRunner struct {
	script   string
	launcher Launcher
	logger   *logging.Logger
}

// NewClientRunner creates a runner logging to logger.
func NewClientRunner(script string, l Launcher, logger *logging.Logger) *ClientRunner {
	return &ClientRunner{script: script, launcher: l, logger: logger}
}

// Execute launches one shell process for cc and waits for it. An error from
// the launcher or the process is returned as is; no retry is attempted.
func (r *ClientRunner) Execute(ctx context.Context, cc ClientContext) (ClientOutcome, error) {
	start := time.Now()
	outcome := ClientOutcome{ThreadID: cc.ThreadID}

	proc, err := r.launcher.Launch(ctx, launcher.Request{
		Executable:       cc.Config.Executable,
		Script:           r.script,
		ConnectionString: cc.Config.ConnectionString,
		Options:          cc.Config.Shell,
		ThreadID:         cc.ThreadID,
		Logger:           r.logger,
	})
	if err != nil {
		outcome.Duration = time.Since(start)
		r.logFailure(err)
		return outcome, err
	}

	code, err := proc.Wait()
	outcome.ReturnCode = code
	outcome.Duration = time.Since(start)
	if err != nil {
		r.logFailure(err)
		return outcome, err
	}

	r.logger.Debug("Client %d finished with code %d in %s", cc.ThreadID, code, outcome.Duration)
	return outcome, nil
}

func (r *ClientRunner) logFailure(err error) {
	if failure.IsTestFailure(err) {
		r.logger.Info("%v", err)
		return
	}
	r.logger.Error(err, "Encountered an error running jstest %s", r.script)
}
