package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"syscall"
	"time"

	"jstestctl/internal/failure"
	"jstestctl/pkg/logging"
)

// For mocking in tests
var execCommandContext = exec.CommandContext

// waitDelay bounds how long Wait keeps reading output after the shell exits
// or is killed; spawned grandchildren may hold the pipes open.
const waitDelay = 10 * time.Second

// Request is everything needed to start one shell for one client.
type Request struct {
	Executable       string
	Script           string
	ConnectionString string
	Options          ShellOptions
	// ThreadID identifies the client in errors.
	ThreadID int
	// Logger receives the shell's stdout and stderr line by line.
	Logger *logging.Logger
}

// Process is a started shell.
type Process interface {
	PID() int
	// Wait blocks until the shell exits and returns its exit code. A non-nil
	// error means the exit code is not meaningful.
	Wait() (int, error)
}

// ShellLauncher starts shell processes on the local machine.
type ShellLauncher struct {
	// FailOnNonZeroExit turns a non-zero exit into a failure.TestFailure.
	FailOnNonZeroExit bool
}

// NewShellLauncher creates a launcher for local shell processes.
func NewShellLauncher(failOnNonZeroExit bool) *ShellLauncher {
	return &ShellLauncher{FailOnNonZeroExit: failOnNonZeroExit}
}

// Launch builds the command line for req and starts the shell. The process
// is killed when ctx is done.
func (l *ShellLauncher) Launch(ctx context.Context, req Request) (Process, error) {
	args, err := BuildArgs(req.Script, req.ConnectionString, req.Options)
	if err != nil {
		return nil, &failure.SystemError{Op: "build command for", Test: req.Script, ThreadID: req.ThreadID, Err: err}
	}

	cmd := execCommandContext(ctx, req.Executable, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Kill the whole process group so servers spawned by the shell go too.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(), envList(req.Options.ProcessEnv)...)

	var stdout, stderr io.WriteCloser = nopWriteCloser{io.Discard}, nopWriteCloser{io.Discard}
	if req.Logger != nil {
		stdout = req.Logger.Writer(logging.LevelInfo, "stdout")
		stderr = req.Logger.Writer(logging.LevelInfo, "stderr")
		req.Logger.Debug("Starting shell: %s %v", req.Executable, args)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		stdout.Close()
		stderr.Close()
		return nil, &failure.SystemError{Op: "start", Test: req.Script, ThreadID: req.ThreadID, Err: err}
	}

	if req.Logger != nil {
		req.Logger.Info("Started shell with pid %d", cmd.Process.Pid)
	}

	return &shellProcess{
		ctx:               ctx,
		cmd:               cmd,
		req:               req,
		stdout:            stdout,
		stderr:            stderr,
		failOnNonZeroExit: l.FailOnNonZeroExit,
	}, nil
}

type shellProcess struct {
	ctx               context.Context
	cmd               *exec.Cmd
	req               Request
	stdout            io.WriteCloser
	stderr            io.WriteCloser
	failOnNonZeroExit bool
}

func (p *shellProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *shellProcess) Wait() (int, error) {
	waitErr := p.cmd.Wait()
	p.stdout.Close()
	p.stderr.Close()

	if waitErr == nil {
		p.logExit(0)
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return -1, &failure.SystemError{Op: "wait for", Test: p.req.Script, ThreadID: p.req.ThreadID, Err: waitErr}
	}

	code := exitErr.ExitCode()
	if code < 0 {
		cause := fmt.Errorf("shell %s", exitErr.ProcessState.String())
		if ctxErr := p.ctx.Err(); ctxErr != nil {
			cause = fmt.Errorf("shell %s: %w", exitErr.ProcessState.String(), ctxErr)
		}
		return code, &failure.SystemError{Op: "run", Test: p.req.Script, ThreadID: p.req.ThreadID, Err: cause}
	}

	p.logExit(code)
	if p.failOnNonZeroExit {
		return code, &failure.TestFailure{Test: p.req.Script, ThreadID: p.req.ThreadID, ExitCode: code}
	}
	return code, nil
}

func (p *shellProcess) logExit(code int) {
	if p.req.Logger != nil {
		p.req.Logger.Info("Shell with pid %d exited with code %d", p.cmd.Process.Pid, code)
	}
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return out
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
