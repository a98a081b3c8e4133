// Package failure defines the error taxonomy shared by the harness.
//
// Three kinds of failures are distinguished:
//
//   - ConfigurationError: the test case cannot be configured (bad client count,
//     missing required fields). Raised before any client starts.
//   - TestFailure: the test itself failed, e.g. a client shell exited non-zero
//     while the launcher treats that as an assertion failure.
//   - SystemError: the harness broke (a process could not be started or
//     awaited, a client goroutine panicked).
//
// Callers use IsTestFailure, IsSystemError and IsConfigurationError instead of
// type switches so wrapped errors are classified too.
package failure

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an invalid test case configuration.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// TestFailure is an assertion-style failure of a test client.
type TestFailure struct {
	Test     string
	ThreadID int
	ExitCode int
	Message  string
}

func (e *TestFailure) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("%s (thread %d) failed: %s", e.Test, e.ThreadID, msg)
}

// SystemError is an unexpected infrastructure fault while running a test.
type SystemError struct {
	Op       string
	Test     string
	ThreadID int
	Err      error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("%s %s (thread %d): %v", e.Op, e.Test, e.ThreadID, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

// IsTestFailure reports whether err is, or wraps, a TestFailure.
func IsTestFailure(err error) bool {
	var tf *TestFailure
	return errors.As(err, &tf)
}

// IsSystemError reports whether err is, or wraps, a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// Kind returns a short label for reporting: "config", "test", "system" or
// "error" for anything unclassified. A nil error has no kind.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsConfigurationError(err):
		return "config"
	case IsTestFailure(err):
		return "test"
	case IsSystemError(err):
		return "system"
	default:
		return "error"
	}
}
