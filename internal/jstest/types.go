package jstest

import (
	"context"
	"time"

	"jstestctl/internal/launcher"
)

// Launcher starts the shell process of one client.
type Launcher interface {
	Launch(ctx context.Context, req launcher.Request) (launcher.Process, error)
}

// BaseConfig is the configuration shared by every client before partitioning.
type BaseConfig struct {
	Executable       string
	ConnectionString string
	Shell            launcher.ShellOptions
}

// Clone returns a deep copy of c.
func (c BaseConfig) Clone() BaseConfig {
	return BaseConfig{
		Executable:       c.Executable,
		ConnectionString: c.ConnectionString,
		Shell:            c.Shell.Clone(),
	}
}

// ClientContext is the private configuration of one client.
type ClientContext struct {
	ThreadID   int
	NumClients int
	Config     BaseConfig
}

// IsMainTest reports whether this is client 0.
func (c ClientContext) IsMainTest() bool {
	return c.ThreadID == 0
}

// TestData returns the client's TestData object.
func (c ClientContext) TestData() map[string]interface{} {
	return c.Config.Shell.TestData()
}

// ClientOutcome is the result of one client. ReturnCode is only meaningful
// when Failure is nil.
type ClientOutcome struct {
	ThreadID   int
	ReturnCode int
	Failure    error
	Duration   time.Duration
}

// Failed reports whether the client failed.
func (o ClientOutcome) Failed() bool {
	return o.Failure != nil
}

// AggregateOutcome is the result of a whole test case.
type AggregateOutcome struct {
	ReturnCode int
	Failure    error
	// Clients holds every client's outcome in thread ID order.
	Clients []ClientOutcome
}

// Succeeded reports whether the test case neither failed nor exited non-zero.
func (o AggregateOutcome) Succeeded() bool {
	return o.Failure == nil && o.ReturnCode == 0
}
