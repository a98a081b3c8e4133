package jstest

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"jstestctl/internal/failure"
	"jstestctl/pkg/logging"
)

// TestKind is the logger subsystem of JavaScript test cases.
const TestKind = "JSTest"

// TestCase runs one script with a configured number of clients.
type TestCase struct {
	script   string
	launcher Launcher
	logger   *logging.Logger
	observer StateObserver

	base       BaseConfig
	numClients int
	configured bool
}

// NewTestCase creates an unconfigured test case. A nil logger is replaced by
// a test logger named after the script.
func NewTestCase(script string, l Launcher, logger *logging.Logger) *TestCase {
	if logger == nil {
		logger = logging.NewTestLogger(TestKind, script)
	}
	return &TestCase{script: script, launcher: l, logger: logger}
}

// Script returns the path of the test script.
func (tc *TestCase) Script() string {
	return tc.script
}

// NumClients returns the configured client count, 0 before Configure.
func (tc *TestCase) NumClients() int {
	return tc.numClients
}

// SetStateObserver registers fn to be called on every state change of later
// runs. It must not be called while a run is in progress.
func (tc *TestCase) SetStateObserver(fn StateObserver) {
	tc.observer = fn
}

// Configure validates the client count and stores a copy of base. Nothing is
// started.
func (tc *TestCase) Configure(base BaseConfig, numClients int) error {
	if numClients < 1 {
		return &failure.ConfigurationError{
			Field:  "numClients",
			Reason: fmt.Sprintf("must be at least 1, got %d", numClients),
		}
	}
	if tc.script == "" {
		return &failure.ConfigurationError{Field: "script", Reason: "must not be empty"}
	}
	if base.Executable == "" {
		return &failure.ConfigurationError{Field: "executable", Reason: "must not be empty"}
	}
	if tc.launcher == nil {
		return &failure.ConfigurationError{Field: "launcher", Reason: "must not be nil"}
	}

	tc.base = base.Clone()
	tc.numClients = numClients
	tc.configured = true
	return nil
}

// Run executes every client and waits for all of them. The returned error is
// the failure of the lowest-indexed failing client; with a single client it
// is the launcher's error value itself.
func (tc *TestCase) Run(ctx context.Context) (AggregateOutcome, error) {
	if !tc.configured {
		return AggregateOutcome{}, &failure.ConfigurationError{Reason: "test case run before Configure"}
	}

	m := newRunMachine(tc.logger, tc.observer)
	if tc.numClients == 1 {
		return tc.runSingle(ctx, m)
	}
	return tc.runMulti(ctx, m)
}

func (tc *TestCase) runSingle(ctx context.Context, m *runMachine) (AggregateOutcome, error) {
	m.transition(StatePartitioning)
	cc := DeriveClientContext(tc.base, 0, 1)

	m.transition(StateDispatching)
	outcome, err := NewClientRunner(tc.script, tc.launcher, tc.logger).Execute(ctx, cc)
	outcome.Failure = err

	m.transition(StateAggregating)
	result := AggregateOutcome{
		ReturnCode: outcome.ReturnCode,
		Failure:    err,
		Clients:    []ClientOutcome{outcome},
	}
	return tc.finish(m, result)
}

func (tc *TestCase) runMulti(ctx context.Context, m *runMachine) (AggregateOutcome, error) {
	m.transition(StatePartitioning)
	contexts := make([]ClientContext, tc.numClients)
	for i := range contexts {
		contexts[i] = DeriveClientContext(tc.base, i, tc.numClients)
	}

	m.transition(StateDispatching)
	slots := make([]ClientOutcome, tc.numClients)
	var g errgroup.Group
	for _, cc := range contexts {
		cc := cc
		runner := NewClientRunner(tc.script, tc.launcher, tc.logger.NewThreadLogger(cc.ThreadID))
		g.Go(func() error {
			slots[cc.ThreadID] = tc.runClient(ctx, runner, cc)
			return nil
		})
	}

	m.transition(StateAwaitingCompletion)
	// Clients report through their slots; the group never returns an error.
	_ = g.Wait()

	m.transition(StateAggregating)
	return tc.finish(m, Aggregate(slots))
}

// runClient executes one client and turns a panic into a SystemError so a
// broken client cannot take the other clients down.
func (tc *TestCase) runClient(ctx context.Context, runner *ClientRunner, cc ClientContext) (outcome ClientOutcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := &failure.SystemError{
				Op:       "run",
				Test:     tc.script,
				ThreadID: cc.ThreadID,
				Err:      fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
			}
			runner.logger.Error(err, "Client %d panicked", cc.ThreadID)
			outcome = ClientOutcome{ThreadID: cc.ThreadID, Failure: err, Duration: time.Since(start)}
		}
	}()

	outcome, err := runner.Execute(ctx, cc)
	outcome.Failure = err
	return outcome
}

func (tc *TestCase) finish(m *runMachine, result AggregateOutcome) (AggregateOutcome, error) {
	if result.Failure != nil {
		m.transition(StateFailed)
		return result, result.Failure
	}
	m.transition(StateSucceeded)
	return result, nil
}

// Aggregate folds per-client outcomes, given in thread ID order, into the
// test case outcome. The return code is the first non-zero code among the
// clients without a failure; the failure is the first one in thread ID order.
func Aggregate(outcomes []ClientOutcome) AggregateOutcome {
	result := AggregateOutcome{Clients: outcomes}
	for _, o := range outcomes {
		if o.Failure != nil {
			if result.Failure == nil {
				result.Failure = o.Failure
			}
			continue
		}
		if result.ReturnCode == 0 && o.ReturnCode != 0 {
			result.ReturnCode = o.ReturnCode
		}
	}
	return result
}
