package jstest

import (
	"fmt"

	"jstestctl/pkg/logging"
)

// State is the phase a test case run is in.
type State int

const (
	StateNotStarted State = iota
	StatePartitioning
	StateDispatching
	StateAwaitingCompletion
	StateAggregating
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StatePartitioning:
		return "Partitioning"
	case StateDispatching:
		return "Dispatching"
	case StateAwaitingCompletion:
		return "AwaitingCompletion"
	case StateAggregating:
		return "Aggregating"
	case StateSucceeded:
		return "Succeeded"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// StateObserver is told about every state a run enters.
type StateObserver func(State)

var validTransitions = map[State][]State{
	StateNotStarted:         {StatePartitioning},
	StatePartitioning:       {StateDispatching},
	StateDispatching:        {StateAwaitingCompletion, StateAggregating},
	StateAwaitingCompletion: {StateAggregating},
	StateAggregating:        {StateSucceeded, StateFailed},
}

// runMachine tracks the state of a single Run.
type runMachine struct {
	state    State
	logger   *logging.Logger
	observer StateObserver
}

func newRunMachine(logger *logging.Logger, observer StateObserver) *runMachine {
	return &runMachine{state: StateNotStarted, logger: logger, observer: observer}
}

func (m *runMachine) transition(to State) {
	allowed := false
	for _, s := range validTransitions[m.state] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		panic(fmt.Sprintf("jstest: invalid state transition %s -> %s", m.state, to))
	}

	m.logger.Debug("State %s -> %s", m.state, to)
	m.state = to
	if m.observer != nil {
		m.observer(to)
	}
}
