package workflow

import (
	"errors"
	"fmt"
)

// State is a node of the workflow graph.
type State string

const (
	StateStart   State = "start"
	StateRouting State = "routing"
	StateFanout  State = "fanout"
	StateJoining State = "joining"
	StateDone    State = "done"
)

var (
	// ErrWorkflowPanic is returned by Run when the executor itself panicked.
	ErrWorkflowPanic = errors.New("workflow panic")

	// ErrIllegalTransition is the panic value for a transition outside the graph.
	ErrIllegalTransition = errors.New("illegal workflow transition")
)

// transitions is the workflow graph. Start may skip Routing when the planner fails.
var transitions = map[State][]State{
	StateStart:   {StateRouting, StateFanout},
	StateRouting: {StateFanout},
	StateFanout:  {StateJoining},
	StateJoining: {StateDone},
}

// machine tracks the current state of one run and the states it visited.
type machine struct {
	state State
	trace []string
}

func newMachine() *machine {
	return &machine{state: StateStart, trace: []string{string(StateStart)}}
}

// transition moves to next, panicking on an edge the graph does not have.
func (m *machine) transition(next State) {
	for _, allowed := range transitions[m.state] {
		if allowed == next {
			m.state = next
			m.trace = append(m.trace, string(next))
			return
		}
	}
	panic(fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.state, next))
}

// Trace returns the visited states in order.
func (m *machine) Trace() []string {
	return append([]string(nil), m.trace...)
}
