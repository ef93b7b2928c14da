package review

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration. Step states reuse the step ids
// from steps.go so persisted sessions and the machine never disagree.
const (
	StateNotStarted = "not_started"
	StateComplete   = "complete"
)

const EventAdvance = "advance"

// init validates at startup that no step id collides with the synthetic
// boundary states.
func init() {
	for _, s := range Steps {
		if s.ID == StateNotStarted || s.ID == StateComplete {
			panic(fmt.Sprintf("step id %q collides with a reserved session state", s.ID))
		}
	}
}

// SessionContext carries state data.
type SessionContext struct {
	SessionID string
}

// SessionStateMachine drives the forward-only progression through the
// fixed step sequence: not_started -> step 0 .. step n-1 -> complete.
type SessionStateMachine struct {
	interpreter *statekit.Interpreter[SessionContext]
}

// StateForIndex maps a persisted step index onto the machine state it
// corresponds to, which is how a reloaded session resumes deterministically.
func StateForIndex(i int) string {
	if i < 0 {
		return StateNotStarted
	}
	if i >= len(Steps) {
		return StateComplete
	}
	return Steps[i].ID
}

// NewSessionStateMachine reconstructs the machine at the given state.
func NewSessionStateMachine(initialState string, sessionID string) (*SessionStateMachine, error) {
	builder := statekit.NewMachine[SessionContext]("review-session").
		WithInitial(statekit.StateID(initialState)).
		WithContext(SessionContext{SessionID: sessionID})

	builder.State(StateNotStarted).
		On(EventAdvance).Target(statekit.StateID(Steps[0].ID)).
		Done()

	for i, s := range Steps {
		next := StateComplete
		if i+1 < len(Steps) {
			next = Steps[i+1].ID
		}
		builder.State(statekit.StateID(s.ID)).
			On(EventAdvance).Target(statekit.StateID(next)).
			Done()
	}

	// Terminal state. No events leave it; advancing a complete session is
	// rejected by Advance below.
	builder.State(StateComplete).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build session state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &SessionStateMachine{interpreter: interpreter}, nil
}

// Advance moves the session forward by exactly one step.
func (sm *SessionStateMachine) Advance() error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(EventAdvance)})
	after := sm.Current()

	if before != after {
		return nil
	}
	// In statekit, if no transition matches, state stays the same.
	return fmt.Errorf("cannot advance a session in the %q state", before)
}

func (sm *SessionStateMachine) Current() string {
	return string(sm.interpreter.State().Value)
}

// Terminal reports whether the machine reached the complete state.
func (sm *SessionStateMachine) Terminal() bool {
	return sm.Current() == StateComplete
}
