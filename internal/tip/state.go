package tip

import "fmt"

// State is the position of the tip sheet in the send flow.
type State string

const (
	StateSelect    State = "select"
	StatePreparing State = "preparing"
	StateConfirm   State = "confirm"
	StateSending   State = "sending"
	StateDone      State = "done"
)

// Event drives Transition.
type Event string

const (
	EventStart     Event = "start"     // send pressed
	EventWarmedUp  Event = "warmed_up" // warm-up elapsed
	EventSubmit    Event = "submit"    // request handed to the wallet
	EventSucceeded Event = "succeeded" // wallet accepted the bundle
	EventAbort     Event = "abort"     // cancellation or classified error
	EventReset     Event = "reset"     // next interaction after done
)

var transitions = map[State]map[Event]State{
	StateSelect: {
		EventStart: StatePreparing,
		EventAbort: StateSelect,
		EventReset: StateSelect,
	},
	StatePreparing: {
		EventWarmedUp: StateConfirm,
		EventAbort:    StateSelect,
	},
	StateConfirm: {
		EventSubmit: StateSending,
		EventAbort:  StateSelect,
	},
	StateSending: {
		EventSucceeded: StateDone,
		EventAbort:     StateSelect,
	},
	StateDone: {
		EventReset: StateSelect,
	},
}

// Transition returns the state that follows s on e. It has no side effects.
func Transition(s State, e Event) (State, error) {
	next, ok := transitions[s][e]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, s, e)
	}
	return next, nil
}

// States lists every state in flow order.
func States() []State {
	return []State{StateSelect, StatePreparing, StateConfirm, StateSending, StateDone}
}

// Events lists every event.
func Events() []Event {
	return []Event{EventStart, EventWarmedUp, EventSubmit, EventSucceeded, EventAbort, EventReset}
}

// InFlight reports whether an attempt owns the machine in s.
func (s State) InFlight() bool {
	return s == StatePreparing || s == StateConfirm || s == StateSending
}
