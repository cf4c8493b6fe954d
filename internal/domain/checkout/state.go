// internal/domain/checkout/state.go
package checkout

import "fmt"

// State is the phase of the current checkout attempt
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// InFlight reports whether an attempt is between start and outcome
func (s State) InFlight() bool {
	return s == StateValidating || s == StateSubmitting
}

var transitions = map[State][]State{
	StateIdle:       {StateValidating},
	StateValidating: {StateSubmitting, StateFailed},
	StateSubmitting: {StateSucceeded, StateFailed},
	StateSucceeded:  {StateValidating},
	StateFailed:     {StateValidating},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// mustTransition panics on transitions outside the table.
func mustTransition(from, to State) State {
	if !canTransition(from, to) {
		panic(fmt.Sprintf("checkout: illegal transition %s -> %s", from, to))
	}
	return to
}
