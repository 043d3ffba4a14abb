package order

import (
	"fmt"
	"strings"

	"orders/internal/pkg/errs"
)

// State is the lifecycle position of an order.
//
//	CREATED ──> IN_PROCESS ──> DISPATCHED ──> FINISHED
//
// Transitions move exactly one step forward. FINISHED is terminal.
type State int

const (
	// Unknown catches uninitialised values.
	Unknown State = iota
	Created
	InProcess
	Dispatched
	Finished
)

func getStateStrings() map[State]string {
	return map[State]string{
		Unknown:    "UNKNOWN",
		Created:    "CREATED",
		InProcess:  "IN_PROCESS",
		Dispatched: "DISPATCHED",
		Finished:   "FINISHED",
	}
}

// getTransitions is the full edge table; states missing from it have no successor.
func getTransitions() map[State]State {
	return map[State]State{
		Created:    InProcess,
		InProcess:  Dispatched,
		Dispatched: Finished,
	}
}

// ParseState accepts the wire names, case-insensitively.
func ParseState(raw string) (State, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	for s, str := range getStateStrings() {
		if s != Unknown && str == normalized {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%q is not a valid order state", raw))
}

// Validate rejects Unknown and out-of-range values.
func (s State) Validate() error {
	if _, ok := getStateStrings()[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%d is not a valid order state", s))
	}
	return nil
}

// String returns the wire name, e.g. IN_PROCESS.
func (s State) String() string {
	if str, ok := getStateStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// CanTransitionTo reports whether next is the single successor of s.
func (s State) CanTransitionTo(next State) bool {
	successor, ok := getTransitions()[s]
	return ok && successor == next
}

// TransitionTo validates the edge and returns next.
func (s State) TransitionTo(next State) (State, error) {
	if err := next.Validate(); err != nil {
		return Unknown, err
	}
	if !s.CanTransitionTo(next) {
		return Unknown, errs.NewValueIsInvalidErrorWithCause(
			"state",
			fmt.Errorf("transition from %s to %s is not allowed", s, next),
		)
	}
	return next, nil
}

// IsTerminal reports FINISHED, the only state without a successor.
func (s State) IsTerminal() bool {
	return s == Finished
}
