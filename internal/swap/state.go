package swap

import "fmt"

// State is a step of a swap attempt. Transitions only move forward.
type State int

const (
	Idle State = iota
	ValidatingInput
	EnsuringAllowance
	Submitting
	Confirming
	Confirmed
	Failed
)

var stateNames = [...]string{
	Idle:              "idle",
	ValidatingInput:   "validating_input",
	EnsuringAllowance: "ensuring_allowance",
	Submitting:        "submitting",
	Confirming:        "confirming",
	Confirmed:         "confirmed",
	Failed:            "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether s ends an attempt.
func (s State) Terminal() bool {
	return s == Confirmed || s == Failed
}

// Status is the observable state of an orchestrator.
type Status struct {
	State   State
	Loading bool
	// Err is the most recent failure message; empty once a new attempt starts.
	Err string
}
