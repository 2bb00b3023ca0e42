// Package training models a training submission: the request, the per-model
// results and the submit/complete state machine.
package training

import (
	"modelbench/domain/core"
)

// State of a training submission
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Submitting:
		return "Submitting"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Event drives State changes
type Event int

const (
	// Submit starts a request after the presence checks passed
	Submit Event = iota
	// Succeed records a parsed result
	Succeed
	// Fail records a transport or server-reported error
	Fail
	// Settle returns a finished submission to Idle once its outcome is shown
	Settle
)

func (e Event) String() string {
	switch e {
	case Submit:
		return "Submit"
	case Succeed:
		return "Succeed"
	case Fail:
		return "Fail"
	case Settle:
		return "Settle"
	default:
		return "Unknown"
	}
}

// Transition is the pure step function: Idle -> Submitting -> (Succeeded | Failed) -> Idle
func Transition(s State, e Event) (State, error) {
	switch {
	case s == Idle && e == Submit:
		return Submitting, nil
	case s == Submitting && e == Succeed:
		return Succeeded, nil
	case s == Submitting && e == Fail:
		return Failed, nil
	case (s == Succeeded || s == Failed) && e == Settle:
		return Idle, nil
	}
	return s, core.NewTransitionError(s.String(), e.String())
}

// Busy reports whether a submission is in flight
func (s State) Busy() bool {
	return s == Submitting
}
