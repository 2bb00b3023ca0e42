package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound      = errors.New("resource not found")
	ErrModelNotFound = fmt.Errorf("%w: model", ErrNotFound)

	ErrNoDataset         = errors.New("no dataset loaded")
	ErrNoTarget          = errors.New("no target column selected")
	ErrEmptyResults      = errors.New("training results are empty")
	ErrIllegalTransition = errors.New("illegal training state transition")
)

// NewNotFoundError reports a missing named resource
func NewNotFoundError(resource string, name string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, resource, name)
}

// NewTransitionError reports an event that the current state does not accept
func NewTransitionError(state, event string) error {
	return fmt.Errorf("%w: %s on %s", ErrIllegalTransition, event, state)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsPresenceError(err error) bool {
	return errors.Is(err, ErrNoDataset) || errors.Is(err, ErrNoTarget)
}
