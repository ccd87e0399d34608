package statemachine

import (
	"fmt"
)

// TransitionError reports an illegal status transition. It carries both the
// current and the requested status so callers can surface them.
type TransitionError struct {
	Entity    string
	Current   string
	Requested string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition interdite pour %s: %s → %s", e.Entity, e.Current, e.Requested)
}

func newTransitionError(entity, current, requested string) error {
	return &TransitionError{Entity: entity, Current: current, Requested: requested}
}
