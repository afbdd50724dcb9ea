package track

import (
	"errors"
	"fmt"

	"github.com/mbaren/tempo/internal/model"
)

// ErrTimerRunning is returned when a start is attempted while another entry is
// already running. The existing timer must be stopped explicitly; silently
// stopping it could lose unsaved time.
var ErrTimerRunning = errors.New("a timer is already running")

// ErrNotFound is returned when the store has no entry with the given id.
var ErrNotFound = errors.New("entry not found")

// InvalidTransitionError reports a lifecycle event fired from a state that
// does not permit it. The entry is left unchanged.
type InvalidTransitionError struct {
	From  model.Status
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s an entry in state %q", e.Event, e.From)
}

// invalidTransition is a convenience constructor used by the guards.
func invalidTransition(from model.Status, event Event) error {
	return &InvalidTransitionError{From: from, Event: event}
}
