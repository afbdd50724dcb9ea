// Package track owns the time-entry lifecycle: the state machine guarding
// transitions between entry statuses and the service that applies them
// against the entry store.
package track

import (
	"github.com/mbaren/tempo/internal/model"
)

// Event is a lifecycle operation applied to an entry.
type Event string

const (
	EventStart   Event = "start"
	EventStop    Event = "stop"
	EventEdit    Event = "edit"
	EventDelete  Event = "delete"
	EventSubmit  Event = "submit"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventLock    Event = "lock"
)

// Next resolves the target state for an event fired from a given state.
// idempotent reports that the entry is already in the target state, which is
// tolerated as a no-op so a retried network call cannot fail on its second
// delivery. Invalid transitions return an InvalidTransitionError and leave
// the entry untouched.
func Next(from model.Status, event Event) (to model.Status, idempotent bool, err error) {
	switch event {
	case EventStop:
		if from == model.StatusRunning {
			return model.StatusStopped, false, nil
		}

	case EventEdit:
		// Editing a rejected entry returns it to the normal stopped cycle;
		// resubmission then goes stopped -> submitted
		if from == model.StatusStopped || from == model.StatusRejected {
			return model.StatusStopped, false, nil
		}

	case EventSubmit:
		if from == model.StatusStopped {
			return model.StatusSubmitted, false, nil
		}
		if from == model.StatusSubmitted {
			return from, true, nil
		}

	case EventApprove:
		if from == model.StatusSubmitted {
			return model.StatusApproved, false, nil
		}
		if from == model.StatusApproved {
			return from, true, nil
		}

	case EventReject:
		if from == model.StatusSubmitted {
			return model.StatusRejected, false, nil
		}
		if from == model.StatusRejected {
			return from, true, nil
		}

	case EventLock:
		if from == model.StatusStopped || from == model.StatusApproved {
			return model.StatusLocked, false, nil
		}
		if from == model.StatusLocked {
			return from, true, nil
		}
	}

	return from, false, invalidTransition(from, event)
}

// CanDelete returns true if an entry in the given state may be deleted.
func CanDelete(from model.Status) bool {
	return from == model.StatusRunning || from == model.StatusStopped
}
