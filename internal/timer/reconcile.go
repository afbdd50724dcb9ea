// Package timer rebuilds live timer state from persisted entries after a
// restart and tracks user idleness while a timer runs. It never talks to the
// store itself; ticking and persistence are the caller's concern.
package timer

import (
	"errors"
	"time"

	"github.com/mbaren/tempo/internal/model"
)

// ErrMultipleRunning indicates more than one entry is in the running state.
// That means a stop was lost or two instances raced; it has to be surfaced to
// the user, not resolved by silently picking one.
var ErrMultipleRunning = errors.New("multiple running entries found")

// Recovered is the live state rebuilt from a persisted running entry. The
// description, project, and billable flag come back so edits made before a
// restart keep their attribution.
type Recovered struct {
	Entry       model.TimeEntry
	Description string
	ProjectID   *string
	IsBillable  bool
}

// FindRunning scans entries for the single running one. Returns nil when no
// timer is active.
func FindRunning(entries []model.TimeEntry) (*model.TimeEntry, error) {
	var running *model.TimeEntry
	for i := range entries {
		if !entries[i].IsRunning() {
			continue
		}
		if running != nil {
			return nil, ErrMultipleRunning
		}
		running = &entries[i]
	}
	return running, nil
}

// Reconcile finds the active running entry and packages the form state to
// restore. Returns nil when nothing is running.
func Reconcile(entries []model.TimeEntry) (*Recovered, error) {
	running, err := FindRunning(entries)
	if err != nil {
		return nil, err
	}
	if running == nil {
		return nil, nil
	}
	return &Recovered{
		Entry:       *running,
		Description: running.Description,
		ProjectID:   running.ProjectID,
		IsBillable:  running.IsBillable,
	}, nil
}

// Elapsed reconstructs the displayed elapsed seconds for a running entry from
// its persisted start time. Clamped at zero so a clock skewed into the future
// never shows negative time.
func Elapsed(entry *model.TimeEntry, now time.Time) int64 {
	if now.Before(entry.StartTime) {
		return 0
	}
	return int64(now.Sub(entry.StartTime) / time.Second)
}
