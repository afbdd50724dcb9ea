package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbaren/tempo/internal/billing"
	"github.com/mbaren/tempo/internal/model"
)

func entry(id string, status model.Status, start time.Time) model.TimeEntry {
	return model.TimeEntry{ID: id, Status: status, StartTime: start}
}

func TestFindRunning(t *testing.T) {
	now := time.Now()

	running, err := FindRunning([]model.TimeEntry{
		entry("a", model.StatusStopped, now),
		entry("b", model.StatusRunning, now),
		entry("c", model.StatusApproved, now),
	})
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.Equal(t, "b", running.ID)

	running, err = FindRunning([]model.TimeEntry{
		entry("a", model.StatusStopped, now),
	})
	require.NoError(t, err)
	assert.Nil(t, running)

	// Two running entries is a data-integrity anomaly, not something to
	// resolve by picking one
	_, err = FindRunning([]model.TimeEntry{
		entry("a", model.StatusRunning, now),
		entry("b", model.StatusRunning, now),
	})
	assert.ErrorIs(t, err, ErrMultipleRunning)
}

func TestReconcileRestoresFormState(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	projectID := "proj-1"

	e := entry("a", model.StatusRunning, start)
	e.Description = "wireframes for checkout flow"
	e.ProjectID = &projectID
	e.IsBillable = true

	recovered, err := Reconcile([]model.TimeEntry{e})
	require.NoError(t, err)
	require.NotNil(t, recovered)
	assert.Equal(t, "wireframes for checkout flow", recovered.Description)
	require.NotNil(t, recovered.ProjectID)
	assert.Equal(t, "proj-1", *recovered.ProjectID)
	assert.True(t, recovered.IsBillable)

	// Reload scenario: now = start + 125s displays as 00:02:05
	now := start.Add(125 * time.Second)
	elapsed := Elapsed(&recovered.Entry, now)
	assert.Equal(t, int64(125), elapsed)
	assert.Equal(t, "00:02:05", billing.FormatDuration(elapsed))

	recovered, err = Reconcile(nil)
	require.NoError(t, err)
	assert.Nil(t, recovered)
}

func TestElapsedMonotone(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	e := entry("a", model.StatusRunning, start)

	prev := int64(-1)
	for _, offset := range []time.Duration{0, time.Second, time.Minute, time.Hour, 48 * time.Hour} {
		elapsed := Elapsed(&e, start.Add(offset))
		assert.GreaterOrEqual(t, elapsed, prev)
		prev = elapsed
	}

	// Clock skew: a start time in the future clamps to zero
	assert.Equal(t, int64(0), Elapsed(&e, start.Add(-time.Minute)))
}
