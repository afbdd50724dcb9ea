package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerDisabled(t *testing.T) {
	now := time.Now()
	tr := NewTracker(IdleConfig{}, now)

	isIdle, justWent := tr.Check(now.Add(10 * time.Hour))
	assert.False(t, isIdle)
	assert.False(t, justWent)
}

func TestTrackerFiresOncePerIdlePeriod(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(IdleConfig{TimeoutMinutes: 5, Policy: IdleAsk}, start)

	isIdle, justWent := tr.Check(start.Add(4 * time.Minute))
	assert.False(t, isIdle)
	assert.False(t, justWent)

	isIdle, justWent = tr.Check(start.Add(5 * time.Minute))
	assert.True(t, isIdle)
	assert.True(t, justWent)

	// Still idle, but the transition only fires once
	isIdle, justWent = tr.Check(start.Add(20 * time.Minute))
	assert.True(t, isIdle)
	assert.False(t, justWent)

	// Interaction closes the period and reports its full length
	ended, idleSeconds := tr.Touch(start.Add(25 * time.Minute))
	assert.True(t, ended)
	assert.Equal(t, int64(25*60), idleSeconds) // from last interaction, not detection

	// A fresh period can begin after the touch
	isIdle, justWent = tr.Check(start.Add(31 * time.Minute))
	assert.True(t, isIdle)
	assert.True(t, justWent)
}

func TestTrackerDiscardAccumulates(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(IdleConfig{TimeoutMinutes: 5, Policy: IdleDiscard}, start)

	tr.Check(start.Add(6 * time.Minute))
	_, idle := tr.Touch(start.Add(10 * time.Minute))
	tr.Discard(idle)

	tr.Check(start.Add(16 * time.Minute))
	_, idle = tr.Touch(start.Add(18 * time.Minute))
	tr.Discard(idle)

	assert.Equal(t, int64(10*60+8*60), tr.DiscardedSeconds())
}

func TestTrackerPause(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(IdleConfig{TimeoutMinutes: 5, Policy: IdlePause}, start)

	assert.False(t, tr.Paused())
	tr.Check(start.Add(5 * time.Minute))
	assert.True(t, tr.Paused())

	tr.Touch(start.Add(6 * time.Minute))
	assert.False(t, tr.Paused())
}

func TestTrackerPauseResumptionDiscardsSpan(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(IdleConfig{TimeoutMinutes: 5, Policy: IdlePause}, start)

	// Idle from 9:00 (last interaction), resumed at 9:12: the frozen
	// 12 minutes must come out of the billed duration, not just the display
	tr.Check(start.Add(5 * time.Minute))
	ended, idleSeconds := tr.Touch(start.Add(12 * time.Minute))
	assert.True(t, ended)
	assert.Equal(t, int64(12*60), idleSeconds)
	assert.Equal(t, int64(12*60), tr.DiscardedSeconds())

	// A second pause accumulates on top of the first
	tr.Check(start.Add(17 * time.Minute))
	tr.Touch(start.Add(20 * time.Minute))
	assert.Equal(t, int64(12*60+8*60), tr.DiscardedSeconds())
}

func TestTrackerIdleFor(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(IdleConfig{TimeoutMinutes: 5, Policy: IdleAsk}, start)

	assert.Equal(t, int64(0), tr.IdleFor(start.Add(4*time.Minute)))

	// The open period is measured from the last interaction, live
	tr.Check(start.Add(5 * time.Minute))
	assert.Equal(t, int64(7*60), tr.IdleFor(start.Add(7*time.Minute)))
	assert.Equal(t, int64(9*60), tr.IdleFor(start.Add(9*time.Minute)))

	tr.Touch(start.Add(10 * time.Minute))
	assert.Equal(t, int64(0), tr.IdleFor(start.Add(11*time.Minute)))
}
