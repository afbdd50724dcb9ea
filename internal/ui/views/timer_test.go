package views

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/mbaren/tempo/internal/model"
	"github.com/mbaren/tempo/internal/timer"
)

func runningEntry(startedAgo time.Duration) *model.TimeEntry {
	return &model.TimeEntry{
		ID:        "entry-1",
		Title:     "deep work",
		StartTime: time.Now().Add(-startedAgo),
		Status:    model.StatusRunning,
	}
}

func TestRecordInteractionKeepsTrackerAlive(t *testing.T) {
	cfg := timer.IdleConfig{TimeoutMinutes: 5, Policy: timer.IdleDiscard}
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	v := TimerView{idleCfg: cfg, idle: timer.NewTracker(cfg, start)}

	// Activity in another screen at 9:04 counts as an interaction; by 9:08
	// only four minutes have passed since it, so the user is not idle
	v = v.RecordInteraction(start.Add(4 * time.Minute))
	isIdle, _ := v.idle.Check(start.Add(8 * time.Minute))
	assert.False(t, isIdle)
	assert.Equal(t, int64(0), v.idle.DiscardedSeconds())
}

func TestRecordInteractionResolvesOpenPeriod(t *testing.T) {
	cfg := timer.IdleConfig{TimeoutMinutes: 5, Policy: timer.IdleDiscard}
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	v := TimerView{idleCfg: cfg, idle: timer.NewTracker(cfg, start)}
	v.idle.Check(start.Add(5 * time.Minute))

	// The first keypress after the gap can land in any view; it still
	// closes the period and applies the discard policy
	v = v.RecordInteraction(start.Add(12 * time.Minute))
	assert.Equal(t, int64(12*60), v.idle.DiscardedSeconds())
	assert.Contains(t, v.statusMsg, "Discarding")
}

func TestPausedSpanExcludedFromClock(t *testing.T) {
	cfg := timer.IdleConfig{TimeoutMinutes: 5, Policy: timer.IdlePause}
	now := time.Now()

	v := TimerView{
		idleCfg: cfg,
		running: runningEntry(30 * time.Minute),
		idle:    timer.NewTracker(cfg, now.Add(-20*time.Minute)),
	}
	v.idle.Check(now.Add(-10 * time.Minute))
	assert.True(t, v.idle.Paused())

	// Resuming discards the frozen span; the next tick shows 30 minutes of
	// wall time minus the 20 the clock sat paused
	v = v.touchIdle(now)
	m, _ := v.Update(timerTickMsg{})
	v = m.(TimerView)
	assert.InDelta(t, float64(10*60), float64(v.elapsed), 2)
	assert.Equal(t, int64(20*60), v.idle.DiscardedSeconds())
}

func TestIdlePromptShowsLiveAwayTime(t *testing.T) {
	cfg := timer.IdleConfig{TimeoutMinutes: 5, Policy: timer.IdleAsk}
	now := time.Now()

	v := TimerView{
		idleCfg: cfg,
		running: runningEntry(30 * time.Minute),
		idle:    timer.NewTracker(cfg, now.Add(-10*time.Minute)),
	}

	m, _ := v.Update(timerTickMsg{})
	v = m.(TimerView)
	assert.True(t, v.promptIdle)
	assert.InDelta(t, float64(10*60), float64(v.idleSeconds), 2)

	// Answering "n" discards what the prompt showed
	m, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	v = m.(TimerView)
	assert.False(t, v.promptIdle)
	assert.InDelta(t, float64(10*60), float64(v.idle.DiscardedSeconds()), 2)
}
