package timer

import (
	"time"
)

// IdlePolicy decides what happens to time accumulated while the user is away.
type IdlePolicy string

const (
	IdleAsk     IdlePolicy = "ask"     // prompt the user to keep or discard
	IdleDiscard IdlePolicy = "discard" // subtract idle seconds at finalize
	IdleKeep    IdlePolicy = "keep"    // count idle time as worked
	IdlePause   IdlePolicy = "pause"   // freeze the displayed clock
)

// IdleConfig is the settings surface for idle detection. A zero TimeoutMinutes
// disables it.
type IdleConfig struct {
	TimeoutMinutes int        `json:"timeout_minutes"`
	Policy         IdlePolicy `json:"policy"`
}

// Enabled returns true if idle detection is configured on.
func (c IdleConfig) Enabled() bool {
	return c.TimeoutMinutes > 0
}

// Tracker watches the gap between user interactions while a timer runs.
// Each idle period is resolved exactly once; a resolution is never re-applied
// retroactively when the tracker later sees the same gap.
type Tracker struct {
	cfg             IdleConfig
	lastInteraction time.Time
	idleSince       time.Time
	idle            bool
	discarded       int64 // seconds subtracted at finalize under IdleDiscard
}

// NewTracker creates an idle tracker starting from now.
func NewTracker(cfg IdleConfig, now time.Time) *Tracker {
	return &Tracker{cfg: cfg, lastInteraction: now}
}

// Touch records a user interaction. If an idle period was open it is closed;
// the return value reports whether one just ended (so an IdleAsk caller knows
// to prompt) along with its length in seconds. Under IdlePause the span is
// marked for subtraction here: a frozen clock that later bills the frozen
// time would make the freeze a lie.
func (t *Tracker) Touch(now time.Time) (ended bool, idleSeconds int64) {
	if t.idle {
		idleSeconds = int64(now.Sub(t.idleSince) / time.Second)
		t.idle = false
		ended = true
		if t.cfg.Policy == IdlePause {
			t.Discard(idleSeconds)
		}
	}
	t.lastInteraction = now
	return ended, idleSeconds
}

// IdleFor returns how long the open idle period has lasted as of now, zero
// when the user is not idle.
func (t *Tracker) IdleFor(now time.Time) int64 {
	if !t.idle {
		return 0
	}
	return int64(now.Sub(t.idleSince) / time.Second)
}

// Check advances the tracker to now and reports whether the user is idle.
// The transition into idleness fires once per idle period.
func (t *Tracker) Check(now time.Time) (isIdle, justWentIdle bool) {
	if !t.cfg.Enabled() || t.idle {
		return t.idle, false
	}
	timeout := time.Duration(t.cfg.TimeoutMinutes) * time.Minute
	if now.Sub(t.lastInteraction) >= timeout {
		t.idle = true
		// The idle period started at the last interaction, not at detection
		t.idleSince = t.lastInteraction
		return true, true
	}
	return false, false
}

// Paused reports whether the displayed clock should be frozen right now.
func (t *Tracker) Paused() bool {
	return t.idle && t.cfg.Policy == IdlePause
}

// Discard marks the just-ended idle period's seconds for subtraction at
// finalize. Callers use it for the IdleDiscard policy and for an IdleAsk
// answered with "discard".
func (t *Tracker) Discard(idleSeconds int64) {
	if idleSeconds > 0 {
		t.discarded += idleSeconds
	}
}

// DiscardedSeconds returns the total idle time to subtract when the entry is
// finalized.
func (t *Tracker) DiscardedSeconds() int64 {
	return t.discarded
}
