package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbaren/tempo/internal/billing"
	"github.com/mbaren/tempo/internal/timer"
)

func TestSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	// No file yet: defaults
	settings, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.False(t, settings.Rounding.Enabled())
	assert.False(t, settings.Idle.Enabled())
	assert.True(t, settings.Notifications)

	settings.Rounding = billing.Policy{IncrementMinutes: 15, Direction: billing.RoundNearest}
	settings.Idle = timer.IdleConfig{TimeoutMinutes: 10, Policy: timer.IdleDiscard}
	require.NoError(t, settings.Save(dir))

	loaded, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, 15, loaded.Rounding.IncrementMinutes)
	assert.Equal(t, billing.RoundNearest, loaded.Rounding.Direction)
	assert.Equal(t, timer.IdleDiscard, loaded.Idle.Policy)
	assert.Equal(t, 10, loaded.Idle.TimeoutMinutes)
}
