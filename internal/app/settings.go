package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mbaren/tempo/internal/billing"
	"github.com/mbaren/tempo/internal/timer"
)

// Settings is the persisted configuration surface: how finalized durations
// are rounded for billing and how idle time is handled.
type Settings struct {
	Rounding      billing.Policy   `json:"rounding"`
	Idle          timer.IdleConfig `json:"idle"`
	Notifications bool             `json:"notifications"`
}

// DefaultSettings returns the out-of-the-box configuration: no rounding,
// idle detection off, notifications on.
func DefaultSettings() *Settings {
	return &Settings{
		Rounding:      billing.Policy{Direction: billing.RoundNearest},
		Idle:          timer.IdleConfig{Policy: timer.IdleAsk},
		Notifications: true,
	}
}

func settingsPath(dataDir string) string {
	return filepath.Join(dataDir, "settings.json")
}

// LoadSettings reads settings from the data directory, falling back to
// defaults when no file exists yet.
func LoadSettings(dataDir string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath(dataDir))
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}

// Save writes the settings file to the data directory.
func (s *Settings) Save(dataDir string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(settingsPath(dataDir), data, 0644)
}
