package billing

// Direction controls which way a duration is snapped to the rounding increment.
type Direction string

const (
	RoundUp      Direction = "up"
	RoundDown    Direction = "down"
	RoundNearest Direction = "nearest"
)

// Policy describes how finalized durations are snapped before billing.
// A zero IncrementMinutes disables rounding. Rounding is applied exactly once,
// at finalization; the raw elapsed value shown while the timer runs is never
// rounded.
type Policy struct {
	IncrementMinutes int       `json:"increment_minutes"`
	Direction        Direction `json:"direction"`
}

// Enabled returns true if the policy snaps durations at all.
func (p Policy) Enabled() bool {
	return p.IncrementMinutes > 0
}

// RoundDuration snaps durationSeconds to a multiple of the policy increment.
func (p Policy) RoundDuration(durationSeconds int64) int64 {
	if !p.Enabled() || durationSeconds < 0 {
		return durationSeconds
	}
	increment := int64(p.IncrementMinutes) * 60
	remainder := durationSeconds % increment
	if remainder == 0 {
		return durationSeconds
	}

	down := durationSeconds - remainder
	switch p.Direction {
	case RoundDown:
		return down
	case RoundUp:
		return down + increment
	default: // nearest, ties round up
		if remainder*2 >= increment {
			return down + increment
		}
		return down
	}
}

// BillableAmount computes the billable amount for a finalized duration with
// the policy applied. This is the single place rounding meets billing.
func (p Policy) BillableAmount(durationSeconds int64, hourlyRate float64, isBillable bool) float64 {
	return ComputeBillableAmount(p.RoundDuration(durationSeconds), hourlyRate, isBillable)
}
