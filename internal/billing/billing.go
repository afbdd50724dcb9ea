// Package billing contains the pure duration and billable-amount arithmetic
// shared by the timer, the entry lifecycle, and the reports.
package billing

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidRange is returned when an entry's end time precedes its start time.
var ErrInvalidRange = errors.New("end time before start time")

// SecondsPerHour is the conversion factor between stored durations and billed hours.
const SecondsPerHour = 3600

// ComputeDuration returns the whole seconds between start and end.
// An end before start is a validation failure, never persisted.
func ComputeDuration(start, end time.Time) (int64, error) {
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	return int64(end.Sub(start) / time.Second), nil
}

// Hours converts a duration in seconds to fractional hours.
func Hours(durationSeconds int64) float64 {
	return float64(durationSeconds) / SecondsPerHour
}

// ComputeBillableAmount returns the currency amount owed for a duration at the
// given hourly rate, rounded half-up to the cent. Non-billable time is always 0.
func ComputeBillableAmount(durationSeconds int64, hourlyRate float64, isBillable bool) float64 {
	if !isBillable {
		return 0
	}
	amount := Hours(durationSeconds) * hourlyRate
	return RoundCents(amount)
}

// RoundCents rounds an amount half-up to two decimal places.
func RoundCents(amount float64) float64 {
	return math.Floor(amount*100+0.5) / 100
}

// FormatDuration renders seconds as HH:MM:SS for the timer display.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
