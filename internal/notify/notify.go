package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/mbaren/tempo/internal/billing"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
}

// NewNotifier creates a new notifier
func NewNotifier() *Notifier {
	return &Notifier{
		enabled: true,
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}

	args := []string{}

	// Add urgency
	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// Add timeout (in milliseconds)
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	// Add icon if specified
	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	// Add app name
	args = append(args, "-a", "tempo")

	// Add title and body
	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}

	// Execute notify-send
	cmd := exec.Command("notify-send", args...)
	return cmd.Run()
}

// SendIdleDetected alerts that the timer has been running without interaction
func (n *Notifier) SendIdleDetected(entryTitle string, idleMinutes int) error {
	return n.Send(Notification{
		Title:   "Are you still working?",
		Body:    fmt.Sprintf("%s — no activity for %d minutes", entryTitle, idleMinutes),
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "alarm-symbolic",
	})
}

// SendTimerStopped confirms a stop was persisted with the logged duration
func (n *Notifier) SendTimerStopped(entryTitle string, durationSeconds int64) error {
	return n.Send(Notification{
		Title:   "Timer stopped",
		Body:    fmt.Sprintf("%s — %s logged", entryTitle, billing.FormatDuration(durationSeconds)),
		Urgency: UrgencyNormal,
		Timeout: 5 * time.Second,
		Icon:    "appointment-soon-symbolic",
	})
}

// SendLongRunning reminds about a timer that has been going a while
func (n *Notifier) SendLongRunning(entryTitle string, elapsed time.Duration) error {
	return n.Send(Notification{
		Title:   "Timer still running",
		Body:    fmt.Sprintf("%s has been running for %dh%02dm", entryTitle, int(elapsed.Hours()), int(elapsed.Minutes())%60),
		Urgency: UrgencyNormal,
		Timeout: 10 * time.Second,
		Icon:    "emblem-important-symbolic",
	})
}
