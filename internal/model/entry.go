package model

import (
	"time"
)

// Status represents the lifecycle state of a time entry
type Status string

const (
	StatusRunning   Status = "running"
	StatusStopped   Status = "stopped"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusLocked    Status = "locked"
)

// Valid returns true if s is a known entry status
func (s Status) Valid() bool {
	switch s {
	case StatusRunning, StatusStopped, StatusSubmitted,
		StatusApproved, StatusRejected, StatusLocked:
		return true
	}
	return false
}

// TimeEntry represents a single unit of tracked time
type TimeEntry struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	ProjectID       *string    `json:"project_id,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
	DurationHours   float64    `json:"duration_hours"`
	IsBillable      bool       `json:"is_billable"`
	HourlyRate      float64    `json:"hourly_rate"`  // snapshot of the project rate at creation
	BillableAmount  float64    `json:"billable_amount"`
	Status          Status     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Loaded relationships (not stored in time_entries table)
	Tags    []Tag    `json:"tags,omitempty"`
	Project *Project `json:"project,omitempty"`
}

// IsRunning returns true if this entry represents an active timer
func (e *TimeEntry) IsRunning() bool {
	return e.Status == StatusRunning
}

// Mutable returns true if the entry's fields may still be edited
func (e *TimeEntry) Mutable() bool {
	switch e.Status {
	case StatusStopped, StatusRejected:
		return true
	}
	return false
}

// Deletable returns true if the entry may be deleted
func (e *TimeEntry) Deletable() bool {
	return e.Status == StatusRunning || e.Status == StatusStopped
}
