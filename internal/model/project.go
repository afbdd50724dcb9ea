package model

import (
	"time"
)

// ProjectStatus represents the state of a project
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectArchived  ProjectStatus = "archived"
)

// Project represents a billable client project
type Project struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Client     string        `json:"client,omitempty"`
	Color      string        `json:"color,omitempty"`
	HourlyRate float64       `json:"hourly_rate"`
	Billable   bool          `json:"billable"` // whether entries bill by default
	Budget     *float64      `json:"budget,omitempty"`
	Status     ProjectStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// Computed fields (not stored)
	Spent      float64 `json:"spent,omitempty"` // sum of billable amounts
	TotalHours float64 `json:"total_hours,omitempty"`
	EntryCount int     `json:"entry_count,omitempty"`
}

// OverBudget returns true if spent has exceeded the project budget
func (p *Project) OverBudget() bool {
	return p.Budget != nil && p.Spent > *p.Budget
}

// BudgetRemaining returns how much budget is left, or 0 if no budget is set
func (p *Project) BudgetRemaining() float64 {
	if p.Budget == nil {
		return 0
	}
	remaining := *p.Budget - p.Spent
	if remaining < 0 {
		return 0
	}
	return remaining
}
