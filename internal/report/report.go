// Package report computes the aggregate figures shown on the stats screen:
// tracked and billable hours, utilization, revenue, and per-project budget
// consumption. Pure functions over loaded entries and projects.
package report

import (
	"sort"

	"github.com/mbaren/tempo/internal/billing"
	"github.com/mbaren/tempo/internal/model"
)

// Summary holds the headline figures for a set of entries.
type Summary struct {
	TotalHours    float64
	BillableHours float64
	Utilization   float64 // billable share of tracked time, 0-100
	Revenue       float64
	EntryCount    int
	RunningCount  int
	PendingReview int // submitted, awaiting approve/reject
}

// Summarize folds a set of entries into headline figures. Running entries
// count toward the entry totals but contribute no hours or revenue until
// they are finalized.
func Summarize(entries []model.TimeEntry) Summary {
	var s Summary
	for _, e := range entries {
		s.EntryCount++
		switch e.Status {
		case model.StatusRunning:
			s.RunningCount++
			continue
		case model.StatusSubmitted:
			s.PendingReview++
		}
		s.TotalHours += e.DurationHours
		if e.IsBillable {
			s.BillableHours += e.DurationHours
			s.Revenue += e.BillableAmount
		}
	}
	if s.TotalHours > 0 {
		s.Utilization = s.BillableHours / s.TotalHours * 100
	}
	s.Revenue = billing.RoundCents(s.Revenue)
	return s
}

// ProjectUsage reports budget consumption for one project.
type ProjectUsage struct {
	Project    model.Project
	Hours      float64
	Spent      float64
	Remaining  float64 // 0 when no budget is set
	OverBudget bool
}

// ByProject groups finalized entry time and spend under each project, sorted
// by spend descending. Entries without a project are collected under a
// synthetic "No project" row at the end.
func ByProject(entries []model.TimeEntry, projects []model.Project) []ProjectUsage {
	byID := make(map[string]*ProjectUsage, len(projects))
	for _, p := range projects {
		byID[p.ID] = &ProjectUsage{Project: p}
	}
	unassigned := &ProjectUsage{Project: model.Project{Name: "No project"}}

	for _, e := range entries {
		if e.Status == model.StatusRunning {
			continue
		}
		usage := unassigned
		if e.ProjectID != nil {
			if u, ok := byID[*e.ProjectID]; ok {
				usage = u
			}
		}
		usage.Hours += e.DurationHours
		usage.Spent += e.BillableAmount
	}

	var out []ProjectUsage
	for _, u := range byID {
		u.Spent = billing.RoundCents(u.Spent)
		if u.Project.Budget != nil {
			u.Remaining = *u.Project.Budget - u.Spent
			if u.Remaining < 0 {
				u.Remaining = 0
				u.OverBudget = true
			}
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spent != out[j].Spent {
			return out[i].Spent > out[j].Spent
		}
		return out[i].Project.Name < out[j].Project.Name
	})
	if unassigned.Hours > 0 || unassigned.Spent > 0 {
		unassigned.Spent = billing.RoundCents(unassigned.Spent)
		out = append(out, *unassigned)
	}
	return out
}
