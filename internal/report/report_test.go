package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mbaren/tempo/internal/model"
)

func finished(project *string, hours float64, billable bool, amount float64, status model.Status) model.TimeEntry {
	end := time.Now()
	return model.TimeEntry{
		ProjectID:      project,
		StartTime:      end.Add(-time.Duration(hours * float64(time.Hour))),
		EndTime:        &end,
		DurationHours:  hours,
		IsBillable:     billable,
		BillableAmount: amount,
		Status:         status,
	}
}

func TestSummarize(t *testing.T) {
	proj := "proj-1"
	entries := []model.TimeEntry{
		finished(&proj, 2, true, 300, model.StatusStopped),
		finished(&proj, 1, true, 150, model.StatusSubmitted),
		finished(nil, 1, false, 0, model.StatusApproved),
		{Status: model.StatusRunning, StartTime: time.Now()},
	}

	s := Summarize(entries)
	assert.Equal(t, 4, s.EntryCount)
	assert.Equal(t, 1, s.RunningCount)
	assert.Equal(t, 1, s.PendingReview)
	assert.Equal(t, 4.0, s.TotalHours)
	assert.Equal(t, 3.0, s.BillableHours)
	assert.Equal(t, 450.0, s.Revenue)
	assert.Equal(t, 75.0, s.Utilization)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0.0, s.Utilization)
	assert.Equal(t, 0.0, s.Revenue)
}

func TestByProject(t *testing.T) {
	budget := 400.0
	acme := model.Project{ID: "acme", Name: "Acme", Budget: &budget}
	zen := model.Project{ID: "zen", Name: "Zen"}

	a, z := "acme", "zen"
	entries := []model.TimeEntry{
		finished(&a, 2, true, 300, model.StatusStopped),
		finished(&a, 1, true, 150, model.StatusApproved),
		finished(&z, 1, true, 90, model.StatusStopped),
		finished(nil, 0.5, false, 0, model.StatusStopped),
		{ProjectID: &a, Status: model.StatusRunning, StartTime: time.Now()},
	}

	usage := ByProject(entries, []model.Project{acme, zen})
	assert.Len(t, usage, 3)

	assert.Equal(t, "Acme", usage[0].Project.Name)
	assert.Equal(t, 3.0, usage[0].Hours) // running entry excluded
	assert.Equal(t, 450.0, usage[0].Spent)
	assert.True(t, usage[0].OverBudget)
	assert.Equal(t, 0.0, usage[0].Remaining)

	assert.Equal(t, "Zen", usage[1].Project.Name)
	assert.Equal(t, 90.0, usage[1].Spent)
	assert.False(t, usage[1].OverBudget)

	assert.Equal(t, "No project", usage[2].Project.Name)
	assert.Equal(t, 0.5, usage[2].Hours)
}
