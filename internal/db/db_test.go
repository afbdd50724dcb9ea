package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mbaren/tempo/internal/model"
	"github.com/mbaren/tempo/internal/track"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	tmpDir := t.TempDir()
	db, err := Open(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEntryRoundTrip(t *testing.T) {
	db := openTestDB(t)

	project, err := db.CreateProject(model.Project{
		Name: "Acme redesign", Client: "Acme Co", HourlyRate: 150, Billable: true,
	})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	start := time.Now().Add(-time.Hour).Truncate(time.Second)
	end := start.Add(45 * time.Minute)
	created, err := db.CreateEntry(&model.TimeEntry{
		Title:           "checkout wireframes",
		Description:     "first pass",
		ProjectID:       &project.ID,
		StartTime:       start,
		EndTime:         &end,
		DurationSeconds: 2700,
		DurationHours:   0.75,
		IsBillable:      true,
		HourlyRate:      150,
		BillableAmount:  112.5,
		Status:          model.StatusStopped,
	})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected store to assign an id")
	}

	got, err := db.GetEntry(created.ID)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if got == nil {
		t.Fatal("Expected entry, got nil")
	}
	if got.Title != "checkout wireframes" || got.Status != model.StatusStopped {
		t.Errorf("Round trip mismatch: %+v", got)
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Errorf("End time mismatch: got %v want %v", got.EndTime, end)
	}
	if got.BillableAmount != 112.5 || !got.IsBillable {
		t.Errorf("Billing fields mismatch: %+v", got)
	}

	// Missing entries come back nil, not an error
	missing, err := db.GetEntry("no-such-id")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for missing entry")
	}
}

func TestUpdateEntryPersistsTransition(t *testing.T) {
	db := openTestDB(t)

	created, err := db.CreateEntry(&model.TimeEntry{
		Title: "running work", StartTime: time.Now(), Status: model.StatusRunning,
	})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	end := time.Now().Truncate(time.Second)
	created.EndTime = &end
	created.Status = model.StatusStopped
	created.DurationSeconds = 600
	if _, err := db.UpdateEntry(created); err != nil {
		t.Fatalf("Failed to update entry: %v", err)
	}

	got, err := db.GetEntry(created.ID)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if got.Status != model.StatusStopped || got.DurationSeconds != 600 {
		t.Errorf("Update not persisted: %+v", got)
	}
}

func TestSingleRunningIndexBackstop(t *testing.T) {
	db := openTestDB(t)

	_, err := db.CreateEntry(&model.TimeEntry{
		Title: "first", StartTime: time.Now(), Status: model.StatusRunning,
	})
	if err != nil {
		t.Fatalf("Failed to create first running entry: %v", err)
	}

	// The partial unique index rejects a second running row even if the
	// service-level guard is bypassed
	_, err = db.CreateEntry(&model.TimeEntry{
		Title: "second", StartTime: time.Now(), Status: model.StatusRunning,
	})
	if err == nil {
		t.Fatal("Expected second running entry to be rejected")
	}
}

func TestListEntriesFilters(t *testing.T) {
	db := openTestDB(t)

	project, err := db.CreateProject(model.Project{Name: "Acme", HourlyRate: 100, Billable: true})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	now := time.Now().Truncate(time.Second)
	mk := func(title string, status model.Status, projectID *string, start time.Time) {
		t.Helper()
		end := start.Add(30 * time.Minute)
		entry := &model.TimeEntry{
			Title: title, ProjectID: projectID, StartTime: start,
			Status: status, DurationSeconds: 1800,
		}
		if status != model.StatusRunning {
			entry.EndTime = &end
		}
		if _, err := db.CreateEntry(entry); err != nil {
			t.Fatalf("Failed to create %s: %v", title, err)
		}
	}

	mk("old unassigned", model.StatusStopped, nil, now.Add(-72*time.Hour))
	mk("acme stopped", model.StatusStopped, &project.ID, now.Add(-2*time.Hour))
	mk("acme submitted", model.StatusSubmitted, &project.ID, now.Add(-time.Hour))
	mk("live", model.StatusRunning, &project.ID, now.Add(-10*time.Minute))

	all, err := db.ListEntries(track.EntryFilter{})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(all))
	}
	// Most recent first
	if all[0].Title != "live" {
		t.Errorf("Expected live entry first, got %q", all[0].Title)
	}

	running, err := db.ListEntries(track.EntryFilter{Status: model.StatusRunning})
	if err != nil {
		t.Fatalf("Failed to list running: %v", err)
	}
	if len(running) != 1 || running[0].Title != "live" {
		t.Errorf("Running filter mismatch: %+v", running)
	}

	byProject, err := db.ListEntries(track.EntryFilter{ProjectID: project.ID})
	if err != nil {
		t.Fatalf("Failed to list by project: %v", err)
	}
	if len(byProject) != 3 {
		t.Errorf("Expected 3 project entries, got %d", len(byProject))
	}

	recent, err := db.ListEntries(track.EntryFilter{Since: now.Add(-3 * time.Hour)})
	if err != nil {
		t.Fatalf("Failed to list since: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("Expected 3 recent entries, got %d", len(recent))
	}
}

func TestProjectSpentAggregates(t *testing.T) {
	db := openTestDB(t)

	budget := 200.0
	project, err := db.CreateProject(model.Project{
		Name: "Acme", HourlyRate: 100, Billable: true, Budget: &budget,
	})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	now := time.Now().Truncate(time.Second)
	for i, amount := range []float64{100, 150} {
		start := now.Add(time.Duration(-i-1) * time.Hour)
		end := start.Add(time.Hour)
		_, err := db.CreateEntry(&model.TimeEntry{
			Title: "work", ProjectID: &project.ID, StartTime: start, EndTime: &end,
			DurationSeconds: 3600, DurationHours: 1, IsBillable: true,
			HourlyRate: 100, BillableAmount: amount, Status: model.StatusStopped,
		})
		if err != nil {
			t.Fatalf("Failed to create entry: %v", err)
		}
	}

	projects, err := db.GetProjects()
	if err != nil {
		t.Fatalf("Failed to get projects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("Expected 1 project, got %d", len(projects))
	}
	p := projects[0]
	if p.Spent != 250 {
		t.Errorf("Expected spent 250, got %v", p.Spent)
	}
	if p.TotalHours != 2 {
		t.Errorf("Expected 2 hours, got %v", p.TotalHours)
	}
	if !p.OverBudget() {
		t.Error("Expected project to be over budget")
	}
}

func TestProjectRateUpdateKeepsEntrySnapshots(t *testing.T) {
	db := openTestDB(t)

	project, err := db.CreateProject(model.Project{Name: "Acme", HourlyRate: 100, Billable: true})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	start := time.Now().Add(-time.Hour).Truncate(time.Second)
	end := start.Add(time.Hour)
	entry, err := db.CreateEntry(&model.TimeEntry{
		Title: "work", ProjectID: &project.ID, StartTime: start, EndTime: &end,
		DurationSeconds: 3600, DurationHours: 1, IsBillable: true,
		HourlyRate: 100, BillableAmount: 100, Status: model.StatusStopped,
	})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	if err := db.UpdateProjectRate(project.ID, 200); err != nil {
		t.Fatalf("Failed to update rate: %v", err)
	}

	updated, err := db.GetProject(project.ID)
	if err != nil {
		t.Fatalf("Failed to get project: %v", err)
	}
	if updated.HourlyRate != 200 {
		t.Errorf("Expected rate 200, got %v", updated.HourlyRate)
	}

	// The entry keeps the rate it was created with
	got, err := db.GetEntry(entry.ID)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if got.HourlyRate != 100 || got.BillableAmount != 100 {
		t.Errorf("Entry snapshot changed: rate %v amount %v", got.HourlyRate, got.BillableAmount)
	}
}

func TestArchivedProjectsHidden(t *testing.T) {
	db := openTestDB(t)

	project, err := db.CreateProject(model.Project{Name: "Old gig", HourlyRate: 80, Billable: true})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	if err := db.UpdateProjectStatus(project.ID, model.ProjectArchived); err != nil {
		t.Fatalf("Failed to archive: %v", err)
	}

	projects, err := db.GetProjects()
	if err != nil {
		t.Fatalf("Failed to get projects: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("Expected archived project hidden, got %d", len(projects))
	}

	// Direct lookup still works so old entries keep their attribution
	got, err := db.GetProject(project.ID)
	if err != nil {
		t.Fatalf("Failed to get project: %v", err)
	}
	if got == nil || got.Status != model.ProjectArchived {
		t.Errorf("Expected archived project by id, got %+v", got)
	}
}

func TestTagCatalog(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.CreateTag("urgent", ""); err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}
	design, err := db.CreateTag("design", "#f28fad")
	if err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}

	tags, err := db.GetTags()
	if err != nil {
		t.Fatalf("Failed to get tags: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "design" {
		t.Errorf("Expected 2 tags ordered by name, got %+v", tags)
	}

	entry, err := db.CreateEntry(&model.TimeEntry{
		Title: "tagged", StartTime: time.Now(), Status: model.StatusStopped,
	})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}
	if err := db.AddEntryTag(entry.ID, design.ID); err != nil {
		t.Fatalf("Failed to add tag: %v", err)
	}

	// Deleting the tag cascades to its entry associations
	if err := db.DeleteTag(design.ID); err != nil {
		t.Fatalf("Failed to delete tag: %v", err)
	}
	got, err := db.GetEntry(entry.ID)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("Expected tag association removed, got %+v", got.Tags)
	}
}

func TestEntryTags(t *testing.T) {
	db := openTestDB(t)

	entry, err := db.CreateEntry(&model.TimeEntry{
		Title: "tagged work", StartTime: time.Now(), Status: model.StatusStopped,
	})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	design, err := db.CreateTag("design", "#f28fad")
	if err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}
	if err := db.AddEntryTag(entry.ID, design.ID); err != nil {
		t.Fatalf("Failed to add tag: %v", err)
	}
	// Adding twice is a no-op
	if err := db.AddEntryTag(entry.ID, design.ID); err != nil {
		t.Fatalf("Failed on duplicate add: %v", err)
	}

	got, err := db.GetEntry(entry.ID)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "design" {
		t.Errorf("Tag load mismatch: %+v", got.Tags)
	}

	if err := db.RemoveEntryTag(entry.ID, design.ID); err != nil {
		t.Fatalf("Failed to remove tag: %v", err)
	}
	got, err = db.GetEntry(entry.ID)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("Expected no tags, got %+v", got.Tags)
	}
}
