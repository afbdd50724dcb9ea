package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mbaren/tempo/internal/model"
)

// GetProjects returns all non-archived projects with spend and hour totals.
// Spent is an aggregate over the project's finalized entries, so a project's
// running total always reflects the entries as stored.
func (db *DB) GetProjects() ([]model.Project, error) {
	rows, err := db.Query(`
		SELECT p.id, p.name, p.client, p.color, p.hourly_rate, p.billable,
		       p.budget, p.status, p.created_at, p.updated_at,
		       (SELECT COALESCE(SUM(billable_amount), 0) FROM time_entries
		        WHERE project_id = p.id AND status != 'running') as spent,
		       (SELECT COALESCE(SUM(duration_hours), 0) FROM time_entries
		        WHERE project_id = p.id AND status != 'running') as total_hours,
		       (SELECT COUNT(*) FROM time_entries WHERE project_id = p.id) as entry_count
		FROM projects p
		WHERE p.status != 'archived'
		ORDER BY p.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows, true)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// GetProject returns a single project by id, or nil when it does not exist
func (db *DB) GetProject(id string) (*model.Project, error) {
	row := db.QueryRow(`
		SELECT id, name, client, color, hourly_rate, billable,
		       budget, status, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)

	p, err := scanProject(row, false)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProject creates a new project
func (db *DB) CreateProject(p model.Project) (*model.Project, error) {
	p.ID = uuid.New().String()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = model.ProjectActive
	}

	_, err := db.Exec(`
		INSERT INTO projects (id, name, client, color, hourly_rate, billable,
			budget, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Client, nullString(p.Color), p.HourlyRate,
		boolInt(p.Billable), p.Budget, string(p.Status), now, now)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// UpdateProjectRate changes a project's hourly rate. Existing entries keep
// their snapshotted rate.
func (db *DB) UpdateProjectRate(id string, rate float64) error {
	_, err := db.Exec(`UPDATE projects SET hourly_rate = ?, updated_at = ? WHERE id = ?`,
		rate, time.Now(), id)
	return err
}

// UpdateProjectStatus changes a project's status
func (db *DB) UpdateProjectStatus(id string, status model.ProjectStatus) error {
	_, err := db.Exec(`UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now(), id)
	return err
}

func scanProject(s scanner, withTotals bool) (*model.Project, error) {
	var p model.Project
	var color *string
	var billable int
	var status string

	dest := []interface{}{
		&p.ID, &p.Name, &p.Client, &color, &p.HourlyRate, &billable,
		&p.Budget, &status, &p.CreatedAt, &p.UpdatedAt,
	}
	if withTotals {
		dest = append(dest, &p.Spent, &p.TotalHours, &p.EntryCount)
	}

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	if color != nil {
		p.Color = *color
	}
	p.Billable = billable == 1
	p.Status = model.ProjectStatus(status)

	return &p, nil
}
