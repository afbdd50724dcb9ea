package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mbaren/tempo/internal/model"
	"github.com/mbaren/tempo/internal/track"
)

const entryColumns = `id, title, description, project_id, start_time, end_time,
       duration_seconds, duration_hours, is_billable, hourly_rate,
       billable_amount, status, rejection_reason, created_at, updated_at`

// CreateEntry inserts a new time entry, assigning its id.
func (db *DB) CreateEntry(e *model.TimeEntry) (*model.TimeEntry, error) {
	stored := *e
	stored.ID = uuid.New().String()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO time_entries (id, title, description, project_id, start_time, end_time,
			duration_seconds, duration_hours, is_billable, hourly_rate,
			billable_amount, status, rejection_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, stored.ID, stored.Title, nullString(stored.Description), stored.ProjectID,
		stored.StartTime, stored.EndTime, stored.DurationSeconds, stored.DurationHours,
		boolInt(stored.IsBillable), stored.HourlyRate, stored.BillableAmount,
		string(stored.Status), nullString(stored.RejectionReason), now, now)
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// GetEntry returns a single entry by id, or nil when it does not exist.
func (db *DB) GetEntry(id string) (*model.TimeEntry, error) {
	row := db.QueryRow(`SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := db.loadEntryTags(e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEntry persists the full entry row.
func (db *DB) UpdateEntry(e *model.TimeEntry) (*model.TimeEntry, error) {
	stored := *e
	stored.UpdatedAt = time.Now()

	_, err := db.Exec(`
		UPDATE time_entries
		SET title = ?, description = ?, project_id = ?, start_time = ?, end_time = ?,
		    duration_seconds = ?, duration_hours = ?, is_billable = ?, hourly_rate = ?,
		    billable_amount = ?, status = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ?
	`, stored.Title, nullString(stored.Description), stored.ProjectID,
		stored.StartTime, stored.EndTime, stored.DurationSeconds, stored.DurationHours,
		boolInt(stored.IsBillable), stored.HourlyRate, stored.BillableAmount,
		string(stored.Status), nullString(stored.RejectionReason), stored.UpdatedAt,
		stored.ID)
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// DeleteEntry removes an entry; entry_tags rows cascade.
func (db *DB) DeleteEntry(id string) error {
	_, err := db.Exec(`DELETE FROM time_entries WHERE id = ?`, id)
	return err
}

// ListEntries returns entries matching the filter, most recent first.
func (db *DB) ListEntries(filter track.EntryFilter) ([]model.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, filter.ProjectID)
	}
	if !filter.Since.IsZero() {
		query += ` AND start_time >= ?`
		args = append(args, filter.Since)
	}
	query += ` ORDER BY start_time DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Tags load after the main rows are closed; nested queries during
	// iteration deadlock with SetMaxOpenConns(1)
	for i := range entries {
		if err := db.loadEntryTags(&entries[i]); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*model.TimeEntry, error) {
	var e model.TimeEntry
	var description, projectID, rejection *string
	var endTime sql.NullTime
	var billable int
	var status string

	err := s.Scan(
		&e.ID, &e.Title, &description, &projectID, &e.StartTime, &endTime,
		&e.DurationSeconds, &e.DurationHours, &billable, &e.HourlyRate,
		&e.BillableAmount, &status, &rejection, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description != nil {
		e.Description = *description
	}
	e.ProjectID = projectID
	if endTime.Valid {
		t := endTime.Time
		e.EndTime = &t
	}
	e.IsBillable = billable == 1
	e.Status = model.Status(status)
	if !e.Status.Valid() {
		return nil, fmt.Errorf("entry %s has unknown status %q", e.ID, status)
	}
	if rejection != nil {
		e.RejectionReason = *rejection
	}

	return &e, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
