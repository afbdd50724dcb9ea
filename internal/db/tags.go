package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/mbaren/tempo/internal/model"
)

// GetTags returns all tags ordered by name
func (db *DB) GetTags() ([]model.Tag, error) {
	rows, err := db.Query(`SELECT id, name, color, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		var color *string
		if err := rows.Scan(&t.ID, &t.Name, &color, &t.CreatedAt); err != nil {
			return nil, err
		}
		if color != nil {
			t.Color = *color
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CreateTag creates a new tag
func (db *DB) CreateTag(name, color string) (*model.Tag, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := db.Exec(`
		INSERT INTO tags (id, name, color, created_at) VALUES (?, ?, ?, ?)
	`, id, name, nullString(color), now)
	if err != nil {
		return nil, err
	}

	return &model.Tag{ID: id, Name: name, Color: color, CreatedAt: now}, nil
}

// DeleteTag deletes a tag; entry associations cascade
func (db *DB) DeleteTag(id string) error {
	_, err := db.Exec(`DELETE FROM tags WHERE id = ?`, id)
	return err
}

// AddEntryTag associates a tag with an entry
func (db *DB) AddEntryTag(entryID, tagID string) error {
	_, err := db.Exec(`
		INSERT OR IGNORE INTO entry_tags (entry_id, tag_id) VALUES (?, ?)
	`, entryID, tagID)
	return err
}

// RemoveEntryTag removes a tag association from an entry
func (db *DB) RemoveEntryTag(entryID, tagID string) error {
	_, err := db.Exec(`
		DELETE FROM entry_tags WHERE entry_id = ? AND tag_id = ?
	`, entryID, tagID)
	return err
}

// GetEntryTags returns the tags attached to an entry
func (db *DB) GetEntryTags(entryID string) ([]model.Tag, error) {
	rows, err := db.Query(`
		SELECT t.id, t.name, t.color, t.created_at
		FROM tags t
		JOIN entry_tags et ON t.id = et.tag_id
		WHERE et.entry_id = ?
		ORDER BY t.name
	`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		var color *string
		if err := rows.Scan(&t.ID, &t.Name, &color, &t.CreatedAt); err != nil {
			return nil, err
		}
		if color != nil {
			t.Color = *color
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// loadEntryTags fills an entry's Tags relationship
func (db *DB) loadEntryTags(e *model.TimeEntry) error {
	tags, err := db.GetEntryTags(e.ID)
	if err != nil {
		return err
	}
	e.Tags = tags
	return nil
}
