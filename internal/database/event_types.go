package database

import (
	"context"
	"database/sql"
	"time"

	"slotbook/internal/models"
)

// CreateEventType inserts a new event type. Returns ErrSlugTaken when the
// owner already uses the slug.
func (db *DB) CreateEventType(ctx context.Context, e *models.EventType) error {
	now := time.Now()
	res, err := db.ExecContext(ctx,
		`INSERT INTO event_types (user_id, title, description, slug, duration_minutes, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Title, e.Description, e.Slug, e.DurationMinutes, e.IsActive, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	e.CreatedAt = now
	return nil
}

// ListEventTypes returns all event types owned by userID, newest first.
func (db *DB) ListEventTypes(ctx context.Context, userID int64) ([]models.EventType, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, title, description, slug, duration_minutes, is_active, created_at
		FROM event_types
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.EventType
	for rows.Next() {
		e, err := scanEventType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *e)
	}
	return types, rows.Err()
}

// GetActiveEventTypeBySlug resolves a public booking link. Only active
// event types are considered; the oldest match wins when several
// interviewers share a slug.
func (db *DB) GetActiveEventTypeBySlug(ctx context.Context, slug string) (*models.EventType, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, slug, duration_minutes, is_active, created_at
		FROM event_types
		WHERE slug = ? AND is_active = 1
		ORDER BY created_at ASC, id ASC
		LIMIT 1`,
		slug,
	)

	var e models.EventType
	var description sql.NullString
	err := row.Scan(&e.ID, &e.UserID, &e.Title, &description, &e.Slug, &e.DurationMinutes, &e.IsActive, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Description = description.String
	return &e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEventType(row rowScanner) (*models.EventType, error) {
	var e models.EventType
	var description sql.NullString
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &description, &e.Slug, &e.DurationMinutes, &e.IsActive, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Description = description.String
	return &e, nil
}
