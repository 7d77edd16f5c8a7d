package database

import (
	"context"
	"fmt"
	"time"

	"slotbook/internal/models"
)

// ReplaceAvailability swaps a user's entire weekly window set in a single
// transaction: either the whole new set is stored or the old set remains.
func (db *DB) ReplaceAvailability(ctx context.Context, userID int64, windows []models.AvailabilityWindow) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace availability: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM availability_windows WHERE user_id = ?", userID,
	); err != nil {
		return fmt.Errorf("clear availability: %w", err)
	}

	now := time.Now()
	for _, w := range windows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO availability_windows (user_id, day_of_week, start_time, end_time, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			userID, w.DayOfWeek, w.StartTime, w.EndTime, now,
		); err != nil {
			return fmt.Errorf("insert window: %w", err)
		}
	}

	return tx.Commit()
}

// ListAvailability returns all weekly windows for a user ordered by day
// and start time.
func (db *DB) ListAvailability(ctx context.Context, userID int64) ([]models.AvailabilityWindow, error) {
	return db.queryWindows(ctx, `
		SELECT id, user_id, day_of_week, start_time, end_time
		FROM availability_windows
		WHERE user_id = ?
		ORDER BY day_of_week, start_time, id`,
		userID,
	)
}

// ListAvailabilityForWeekday returns a user's windows for one weekday.
func (db *DB) ListAvailabilityForWeekday(ctx context.Context, userID int64, weekday int) ([]models.AvailabilityWindow, error) {
	return db.queryWindows(ctx, `
		SELECT id, user_id, day_of_week, start_time, end_time
		FROM availability_windows
		WHERE user_id = ? AND day_of_week = ?
		ORDER BY start_time, id`,
		userID, weekday,
	)
}

func (db *DB) queryWindows(ctx context.Context, query string, args ...any) ([]models.AvailabilityWindow, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []models.AvailabilityWindow
	for rows.Next() {
		var w models.AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.UserID, &w.DayOfWeek, &w.StartTime, &w.EndTime); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
