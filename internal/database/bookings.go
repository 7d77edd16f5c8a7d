package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"slotbook/internal/models"
)

// CreateBooking persists a confirmed booking. The overlap check runs
// inside the same transaction as the insert, so of two racing submissions
// for one interval exactly one commits; the loser gets ErrSlotTaken.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create booking: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE interviewer_id = ?
		AND start_time < ? AND end_time > ?
		AND status = ?`,
		b.InterviewerID, b.EndTime, b.StartTime, models.StatusConfirmed,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	if count > 0 {
		return ErrSlotTaken
	}

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (reference, event_type_id, interviewer_id, candidate_name,
			candidate_email, notes, start_time, end_time, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Reference, b.EventTypeID, b.InterviewerID, b.CandidateName,
		b.CandidateEmail, b.Notes, b.StartTime, b.EndTime, models.StatusConfirmed, now,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}

	b.ID = id
	b.Status = models.StatusConfirmed
	b.CreatedAt = now
	return nil
}

// ListBookingsForInterviewer returns all bookings owned by userID ordered
// by start time.
func (db *DB) ListBookingsForInterviewer(ctx context.Context, userID int64) ([]models.Booking, error) {
	return db.queryBookings(ctx, `
		SELECT id, reference, event_type_id, interviewer_id, candidate_name,
		       candidate_email, notes, start_time, end_time, status, created_at
		FROM bookings
		WHERE interviewer_id = ?
		ORDER BY start_time`,
		userID,
	)
}

// ListConfirmedBookingsInRange returns confirmed bookings whose interval
// intersects [from, to).
func (db *DB) ListConfirmedBookingsInRange(ctx context.Context, interviewerID int64, from, to time.Time) ([]models.Booking, error) {
	return db.queryBookings(ctx, `
		SELECT id, reference, event_type_id, interviewer_id, candidate_name,
		       candidate_email, notes, start_time, end_time, status, created_at
		FROM bookings
		WHERE interviewer_id = ?
		AND start_time < ? AND end_time > ?
		AND status = ?
		ORDER BY start_time`,
		interviewerID, to, from, models.StatusConfirmed,
	)
}

// CancelBooking flips a confirmed booking to cancelled. Owner-scoped:
// only the interviewer the booking belongs to may cancel it.
func (db *DB) CancelBooking(ctx context.Context, id, interviewerID int64) error {
	res, err := db.ExecContext(ctx, `
		UPDATE bookings SET status = ?
		WHERE id = ? AND interviewer_id = ? AND status = ?`,
		models.StatusCancelled, id, interviewerID, models.StatusConfirmed,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var notes sql.NullString
	err := row.Scan(&b.ID, &b.Reference, &b.EventTypeID, &b.InterviewerID, &b.CandidateName,
		&b.CandidateEmail, &notes, &b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Notes = notes.String
	return &b, nil
}
