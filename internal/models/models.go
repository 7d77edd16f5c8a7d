package models

import "time"

// Booking statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// User is an interviewer account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// EventType is a bookable event an interviewer offers.
// Created from the dashboard; read-only afterwards.
type EventType struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Slug            string    `json:"slug"`
	DurationMinutes int       `json:"duration_minutes"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Duration returns the event length.
func (e *EventType) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// AvailabilityWindow is a weekly recurring window of bookable hours.
// DayOfWeek follows time.Weekday: 0 = Sunday .. 6 = Saturday.
// StartTime/EndTime are "HH:MM" wall-clock strings.
type AvailabilityWindow struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Booking is a confirmed (or cancelled) reservation of a slot.
type Booking struct {
	ID             int64     `json:"id"`
	Reference      string    `json:"reference"`
	EventTypeID    int64     `json:"event_type_id"`
	InterviewerID  int64     `json:"interviewer_id"`
	CandidateName  string    `json:"candidate_name"`
	CandidateEmail string    `json:"candidate_email"`
	Notes          string    `json:"notes,omitempty"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Duration returns the booked length.
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// IsConfirmed reports whether the booking still blocks its slot.
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// IsUpcoming reports whether the booking starts after now.
func (b *Booking) IsUpcoming(now time.Time) bool {
	return b.StartTime.After(now)
}

// Overlaps reports whether [start, end) intersects the booking interval.
// Half-open on both sides: touching boundaries do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndTime) && b.StartTime.Before(end)
}
