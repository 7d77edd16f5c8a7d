package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotbook/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, FullName: "Test User", PasswordHash: "x"}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := &models.User{Email: "a@example.com", FullName: "A", PasswordHash: "x"}
	require.NoError(t, db.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	dup := &models.User{Email: "a@example.com", FullName: "B", PasswordHash: "y"}
	assert.ErrorIs(t, db.CreateUser(ctx, dup), ErrEmailTaken)
}

func TestGetUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "a@example.com")

	byEmail, err := db.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", byID.Email)

	_, err = db.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEventType_SlugUniquePerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	first := &models.EventType{UserID: alice.ID, Title: "Tech Interview", Slug: "tech-interview", DurationMinutes: 30, IsActive: true}
	require.NoError(t, db.CreateEventType(ctx, first))

	dup := &models.EventType{UserID: alice.ID, Title: "Other", Slug: "tech-interview", DurationMinutes: 60, IsActive: true}
	assert.ErrorIs(t, db.CreateEventType(ctx, dup), ErrSlugTaken)

	// A different interviewer may reuse the slug.
	other := &models.EventType{UserID: bob.ID, Title: "Tech Interview", Slug: "tech-interview", DurationMinutes: 45, IsActive: true}
	assert.NoError(t, db.CreateEventType(ctx, other))
}

func TestGetActiveEventTypeBySlug(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "a@example.com")

	inactive := &models.EventType{UserID: u.ID, Title: "Old", Slug: "screening", DurationMinutes: 30, IsActive: false}
	require.NoError(t, db.CreateEventType(ctx, inactive))

	_, err := db.GetActiveEventTypeBySlug(ctx, "screening")
	assert.ErrorIs(t, err, ErrNotFound)

	active := &models.EventType{UserID: u.ID, Title: "Screening", Slug: "screening-2", DurationMinutes: 30, IsActive: true, Description: "intro call"}
	require.NoError(t, db.CreateEventType(ctx, active))

	got, err := db.GetActiveEventTypeBySlug(ctx, "screening-2")
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)
	assert.Equal(t, "intro call", got.Description)
}

func TestReplaceAvailability(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "a@example.com")

	first := []models.AvailabilityWindow{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: 1, StartTime: "13:00", EndTime: "17:00"},
		{DayOfWeek: 3, StartTime: "10:00", EndTime: "16:00"},
	}
	require.NoError(t, db.ReplaceAvailability(ctx, u.ID, first))

	got, err := db.ListAvailability(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "09:00", got[0].StartTime)

	// Replace discards the previous set entirely.
	second := []models.AvailabilityWindow{
		{DayOfWeek: 5, StartTime: "08:00", EndTime: "11:00"},
	}
	require.NoError(t, db.ReplaceAvailability(ctx, u.ID, second))

	got, err = db.ListAvailability(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].DayOfWeek)

	// Empty set clears the schedule.
	require.NoError(t, db.ReplaceAvailability(ctx, u.ID, nil))
	got, err = db.ListAvailability(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListAvailabilityForWeekday(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "a@example.com")

	require.NoError(t, db.ReplaceAvailability(ctx, u.ID, []models.AvailabilityWindow{
		{DayOfWeek: 1, StartTime: "13:00", EndTime: "17:00"},
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "12:00"},
	}))

	got, err := db.ListAvailabilityForWeekday(ctx, u.ID, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "09:00", got[0].StartTime)
	assert.Equal(t, "13:00", got[1].StartTime)
}

func testBooking(u *models.User, e *models.EventType, ref string, start time.Time) *models.Booking {
	return &models.Booking{
		Reference:      ref,
		EventTypeID:    e.ID,
		InterviewerID:  u.ID,
		CandidateName:  "Candidate",
		CandidateEmail: "cand@example.com",
		StartTime:      start,
		EndTime:        start.Add(30 * time.Minute),
	}
}

func TestCreateBooking_ConflictOnSameSlot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "a@example.com")
	e := &models.EventType{UserID: u.ID, Title: "Tech", Slug: "tech", DurationMinutes: 30, IsActive: true}
	require.NoError(t, db.CreateEventType(ctx, e))

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	first := testBooking(u, e, "ref-1", start)
	require.NoError(t, db.CreateBooking(ctx, first))
	assert.Equal(t, models.StatusConfirmed, first.Status)
	assert.NotZero(t, first.ID)

	// Same interval loses.
	assert.ErrorIs(t, db.CreateBooking(ctx, testBooking(u, e, "ref-2", start)), ErrSlotTaken)

	// Overlapping interval loses too.
	overlapping := testBooking(u, e, "ref-3", start.Add(15*time.Minute))
	assert.ErrorIs(t, db.CreateBooking(ctx, overlapping), ErrSlotTaken)

	// Back-to-back is fine (half-open intervals).
	adjacent := testBooking(u, e, "ref-4", start.Add(30*time.Minute))
	assert.NoError(t, db.CreateBooking(ctx, adjacent))
}

func TestCancelBooking_FreesSlot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "a@example.com")
	e := &models.EventType{UserID: u.ID, Title: "Tech", Slug: "tech", DurationMinutes: 30, IsActive: true}
	require.NoError(t, db.CreateEventType(ctx, e))

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	b := testBooking(u, e, "ref-1", start)
	require.NoError(t, db.CreateBooking(ctx, b))

	require.NoError(t, db.CancelBooking(ctx, b.ID, u.ID))

	// Cancelled bookings stop blocking the interval.
	assert.NoError(t, db.CreateBooking(ctx, testBooking(u, e, "ref-2", start)))

	// Cancelling twice, or as another interviewer, fails.
	assert.ErrorIs(t, db.CancelBooking(ctx, b.ID, u.ID), ErrNotFound)
	other := createTestUser(t, db, "b@example.com")
	assert.ErrorIs(t, db.CancelBooking(ctx, b.ID+1, other.ID), ErrNotFound)
}

func TestListConfirmedBookingsInRange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "a@example.com")
	e := &models.EventType{UserID: u.ID, Title: "Tech", Slug: "tech", DurationMinutes: 30, IsActive: true}
	require.NoError(t, db.CreateEventType(ctx, e))

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	inside := testBooking(u, e, "ref-1", day.Add(10*time.Hour))
	require.NoError(t, db.CreateBooking(ctx, inside))
	nextDay := testBooking(u, e, "ref-2", day.Add(34*time.Hour))
	require.NoError(t, db.CreateBooking(ctx, nextDay))

	cancelled := testBooking(u, e, "ref-3", day.Add(11*time.Hour))
	require.NoError(t, db.CreateBooking(ctx, cancelled))
	require.NoError(t, db.CancelBooking(ctx, cancelled.ID, u.ID))

	got, err := db.ListConfirmedBookingsInRange(ctx, u.ID, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ref-1", got[0].Reference)
}

func TestBackupAndCleanup(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	dest := filepath.Join(dir, "snapshot.db")
	require.NoError(t, db.Backup(dest))
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// Age the snapshot past the retention window.
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(dest, old, old))

	deleted, err := db.CleanupBackups(dir, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}
