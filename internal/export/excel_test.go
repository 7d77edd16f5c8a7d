package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"slotbook/internal/models"
)

func TestWriteBookings(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	bookings := []models.Booking{
		{
			Reference:      "ref-1",
			EventTypeID:    7,
			CandidateName:  "Jamie Doe",
			CandidateEmail: "jamie@example.com",
			StartTime:      start,
			EndTime:        start.Add(45 * time.Minute),
			Status:         models.StatusConfirmed,
			Notes:          "bring portfolio",
		},
		{
			Reference:      "ref-2",
			EventTypeID:    7,
			CandidateName:  "Alex Roe",
			CandidateEmail: "alex@example.com",
			StartTime:      start.Add(time.Hour),
			EndTime:        start.Add(time.Hour + 45*time.Minute),
			Status:         models.StatusCancelled,
		},
	}
	titles := map[int64]string{7: "Technical Interview"}

	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, bookings, titles))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Bookings", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Reference", header)

	event, err := f.GetCellValue("Bookings", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Technical Interview", event)

	startCell, err := f.GetCellValue("Bookings", "E2")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02 10:00", startCell)

	status, err := f.GetCellValue("Bookings", "G3")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, status)
}

func TestWriteBookings_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
