package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotbook/internal/models"
)

// Monday 2026-03-02.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func window(day int, start, end string) models.AvailabilityWindow {
	return models.AvailabilityWindow{DayOfWeek: day, StartTime: start, EndTime: end}
}

func confirmed(start, end time.Time) models.Booking {
	return models.Booking{StartTime: start, EndTime: end, Status: models.StatusConfirmed}
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func TestComputeOpenSlots_NoWindowsForWeekday(t *testing.T) {
	got := ComputeOpenSlots(monday, 30, nil, nil, at(8, 0))
	assert.Empty(t, got)
}

func TestComputeOpenSlots_FullMonday(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "17:00")}
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	got := ComputeOpenSlots(monday, 30, windows, nil, now)

	require.Len(t, got, 16)
	assert.Equal(t, at(9, 0), got[0])
	assert.Equal(t, at(16, 30), got[15])
}

func TestComputeOpenSlots_BookedSlotRemoved(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "17:00")}
	bookings := []models.Booking{confirmed(at(10, 0), at(10, 30))}

	got := ComputeOpenSlots(monday, 30, windows, bookings, at(8, 0))

	assert.NotContains(t, got, at(10, 0))
	assert.Contains(t, got, at(9, 30))
	assert.Contains(t, got, at(10, 30))
	assert.Len(t, got, 15)
}

func TestComputeOpenSlots_45MinuteEventStaysOnGrid(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "17:00")}

	got := ComputeOpenSlots(monday, 45, windows, nil, at(8, 0))

	require.NotEmpty(t, got)
	for _, s := range got {
		assert.Contains(t, []int{0, 30}, s.Minute(), "slot %v not on the 30-minute grid", s)
	}
	// 16:00 + 45m = 16:45 fits; 16:30 + 45m = 17:15 does not.
	assert.Equal(t, at(16, 0), got[len(got)-1])
	assert.Len(t, got, 15)
}

func TestComputeOpenSlots_OverlappingWindowsDeduplicated(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(1, "09:00", "12:00"),
		window(1, "11:00", "15:00"),
	}

	got := ComputeOpenSlots(monday, 30, windows, nil, at(8, 0))

	count := 0
	for _, s := range got {
		if s.Equal(at(11, 0)) {
			count++
		}
	}
	assert.Equal(t, 1, count, "11:00 must appear exactly once")

	// 09:00..14:30 inclusive on the half-hour grid.
	assert.Len(t, got, 12)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Before(got[i]), "output must be strictly ascending")
	}
}

func TestComputeOpenSlots_PastSlotsSuppressedToday(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "17:00")}
	now := at(10, 15)

	got := ComputeOpenSlots(monday, 30, windows, nil, now)

	require.NotEmpty(t, got)
	assert.Equal(t, at(10, 30), got[0])
	for _, s := range got {
		assert.True(t, s.After(now))
	}

	// A slot starting exactly at now is also suppressed.
	got = ComputeOpenSlots(monday, 30, windows, nil, at(10, 30))
	assert.Equal(t, at(11, 0), got[0])
}

func TestComputeOpenSlots_OtherDayIgnoresNow(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "10:00")}
	// now is a later instant on a different day
	now := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)

	got := ComputeOpenSlots(monday, 30, windows, nil, now)
	assert.Len(t, got, 2)
}

func TestComputeOpenSlots_InvalidWindowSkipped(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(1, "17:00", "09:00"), // inverted
		window(1, "not-a-time", "12:00"),
		window(1, "10:00", "11:00"), // still honored
	}

	got := ComputeOpenSlots(monday, 30, windows, nil, at(8, 0))
	assert.Equal(t, []time.Time{at(10, 0), at(10, 30)}, got)
}

func TestComputeOpenSlots_HalfOpenBoundaries(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "11:00")}
	bookings := []models.Booking{confirmed(at(10, 0), at(10, 30))}

	got := ComputeOpenSlots(monday, 30, windows, bookings, at(8, 0))

	// A slot ending exactly when the booking starts, and one starting
	// exactly when it ends, are both allowed.
	assert.Contains(t, got, at(9, 30))
	assert.Contains(t, got, at(10, 30))
	assert.NotContains(t, got, at(10, 0))
}

func TestComputeOpenSlots_CancelledBookingDoesNotBlock(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "10:00", "11:00")}
	bookings := []models.Booking{{
		StartTime: at(10, 0),
		EndTime:   at(10, 30),
		Status:    models.StatusCancelled,
	}}

	got := ComputeOpenSlots(monday, 30, windows, bookings, at(8, 0))
	assert.Contains(t, got, at(10, 0))
}

func TestComputeOpenSlots_ShortWindowYieldsFewerSlots(t *testing.T) {
	// 10:00-10:50 fits one 30-minute slot; no rounding adjustment.
	windows := []models.AvailabilityWindow{window(1, "10:00", "10:50")}

	got := ComputeOpenSlots(monday, 30, windows, nil, at(8, 0))
	assert.Equal(t, []time.Time{at(10, 0)}, got)
}

func TestComputeOpenSlots_Idempotent(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(1, "09:00", "12:00"),
		window(1, "11:00", "15:00"),
	}
	bookings := []models.Booking{confirmed(at(11, 30), at(12, 0))}

	first := ComputeOpenSlots(monday, 30, windows, bookings, at(8, 0))
	second := ComputeOpenSlots(monday, 30, windows, bookings, at(8, 0))
	assert.Equal(t, first, second)
}

func TestComputeOpenSlots_SlotNeverOverrunsWindow(t *testing.T) {
	tests := []struct {
		name     string
		end      string
		duration int
	}{
		{"exact multiple", "12:00", 30},
		{"uneven window", "12:20", 30},
		{"long event", "12:00", 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := []models.AvailabilityWindow{window(1, "09:00", tt.end)}
			windowEnd, ok := timeOnDate(monday, tt.end)
			require.True(t, ok)

			got := ComputeOpenSlots(monday, tt.duration, windows, nil, at(8, 0))
			for _, s := range got {
				slotEnd := s.Add(time.Duration(tt.duration) * time.Minute)
				assert.False(t, slotEnd.After(windowEnd), "slot %v overruns window end %v", s, windowEnd)
			}
		})
	}
}

func TestIsDayAvailable(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "17:00")}
	today := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	// Today itself is selectable even late in the day.
	assert.True(t, IsDayAvailable(monday, windows, today))

	// Past days are not.
	assert.False(t, IsDayAvailable(monday.AddDate(0, 0, -7), windows, today))

	// A weekday with no windows is not.
	assert.False(t, IsDayAvailable(monday.AddDate(0, 0, 1), windows, today))

	// A future Monday is.
	assert.True(t, IsDayAvailable(monday.AddDate(0, 0, 7), windows, today))
}

func TestWindowsForWeekday(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(1, "09:00", "12:00"),
		window(2, "09:00", "12:00"),
		window(1, "13:00", "17:00"),
	}

	got := WindowsForWeekday(windows, monday)
	require.Len(t, got, 2)
	for _, w := range got {
		assert.Equal(t, 1, w.DayOfWeek)
	}
}
