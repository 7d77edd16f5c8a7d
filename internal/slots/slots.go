// Package slots computes open bookable start times for a calendar day by
// intersecting weekly availability windows with existing bookings.
package slots

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"slotbook/internal/models"
)

// GridStep is the fixed spacing between candidate start times. It is
// independent of the event duration: a 45-minute event still starts on
// :00 or :30, never on :15.
const GridStep = 30 * time.Minute

// ComputeOpenSlots returns the ordered start instants still bookable on
// date. windows must already be filtered to date's weekday; bookings are
// the confirmed reservations that could intersect the day. now is only
// consulted when date is today, to suppress slots that already started.
//
// The function is pure: identical inputs yield identical, identically
// ordered output. A window whose start is not before its end contributes
// zero slots rather than failing the whole computation.
func ComputeOpenSlots(date time.Time, durationMinutes int, windows []models.AvailabilityWindow, bookings []models.Booking, now time.Time) []time.Time {
	if durationMinutes < 1 || len(windows) == 0 {
		return nil
	}

	duration := time.Duration(durationMinutes) * time.Minute
	today := sameDay(date, now)

	seen := make(map[int64]struct{})
	var open []time.Time

	for _, w := range windows {
		start, ok := timeOnDate(date, w.StartTime)
		if !ok {
			continue
		}
		end, ok := timeOnDate(date, w.EndTime)
		if !ok || !start.Before(end) {
			continue
		}

		for cursor := start; !cursor.Add(duration).After(end); cursor = cursor.Add(GridStep) {
			if today && !cursor.After(now) {
				continue
			}
			if booked(cursor, cursor.Add(duration), bookings) {
				continue
			}
			key := cursor.Unix()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			open = append(open, cursor)
		}
	}

	sort.Slice(open, func(i, j int) bool { return open[i].Before(open[j]) })
	return open
}

// IsDayAvailable reports whether date is selectable at the day-picker
// level: not before today, and at least one window exists for its
// weekday. A fully booked day still counts as available here; the empty
// slot list is discovered after selection.
func IsDayAvailable(date time.Time, windows []models.AvailabilityWindow, today time.Time) bool {
	if date.Before(startOfDay(today)) {
		return false
	}
	for _, w := range windows {
		if w.DayOfWeek == int(date.Weekday()) {
			return true
		}
	}
	return false
}

// WindowsForWeekday filters windows to those matching date's weekday.
func WindowsForWeekday(windows []models.AvailabilityWindow, date time.Time) []models.AvailabilityWindow {
	var out []models.AvailabilityWindow
	for _, w := range windows {
		if w.DayOfWeek == int(date.Weekday()) {
			out = append(out, w)
		}
	}
	return out
}

func booked(start, end time.Time, bookings []models.Booking) bool {
	for i := range bookings {
		if !bookings[i].IsConfirmed() {
			continue
		}
		if bookings[i].Overlaps(start, end) {
			return true
		}
	}
	return false
}

// timeOnDate places an "HH:MM" wall-clock string onto date's calendar day
// in date's location.
func timeOnDate(date time.Time, hhmm string) (time.Time, bool) {
	parts := strings.SplitN(hhmm, ":", 3)
	if len(parts) < 2 {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
