package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"slotbook/internal/cache"
	"slotbook/internal/database"
	"slotbook/internal/metrics"
	"slotbook/internal/models"
	"slotbook/internal/slots"
)

const dateLayout = "2006-01-02"

type bookingDay struct {
	Date      string
	Label     string
	Available bool
	Selected  bool
}

type bookingPageData struct {
	Event        *models.EventType
	Interviewer  string
	Days         []bookingDay
	SelectedDate string
	Slots        []slotOption
	Error        string
	Name         string
	Email        string
	Notes        string
}

type slotOption struct {
	Value string
	Label string
}

func (s *Server) handleBookingPage(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking_page")

	event, interviewer, ok := s.lookupBookingPage(w, r)
	if !ok {
		return
	}

	data, err := s.buildBookingPage(r, event, interviewer, r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, "book.html", *data)
}

// lookupBookingPage resolves the slug to an active booking page. Inactive
// and unknown slugs are indistinguishable to the visitor.
func (s *Server) lookupBookingPage(w http.ResponseWriter, r *http.Request) (*models.EventType, string, bool) {
	slug := mux.Vars(r)["slug"]

	event, err := s.db.GetActiveEventTypeBySlug(r.Context(), slug)
	if errors.Is(err, database.ErrNotFound) {
		s.renderStatus(w, http.StatusNotFound, "not_found.html", nil)
		return nil, "", false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, "", false
	}

	owner, err := s.db.GetUserByID(r.Context(), event.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, "", false
	}
	return event, owner.FullName, true
}

func (s *Server) buildBookingPage(r *http.Request, event *models.EventType, interviewer, selectedDate string) (*bookingPageData, error) {
	ctx := r.Context()
	now := time.Now()

	windows, err := s.db.ListAvailability(ctx, event.UserID)
	if err != nil {
		return nil, err
	}

	data := &bookingPageData{Event: event, Interviewer: interviewer}
	for i := 0; i < s.cfg.MaxAdvanceDays(); i++ {
		day := now.AddDate(0, 0, i)
		data.Days = append(data.Days, bookingDay{
			Date:      day.Format(dateLayout),
			Label:     day.Format("Mon Jan 2"),
			Available: slots.IsDayAvailable(day, windows, now),
		})
	}

	if selectedDate == "" {
		return data, nil
	}
	date, err := time.ParseInLocation(dateLayout, selectedDate, now.Location())
	if err != nil {
		return data, nil
	}

	data.SelectedDate = selectedDate
	for i := range data.Days {
		data.Days[i].Selected = data.Days[i].Date == selectedDate
	}

	starts, err := s.openSlots(ctx, event, date, now)
	if err != nil {
		return nil, err
	}
	for _, t := range starts {
		data.Slots = append(data.Slots, slotOption{
			Value: t.Format(time.RFC3339),
			Label: t.Format("15:04"),
		})
	}
	return data, nil
}

// openSlots computes the bookable start times for one day, fronted by the
// optional Redis cache. Cached entries hold RFC3339 strings so a stale or
// foreign entry decodes as a miss, never as garbage times.
func (s *Server) openSlots(ctx context.Context, event *models.EventType, date, now time.Time) ([]time.Time, error) {
	key := cache.SlotsKey(event.Slug, date.Format(dateLayout))

	var cached []string
	if s.cache.Get(ctx, key, &cached) {
		out := make([]time.Time, 0, len(cached))
		for _, v := range cached {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				out = nil
				break
			}
			out = append(out, t)
		}
		if out != nil {
			return out, nil
		}
	}

	windows, err := s.db.ListAvailabilityForWeekday(ctx, event.UserID, int(date.Weekday()))
	if err != nil {
		return nil, err
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	bookings, err := s.db.ListConfirmedBookingsInRange(ctx, event.UserID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	metrics.IncSlotComputation()
	starts := slots.ComputeOpenSlots(date, event.DurationMinutes, windows, bookings, now)

	encoded := make([]string, len(starts))
	for i, t := range starts {
		encoded[i] = t.Format(time.RFC3339)
	}
	s.cache.Set(ctx, key, encoded)
	return starts, nil
}

func (s *Server) handleBookingSubmit(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking_submit")

	if !s.limiter.Allow(clientIP(r)) {
		metrics.IncBookingCreated("rate_limited")
		http.Error(w, "too many requests, slow down", http.StatusTooManyRequests)
		return
	}

	event, interviewer, ok := s.lookupBookingPage(w, r)
	if !ok {
		return
	}

	_ = r.ParseForm()
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	notes := strings.TrimSpace(r.FormValue("notes"))
	slotValue := r.FormValue("slot")

	start, parseErr := time.Parse(time.RFC3339, slotValue)
	if name == "" || email == "" || parseErr != nil {
		metrics.IncBookingCreated("invalid")
		s.renderBookingError(w, r, event, interviewer, http.StatusBadRequest,
			"Name, email and a time slot are required.", name, email, notes, start)
		return
	}

	booking := &models.Booking{
		Reference:      uuid.NewString(),
		EventTypeID:    event.ID,
		InterviewerID:  event.UserID,
		CandidateName:  name,
		CandidateEmail: email,
		Notes:          notes,
		StartTime:      start,
		EndTime:        start.Add(event.Duration()),
	}

	if err := s.db.CreateBooking(r.Context(), booking); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncBookingCreated("conflict")
			s.cache.Invalidate(r.Context(), cache.SlotsKey(event.Slug, start.Format(dateLayout)))
			s.renderBookingError(w, r, event, interviewer, http.StatusConflict,
				"That slot was just taken. Please pick another time.", name, email, notes, start)
			return
		}
		metrics.IncBookingCreated("error")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.IncBookingCreated("ok")
	s.logger.Info().
		Str("reference", booking.Reference).
		Str("slug", event.Slug).
		Time("start", booking.StartTime).
		Msg("booking created")

	s.cache.Invalidate(r.Context(), cache.SlotsKey(event.Slug, start.Format(dateLayout)))

	q := url.Values{}
	q.Set("event", event.Title)
	q.Set("with", interviewer)
	q.Set("start", booking.StartTime.Format(time.RFC3339))
	q.Set("duration", event.Duration().String())
	q.Set("reference", booking.Reference)
	http.Redirect(w, r, "/booking-confirmed?"+q.Encode(), http.StatusSeeOther)
}

func (s *Server) renderBookingError(w http.ResponseWriter, r *http.Request, event *models.EventType, interviewer string, status int, msg, name, email, notes string, start time.Time) {
	selected := ""
	if !start.IsZero() {
		selected = start.Format(dateLayout)
	}
	data, err := s.buildBookingPage(r, event, interviewer, selected)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data.Error = msg
	data.Name = name
	data.Email = email
	data.Notes = notes
	s.renderStatus(w, status, "book.html", *data)
}

type confirmedData struct {
	Event     string
	With      string
	Start     string
	Duration  string
	Reference string
}

func (s *Server) handleBookingConfirmed(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking_confirmed")
	q := r.URL.Query()

	startLabel := q.Get("start")
	if t, err := time.Parse(time.RFC3339, startLabel); err == nil {
		startLabel = t.Format("Monday, Jan 2 2006 at 15:04")
	}

	s.render(w, "booking_confirmed.html", confirmedData{
		Event:     q.Get("event"),
		With:      q.Get("with"),
		Start:     startLabel,
		Duration:  q.Get("duration"),
		Reference: q.Get("reference"),
	})
}
