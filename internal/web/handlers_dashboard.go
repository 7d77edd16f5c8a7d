package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"slotbook/internal/database"
	"slotbook/internal/export"
	"slotbook/internal/metrics"
	"slotbook/internal/models"
)

type dashboardData struct {
	User            *models.User
	EventTypes      []models.EventType
	Bookings        []models.Booking
	EventTitles     map[int64]string
	UpcomingCount   int
	TotalBookings   int
	TotalEventTypes int
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("dashboard")
	uid := userIDFromCtx(r)

	user, err := s.db.GetUserByID(r.Context(), uid)
	if err != nil {
		s.sessions.Clear(w)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	eventTypes, err := s.db.ListEventTypes(r.Context(), uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	bookings, err := s.db.ListBookingsForInterviewer(r.Context(), uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	titles := make(map[int64]string, len(eventTypes))
	for _, e := range eventTypes {
		titles[e.ID] = e.Title
	}

	now := time.Now()
	upcoming := 0
	for i := range bookings {
		if bookings[i].IsConfirmed() && bookings[i].IsUpcoming(now) {
			upcoming++
		}
	}

	s.render(w, "dashboard.html", dashboardData{
		User:            user,
		EventTypes:      eventTypes,
		Bookings:        bookings,
		EventTitles:     titles,
		UpcomingCount:   upcoming,
		TotalBookings:   len(bookings),
		TotalEventTypes: len(eventTypes),
	})
}

type eventTypeFormData struct {
	Error       string
	Title       string
	Slug        string
	Description string
	Duration    string
}

func (s *Server) handleNewEventType(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("event_type_new")
	if r.Method == http.MethodGet {
		s.render(w, "event_type_new.html", eventTypeFormData{Duration: "30"})
		return
	}

	_ = r.ParseForm()
	data := eventTypeFormData{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Slug:        strings.TrimSpace(r.FormValue("slug")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Duration:    strings.TrimSpace(r.FormValue("duration")),
	}

	if data.Slug == "" {
		data.Slug = Slugify(data.Title)
	} else {
		data.Slug = Slugify(data.Slug)
	}

	duration, err := strconv.Atoi(data.Duration)
	if data.Title == "" || data.Slug == "" || err != nil || duration < 1 {
		data.Error = "Title, slug and a positive duration are required."
		s.renderStatus(w, http.StatusBadRequest, "event_type_new.html", data)
		return
	}

	e := &models.EventType{
		UserID:          userIDFromCtx(r),
		Title:           data.Title,
		Description:     data.Description,
		Slug:            data.Slug,
		DurationMinutes: duration,
		IsActive:        true,
	}
	if err := s.db.CreateEventType(r.Context(), e); err != nil {
		if errors.Is(err, database.ErrSlugTaken) {
			data.Error = "You already use that slug; pick another."
			s.renderStatus(w, http.StatusConflict, "event_type_new.html", data)
			return
		}
		data.Error = err.Error()
		s.renderStatus(w, http.StatusInternalServerError, "event_type_new.html", data)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

type availabilityDay struct {
	DayOfWeek int
	Windows   []models.AvailabilityWindow
}

type availabilityData struct {
	Error string
	Saved bool
	Days  []availabilityDay
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	uid := userIDFromCtx(r)

	if r.Method == http.MethodPost {
		windows, err := parseAvailabilityForm(r)
		if err != nil {
			days, loadErr := s.loadAvailabilityDays(r, uid)
			if loadErr != nil {
				http.Error(w, loadErr.Error(), http.StatusInternalServerError)
				return
			}
			s.renderStatus(w, http.StatusBadRequest, "availability.html", availabilityData{Error: err.Error(), Days: days})
			return
		}

		// All-or-nothing: the store replaces the whole set in one
		// transaction.
		if err := s.db.ReplaceAvailability(r.Context(), uid, windows); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/dashboard/availability?saved=1", http.StatusFound)
		return
	}

	days, err := s.loadAvailabilityDays(r, uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, "availability.html", availabilityData{
		Days:  days,
		Saved: r.URL.Query().Get("saved") == "1",
	})
}

func (s *Server) loadAvailabilityDays(r *http.Request, uid int64) ([]availabilityDay, error) {
	windows, err := s.db.ListAvailability(r.Context(), uid)
	if err != nil {
		return nil, err
	}
	days := make([]availabilityDay, 7)
	for d := 0; d < 7; d++ {
		days[d].DayOfWeek = d
	}
	for _, w := range windows {
		if w.DayOfWeek >= 0 && w.DayOfWeek <= 6 {
			days[w.DayOfWeek].Windows = append(days[w.DayOfWeek].Windows, w)
		}
	}
	return days, nil
}

// parseAvailabilityForm reads the parallel day/start/end form arrays the
// weekly editor submits, one triple per window row.
func parseAvailabilityForm(r *http.Request) ([]models.AvailabilityWindow, error) {
	_ = r.ParseForm()
	dayValues := r.Form["day"]
	startValues := r.Form["start"]
	endValues := r.Form["end"]

	if len(dayValues) != len(startValues) || len(dayValues) != len(endValues) {
		return nil, fmt.Errorf("malformed availability form")
	}

	var windows []models.AvailabilityWindow
	for i := range dayValues {
		start, end := startValues[i], endValues[i]
		// Blank rows are the untouched "add a window" inputs.
		if start == "" && end == "" {
			continue
		}
		day, err := strconv.Atoi(dayValues[i])
		if err != nil || day < 0 || day > 6 {
			return nil, fmt.Errorf("invalid day of week %q", dayValues[i])
		}
		if !validHHMM(start) || !validHHMM(end) {
			return nil, fmt.Errorf("times must be HH:MM")
		}
		if start >= end {
			return nil, fmt.Errorf("window start %s must be before end %s", start, end)
		}
		windows = append(windows, models.AvailabilityWindow{
			DayOfWeek: day,
			StartTime: start,
			EndTime:   end,
		})
	}
	return windows, nil
}

func validHHMM(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

func (s *Server) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_bookings")
	uid := userIDFromCtx(r)

	bookings, err := s.db.ListBookingsForInterviewer(r.Context(), uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	eventTypes, err := s.db.ListEventTypes(r.Context(), uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	titles := make(map[int64]string, len(eventTypes))
	for _, e := range eventTypes {
		titles[e.ID] = e.Title
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	if err := export.WriteBookings(w, bookings, titles); err != nil {
		s.logger.Error().Err(err).Msg("export bookings")
	}
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking_cancel")
	uid := userIDFromCtx(r)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}

	if err := s.db.CancelBooking(r.Context(), id, uid); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.IncBookingCancelled()
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Slugify derives a URL slug from a title: lowercase, runs of
// non-alphanumerics collapse to single dashes, edges trimmed.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
