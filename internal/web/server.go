// Package web serves the interviewer dashboard and the public booking
// pages over server-rendered templates.
package web

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"slotbook/internal/cache"
	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/metrics"
)

type Server struct {
	cfg      *config.Config
	db       *database.DB
	cache    *cache.Cache
	sessions *SessionManager
	tmpl     *template.Template
	limiter  *ipRateLimiter
	logger   *zerolog.Logger
}

func NewServer(cfg *config.Config, db *database.DB, c *cache.Cache, sessions *SessionManager, logger *zerolog.Logger) (*Server, error) {
	tmpl, err := ParseTemplates()
	if err != nil {
		return nil, err
	}

	perSec, burst := cfg.SubmitRate()
	return &Server{
		cfg:      cfg,
		db:       db,
		cache:    c,
		sessions: sessions,
		tmpl:     tmpl,
		limiter:  newIPRateLimiter(perSec, burst),
		logger:   logger,
	}, nil
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleLanding).Methods("GET")
	r.HandleFunc("/signup", s.handleSignup).Methods("GET", "POST")
	r.HandleFunc("/login", s.handleLogin).Methods("GET", "POST")
	r.HandleFunc("/logout", s.handleLogout).Methods("POST")

	r.HandleFunc("/book/{slug}", s.handleBookingPage).Methods("GET")
	r.HandleFunc("/book/{slug}", s.handleBookingSubmit).Methods("POST")
	r.HandleFunc("/booking-confirmed", s.handleBookingConfirmed).Methods("GET")

	r.HandleFunc("/dashboard", s.requireAuth(s.handleDashboard)).Methods("GET")
	r.HandleFunc("/dashboard/event-types/new", s.requireAuth(s.handleNewEventType)).Methods("GET", "POST")
	r.HandleFunc("/dashboard/availability", s.requireAuth(s.handleAvailability)).Methods("GET", "POST")
	r.HandleFunc("/dashboard/bookings.xlsx", s.requireAuth(s.handleExportBookings)).Methods("GET")
	r.HandleFunc("/dashboard/bookings/{id}/cancel", s.requireAuth(s.handleCancelBooking)).Methods("POST")

	return s.logging(r)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type ctxKeyUserID struct{}

func userIDFromCtx(r *http.Request) int64 {
	if v := r.Context().Value(ctxKeyUserID{}); v != nil {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := s.sessions.GetUserID(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUserID{}, uid)))
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

func (s *Server) renderStatus(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("landing")
	if _, ok := s.sessions.GetUserID(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	s.render(w, "landing.html", nil)
}
