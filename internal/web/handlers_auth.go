package web

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"slotbook/internal/database"
	"slotbook/internal/metrics"
	"slotbook/internal/models"
)

type authData struct {
	Error    string
	Email    string
	FullName string
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("signup")
	if r.Method == http.MethodGet {
		s.render(w, "signup.html", authData{})
		return
	}

	_ = r.ParseForm()
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	fullName := strings.TrimSpace(r.FormValue("full_name"))
	password := r.FormValue("password")

	data := authData{Email: email, FullName: fullName}
	if email == "" || fullName == "" || len(password) < 8 {
		data.Error = "All fields are required; password must be at least 8 characters."
		s.renderStatus(w, http.StatusBadRequest, "signup.html", data)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	u := &models.User{Email: email, FullName: fullName, PasswordHash: string(hash)}
	if err := s.db.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			data.Error = "That email is already registered."
			s.renderStatus(w, http.StatusConflict, "signup.html", data)
			return
		}
		data.Error = err.Error()
		s.renderStatus(w, http.StatusInternalServerError, "signup.html", data)
		return
	}

	if err := s.sessions.SetUserID(w, u.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("login")
	if r.Method == http.MethodGet {
		s.render(w, "login.html", authData{})
		return
	}

	_ = r.ParseForm()
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	u, err := s.db.GetUserByEmail(r.Context(), email)
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	}
	if err != nil {
		s.renderStatus(w, http.StatusUnauthorized, "login.html", authData{
			Error: "Invalid email or password.",
			Email: email,
		})
		return
	}

	if err := s.sessions.SetUserID(w, u.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
