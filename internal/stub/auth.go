// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

package stub

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/princerobleodom/blogg/internal/api"
)

// recordAttempt appends an entry to the authentication audit log.
// Attempted passwords are deliberately never recorded. Caller holds s.mu.
func (s *Server) recordAttempt(r *http.Request, email, attemptType string, success bool) {
	s.attempts = append(s.attempts, api.LoginAttempt{
		ID:          uuid.NewString(),
		Email:       email,
		IPAddress:   clientIP(r),
		Timestamp:   s.now(),
		AttemptType: attemptType,
		Success:     success,
		UserAgent:   r.UserAgent(),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.Profile
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmail(req.Email) != nil {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal error")
		return
	}

	u := &userRec{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	s.users = append(s.users, u)
	s.recordAttempt(r, req.Email, "register", true)

	tok, err := s.mintToken(u.ID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, api.AuthResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		User:        userSummary(u),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.Credentials
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserByEmail(req.Email)
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		s.recordAttempt(r, req.Email, "login", false)
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if u.IsBanned {
		s.recordAttempt(r, req.Email, "login", false)
		writeDetail(w, http.StatusForbidden, "Account is banned")
		return
	}

	s.recordAttempt(r, req.Email, "login", true)
	now := s.now()
	u.LastLogin = &now

	tok, err := s.mintToken(u.ID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, api.AuthResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		User:        userSummary(u),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	writeJSON(w, http.StatusOK, userSummary(u))
}
