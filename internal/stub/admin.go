// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

package stub

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/princerobleodom/blogg/internal/api"
)

const (
	dashboardRecentLogins = 10
	dashboardPopularPosts = 5
	attemptLogLimit       = 50
)

// requireAdmin resolves the caller and rejects non-admins with the
// contract's 403 detail.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) *userRec {
	u, err := s.currentUser(r)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return nil
	}
	if !u.IsAdmin {
		writeDetail(w, http.StatusForbidden, "Admin access required")
		return nil
	}
	return u
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := api.AdminSnapshot{
		Stats: api.Stats{
			TotalUsers:    len(s.users),
			TotalPosts:    len(s.posts),
			TotalComments: len(s.comments),
			TotalLikes:    len(s.likes),
		},
		RecentLogins: s.recentAttempts(dashboardRecentLogins),
		PopularPosts: []api.Post{},
	}

	popular := make([]*postRec, len(s.posts))
	copy(popular, s.posts)
	sort.SliceStable(popular, func(i, j int) bool {
		li, _ := s.counts(popular[i].ID)
		lj, _ := s.counts(popular[j].ID)
		return li > lj
	})
	if len(popular) > dashboardPopularPosts {
		popular = popular[:dashboardPopularPosts]
	}
	for _, p := range popular {
		snap.PopularPosts = append(snap.PopularPosts, s.summary(p))
	}

	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]api.UserSummary, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, userSummary(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleBan(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(chi.URLParam(r, "id"))
	if u == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if u.IsAdmin {
		writeDetail(w, http.StatusBadRequest, "Cannot ban admin users")
		return
	}

	u.IsBanned = true
	writeJSON(w, http.StatusOK, map[string]string{"message": "User banned successfully"})
}

func (s *Server) handleUnban(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(chi.URLParam(r, "id"))
	if u == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}

	u.IsBanned = false
	writeJSON(w, http.StatusOK, map[string]string{"message": "User unbanned successfully"})
}

func (s *Server) handleLoginAttempts(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"login_attempts": s.recentAttempts(attemptLogLimit),
	})
}

// recentAttempts returns the newest n audit entries, newest first.
// Caller holds s.mu.
func (s *Server) recentAttempts(n int) []api.LoginAttempt {
	out := make([]api.LoginAttempt, len(s.attempts))
	copy(out, s.attempts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
