// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

// Package stub is an in-memory implementation of the Billions Blog API
// wire contract. It backs cmd/bloggstub as the local development endpoint
// and serves as the test fixture for every client package: the client is
// exercised against the real contract instead of hand-rolled canned
// responses.
package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/princerobleodom/blogg/internal/api"
)

// Seeded admin account, mirroring the production bootstrap.
const (
	AdminEmail    = "billionstheinvestor@gmail.com"
	AdminPassword = "password"
	AdminName     = "Admin"
)

const tokenTTL = 24 * time.Hour

type userRec struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	IsBanned     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

type postRec struct {
	ID            string
	Title         string
	Content       string
	Category      string
	Tags          []string
	FeaturedImage string
	AuthorID      string
	AuthorName    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type commentRec struct {
	ID         string
	PostID     string
	AuthorID   string
	AuthorName string
	Content    string
	CreatedAt  time.Time
}

type likeRec struct {
	ID     string
	PostID string
	UserID string
}

// Server holds the in-memory state and the router. Safe for concurrent use.
type Server struct {
	mu       sync.Mutex
	users    []*userRec
	posts    []*postRec
	comments []*commentRec
	likes    []*likeRec
	attempts []api.LoginAttempt

	secret []byte
	router chi.Router
	now    func() time.Time
}

// New creates a stub server with the admin account seeded.
func New() *Server {
	s := &Server{
		secret: []byte("blogg-stub-secret"),
		now:    time.Now,
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("stub: hash admin password: %v", err))
	}
	s.users = append(s.users, &userRec{
		ID:           uuid.NewString(),
		Email:        AdminEmail,
		Name:         AdminName,
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    s.now(),
	})

	r := chi.NewRouter()
	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)
	r.Get("/api/users/me", s.handleMe)

	r.Get("/api/posts", s.handleListPosts)
	r.Post("/api/posts", s.handleCreatePost)
	r.Get("/api/posts/{id}", s.handleGetPost)
	r.Put("/api/posts/{id}", s.handleUpdatePost)
	r.Delete("/api/posts/{id}", s.handleDeletePost)
	r.Get("/api/categories", s.handleCategories)

	r.Post("/api/comments", s.handleCreateComment)
	r.Delete("/api/comments/{id}", s.handleDeleteComment)
	r.Post("/api/likes", s.handleLike)
	r.Get("/api/likes/{postID}/check", s.handleLikeCheck)

	r.Route("/api/admin", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/users", s.handleUsers)
		r.Put("/users/{id}/ban", s.handleBan)
		r.Put("/users/{id}/unban", s.handleUnban)
		r.Get("/login-attempts", s.handleLoginAttempts)
	})
	s.router = r

	return s
}

// ServeHTTP makes the stub usable directly with httptest.NewServer.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SeedDemo inserts a handful of posts so a fresh dev stub is browsable.
func (s *Server) SeedDemo() {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin := s.users[0]
	demo := []struct {
		title, category string
		tags            []string
	}{
		{"Markets Open Higher", "Finance", []string{"markets", "stocks"}},
		{"A Field Guide to Goroutines", "Technology", []string{"go", "concurrency"}},
		{"Weekend Reading List", "Culture", []string{"books"}},
	}
	for i, d := range demo {
		s.posts = append(s.posts, &postRec{
			ID:         uuid.NewString(),
			Title:      d.title,
			Content:    "Lorem ipsum dolor sit amet.",
			Category:   d.category,
			Tags:       d.tags,
			AuthorID:   admin.ID,
			AuthorName: admin.Name,
			CreatedAt:  s.now().Add(-time.Duration(i) * time.Hour),
			UpdatedAt:  s.now(),
		})
	}
}

// --- token handling ---

// mintToken issues an HS256 bearer token with the user id as subject.
func (s *Server) mintToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": s.now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// currentUser resolves the bearer token on the request to a user record.
// Any failure maps to a 401 with the contract's detail message.
func (s *Server) currentUser(r *http.Request) (*userRec, error) {
	auth := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || raw == "" {
		return nil, fmt.Errorf("missing bearer token")
	}

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("invalid token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findUser(sub)
	if u == nil {
		return nil, fmt.Errorf("unknown user")
	}
	return u, nil
}

// findUser returns the user with the given id. Caller holds s.mu.
func (s *Server) findUser(id string) *userRec {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// findUserByEmail returns the user with the given email. Caller holds s.mu.
func (s *Server) findUserByEmail(email string) *userRec {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// findPost returns the post with the given id. Caller holds s.mu.
func (s *Server) findPost(id string) *postRec {
	for _, p := range s.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// counts returns like and comment counts for a post. Caller holds s.mu.
func (s *Server) counts(postID string) (likes, comments int) {
	for _, l := range s.likes {
		if l.PostID == postID {
			likes++
		}
	}
	for _, c := range s.comments {
		if c.PostID == postID {
			comments++
		}
	}
	return likes, comments
}

// summary builds the wire projection of a post. Caller holds s.mu.
func (s *Server) summary(p *postRec) api.Post {
	likes, comments := s.counts(p.ID)
	return api.Post{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		Category:      p.Category,
		Tags:          p.Tags,
		FeaturedImage: p.FeaturedImage,
		AuthorName:    p.AuthorName,
		CreatedAt:     p.CreatedAt,
		LikeCount:     likes,
		CommentCount:  comments,
	}
}

// userSummary builds the wire projection of a user.
func userSummary(u *userRec) api.UserSummary {
	return api.UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		IsBanned:  u.IsBanned,
		CreatedAt: u.CreatedAt,
	}
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes the contract's error body: {"detail": "..."}.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return false
	}
	return true
}

// clientIP mirrors the production x-forwarded-for handling.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return fwd
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		return "unknown"
	}
	return host
}
