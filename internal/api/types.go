// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

// Package api is the typed HTTP client for the Billions Blog REST API.
// Every entity is an immutable snapshot of server state: the client never
// mutates an entity locally and writes it back — state changes go through
// the write endpoints and the entity is re-read in full afterwards.
package api

import "time"

// UserSummary is the identity projection returned by the auth endpoints,
// /api/users/me, and the admin user list.
type UserSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	IsBanned  bool      `json:"is_banned"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is a blog post. List endpoints return the summary projection
// (Comments is nil); the detail endpoint fills Comments.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags"`
	FeaturedImage string    `json:"featured_image,omitempty"`
	AuthorName    string    `json:"author_name"`
	CreatedAt     time.Time `json:"created_at"`
	LikeCount     int       `json:"like_count"`
	CommentCount  int       `json:"comment_count"`
	Comments      []Comment `json:"comments,omitempty"`
}

// Comment is a reader comment on a post. Comments are append-only from the
// client's perspective; after posting one the parent post is re-fetched to
// obtain the server-assigned id and timestamp.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Filter is the search/category constraint applied to the post list.
// Empty fields mean "no constraint" and are omitted from the query string.
type Filter struct {
	Search   string
	Category string
}

// Stats are the aggregate counters on the admin dashboard.
type Stats struct {
	TotalUsers    int `json:"total_users"`
	TotalPosts    int `json:"total_posts"`
	TotalComments int `json:"total_comments"`
	TotalLikes    int `json:"total_likes"`
}

// AdminSnapshot is the admin dashboard payload. It is replaced wholesale on
// every dashboard fetch.
type AdminSnapshot struct {
	Stats        Stats          `json:"stats"`
	RecentLogins []LoginAttempt `json:"recent_logins"`
	PopularPosts []Post         `json:"popular_posts"`
}

// LoginAttempt is one entry in the authentication audit log. Password is
// part of the historical wire format but is never recorded by this system:
// retaining attempted credentials is a defect, not a feature.
type LoginAttempt struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"password,omitempty"`
	IPAddress   string    `json:"ip_address"`
	Timestamp   time.Time `json:"timestamp"`
	AttemptType string    `json:"attempt_type"`
	Success     bool      `json:"success"`
	UserAgent   string    `json:"user_agent,omitempty"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the registration request body.
type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both login and register: a bearer token plus
// the resolved identity, so registration establishes a session in one step.
type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        UserSummary `json:"user"`
}

// PostDraft is the create-post request body. Tags are already split and
// trimmed by the caller.
type PostDraft struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featured_image,omitempty"`
}

// PostPatch is the partial-update request body. Nil fields are left
// untouched by the server.
type PostPatch struct {
	Title         *string   `json:"title,omitempty"`
	Content       *string   `json:"content,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	FeaturedImage *string   `json:"featured_image,omitempty"`
}

// LikeResult reports the server-side outcome of a like request. The client
// keeps no toggle state of its own; the authoritative count comes from the
// follow-up refetch.
type LikeResult struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
}

// Envelope types for list endpoints.

type postList struct {
	Posts []Post `json:"posts"`
}

type categoryList struct {
	Categories []string `json:"categories"`
}

type userList struct {
	Users []UserSummary `json:"users"`
}

type attemptList struct {
	LoginAttempts []LoginAttempt `json:"login_attempts"`
}
