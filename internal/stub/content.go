// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

package stub

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/princerobleodom/blogg/internal/api"
)

// defaultListLimit matches the production pagination default.
const defaultListLimit = 10

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := q.Get("search")
	category := q.Get("category")

	skip, _ := strconv.Atoi(q.Get("skip"))
	limit := defaultListLimit
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*postRec
	for _, p := range s.posts {
		if category != "" && p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(search)) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if skip > len(matched) {
		skip = len(matched)
	}
	matched = matched[skip:]
	if limit >= 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	posts := make([]api.Post, 0, len(matched))
	for _, p := range matched {
		posts = append(posts, s.summary(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPost(id)
	if p == nil {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}

	detail := s.summary(p)
	detail.Comments = []api.Comment{}
	for _, c := range s.comments {
		if c.PostID != id {
			continue
		}
		detail.Comments = append(detail.Comments, api.Comment{
			ID:         c.ID,
			PostID:     c.PostID,
			AuthorName: c.AuthorName,
			Content:    c.Content,
			CreatedAt:  c.CreatedAt,
		})
	}
	sort.Slice(detail.Comments, func(i, j int) bool {
		return detail.Comments[i].CreatedAt.After(detail.Comments[j].CreatedAt)
	})
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	if !u.IsAdmin {
		writeDetail(w, http.StatusForbidden, "Only admins can create posts")
		return
	}

	var req api.PostDraft
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" || req.Content == "" || req.Category == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &postRec{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Content:       req.Content,
		Category:      req.Category,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		AuthorID:      u.ID,
		AuthorName:    u.Name,
		CreatedAt:     s.now(),
		UpdatedAt:     s.now(),
	}
	s.posts = append(s.posts, p)
	writeJSON(w, http.StatusOK, s.summary(p))
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	if !u.IsAdmin {
		writeDetail(w, http.StatusForbidden, "Only admins can update posts")
		return
	}

	var req api.PostPatch
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPost(chi.URLParam(r, "id"))
	if p == nil {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Tags != nil {
		p.Tags = *req.Tags
	}
	if req.FeaturedImage != nil {
		p.FeaturedImage = *req.FeaturedImage
	}
	p.UpdatedAt = s.now()

	writeJSON(w, http.StatusOK, s.summary(p))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	if !u.IsAdmin {
		writeDetail(w, http.StatusForbidden, "Only admins can delete posts")
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findPost(id) == nil {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}

	keepPosts := s.posts[:0]
	for _, p := range s.posts {
		if p.ID != id {
			keepPosts = append(keepPosts, p)
		}
	}
	s.posts = keepPosts

	// Cascade: the post's comments and likes go with it.
	keepComments := s.comments[:0]
	for _, c := range s.comments {
		if c.PostID != id {
			keepComments = append(keepComments, c)
		}
	}
	s.comments = keepComments

	keepLikes := s.likes[:0]
	for _, l := range s.likes {
		if l.PostID != id {
			keepLikes = append(keepLikes, l)
		}
	}
	s.likes = keepLikes

	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	var categories []string
	for _, p := range s.posts {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	if u.IsBanned {
		writeDetail(w, http.StatusForbidden, "Account is banned")
		return
	}

	var req struct {
		PostID  string `json:"post_id"`
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PostID == "" || req.Content == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := &commentRec{
		ID:         uuid.NewString(),
		PostID:     req.PostID,
		AuthorID:   u.ID,
		AuthorName: u.Name,
		Content:    req.Content,
		CreatedAt:  s.now(),
	}
	s.comments = append(s.comments, c)

	writeJSON(w, http.StatusOK, api.Comment{
		ID:         c.ID,
		PostID:     c.PostID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	var target *commentRec
	for _, c := range s.comments {
		if c.ID == id {
			target = c
			break
		}
	}
	if target == nil {
		writeDetail(w, http.StatusNotFound, "Comment not found")
		return
	}
	if !u.IsAdmin && target.AuthorID != u.ID {
		writeDetail(w, http.StatusForbidden, "Not authorized to delete this comment")
		return
	}

	keep := s.comments[:0]
	for _, c := range s.comments {
		if c.ID != id {
			keep = append(keep, c)
		}
	}
	s.comments = keep
	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

// handleLike toggles a like: a second like from the same user removes the
// first. The response reports the resulting state; clients are expected to
// re-read the post for the authoritative count.
func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	if u.IsBanned {
		writeDetail(w, http.StatusForbidden, "Account is banned")
		return
	}

	var req struct {
		PostID string `json:"post_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.likes {
		if l.PostID == req.PostID && l.UserID == u.ID {
			s.likes = append(s.likes[:i], s.likes[i+1:]...)
			writeJSON(w, http.StatusOK, api.LikeResult{Message: "Post unliked", Liked: false})
			return
		}
	}

	s.likes = append(s.likes, &likeRec{
		ID:     uuid.NewString(),
		PostID: req.PostID,
		UserID: u.ID,
	})
	writeJSON(w, http.StatusOK, api.LikeResult{Message: "Post liked", Liked: true})
}

func (s *Server) handleLikeCheck(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	postID := chi.URLParam(r, "postID")

	s.mu.Lock()
	defer s.mu.Unlock()

	liked := false
	for _, l := range s.likes {
		if l.PostID == postID && l.UserID == u.ID {
			liked = true
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}
