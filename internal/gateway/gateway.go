// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

// Package gateway performs the authenticated write operations and drives
// the authoritative refetches that follow them. No mutation ever updates
// local state directly: a successful write invalidates the affected
// snapshots and the read side re-fetches from the server.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/princerobleodom/blogg/internal/admin"
	"github.com/princerobleodom/blogg/internal/api"
	"github.com/princerobleodom/blogg/internal/metrics"
	"github.com/princerobleodom/blogg/internal/session"
	"github.com/princerobleodom/blogg/internal/syncer"
)

// PostForm is the create-post input as entered: tags arrive as a single
// comma-separated string and are split before submission.
type PostForm struct {
	Title         string
	Content       string
	Category      string
	Tags          string
	FeaturedImage string
}

// Gateway executes writes on behalf of the current session. Every
// operation tolerates being invoked without a token — the underlying API
// client fails such calls with api.ErrUnauthorized instead of crashing.
type Gateway struct {
	client  *api.Client
	session *session.Store
	sync    *syncer.Synchronizer
	admin   *admin.Loader
	metrics *metrics.Metrics
}

// New creates a gateway. m may be nil to disable instrumentation.
func New(client *api.Client, sess *session.Store, sync *syncer.Synchronizer, adm *admin.Loader, m *metrics.Metrics) *Gateway {
	return &Gateway{client: client, session: sess, sync: sync, admin: adm, metrics: m}
}

// CreatePost publishes a new post and re-fetches the list so it appears.
func (g *Gateway) CreatePost(ctx context.Context, form PostForm) (*api.Post, error) {
	draft := api.PostDraft{
		Title:         form.Title,
		Content:       form.Content,
		Category:      form.Category,
		Tags:          SplitTags(form.Tags),
		FeaturedImage: form.FeaturedImage,
	}

	post, err := g.client.CreatePost(ctx, g.token(), draft)
	if err != nil {
		g.metrics.MutationFailed("create_post")
		return nil, fmt.Errorf("create post: %w", err)
	}

	g.sync.Invalidate(ctx)
	return post, nil
}

// UpdatePost applies a partial update and re-fetches the list and, if the
// updated post is open, its detail.
func (g *Gateway) UpdatePost(ctx context.Context, id string, patch api.PostPatch) (*api.Post, error) {
	post, err := g.client.UpdatePost(ctx, g.token(), id, patch)
	if err != nil {
		g.metrics.MutationFailed("update_post")
		return nil, fmt.Errorf("update post: %w", err)
	}

	g.sync.Invalidate(ctx)
	g.sync.RefreshDetail(ctx, id)
	return post, nil
}

// DeletePost removes a post (and server-side, its comments and likes),
// then re-fetches the list. An open detail view of the deleted post is
// closed by the detail refresh observing the 404.
func (g *Gateway) DeletePost(ctx context.Context, id string) error {
	if err := g.client.DeletePost(ctx, g.token(), id); err != nil {
		g.metrics.MutationFailed("delete_post")
		return fmt.Errorf("delete post: %w", err)
	}

	g.sync.Invalidate(ctx)
	g.sync.RefreshDetail(ctx, id)
	return nil
}

// Like registers a like. The follow-up refetches run strictly after the
// server acknowledged the write: the list for its counts, and the detail
// view if the liked post is the open one. The client tracks no toggle
// state — the server's count is authoritative.
func (g *Gateway) Like(ctx context.Context, postID string) error {
	if _, err := g.client.Like(ctx, g.token(), postID); err != nil {
		g.metrics.MutationFailed("like")
		return fmt.Errorf("like: %w", err)
	}

	g.sync.Invalidate(ctx)
	g.sync.RefreshDetail(ctx, postID)
	return nil
}

// Comment adds a comment and re-fetches the post detail so the
// server-assigned id and timestamp replace nothing fabricated locally.
func (g *Gateway) Comment(ctx context.Context, postID, content string) error {
	if _, err := g.client.Comment(ctx, g.token(), postID, content); err != nil {
		g.metrics.MutationFailed("comment")
		return fmt.Errorf("comment: %w", err)
	}

	g.sync.RefreshDetail(ctx, postID)
	g.sync.Invalidate(ctx) // comment counts in the list view
	return nil
}

// DeleteComment removes a comment and re-fetches the parent post detail.
func (g *Gateway) DeleteComment(ctx context.Context, commentID, postID string) error {
	if err := g.client.DeleteComment(ctx, g.token(), commentID); err != nil {
		g.metrics.MutationFailed("delete_comment")
		return fmt.Errorf("delete comment: %w", err)
	}

	g.sync.RefreshDetail(ctx, postID)
	g.sync.Invalidate(ctx)
	return nil
}

// BanUser bans an account and re-fetches the admin user list. Banning an
// admin account is rejected locally with a validation failure — the same
// outcome the server enforces — so the answer is deterministic even when a
// UI bypasses its visibility check.
func (g *Gateway) BanUser(ctx context.Context, userID string) error {
	for _, u := range g.admin.UserList() {
		if u.ID == userID && u.IsAdmin {
			return fmt.Errorf("ban user: admin accounts cannot be banned: %w", api.ErrValidation)
		}
	}

	if err := g.client.BanUser(ctx, g.token(), userID); err != nil {
		g.metrics.MutationFailed("ban_user")
		return fmt.Errorf("ban user: %w", err)
	}

	g.reloadUsers(ctx)
	return nil
}

// UnbanUser lifts a ban and re-fetches the admin user list.
func (g *Gateway) UnbanUser(ctx context.Context, userID string) error {
	if err := g.client.UnbanUser(ctx, g.token(), userID); err != nil {
		g.metrics.MutationFailed("unban_user")
		return fmt.Errorf("unban user: %w", err)
	}

	g.reloadUsers(ctx)
	return nil
}

func (g *Gateway) reloadUsers(ctx context.Context) {
	if _, err := g.admin.Users(ctx); err != nil {
		slog.Warn("user list refresh failed", "error", err)
	}
}

func (g *Gateway) token() string {
	return g.session.Snapshot().Token
}

// SplitTags converts a comma-separated tag string into trimmed, non-empty
// tokens: "a, b ,c," becomes ["a","b","c"].
func SplitTags(s string) []string {
	var tags []string
	for _, raw := range strings.Split(s, ",") {
		tag := strings.TrimSpace(raw)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
