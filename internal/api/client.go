// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/princerobleodom/blogg/internal/metrics"
)

// DefaultTimeout bounds every request. The transport owns timeouts; callers
// above this layer treat a timeout the same as any other failed call.
const DefaultTimeout = 30 * time.Second

// Client talks to the Billions Blog API. Methods that require
// authentication take the bearer token explicitly; passing an empty token
// fails with ErrUnauthorized before any request is issued.
type Client struct {
	baseURL string
	hc      *http.Client
	metrics *metrics.Metrics
}

// New creates a client for the API at baseURL. m may be nil to disable
// instrumentation.
func New(baseURL string, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: DefaultTimeout},
		metrics: m,
	}
}

// Me resolves the identity behind a stored token.
func (c *Client) Me(ctx context.Context, token string) (*UserSummary, error) {
	var u UserSummary
	if err := c.do(ctx, http.MethodGet, "/api/users/me", "users.me", nil, nil, token, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates with email/password and returns a token plus identity.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "auth.login", nil, creds, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and authenticates it in one step.
func (c *Client) Register(ctx context.Context, profile Profile) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "auth.register", nil, profile, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPosts returns post summaries matching the filter. Empty filter fields
// are omitted from the query entirely — omission means "no constraint",
// not an empty-string constraint.
func (c *Client) ListPosts(ctx context.Context, filter Filter) ([]Post, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	var list postList
	if err := c.do(ctx, http.MethodGet, "/api/posts", "posts.list", q, nil, "", &list); err != nil {
		return nil, err
	}
	return list.Posts, nil
}

// GetPost fetches the full detail projection including comments.
func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	var p Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), "posts.get", nil, nil, "", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Categories returns the distinct category set.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var list categoryList
	if err := c.do(ctx, http.MethodGet, "/api/categories", "categories", nil, nil, "", &list); err != nil {
		return nil, err
	}
	return list.Categories, nil
}

// CreatePost publishes a new post. Admin only.
func (c *Client) CreatePost(ctx context.Context, token string, draft PostDraft) (*Post, error) {
	var p Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", "posts.create", nil, draft, token, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePost applies a partial update to a post. Admin only.
func (c *Client) UpdatePost(ctx context.Context, token, id string, patch PostPatch) (*Post, error) {
	var p Post
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), "posts.update", nil, patch, token, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePost removes a post and its comments and likes. Admin only.
func (c *Client) DeletePost(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), "posts.delete", nil, nil, token, nil)
}

// Like registers a like on a post. The server decides the outcome; the
// client never guesses the resulting count.
func (c *Client) Like(ctx context.Context, token, postID string) (*LikeResult, error) {
	body := map[string]string{"post_id": postID}
	var res LikeResult
	if err := c.do(ctx, http.MethodPost, "/api/likes", "likes.create", nil, body, token, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// LikeStatus reports whether the authenticated user has liked the post.
func (c *Client) LikeStatus(ctx context.Context, token, postID string) (bool, error) {
	var res struct {
		Liked bool `json:"liked"`
	}
	path := "/api/likes/" + url.PathEscape(postID) + "/check"
	if err := c.do(ctx, http.MethodGet, path, "likes.check", nil, nil, token, &res); err != nil {
		return false, err
	}
	return res.Liked, nil
}

// Comment adds a comment to a post.
func (c *Client) Comment(ctx context.Context, token, postID, content string) (*Comment, error) {
	body := map[string]string{"post_id": postID, "content": content}
	var cm Comment
	if err := c.do(ctx, http.MethodPost, "/api/comments", "comments.create", nil, body, token, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

// DeleteComment removes a comment. Allowed for the comment author or an admin.
func (c *Client) DeleteComment(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+url.PathEscape(id), "comments.delete", nil, nil, token, nil)
}

// Dashboard fetches the admin aggregate snapshot.
func (c *Client) Dashboard(ctx context.Context, token string) (*AdminSnapshot, error) {
	var snap AdminSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/admin/dashboard", "admin.dashboard", nil, nil, token, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Users fetches every account with its ban state. Admin only.
func (c *Client) Users(ctx context.Context, token string) ([]UserSummary, error) {
	var list userList
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", "admin.users", nil, nil, token, &list); err != nil {
		return nil, err
	}
	return list.Users, nil
}

// LoginAttempts fetches the raw authentication audit log. Admin only.
func (c *Client) LoginAttempts(ctx context.Context, token string) ([]LoginAttempt, error) {
	var list attemptList
	if err := c.do(ctx, http.MethodGet, "/api/admin/login-attempts", "admin.login-attempts", nil, nil, token, &list); err != nil {
		return nil, err
	}
	return list.LoginAttempts, nil
}

// BanUser bans an account. Admin only; the server rejects bans on admins.
func (c *Client) BanUser(ctx context.Context, token, userID string) error {
	path := "/api/admin/users/" + url.PathEscape(userID) + "/ban"
	return c.do(ctx, http.MethodPut, path, "admin.ban", nil, nil, token, nil)
}

// UnbanUser lifts a ban. Admin only.
func (c *Client) UnbanUser(ctx context.Context, token, userID string) error {
	path := "/api/admin/users/" + url.PathEscape(userID) + "/unban"
	return c.do(ctx, http.MethodPut, path, "admin.unban", nil, nil, token, nil)
}

// authed marks the endpoints that must carry a bearer token. do refuses to
// issue these without one so an unauthenticated caller gets a deterministic
// ErrUnauthorized instead of a server round-trip.
func authed(endpoint string) bool {
	switch endpoint {
	case "auth.login", "auth.register", "posts.list", "posts.get", "categories":
		return false
	}
	return true
}

// do performs one request/response cycle: marshal, send, classify, decode.
// endpoint is a low-cardinality label used for logging and metrics.
func (c *Client) do(ctx context.Context, method, path, endpoint string, query url.Values, body any, tok string, out any) error {
	if authed(endpoint) && tok == "" {
		return &Error{Status: 0, kind: ErrUnauthorized}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s marshal: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, endpoint, start, 0)
		return &Error{kind: ErrUnavailable, Detail: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.metrics.ObserveRequest(method, endpoint, start, resp.StatusCode)
	if err != nil {
		return &Error{Status: resp.StatusCode, kind: ErrUnavailable, Detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Status: resp.StatusCode,
			Detail: decodeDetail(respBody),
			kind:   classify(resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Status: resp.StatusCode, kind: ErrUnavailable, Detail: "unparseable response"}
	}
	return nil
}

// decodeDetail pulls the {"detail": ...} message out of an error body.
// Returns "" when the body is not in that shape.
func decodeDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}
