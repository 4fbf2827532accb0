// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

// Package controller owns which view is visible and enforces the
// authorization conditions on view transitions. It is a flat state machine:
// no nesting, no terminal state, initial state home.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/princerobleodom/blogg/internal/admin"
	"github.com/princerobleodom/blogg/internal/session"
	"github.com/princerobleodom/blogg/internal/syncer"
)

// View names one screen of the application.
type View string

const (
	ViewHome        View = "home"
	ViewLogin       View = "login"
	ViewRegister    View = "register"
	ViewCreatePost  View = "create-post"
	ViewPost        View = "post"
	ViewAdmin       View = "admin"
	ViewAdminUsers  View = "admin-users"
	ViewAdminLogins View = "admin-logins"
)

// RequiresAdmin reports whether the view is reachable only by admins.
func (v View) RequiresAdmin() bool {
	switch v {
	case ViewCreatePost, ViewAdmin, ViewAdminUsers, ViewAdminLogins:
		return true
	}
	return false
}

var (
	// ErrUnauthorized rejects transitions into admin-gated views without
	// an admin session.
	ErrUnauthorized = errors.New("view requires an admin session")

	// ErrNoPostSelected rejects entering the post view without a post id;
	// use OpenPost instead of Navigate for that transition.
	ErrNoPostSelected = errors.New("post view requires a selected post")

	// ErrUnknownView rejects transition requests to views that do not exist.
	ErrUnknownView = errors.New("unknown view")
)

// Controller is the single writer of the active view. It reacts to
// user-initiated transition requests and to session changes, and triggers
// the data loads each view entry requires.
type Controller struct {
	session *session.Store
	sync    *syncer.Synchronizer
	admin   *admin.Loader

	mu     sync.Mutex
	view   View
	postID string
	subs   []func(View)
}

// New creates the controller in the home view and subscribes it to session
// changes: losing authorization while in an admin-gated view forces a
// transition back home.
func New(sess *session.Store, sync *syncer.Synchronizer, adm *admin.Loader) *Controller {
	c := &Controller{
		session: sess,
		sync:    sync,
		admin:   adm,
		view:    ViewHome,
	}
	sess.Subscribe(func(s session.Session) {
		if !s.IsAdmin() && c.Current().RequiresAdmin() {
			c.setView(ViewHome)
		}
	})
	return c
}

// Current returns the active view.
func (c *Controller) Current() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// SelectedPost returns the id of the post the post view shows, or "".
func (c *Controller) SelectedPost() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.postID
}

// Subscribe registers a callback invoked with the new view after every
// transition.
func (c *Controller) Subscribe(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Navigate requests a transition to a parameterless view. Admin-gated views
// are rejected without an admin session. Entering an admin sub-view
// triggers its data load; a failed load leaves the view visible with no
// data (the server is the authoritative gate) rather than failing the
// transition.
func (c *Controller) Navigate(ctx context.Context, v View) error {
	switch v {
	case ViewHome, ViewLogin, ViewRegister, ViewCreatePost, ViewAdmin, ViewAdminUsers, ViewAdminLogins:
	case ViewPost:
		return ErrNoPostSelected
	default:
		return ErrUnknownView
	}

	if v.RequiresAdmin() && !c.session.Snapshot().IsAdmin() {
		return ErrUnauthorized
	}

	c.setView(v)
	c.enter(ctx, v)
	return nil
}

// OpenPost transitions to the post view for the given id, fetching its
// detail first. The transition does not happen when the fetch fails.
func (c *Controller) OpenPost(ctx context.Context, id string) error {
	if id == "" {
		return ErrNoPostSelected
	}
	if _, err := c.sync.OpenPost(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	c.postID = id
	c.mu.Unlock()
	c.setView(ViewPost)
	return nil
}

// Logout clears the session and lands on home. Available from any state;
// always succeeds.
func (c *Controller) Logout() {
	c.session.Logout()
	c.setView(ViewHome)
}

// enter runs the data load a view entry requires. Loads re-run on every
// (re)entry; failures degrade to empty data with a logged diagnostic.
func (c *Controller) enter(ctx context.Context, v View) {
	var err error
	switch v {
	case ViewAdmin:
		_, err = c.admin.Dashboard(ctx)
	case ViewAdminUsers:
		_, err = c.admin.Users(ctx)
	case ViewAdminLogins:
		_, err = c.admin.LoginAttempts(ctx)
	case ViewHome:
		c.sync.CloseDetail()
	}
	if err != nil {
		slog.Warn("view data load failed", "view", string(v), "error", err)
	}
}

func (c *Controller) setView(v View) {
	c.mu.Lock()
	// Re-entering the same view is allowed (admin sub-views re-fetch on
	// every entry), but subscribers are only notified on actual changes.
	changed := c.view != v
	c.view = v
	if v != ViewPost {
		c.postID = ""
	}
	subs := make([]func(View), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(v)
		}
	}
}
