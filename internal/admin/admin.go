// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

// Package admin loads the admin-only aggregates: dashboard stats, the user
// list, and the login-attempt log. Every load is gated on the session being
// an admin session; the server remains the authoritative enforcement and a
// rejected call yields no data rather than a crash.
package admin

import (
	"context"
	"sync"

	"github.com/princerobleodom/blogg/internal/api"
	"github.com/princerobleodom/blogg/internal/session"
)

// Loader fetches admin aggregates fresh on every (re)entry of the
// corresponding sub-view. Snapshots are read-only and replaced wholesale.
type Loader struct {
	client  *api.Client
	session *session.Store

	mu       sync.Mutex
	snapshot *api.AdminSnapshot
	users    []api.UserSummary
	attempts []api.LoginAttempt
}

// NewLoader creates an admin data loader.
func NewLoader(client *api.Client, sess *session.Store) *Loader {
	return &Loader{client: client, session: sess}
}

// Dashboard fetches the aggregate snapshot. Fails with api.ErrUnauthorized
// without an admin session; no request is issued in that case.
func (l *Loader) Dashboard(ctx context.Context) (*api.AdminSnapshot, error) {
	tok, err := l.adminToken()
	if err != nil {
		l.setSnapshot(nil)
		return nil, err
	}

	snap, err := l.client.Dashboard(ctx, tok)
	if err != nil {
		l.setSnapshot(nil)
		return nil, err
	}
	l.setSnapshot(snap)
	return snap, nil
}

// Users fetches every account with its ban state.
func (l *Loader) Users(ctx context.Context) ([]api.UserSummary, error) {
	tok, err := l.adminToken()
	if err != nil {
		l.setUsers(nil)
		return nil, err
	}

	users, err := l.client.Users(ctx, tok)
	if err != nil {
		l.setUsers(nil)
		return nil, err
	}
	l.setUsers(users)
	return users, nil
}

// LoginAttempts fetches the raw authentication audit log.
func (l *Loader) LoginAttempts(ctx context.Context) ([]api.LoginAttempt, error) {
	tok, err := l.adminToken()
	if err != nil {
		l.setAttempts(nil)
		return nil, err
	}

	attempts, err := l.client.LoginAttempts(ctx, tok)
	if err != nil {
		l.setAttempts(nil)
		return nil, err
	}
	l.setAttempts(attempts)
	return attempts, nil
}

// Snapshot returns the last loaded dashboard, or nil.
func (l *Loader) Snapshot() *api.AdminSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot
}

// UserList returns the last loaded user list.
func (l *Loader) UserList() []api.UserSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.users
}

// AttemptList returns the last loaded login-attempt log.
func (l *Loader) AttemptList() []api.LoginAttempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attempts
}

// adminToken returns the session token when the session is an admin
// session, otherwise api.ErrUnauthorized.
func (l *Loader) adminToken() (string, error) {
	sess := l.session.Snapshot()
	if !sess.IsAdmin() {
		return "", api.ErrUnauthorized
	}
	return sess.Token, nil
}

func (l *Loader) setSnapshot(s *api.AdminSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = s
}

func (l *Loader) setUsers(u []api.UserSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users = u
}

func (l *Loader) setAttempts(a []api.LoginAttempt) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts = a
}
