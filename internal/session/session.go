// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

// Package session owns the client's authentication state: the bearer token
// and the identity it resolves to. The token is persisted across restarts;
// the identity is only ever trusted after a server round-trip within the
// current process lifetime.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/princerobleodom/blogg/internal/api"
	"github.com/princerobleodom/blogg/internal/token"
)

// Session is the current authentication state. User is non-nil iff Token is
// non-empty and was validated against the server during this process.
type Session struct {
	Token string
	User  *api.UserSummary
}

// Authenticated reports whether a validated session is live.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool {
	return s.Authenticated() && s.User.IsAdmin
}

// Store is the single writer of session state. Reads are snapshot reads;
// subscribers are notified after every change.
type Store struct {
	client *api.Client
	tokens *token.Store

	mu      sync.Mutex
	current Session
	subs    []func(Session)
}

// NewStore creates a session store backed by the given API client and
// durable token storage.
func NewStore(client *api.Client, tokens *token.Store) *Store {
	return &Store{client: client, tokens: tokens}
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers a callback invoked after every session change with
// the new state. Callbacks run outside the store's lock.
func (s *Store) Subscribe(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Restore picks up a token persisted by a previous run and validates it
// against the server. On any failure the persisted token is cleared and the
// session stays absent — the client renders unauthenticated rather than
// getting stuck behind a dead token. Intended to be fired concurrently with
// startup; rendering does not wait for it.
func (s *Store) Restore(ctx context.Context) error {
	tok, err := s.tokens.Load()
	if err != nil {
		slog.Warn("token load failed", "error", err)
		return err
	}
	if tok == "" {
		return nil
	}

	user, err := s.client.Me(ctx, tok)
	if err != nil {
		slog.Info("stored token rejected, clearing it", "error", err)
		if clearErr := s.tokens.Clear(); clearErr != nil {
			slog.Warn("token clear failed", "error", clearErr)
		}
		s.set(Session{})
		return err
	}

	s.set(Session{Token: tok, User: user})
	return nil
}

// Login authenticates with credentials. On success the token is persisted
// and the session established. Expected auth failures come back as an error
// the caller branches on; api.Detail extracts the user-facing message.
// Overlapping logins do not interleave state writes — the last completed
// request wins.
func (s *Store) Login(ctx context.Context, creds api.Credentials) (Session, error) {
	resp, err := s.client.Login(ctx, creds)
	if err != nil {
		return Session{}, err
	}
	return s.establish(resp), nil
}

// Register creates an account with create-and-authenticate semantics: a
// successful registration immediately establishes the session.
func (s *Store) Register(ctx context.Context, profile api.Profile) (Session, error) {
	resp, err := s.client.Register(ctx, profile)
	if err != nil {
		return Session{}, err
	}
	return s.establish(resp), nil
}

// Logout clears the persisted token and the in-memory session. No server
// round-trip; it always succeeds.
func (s *Store) Logout() {
	if err := s.tokens.Clear(); err != nil {
		slog.Warn("token clear failed", "error", err)
	}
	s.set(Session{})
}

// establish persists the token and commits the new session.
func (s *Store) establish(resp *api.AuthResponse) Session {
	if err := s.tokens.Save(resp.AccessToken); err != nil {
		// The live session still works; only the next restart is affected.
		slog.Warn("token persist failed", "error", err)
	}
	user := resp.User
	sess := Session{Token: resp.AccessToken, User: &user}
	s.set(sess)
	return sess
}

// set commits new state and notifies subscribers.
func (s *Store) set(sess Session) {
	s.mu.Lock()
	s.current = sess
	subs := make([]func(Session), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
}
