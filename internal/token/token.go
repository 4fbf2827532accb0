// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

// Package token persists the bearer token across process restarts. The
// durable storage contract is a single key: the token file either exists
// and holds the token, or is absent and the client starts unauthenticated.
package token

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store reads and writes the token file.
type Store struct {
	path string
}

// NewStore creates a store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath places the token under the user config directory,
// e.g. ~/.config/blogg/token on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("token path: %w", err)
	}
	return filepath.Join(dir, "blogg", "token"), nil
}

// Load returns the persisted token, or "" when none is stored.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token with owner-only permissions.
func (s *Store) Save(tok string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(tok), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear removes the persisted token. Clearing an absent token is not an
// error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
