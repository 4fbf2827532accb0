// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

package api

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failed API call. Callers branch with
// errors.Is; the server's human-readable detail travels alongside in *Error.
var (
	// ErrUnauthorized covers bad credentials, expired tokens, and calls
	// issued without a token at all.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden covers authenticated calls the account may not make
	// (banned account, non-admin reaching an admin endpoint).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound covers requests for entities that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers requests the server rejected as malformed.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable covers transport failures and unparseable responses.
	// "No response" and "error response" are treated identically.
	ErrUnavailable = errors.New("service unavailable")
)

// Error is the concrete error returned for every failed request. It wraps
// one of the sentinels above so errors.Is works, and carries the HTTP
// status and the server's {"detail": ...} message when one was given.
type Error struct {
	Status int
	Detail string
	kind   error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %s (status %d): %s", e.kind, e.Status, e.Detail)
	}
	if e.Status != 0 {
		return fmt.Sprintf("api: %s (status %d)", e.kind, e.Status)
	}
	return "api: " + e.kind.Error()
}

func (e *Error) Unwrap() error { return e.kind }

// classify maps an HTTP status code to the matching sentinel.
func classify(status int) error {
	switch status {
	case 400, 422:
		return ErrValidation
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	default:
		return ErrUnavailable
	}
}

// Detail extracts the server-provided message from an API error, or ""
// when the failure carried none. Used to surface login/registration
// failures to the user with a generic fallback.
func Detail(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}
