// Package common defines shared constants and sentinel errors used across
// authcore components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Generic flow-control errors.
	ErrInternal = errors.New("internal error")

	// Login outcomes. ErrInvalidCredential deliberately covers both "unknown
	// username" and "wrong password" so callers cannot enumerate accounts.
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrAccessDenied      = errors.New("access denied")

	// ErrDirectoryUnavailable is internal only: the gateway always recovers
	// it through the degraded login path and never surfaces it to a caller.
	ErrDirectoryUnavailable = errors.New("directory unavailable")

	// Session verification outcomes. ErrSessionExpired exists for logging;
	// the API reports both as a single invalid-session kind.
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionExpired = errors.New("session expired")

	// ErrSyncFailure marks a mirror write that failed during an otherwise
	// successful login. Logged and swallowed, never surfaced.
	ErrSyncFailure = errors.New("mirror sync failure")
)
