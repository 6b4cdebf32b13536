package common

// SessionCookieName is the cookie the web frontend stores the session
// envelope in. The value may be a URL-encoded JSON object or a raw token.
const SessionCookieName = "univ_auth_session"

// Role values embedded in session credentials and mirror records.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)
