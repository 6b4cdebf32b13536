package mirror

import "time"

// User is the locally-owned mirror record of a directory identity.
//
// ID mirrors the directory id when the record was created from a live
// directory response; records provisioned in degraded mode get a surrogate
// id from a dedicated high-start sequence so the two ranges never collide.
// Once created the id is immutable: it is the join key every other
// subsystem (enrollments, completions, posts) uses for "the user".
type User struct {
	ID             int64
	Username       string
	PasswordDigest string
	Name           string
	Email          string
	Role           string
	Avatar         string
	CreatedAt      time.Time
}
