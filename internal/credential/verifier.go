// Package credential computes and checks password digests.
//
// The external directory stores passwords as unsalted 32-char hex MD5, so
// mirrored records have to be checked with the same legacy function. Accounts
// provisioned locally in degraded mode are owned by us and get bcrypt
// digests instead; Verify dispatches on the stored digest format.
package credential

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// LegacyDigest returns the directory-compatible digest of a plaintext
// password: lowercase hex MD5.
func LegacyDigest(plaintext string) string {
	sum := md5.Sum([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// LocalDigest returns a bcrypt digest for a locally-owned password.
func LocalDigest(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches the stored digest. Bcrypt digests
// are recognized by their "$2" prefix; anything else is treated as a legacy
// directory digest and compared in constant time.
func Verify(plaintext, expectedDigest string) bool {
	if strings.HasPrefix(expectedDigest, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(expectedDigest), []byte(plaintext)) == nil
	}

	candidate := LegacyDigest(plaintext)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(expectedDigest)) == 1
}
