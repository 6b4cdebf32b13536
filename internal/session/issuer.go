// Package session issues and verifies the signed, stateless session
// credential. There is no server-side session table and no revocation: a
// credential stays valid until its fixed expiry, and the role embedded at
// issuance is authoritative for the credential's whole lifetime.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campuskit/authcore/internal/common"
)

// Claims is the JWT payload: registered claims plus username and role.
// The subject carries the mirror user id.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Principal is the verified result callers consume: the one capability the
// surrounding CRUD subsystems need from this core.
type Principal struct {
	UserID   int64
	Username string
	Role     string
}

// Issuer signs and verifies session credentials with an HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl}
}

// Issue signs a credential for the given subject.
func (i *Issuer) Issue(userID int64, username, role string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Username: username,
		Role:     role,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing session credential: %w", err)
	}

	return signed, nil
}

// Verify checks signature and expiry and returns the embedded principal.
//
// Expired tokens surface common.ErrSessionExpired, everything else wraps
// common.ErrInvalidSession. The distinction is for logging only: the API
// layer reports both to the client as one invalid-session kind so the
// failure mode leaks nothing.
func (i *Issuer) Verify(tokenString string) (*Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", common.ErrSessionExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSession, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidSession
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidSession)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject: %v", common.ErrInvalidSession, err)
	}

	return &Principal{UserID: userID, Username: claims.Username, Role: claims.Role}, nil
}
