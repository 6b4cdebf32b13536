package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campuskit/authcore/internal/common"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	i := NewIssuer([]byte("super-secret"), time.Hour)

	tok, err := i.Issue(42, "ana", common.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	p, err := i.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if p.UserID != 42 || p.Username != "ana" || p.Role != common.RoleAdmin {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	i := NewIssuer([]byte("secret"), -time.Second)

	tok, err := i.Issue(1, "u", common.RoleStudent)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = i.Verify(tok)
	if !errors.Is(err, common.ErrSessionExpired) {
		t.Fatalf("want ErrSessionExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer([]byte("right"), time.Hour).Issue(1, "u", common.RoleStudent)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewIssuer([]byte("wrong"), time.Hour).Verify(tok)
	if !errors.Is(err, common.ErrInvalidSession) {
		t.Fatalf("want ErrInvalidSession, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer([]byte("k"), time.Hour).Verify("not.a.jwt")
	if !errors.Is(err, common.ErrInvalidSession) {
		t.Fatalf("want ErrInvalidSession, got %v", err)
	}
}

func TestVerify_MissingSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: "u",
		Role:     common.RoleStudent,
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	_, err = NewIssuer(secret, time.Hour).Verify(signed)
	if !errors.Is(err, common.ErrInvalidSession) {
		t.Fatalf("want ErrInvalidSession for missing subject, got %v", err)
	}
}

func TestVerify_WrongAlgorithm(t *testing.T) {
	t.Parallel()

	// alg=none tokens must never verify.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	_, err = NewIssuer([]byte("k"), time.Hour).Verify(signed)
	if !errors.Is(err, common.ErrInvalidSession) {
		t.Fatalf("want ErrInvalidSession for alg=none, got %v", err)
	}
}
