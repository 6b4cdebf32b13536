package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/campuskit/authcore/internal/common"
	"github.com/campuskit/authcore/internal/credential"
	"github.com/campuskit/authcore/internal/directory"
	"github.com/campuskit/authcore/internal/logging"
	"github.com/campuskit/authcore/internal/mirror"
	"github.com/campuskit/authcore/internal/roles"
)

// --- fakes ---

type fakeDirectory struct {
	identity *directory.Identity
	err      error
}

func (f *fakeDirectory) Fetch(ctx context.Context, loginName string) (*directory.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type fakeMirror struct {
	byName map[string]*mirror.User

	upsertCalls int
	upsertErr   error

	degradedCalls int
	nextSurrogate int64
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{byName: map[string]*mirror.User{}, nextSurrogate: 1000000000}
}

func (f *fakeMirror) UpsertFromIdentity(ctx context.Context, id *directory.Identity, role string) (*mirror.User, error) {
	f.upsertCalls++
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if u, ok := f.byName[id.Username]; ok {
		return u, nil
	}
	u := &mirror.User{
		ID:             id.ID,
		Username:       id.Username,
		PasswordDigest: id.Digest,
		Name:           id.DisplayName(),
		Email:          id.Email(),
		Role:           role,
	}
	f.byName[u.Username] = u
	return u, nil
}

func (f *fakeMirror) FindOrCreateDegraded(ctx context.Context, username, passwordDigest string) (*mirror.User, error) {
	f.degradedCalls++
	if u, ok := f.byName[username]; ok {
		return u, nil
	}
	f.nextSurrogate++
	u := &mirror.User{
		ID:             f.nextSurrogate,
		Username:       username,
		PasswordDigest: passwordDigest,
		Name:           username,
		Role:           common.RoleStudent,
	}
	f.byName[username] = u
	return u, nil
}

func (f *fakeMirror) FindByUsername(ctx context.Context, username string) (*mirror.User, error) {
	if u, ok := f.byName[username]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

type fakeIssuer struct {
	err    error
	issued []string
}

func (f *fakeIssuer) Issue(userID int64, username, role string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	tok := "tok-" + username + "-" + role
	f.issued = append(f.issued, tok)
	return tok, nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func anaIdentity() *directory.Identity {
	return &directory.Identity{
		ID:        42,
		FirstName: "Ana",
		LastName:  "Lopez",
		Username:  "ana",
		Digest:    credential.LegacyDigest("secret"),
		Employment: &directory.Employee{
			Email:      "ana@example.edu",
			Department: &directory.Named{Name: "GERENCIA"},
		},
	}
}

func newGateway(d *fakeDirectory, m *fakeMirror, i *fakeIssuer) *Gateway {
	r := roles.NewResolver("GERENCIA", "MATRIZ", []string{"JACL"})
	return NewGateway(d, m, r, i, testLogger())
}

// --- happy path ---

func TestLogin_Success(t *testing.T) {
	m := newFakeMirror()
	g := newGateway(&fakeDirectory{identity: anaIdentity()}, m, &fakeIssuer{})

	res, err := g.Login(context.Background(), "ana", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.ID != 42 || res.Username != "ana" || res.Role != common.RoleAdmin {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Name != "Ana Lopez" || res.Email != "ana@example.edu" {
		t.Fatalf("unexpected display fields: %+v", res)
	}
	if res.Token != "tok-ana-admin" {
		t.Fatalf("unexpected token %q", res.Token)
	}
	if m.upsertCalls != 1 {
		t.Fatalf("expected one mirror upsert, got %d", m.upsertCalls)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	m := newFakeMirror()
	g := newGateway(&fakeDirectory{identity: anaIdentity()}, m, &fakeIssuer{})

	_, err := g.Login(context.Background(), "ana", "wrong")
	if !errors.Is(err, common.ErrInvalidCredential) {
		t.Fatalf("want ErrInvalidCredential, got %v", err)
	}
	if m.upsertCalls != 0 {
		t.Fatalf("no mirror record may be created on a failed password check")
	}
}

func TestLogin_UnknownUsername(t *testing.T) {
	g := newGateway(&fakeDirectory{err: common.ErrNotFound}, newFakeMirror(), &fakeIssuer{})

	_, err := g.Login(context.Background(), "ghost", "whatever")
	// Unknown login and wrong password must be the same caller-facing kind.
	if !errors.Is(err, common.ErrInvalidCredential) {
		t.Fatalf("want ErrInvalidCredential, got %v", err)
	}
}

func TestLogin_AccessDenied(t *testing.T) {
	id := anaIdentity()
	id.Employment.Department = &directory.Named{Name: "VENTAS"}
	id.Employment.ActiveBranch = &directory.Keyed{Key: "SUC02"}

	m := newFakeMirror()
	g := newGateway(&fakeDirectory{identity: id}, m, &fakeIssuer{})

	_, err := g.Login(context.Background(), "ana", "secret")
	if !errors.Is(err, common.ErrAccessDenied) {
		t.Fatalf("want ErrAccessDenied, got %v", err)
	}
	if m.upsertCalls != 0 {
		t.Fatalf("ineligible logins must not touch the mirror")
	}
}

func TestLogin_BranchEligibleStudent(t *testing.T) {
	id := anaIdentity()
	id.Employment.Department = &directory.Named{Name: "VENTAS"}
	id.Employment.ActiveBranch = &directory.Keyed{Key: "MATRIZ"}

	g := newGateway(&fakeDirectory{identity: id}, newFakeMirror(), &fakeIssuer{})

	res, err := g.Login(context.Background(), "ana", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Role != common.RoleStudent {
		t.Fatalf("want student role, got %q", res.Role)
	}
}

func TestLogin_SyncFailureStillSucceeds(t *testing.T) {
	m := newFakeMirror()
	m.upsertErr = errors.New("db down")

	g := newGateway(&fakeDirectory{identity: anaIdentity()}, m, &fakeIssuer{})

	res, err := g.Login(context.Background(), "ana", "secret")
	if err != nil {
		t.Fatalf("mirror failure must not fail the login: %v", err)
	}
	// Falls back to the directory id when the mirror cannot answer.
	if res.ID != 42 || res.Token == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLogin_UsesMirrorSurrogateID(t *testing.T) {
	m := newFakeMirror()
	m.byName["ana"] = &mirror.User{ID: 1000000001, Username: "ana", Role: common.RoleStudent}

	g := newGateway(&fakeDirectory{identity: anaIdentity()}, m, &fakeIssuer{})

	res, err := g.Login(context.Background(), "ana", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	// The degraded-era surrogate id is the join key everything else uses.
	if res.ID != 1000000001 {
		t.Fatalf("want surrogate id, got %d", res.ID)
	}
	// The session role still comes from the live directory decision.
	if res.Role != common.RoleAdmin {
		t.Fatalf("want live role admin, got %q", res.Role)
	}
}

// --- degraded mode ---

func TestLogin_Degraded_NewUser(t *testing.T) {
	m := newFakeMirror()
	g := newGateway(&fakeDirectory{err: common.ErrDirectoryUnavailable}, m, &fakeIssuer{})

	res, err := g.Login(context.Background(), "newbie", "pass123")
	if err != nil {
		t.Fatalf("degraded login error: %v", err)
	}
	if res.Role != common.RoleStudent {
		t.Fatalf("auto-provisioned accounts must be least-privileged, got %q", res.Role)
	}
	if res.ID <= 1000000000 {
		t.Fatalf("expected surrogate id, got %d", res.ID)
	}
	if m.degradedCalls != 1 {
		t.Fatalf("expected one degraded provisioning call, got %d", m.degradedCalls)
	}

	// Repeat with the wrong password against the now-existing record.
	_, err = g.Login(context.Background(), "newbie", "wrong")
	if !errors.Is(err, common.ErrInvalidCredential) {
		t.Fatalf("want ErrInvalidCredential on repeat, got %v", err)
	}
}

func TestLogin_Degraded_KnownUserRightPassword(t *testing.T) {
	m := newFakeMirror()
	m.byName["ana"] = &mirror.User{
		ID:             42,
		Username:       "ana",
		PasswordDigest: credential.LegacyDigest("secret"),
		Name:           "Ana Lopez",
		Role:           common.RoleAdmin,
	}

	g := newGateway(&fakeDirectory{err: common.ErrDirectoryUnavailable}, m, &fakeIssuer{})

	res, err := g.Login(context.Background(), "ana", "secret")
	if err != nil {
		t.Fatalf("degraded login error: %v", err)
	}
	if res.ID != 42 || res.Role != common.RoleAdmin {
		t.Fatalf("unexpected result: %+v", res)
	}
	if m.degradedCalls != 0 {
		t.Fatalf("known user must not be re-provisioned")
	}
}

func TestLogin_Degraded_KnownUserWrongPassword(t *testing.T) {
	m := newFakeMirror()
	m.byName["ana"] = &mirror.User{
		ID:             42,
		Username:       "ana",
		PasswordDigest: credential.LegacyDigest("secret"),
		Role:           common.RoleAdmin,
	}

	g := newGateway(&fakeDirectory{err: common.ErrDirectoryUnavailable}, m, &fakeIssuer{})

	_, err := g.Login(context.Background(), "ana", "wrong")
	if !errors.Is(err, common.ErrInvalidCredential) {
		t.Fatalf("degraded mode must not accept any password for a known user, got %v", err)
	}
}

// --- profile ---

func TestGetProfile_FromDirectory(t *testing.T) {
	g := newGateway(&fakeDirectory{identity: anaIdentity()}, newFakeMirror(), &fakeIssuer{})

	p, err := g.GetProfile(context.Background(), "ana")
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if p.ID != 42 || p.Role != common.RoleAdmin || p.Name != "Ana Lopez" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestGetProfile_MirrorFallback(t *testing.T) {
	m := newFakeMirror()
	m.byName["ana"] = &mirror.User{ID: 42, Username: "ana", Name: "Ana Lopez", Role: common.RoleAdmin, Avatar: "avatars/1/x"}

	g := newGateway(&fakeDirectory{err: common.ErrDirectoryUnavailable}, m, &fakeIssuer{})

	p, err := g.GetProfile(context.Background(), "ana")
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if p.ID != 42 || p.Avatar != "avatars/1/x" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestGetProfile_UnknownEverywhere(t *testing.T) {
	g := newGateway(&fakeDirectory{err: common.ErrNotFound}, newFakeMirror(), &fakeIssuer{})

	_, err := g.GetProfile(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
