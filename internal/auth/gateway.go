// Package auth orchestrates one login/profile cycle: directory fetch,
// password check, role decision, mirror sync, session issuance. It holds no
// business rules of its own beyond translating failures into caller-facing
// error kinds.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/campuskit/authcore/internal/common"
	"github.com/campuskit/authcore/internal/credential"
	"github.com/campuskit/authcore/internal/directory"
	"github.com/campuskit/authcore/internal/logging"
	"github.com/campuskit/authcore/internal/mirror"
	"github.com/campuskit/authcore/internal/roles"
)

// DirectoryFetcher is the read-only directory lookup the gateway depends on.
type DirectoryFetcher interface {
	Fetch(ctx context.Context, loginName string) (*directory.Identity, error)
}

// Mirror is the subset of the local mirror the gateway uses.
type Mirror interface {
	UpsertFromIdentity(ctx context.Context, identity *directory.Identity, role string) (*mirror.User, error)
	FindOrCreateDegraded(ctx context.Context, username, passwordDigest string) (*mirror.User, error)
	FindByUsername(ctx context.Context, username string) (*mirror.User, error)
}

// TokenIssuer signs session credentials.
type TokenIssuer interface {
	Issue(userID int64, username, role string) (string, error)
}

// LoginResult is the successful login payload.
type LoginResult struct {
	ID       int64  `json:"id"`
	Username string `json:"usuario"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// Profile is the directory-or-mirror view of a user for display purposes.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"usuario"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

type Gateway struct {
	directory DirectoryFetcher
	mirror    Mirror
	resolver  *roles.Resolver
	issuer    TokenIssuer
	logger    logging.Logger
}

func NewGateway(d DirectoryFetcher, m Mirror, r *roles.Resolver, i TokenIssuer, l logging.Logger) *Gateway {
	return &Gateway{
		directory: d,
		mirror:    m,
		resolver:  r,
		issuer:    i,
		logger:    l.With("module", "auth_gateway"),
	}
}

// Login authenticates username/password and returns a signed session.
//
// Failure kinds: common.ErrInvalidCredential for unknown logins and wrong
// passwords alike (so usernames cannot be enumerated), common.ErrAccessDenied
// for valid credentials on an ineligible branch. A directory outage is
// recovered through the degraded path and never surfaced.
func (g *Gateway) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	identity, err := g.directory.Fetch(ctx, username)
	if err != nil {
		if directory.IsUnavailable(err) {
			g.logger.Warn(ctx, "directory unavailable, entering degraded login", "username", username, "cause", err.Error())
			return g.loginDegraded(ctx, username, password)
		}
		if errors.Is(err, common.ErrNotFound) {
			g.logger.Info(ctx, "login rejected: unknown directory login", "username", username)
			return nil, common.ErrInvalidCredential
		}
		return nil, fmt.Errorf("directory fetch: %w", err)
	}

	if !credential.Verify(password, identity.Digest) {
		g.logger.Info(ctx, "login rejected: password mismatch", "username", username)
		return nil, common.ErrInvalidCredential
	}

	// Authorization gate runs only after the password check, so an
	// ineligible account is indistinguishable from a wrong password until
	// the caller actually owns the credential.
	decision := g.resolver.Resolve(identity)
	if !decision.Eligible() {
		g.logger.Info(ctx, "login rejected: branch not eligible",
			"username", username, "role", decision.Role, "branch", identity.ActiveBranchKey())
		return nil, common.ErrAccessDenied
	}

	userID := identity.ID
	record, err := g.mirror.UpsertFromIdentity(ctx, identity, decision.Role)
	if err != nil {
		// Best effort: the session can be issued from directory data alone.
		g.logger.Error(ctx, "mirror sync failed during login",
			"username", username, "err", fmt.Errorf("%w: %v", common.ErrSyncFailure, err).Error())
	} else {
		// A degraded-era record may carry a surrogate id; that id is the one
		// the rest of the system already joins on.
		userID = record.ID
	}

	token, err := g.issuer.Issue(userID, identity.Username, decision.Role)
	if err != nil {
		return nil, fmt.Errorf("issuing session: %w", err)
	}

	g.logger.Info(ctx, "login succeeded", "username", username, "user_id", userID, "role", decision.Role)

	return &LoginResult{
		ID:       userID,
		Username: identity.Username,
		Name:     identity.DisplayName(),
		Role:     decision.Role,
		Email:    identity.Email(),
		Token:    token,
	}, nil
}

// GetProfile resolves a username for display: live directory data first,
// mirror fallback when the directory cannot answer. No session is issued.
func (g *Gateway) GetProfile(ctx context.Context, username string) (*Profile, error) {
	identity, err := g.directory.Fetch(ctx, username)
	if err == nil {
		decision := g.resolver.Resolve(identity)
		return &Profile{
			ID:       identity.ID,
			Username: identity.Username,
			Name:     identity.DisplayName(),
			Role:     decision.Role,
			Email:    identity.Email(),
		}, nil
	}
	if !directory.IsUnavailable(err) && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("directory fetch: %w", err)
	}

	record, merr := g.mirror.FindByUsername(ctx, username)
	if merr != nil {
		if errors.Is(merr, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mirror lookup: %w", merr)
	}

	return &Profile{
		ID:       record.ID,
		Username: record.Username,
		Name:     record.Name,
		Role:     record.Role,
		Email:    record.Email,
		Avatar:   record.Avatar,
	}, nil
}
