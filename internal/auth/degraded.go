package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/campuskit/authcore/internal/common"
	"github.com/campuskit/authcore/internal/credential"
)

// loginDegraded is the fallback path entered only when the directory is
// unreachable. It relies solely on the local mirror so a total directory
// outage never locks out every user.
//
// A known local user must still present the right password. An unknown
// username is auto-provisioned with a locally-owned digest and the
// least-privileged role; this is the one path where a login can succeed for
// a username the directory has never confirmed, and it trades first-login
// guarantees for availability.
func (g *Gateway) loginDegraded(ctx context.Context, username, password string) (*LoginResult, error) {
	record, err := g.mirror.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if !credential.Verify(password, record.PasswordDigest) {
			g.logger.Info(ctx, "degraded login rejected: password mismatch", "username", username)
			return nil, common.ErrInvalidCredential
		}

	case errors.Is(err, common.ErrNotFound):
		digest, derr := credential.LocalDigest(password)
		if derr != nil {
			return nil, fmt.Errorf("digesting degraded password: %w", derr)
		}

		record, err = g.mirror.FindOrCreateDegraded(ctx, username, digest)
		if err != nil {
			return nil, fmt.Errorf("degraded provisioning: %w", err)
		}

		// A concurrent caller may have created the record first, with a
		// different password. Re-verify against whatever was stored.
		if !credential.Verify(password, record.PasswordDigest) {
			g.logger.Info(ctx, "degraded login rejected: lost provisioning race", "username", username)
			return nil, common.ErrInvalidCredential
		}

		g.logger.Warn(ctx, "degraded login auto-provisioned account",
			"username", username, "user_id", record.ID, "role", record.Role)

	default:
		return nil, fmt.Errorf("mirror lookup: %w", err)
	}

	token, err := g.issuer.Issue(record.ID, record.Username, record.Role)
	if err != nil {
		return nil, fmt.Errorf("issuing session: %w", err)
	}

	g.logger.Info(ctx, "degraded login succeeded", "username", username, "user_id", record.ID, "role", record.Role)

	return &LoginResult{
		ID:       record.ID,
		Username: record.Username,
		Name:     record.Name,
		Role:     record.Role,
		Email:    record.Email,
		Token:    token,
	}, nil
}
