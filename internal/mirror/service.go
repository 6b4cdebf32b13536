// Package mirror owns the local cache of previously-seen identities. It
// backs the degraded login path and gives the rest of the system a stable
// user id to join on.
package mirror

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/campuskit/authcore/internal/common"
	"github.com/campuskit/authcore/internal/dbx"
	"github.com/campuskit/authcore/internal/directory"
)

// Service implements the mirror semantics on top of a Repository: write-once
// records per id, surrogate ids for degraded accounts, and conflict re-reads
// under concurrent first logins.
type Service struct {
	db      *sql.DB
	repoFor func(dbx.DBTX) Repository
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db: db,
		repoFor: func(tx dbx.DBTX) Repository {
			return NewPostgresRepository(tx)
		},
	}
}

// NewServiceWithRepository is a constructor seam for tests.
func NewServiceWithRepository(db *sql.DB, repoFor func(dbx.DBTX) Repository) *Service {
	return &Service{db: db, repoFor: repoFor}
}

func (s *Service) conflictBackoff() retry.Backoff {
	// A lost race needs exactly one re-read; give it a little slack.
	return retry.WithMaxRetries(2, retry.NewConstant(10*time.Millisecond))
}

// UpsertFromIdentity ensures a mirror record exists for the identity. An
// existing record is left untouched, field for field: the mirror is a
// write-once cache per id and a stale role/email is an accepted tradeoff.
// A record created earlier in degraded mode keeps its surrogate id; it is
// matched by username and also left as-is.
func (s *Service) UpsertFromIdentity(ctx context.Context, identity *directory.Identity, role string) (*User, error) {
	var out *User

	err := retry.Do(ctx, s.conflictBackoff(), func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repoFor(tx)

			existing, err := repo.FindByID(ctx, identity.ID)
			if err == nil {
				out = existing
				return nil
			}
			if !errors.Is(err, common.ErrNotFound) {
				return err
			}

			// The username may already be taken by a degraded-mode record
			// with a surrogate id. The id is immutable, so that record wins.
			existing, err = repo.FindByUsername(ctx, identity.Username)
			if err == nil {
				out = existing
				return nil
			}
			if !errors.Is(err, common.ErrNotFound) {
				return err
			}

			created, err := repo.Create(ctx, &User{
				ID:             identity.ID,
				Username:       identity.Username,
				PasswordDigest: identity.Digest,
				Name:           identity.DisplayName(),
				Email:          identity.Email(),
				Role:           role,
			})
			if err != nil {
				if errors.Is(err, common.ErrAlreadyExists) {
					// Concurrent first login created it; re-read and proceed.
					return retry.RetryableError(err)
				}
				return err
			}

			out = created
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("upserting mirror record: %w", err)
	}

	return out, nil
}

// FindOrCreateDegraded returns the record for username, creating one with a
// surrogate id when the mirror has never seen it. passwordDigest is only
// used on creation. New degraded accounts get the least-privileged role.
func (s *Service) FindOrCreateDegraded(ctx context.Context, username, passwordDigest string) (*User, error) {
	var out *User

	err := retry.Do(ctx, s.conflictBackoff(), func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repoFor(tx)

			existing, err := repo.FindByUsername(ctx, username)
			if err == nil {
				out = existing
				return nil
			}
			if !errors.Is(err, common.ErrNotFound) {
				return err
			}

			created, err := repo.Create(ctx, &User{
				Username:       username,
				PasswordDigest: passwordDigest,
				Name:           username,
				Role:           common.RoleStudent,
			})
			if err != nil {
				if errors.Is(err, common.ErrAlreadyExists) {
					return retry.RetryableError(err)
				}
				return err
			}

			out = created
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("creating degraded mirror record: %w", err)
	}

	return out, nil
}

// FindByUsername returns the mirror record for username, or common.ErrNotFound.
func (s *Service) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.repoFor(s.db).FindByUsername(ctx, username)
}

// FindByID returns the mirror record for id, or common.ErrNotFound.
func (s *Service) FindByID(ctx context.Context, id int64) (*User, error) {
	return s.repoFor(s.db).FindByID(ctx, id)
}

// SetAvatar commits an avatar storage key to an existing record.
func (s *Service) SetAvatar(ctx context.Context, userID int64, key string) error {
	return s.repoFor(s.db).UpdateAvatar(ctx, userID, key)
}
