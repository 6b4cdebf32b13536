package mirror

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campuskit/authcore/internal/common"
	"github.com/campuskit/authcore/internal/dbx"
)

const uniqueViolationCode = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, password_digest, name, email, role, COALESCE(avatar, ''), created_at`

func scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordDigest, &u.Name, &u.Email, &u.Role, &u.Avatar, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	var (
		query string
		args  []any
	)

	if user.ID > 0 {
		query = `INSERT INTO users (id, username, password_digest, name, email, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `
		args = []any{user.ID, user.Username, user.PasswordDigest, user.Name, user.Email, user.Role}
	} else {
		query = `INSERT INTO users (id, username, password_digest, name, email, role)
		 VALUES (nextval('users_surrogate_id_seq'), $1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `
		args = []any{user.Username, user.PasswordDigest, user.Name, user.Email, user.Role}
	}

	err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id int64, key string) error {
	query := `UPDATE users SET avatar = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
