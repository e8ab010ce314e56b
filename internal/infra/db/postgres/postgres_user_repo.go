package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"chat-assistant/internal/domain"
	"chat-assistant/internal/domain/model"
	"chat-assistant/internal/domain/ports/repository"
	"chat-assistant/internal/infra/metrics"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const uniqueViolation = "23505"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, tx repository.Tx, u *model.User) (err error) {
	defer func() { metrics.ObserveUserStore("postgres", "create", err) }()
	const q = `
INSERT INTO users (id, email, username, password_hash, created_at, last_login_at, refresh_token_id)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt, u.LastLoginAt, u.RefreshTokenID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, tx repository.Tx, u *model.User) (err error) {
	defer func() { metrics.ObserveUserStore("postgres", "update", err) }()
	const q = `
UPDATE users SET email=$2, username=$3, password_hash=$4, last_login_at=$5, refresh_token_id=$6
 WHERE id=$1;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, u.ID, u.Email, u.Username, u.PasswordHash, u.LastLoginAt, u.RefreshTokenID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const selectUser = `
SELECT id, email, username, password_hash, created_at, last_login_at, refresh_token_id
  FROM users `

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (u *model.User, err error) {
	defer func() { metrics.ObserveUserStore("postgres", "find_by_id", ignoreNotFound(err)) }()
	return r.findOne(ctx, tx, selectUser+`WHERE id=$1;`, id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (u *model.User, err error) {
	defer func() { metrics.ObserveUserStore("postgres", "find_by_email", ignoreNotFound(err)) }()
	return r.findOne(ctx, tx, selectUser+`WHERE email=$1;`, model.NormalizeEmail(email))
}

func (r *UserRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg any) (*model.User, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := ex.QueryRow(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.LastLoginAt, &u.RefreshTokenID,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
