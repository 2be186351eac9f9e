package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lostboitest/casemanage/internal/domain/user"
	"github.com/lostboitest/casemanage/internal/observability"
)

var ErrUsernameTaken = errors.New("username already taken")

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := withRetry(ctx, r.prom, "users.get_by_id", func(ctx context.Context) error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, password, created_at FROM users WHERE id = $1`,
			id,
		).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User

	err := withRetry(ctx, r.prom, "users.get_by_username", func(ctx context.Context) error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, password, created_at FROM users WHERE username = $1`,
			username,
		).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, username, passwordHash string) (user.User, error) {
	var u user.User

	err := withRetry(ctx, r.prom, "users.create", func(ctx context.Context) error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO users (username, password) VALUES ($1, $2)
			RETURNING id, username, password, created_at`,
			username, passwordHash,
		).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ErrUsernameTaken
		}

		return user.User{}, err
	}

	return u, nil
}
