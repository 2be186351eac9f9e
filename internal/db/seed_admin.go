package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lostboitest/casemanage/internal/config"
	"github.com/lostboitest/casemanage/internal/security"
)

// EnsureAdminUser seeds the administrator account from config. There is no
// public registration route, so this is how the first login becomes possible.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, cfg.AdminUsername).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (username, password) VALUES ($1, $2)`,
		cfg.AdminUsername, hash,
	)

	return err
}
